package weather

import (
	"log/slog"

	"github.com/ggoodman/weather-mcp-go/mcp"
	"github.com/ggoodman/weather-mcp-go/mcpservice"
)

// ServerName is the implementation name reported during initialize.
const ServerName = "weather-mcp-server"

// Version is overridden at link time.
var Version = "1.0.0"

// NewServer assembles the weather tool and prompts into a frozen server. A
// non-nil levelVar enables logging/setLevel.
func NewServer(svc *Service, levelVar *slog.LevelVar) (*mcpservice.Server, error) {
	opts := []mcpservice.ServerOption{
		mcpservice.WithServerInfo(mcp.ImplementationInfo{Name: ServerName, Version: Version}),
		mcpservice.WithInstructions("Use get_weather to look up current conditions for a city."),
		mcpservice.WithTools(GetWeatherTool(svc)),
		mcpservice.WithPrompts(WeatherInquiryPrompt(), WeatherTravelAdvicePrompt()),
	}
	if levelVar != nil {
		opts = append(opts, mcpservice.WithLogLevelVar(levelVar))
	}
	return mcpservice.NewServer(opts...)
}
