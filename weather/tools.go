package weather

import (
	"context"
	"log/slog"

	"github.com/ggoodman/weather-mcp-go/mcpservice"
	"github.com/ggoodman/weather-mcp-go/schema"
)

// ToolName is the registered name of the weather tool.
const ToolName = "get_weather"

var weatherParams = schema.MustNew(
	schema.Text("city", "Name of the city to get weather for (e.g., 'New York', 'London', 'Tokyo')"),
)

// GetWeatherTool returns the get_weather tool backed by svc.
func GetWeatherTool(svc *Service) mcpservice.Tool {
	return mcpservice.NewTool(ToolName, weatherParams,
		func(ctx context.Context, w mcpservice.ToolResponseWriter, args schema.Args) error {
			city := args.String("city")
			report, err := svc.Report(ctx, city)
			if err != nil {
				return err
			}
			svc.log.InfoContext(ctx, "weather.report.ok", slog.String("city", city))
			return w.AppendText(report)
		},
		mcpservice.WithToolDescription("Get current weather information for a specified city"),
	)
}
