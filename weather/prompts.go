package weather

import (
	"context"
	"fmt"

	"github.com/ggoodman/weather-mcp-go/mcp"
	"github.com/ggoodman/weather-mcp-go/mcpservice"
	"github.com/ggoodman/weather-mcp-go/schema"
)

const (
	InquiryPromptName      = "weather_inquiry"
	TravelAdvicePromptName = "weather_travel_advice"
)

var (
	inquiryParams = schema.MustNew(
		schema.Text("location", "The city or location to inquire about"),
	)
	travelParams = schema.MustNew(
		schema.Text("destination", "Travel destination city"),
		schema.OptionalText("travel_date", "Planned travel date (optional)"),
	)
)

// WeatherInquiryPrompt asks the model for current conditions at a location.
func WeatherInquiryPrompt() mcpservice.Prompt {
	return mcpservice.NewPrompt(InquiryPromptName, inquiryParams,
		func(_ context.Context, args schema.Args) (*mcp.GetPromptResult, error) {
			location := args.String("location")
			return &mcp.GetPromptResult{
				Description: fmt.Sprintf("Template for asking about weather conditions in %s", location),
				Messages:    []mcp.PromptMessage{mcpservice.UserText(inquiryText(location))},
			}, nil
		},
		mcpservice.WithPromptDescription("Template for asking about weather conditions in a specific location"),
	)
}

// WeatherTravelAdvicePrompt asks the model for packing advice at a
// destination, optionally for a given travel date.
func WeatherTravelAdvicePrompt() mcpservice.Prompt {
	return mcpservice.NewPrompt(TravelAdvicePromptName, travelParams,
		func(_ context.Context, args schema.Args) (*mcp.GetPromptResult, error) {
			destination := args.String("destination")
			date, _ := args.Lookup("travel_date")
			return &mcp.GetPromptResult{
				Description: fmt.Sprintf("Template for getting weather-based travel advice for %s", destination),
				Messages:    []mcp.PromptMessage{mcpservice.UserText(travelText(destination, date))},
			}, nil
		},
		mcpservice.WithPromptDescription("Template for getting weather-based travel advice"),
	)
}

func inquiryText(location string) string {
	return fmt.Sprintf("I need current weather information for %s. "+
		"Please provide the temperature and any relevant weather conditions. "+
		"If you need to use a tool to get this information, please do so.", location)
}

func travelText(destination, date string) string {
	when := " for current conditions"
	if date != "" {
		when = " for travel on " + date
	}
	return fmt.Sprintf("I'm planning to travel to %s%s. "+
		"Please check the current weather conditions and provide advice on what to pack "+
		"and any weather-related considerations for my trip. "+
		"Use the weather tool to get current temperature data.", destination, when)
}
