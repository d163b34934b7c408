// Package weather implements the weather tool and prompt templates served by
// the weather MCP server.
package weather

import (
	"context"
	"time"
)

// DefaultTemperatureF is the temperature reported when none is configured.
const DefaultTemperatureF = 83

// Conditions is a point-in-time observation for one city.
type Conditions struct {
	City         string
	TemperatureF int
	Summary      string
	HumidityPct  int
	Wind         string
	ObservedAt   time.Time
}

// Provider returns current conditions for a city. city is already trimmed
// and non-empty.
type Provider interface {
	Current(ctx context.Context, city string) (Conditions, error)
}

// StaticProvider reports the same fixed conditions for every city.
type StaticProvider struct {
	TemperatureF int
	Summary      string
	HumidityPct  int
	Wind         string
	// Now defaults to time.Now.
	Now func() time.Time
}

// NewStaticProvider returns a provider reporting temperatureF with clear,
// calm conditions.
func NewStaticProvider(temperatureF int) *StaticProvider {
	return &StaticProvider{
		TemperatureF: temperatureF,
		Summary:      "Clear",
		HumidityPct:  65,
		Wind:         "Light breeze",
	}
}

func (p *StaticProvider) Current(ctx context.Context, city string) (Conditions, error) {
	if err := ctx.Err(); err != nil {
		return Conditions{}, err
	}
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	return Conditions{
		City:         city,
		TemperatureF: p.TemperatureF,
		Summary:      p.Summary,
		HumidityPct:  p.HumidityPct,
		Wind:         p.Wind,
		ObservedAt:   now(),
	}, nil
}
