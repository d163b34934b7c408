package weather

import (
	"fmt"
	"strings"
)

const timestampLayout = "2006-01-02 15:04:05"

// FormatReport renders c as the plain-text report returned by get_weather.
func FormatReport(c Conditions) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Weather Report for %s\n", c.City)
	b.WriteString("========================\n")
	fmt.Fprintf(&b, "Current Temperature: %dF\n", c.TemperatureF)
	fmt.Fprintf(&b, "Conditions: %s\n", c.Summary)
	fmt.Fprintf(&b, "Humidity: %d%%\n", c.HumidityPct)
	fmt.Fprintf(&b, "Wind: %s\n", c.Wind)
	fmt.Fprintf(&b, "Last Updated: %s\n\n", c.ObservedAt.Format(timestampLayout))
	return b.String()
}
