package weather

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ggoodman/weather-mcp-go/mcp"
	"github.com/ggoodman/weather-mcp-go/mcpservice"
	"github.com/ggoodman/weather-mcp-go/schema"
	"github.com/ggoodman/weather-mcp-go/storage"
	"github.com/ggoodman/weather-mcp-go/storage/memory"
)

var fixedNow = time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)

func fixedProvider() *StaticProvider {
	p := NewStaticProvider(DefaultTemperatureF)
	p.Now = func() time.Time { return fixedNow }
	return p
}

type countingProvider struct {
	inner Provider
	calls int
}

func (c *countingProvider) Current(ctx context.Context, city string) (Conditions, error) {
	c.calls++
	return c.inner.Current(ctx, city)
}

type failingProvider struct{}

func (failingProvider) Current(context.Context, string) (Conditions, error) {
	return Conditions{}, errors.New("upstream unavailable")
}

func TestFormatReport(t *testing.T) {
	c, err := fixedProvider().Current(context.Background(), "Tokyo")
	if err != nil {
		t.Fatal(err)
	}
	want := "Weather Report for Tokyo\n" +
		"========================\n" +
		"Current Temperature: 83F\n" +
		"Conditions: Clear\n" +
		"Humidity: 65%\n" +
		"Wind: Light breeze\n" +
		"Last Updated: 2024-03-09 14:05:07\n\n"
	if got := FormatReport(c); got != want {
		t.Fatalf("FormatReport mismatch:\n%q\nwant\n%q", got, want)
	}
}

func TestStaticProviderHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := fixedProvider().Current(ctx, "Oslo"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestReportTrimsCity(t *testing.T) {
	svc := NewService(fixedProvider())
	report, err := svc.Report(context.Background(), "  New York \t")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(report, "Weather Report for New York\n") {
		t.Fatalf("unexpected report %q", report)
	}
}

func TestReportEmptyCity(t *testing.T) {
	svc := NewService(fixedProvider())
	for _, city := range []string{"", "   ", "\t\n"} {
		if _, err := svc.Report(context.Background(), city); !errors.Is(err, ErrEmptyCity) {
			t.Fatalf("city %q: expected ErrEmptyCity, got %v", city, err)
		}
	}
}

func TestReportProviderError(t *testing.T) {
	svc := NewService(failingProvider{})
	_, err := svc.Report(context.Background(), "Paris")
	if err == nil || !strings.Contains(err.Error(), "upstream unavailable") {
		t.Fatalf("expected wrapped provider error, got %v", err)
	}
}

func TestReportCache(t *testing.T) {
	store, err := memory.New(16)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	cp := &countingProvider{inner: fixedProvider()}
	svc := NewService(cp, WithCache(store, time.Minute))
	ctx := context.Background()

	first, err := svc.Report(ctx, "London")
	if err != nil {
		t.Fatal(err)
	}
	second, err := svc.Report(ctx, "  london ")
	if err != nil {
		t.Fatal(err)
	}
	if cp.calls != 1 {
		t.Fatalf("provider called %d times, want 1", cp.calls)
	}
	if !strings.HasPrefix(first, "Weather Report for London\n") {
		t.Fatalf("first report = %q", first)
	}
	if !strings.HasPrefix(second, "Weather Report for london\n") {
		t.Fatalf("cached report must carry the requested city, got %q", second)
	}
	if strings.TrimPrefix(first, "Weather Report for London") != strings.TrimPrefix(second, "Weather Report for london") {
		t.Fatalf("cached conditions differ:\n%q\n%q", first, second)
	}

	item, err := store.Get(ctx, "london", storage.WithNamespace(cacheNamespace))
	if err != nil || item == nil {
		t.Fatalf("expected cached entry, got %v %v", item, err)
	}
}

func TestReportCacheKeepsRequestedCasing(t *testing.T) {
	store, err := memory.New(16)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	svc := NewService(fixedProvider(), WithCache(store, time.Minute))
	ctx := context.Background()

	if _, err := svc.Report(ctx, "TOKYO"); err != nil {
		t.Fatal(err)
	}
	got, err := svc.Report(ctx, " Tokyo ")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, "Weather Report for Tokyo\n") {
		t.Fatalf("report leaked an earlier request's city: %q", got)
	}
}

func TestReportCacheDisabledByZeroTTL(t *testing.T) {
	store, err := memory.New(16)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	cp := &countingProvider{inner: fixedProvider()}
	svc := NewService(cp, WithCache(store, 0))
	for range 3 {
		if _, err := svc.Report(context.Background(), "Lima"); err != nil {
			t.Fatal(err)
		}
	}
	if cp.calls != 3 {
		t.Fatalf("provider called %d times, want 3", cp.calls)
	}
}

func TestGetWeatherTool(t *testing.T) {
	srv, err := NewServer(NewService(fixedProvider()), nil)
	if err != nil {
		t.Fatal(err)
	}
	d, err := srv.Registry().Lookup(mcpservice.KindTool, ToolName)
	if err != nil {
		t.Fatal(err)
	}
	out, err := d.Invoke(context.Background(), schema.NewArgs(map[string]string{"city": "Tokyo"}))
	if err != nil {
		t.Fatal(err)
	}
	res, ok := out.(*mcp.CallToolResult)
	if !ok {
		t.Fatalf("unexpected result type %T", out)
	}
	if len(res.Content) != 1 || res.Content[0].Type != mcp.ContentTypeText {
		t.Fatalf("expected one text block, got %+v", res.Content)
	}
	if !strings.Contains(res.Content[0].Text, "Tokyo") {
		t.Fatalf("report does not mention city: %q", res.Content[0].Text)
	}

	if _, err := d.Invoke(context.Background(), schema.NewArgs(nil)); !errors.Is(err, ErrEmptyCity) {
		t.Fatalf("expected ErrEmptyCity, got %v", err)
	}
}

func TestToolListing(t *testing.T) {
	srv, err := NewServer(NewService(fixedProvider()), nil)
	if err != nil {
		t.Fatal(err)
	}
	tools := srv.Tools()
	if len(tools) != 1 || tools[0].Name != "get_weather" {
		t.Fatalf("unexpected tools %+v", tools)
	}
	if got := tools[0].InputSchema.Required; len(got) != 1 || got[0] != "city" {
		t.Fatalf("required = %v", got)
	}
	prompts := srv.Prompts()
	if len(prompts) != 2 || prompts[0].Name != InquiryPromptName || prompts[1].Name != TravelAdvicePromptName {
		t.Fatalf("unexpected prompts %+v", prompts)
	}
	if srv.SupportsLogging() {
		t.Fatal("logging should be disabled without a level var")
	}
}

func TestPrompts(t *testing.T) {
	res, err := invokePrompt(t, WeatherInquiryPrompt(), map[string]string{"location": "Rome"})
	if err != nil {
		t.Fatal(err)
	}
	if res.Description != "Template for asking about weather conditions in Rome" {
		t.Fatalf("description = %q", res.Description)
	}
	if len(res.Messages) != 1 || res.Messages[0].Role != mcp.RoleUser {
		t.Fatalf("unexpected messages %+v", res.Messages)
	}
	if !strings.HasPrefix(res.Messages[0].Content.Text, "I need current weather information for Rome.") {
		t.Fatalf("text = %q", res.Messages[0].Content.Text)
	}

	res, err = invokePrompt(t, WeatherTravelAdvicePrompt(), map[string]string{"destination": "Cairo"})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(res.Messages[0].Content.Text, "I'm planning to travel to Cairo for current conditions.") {
		t.Fatalf("text = %q", res.Messages[0].Content.Text)
	}

	res, err = invokePrompt(t, WeatherTravelAdvicePrompt(), map[string]string{"destination": "Cairo", "travel_date": "2025-01-01"})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(res.Messages[0].Content.Text, "I'm planning to travel to Cairo for travel on 2025-01-01.") {
		t.Fatalf("text = %q", res.Messages[0].Content.Text)
	}
}

func invokePrompt(t *testing.T, p mcpservice.Prompt, args map[string]string) (*mcp.GetPromptResult, error) {
	t.Helper()
	srv, err := mcpservice.NewServer(mcpservice.WithPrompts(p))
	if err != nil {
		t.Fatal(err)
	}
	d, err := srv.Registry().Lookup(mcpservice.KindPrompt, p.Descriptor.Name)
	if err != nil {
		t.Fatal(err)
	}
	out, err := d.Invoke(context.Background(), schema.NewArgs(args))
	if err != nil {
		return nil, err
	}
	return out.(*mcp.GetPromptResult), nil
}
