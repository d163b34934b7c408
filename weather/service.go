package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ggoodman/weather-mcp-go/storage"
)

// ErrEmptyCity is returned for a city that is blank after trimming.
var ErrEmptyCity = errors.New("City parameter cannot be empty")

const cacheNamespace = "conditions"

// Service produces weather reports, optionally caching provider conditions.
type Service struct {
	provider Provider
	cache    storage.Storage
	ttl      time.Duration
	log      *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithCache caches provider conditions in store for ttl. A non-positive ttl or a
// nil store disables caching.
func WithCache(store storage.Storage, ttl time.Duration) Option {
	return func(s *Service) {
		if store == nil || ttl <= 0 {
			s.cache, s.ttl = nil, 0
			return
		}
		s.cache, s.ttl = store, ttl
	}
}

// WithLogger sets a custom logger for the Service.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// NewService builds a Service over p.
func NewService(p Provider, opts ...Option) *Service {
	s := &Service{provider: p, log: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Report returns the rendered report for city. Reports always carry the
// requested city; only provider conditions are shared through the cache.
// Cache failures are logged and fall through to the provider.
func (s *Service) Report(ctx context.Context, city string) (string, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return "", ErrEmptyCity
	}

	s.log.DebugContext(ctx, "weather.report.request", slog.String("city", city))

	c, err := s.conditions(ctx, city)
	if err != nil {
		return "", err
	}
	c.City = city
	return FormatReport(c), nil
}

func (s *Service) conditions(ctx context.Context, city string) (Conditions, error) {
	key := cacheKey(city)
	if s.cache != nil {
		if c, ok := s.cached(ctx, key); ok {
			s.log.DebugContext(ctx, "weather.cache.hit", slog.String("city", city))
			return c, nil
		}
	}

	c, err := s.provider.Current(ctx, city)
	if err != nil {
		return Conditions{}, fmt.Errorf("weather for %s: %w", city, err)
	}

	if s.cache != nil {
		data, err := json.Marshal(c)
		if err == nil {
			err = s.cache.Set(ctx, key, data, storage.WithNamespace(cacheNamespace), storage.WithTTL(s.ttl))
		}
		if err != nil {
			s.log.WarnContext(ctx, "weather.cache.set.fail", slog.String("err", err.Error()))
		}
	}
	return c, nil
}

func (s *Service) cached(ctx context.Context, key string) (Conditions, bool) {
	item, err := s.cache.Get(ctx, key, storage.WithNamespace(cacheNamespace))
	if err != nil {
		s.log.WarnContext(ctx, "weather.cache.get.fail", slog.String("err", err.Error()))
		return Conditions{}, false
	}
	if item == nil {
		return Conditions{}, false
	}
	var c Conditions
	if err := json.Unmarshal(item.Data, &c); err != nil {
		s.log.WarnContext(ctx, "weather.cache.decode.fail", slog.String("err", err.Error()))
		return Conditions{}, false
	}
	return c, true
}

// cacheKey normalizes city so differently-cased requests share conditions.
func cacheKey(city string) string {
	return strings.ToLower(strings.Join(strings.Fields(city), " "))
}
