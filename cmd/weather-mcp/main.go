// Command weather-mcp serves the weather tool and prompts over stdio.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/ggoodman/weather-mcp-go/internal/admin"
	"github.com/ggoodman/weather-mcp-go/internal/config"
	"github.com/ggoodman/weather-mcp-go/internal/logctx"
	"github.com/ggoodman/weather-mcp-go/internal/telemetry"
	"github.com/ggoodman/weather-mcp-go/stdio"
	"github.com/ggoodman/weather-mcp-go/storage"
	"github.com/ggoodman/weather-mcp-go/storage/memory"
	"github.com/ggoodman/weather-mcp-go/storage/redis"
	"github.com/ggoodman/weather-mcp-go/storage/ristretto"
	"github.com/ggoodman/weather-mcp-go/weather"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Stdin, os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "weather-mcp:", err)
		stop()
		os.Exit(1)
	}
}

type flags struct {
	configFile   string
	logLevel     string
	logFormat    string
	reportTTL    time.Duration
	cacheBackend string
	cacheSize    int
	redisAddr    string
	metricsAddr  string
	otlpEndpoint string
	temperatureF int
}

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	var f flags
	cmd := &cobra.Command{
		Use:           "weather-mcp",
		Short:         "Weather MCP server over stdio",
		Version:       weather.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Decode(f.configFile)
			if err != nil {
				return err
			}
			f.apply(cmd, &cfg)
			if err := cfg.Validate(); err != nil {
				return err
			}
			return run(cmd.Context(), cfg, stdin, stdout, stderr)
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.configFile, "config", "", "YAML config file")
	fl.StringVar(&f.logLevel, "log-level", "", "log level: debug, info, warn, error")
	fl.StringVar(&f.logFormat, "log-format", "", "log format: text or json")
	fl.DurationVar(&f.reportTTL, "report-ttl", 0, "cache provider conditions for this long (0 disables)")
	fl.StringVar(&f.cacheBackend, "cache-backend", "", "report cache: memory, ristretto or redis")
	fl.IntVar(&f.cacheSize, "cache-size", 0, "memory cache entries, or ristretto cache KiB")
	fl.StringVar(&f.redisAddr, "redis-addr", "", "cache reports in Redis at this address")
	fl.StringVar(&f.metricsAddr, "metrics-addr", "", "serve /metrics and /healthz on this address")
	fl.StringVar(&f.otlpEndpoint, "otlp-endpoint", "", "export traces to this OTLP/gRPC collector")
	fl.IntVar(&f.temperatureF, "temperature", 0, "temperature reported in Fahrenheit")
	return cmd
}

// apply overrides cfg with every flag set on the command line.
func (f *flags) apply(cmd *cobra.Command, cfg *config.Config) {
	set := cmd.Flags().Changed
	if set("log-level") {
		cfg.LogLevel = f.logLevel
	}
	if set("log-format") {
		cfg.LogFormat = f.logFormat
	}
	if set("report-ttl") {
		cfg.ReportTTL = f.reportTTL
	}
	if set("cache-backend") {
		cfg.CacheBackend = f.cacheBackend
	}
	if set("cache-size") {
		cfg.CacheSize = f.cacheSize
	}
	if set("redis-addr") {
		cfg.RedisAddr = f.redisAddr
	}
	if set("metrics-addr") {
		cfg.MetricsAddr = f.metricsAddr
	}
	if set("otlp-endpoint") {
		cfg.OTLPEndpoint = f.otlpEndpoint
	}
	if set("temperature") {
		cfg.TemperatureF = f.temperatureF
	}
}

func newLogger(cfg config.Config, w io.Writer, lv *slog.LevelVar) *slog.Logger {
	opts := &slog.HandlerOptions{Level: lv}
	var h slog.Handler
	if cfg.JSONLogs() {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(logctx.Handler{Handler: h})
}

func openStorage(ctx context.Context, cfg config.Config) (storage.Storage, error) {
	switch cfg.Backend() {
	case config.BackendRistretto:
		return ristretto.New(ristretto.Config{MaxCost: int64(cfg.CacheSize) << 10})
	case config.BackendRedis:
		return openRedis(ctx, cfg.RedisAddr)
	default:
		return memory.New(cfg.CacheSize)
	}
}

func openRedis(ctx context.Context, addr string) (*redis.Storage, error) {
	s, err := redis.New(redis.Config{Client: goredis.NewClient(&goredis.Options{Addr: addr})})
	if err != nil {
		return nil, err
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.Ping(pingCtx); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return s, nil
}

func run(ctx context.Context, cfg config.Config, stdin io.Reader, stdout, stderr io.Writer) error {
	lvl, err := cfg.Level()
	if err != nil {
		return err
	}
	lv := new(slog.LevelVar)
	lv.Set(lvl)
	log := newLogger(cfg, stderr, lv)

	log.InfoContext(ctx, "weather.server.start",
		slog.String("version", weather.Version),
		slog.String("cache", cfg.Backend()),
	)

	store, err := openStorage(ctx, cfg)
	if err != nil {
		log.ErrorContext(ctx, "weather.server.start.fail", slog.String("err", err.Error()))
		return err
	}
	defer store.Close()

	provider := weather.NewStaticProvider(cfg.TemperatureF)
	svc := weather.NewService(provider, weather.WithCache(store, cfg.ReportTTL), weather.WithLogger(log))
	srv, err := weather.NewServer(svc, lv)
	if err != nil {
		return err
	}

	tp, shutdownTracing, err := telemetry.Init(ctx, weather.ServerName, weather.Version, cfg.OTLPEndpoint)
	if err != nil {
		log.ErrorContext(ctx, "weather.server.start.fail", slog.String("err", err.Error()))
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			log.WarnContext(flushCtx, "telemetry.shutdown.fail", slog.String("err", err.Error()))
		}
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	if cfg.MetricsAddr != "" {
		adm := admin.New(cfg.MetricsAddr, reg, log)
		go func() {
			if err := adm.Run(ctx); err != nil {
				log.ErrorContext(ctx, "admin.fail", slog.String("err", err.Error()))
			}
		}()
	}

	h := stdio.NewHandler(srv,
		stdio.WithIO(stdin, stdout),
		stdio.WithLogger(log),
		stdio.WithRegisterer(reg),
		stdio.WithTracerProvider(tp),
	)
	log.InfoContext(ctx, "weather.server.ready", slog.String("transport", "stdio"))

	if err := h.Serve(ctx); err != nil {
		return err
	}
	if ctx.Err() != nil {
		log.InfoContext(context.WithoutCancel(ctx), "weather.server.shutdown", slog.String("reason", "signal"))
	}
	return nil
}
