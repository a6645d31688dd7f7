package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"runtime"
	"strconv"
	"time"
)

type Config struct {
	Addr    string
	Workers int

	PublicRoot   string
	NotFoundPage string
	PagesRoot    string
	TasksFile    string

	ReadTimeout   time.Duration
	WriteTimeout  time.Duration
	LegacyFraming bool

	Telemetry   bool
	ServiceName string
}

// Load parses args (without the program name). Flags take precedence over
// HEARTH_* environment variables, which take precedence over defaults.
func Load(args []string, getenv func(string) string, output io.Writer) (Config, error) {
	var cfg Config

	workers, err := envInt(getenv, "HEARTH_WORKERS", runtime.NumCPU())
	if err != nil {
		return cfg, err
	}

	fs := flag.NewFlagSet("hearth", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.StringVar(&cfg.Addr, "addr", envString(getenv, "HEARTH_ADDR", "127.0.0.1:8080"), "address to listen on")
	fs.IntVar(&cfg.Workers, "workers", workers, "number of worker goroutines")
	fs.StringVar(&cfg.PublicRoot, "public", envString(getenv, "HEARTH_PUBLIC", "./public"), "directory served as static fallback")
	fs.StringVar(&cfg.NotFoundPage, "not-found", envString(getenv, "HEARTH_NOT_FOUND", "./pages/not_found.html"), "page served with 404 responses")
	fs.StringVar(&cfg.PagesRoot, "pages", envString(getenv, "HEARTH_PAGES", "./pages"), "directory holding page templates")
	fs.StringVar(&cfg.TasksFile, "data", envString(getenv, "HEARTH_DATA", "./data/tasks.json"), "task list file")
	fs.DurationVar(&cfg.ReadTimeout, "read-timeout", 0, "per connection read deadline, 0 disables")
	fs.DurationVar(&cfg.WriteTimeout, "write-timeout", 0, "per connection write deadline, 0 disables")
	fs.BoolVar(&cfg.LegacyFraming, "legacy-framing", false, "write LF-only responses without Content-Length")
	fs.BoolVar(&cfg.Telemetry, "telemetry", getenv("OTEL_EXPORTER_OTLP_ENDPOINT") != "", "export traces, metrics and logs over OTLP")
	fs.StringVar(&cfg.ServiceName, "service-name", envString(getenv, "OTEL_SERVICE_NAME", "hearth"), "service name reported to OpenTelemetry")

	if err := fs.Parse(args); err != nil {
		return cfg, err
	}
	if fs.NArg() > 0 {
		return cfg, fmt.Errorf("config: unexpected arguments %q", fs.Args())
	}

	return cfg, cfg.Validate()
}

func (cfg Config) Validate() error {
	var errs []error
	if cfg.Addr == "" {
		errs = append(errs, errors.New("config: addr is required"))
	}
	if cfg.Workers < 1 {
		errs = append(errs, fmt.Errorf("config: workers must be at least 1, got %d", cfg.Workers))
	}
	if cfg.ReadTimeout < 0 || cfg.WriteTimeout < 0 {
		errs = append(errs, errors.New("config: timeouts may not be negative"))
	}
	return errors.Join(errs...)
}

func envString(getenv func(string) string, key, fallback string) string {
	if v := getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(getenv func(string) string, key string, fallback int) (int, error) {
	v := getenv(key)
	if v == "" {
		return fallback, nil
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return n, nil
}
