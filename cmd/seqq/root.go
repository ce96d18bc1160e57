package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/kbukum/seqkit/config"
	"github.com/kbukum/seqkit/internal/lineq"
	"github.com/kbukum/seqkit/logger"
	"github.com/kbukum/seqkit/observability"
	"github.com/kbukum/seqkit/version"
)

const serviceName = "seqq"

// Config is the full seqq configuration. Plan keys sit at the top level so
// `take: 10` in config.yml, SEQQ_TAKE=10 and --take=10 all set the same field.
type Config struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
	Plan                 lineq.Plan `yaml:",inline" mapstructure:",squash"`
}

// flagKeys maps flag names to config keys.
var flagKeys = map[string]string{
	"match":      "match",
	"exclude":    "exclude",
	"trim":       "trim",
	"skip-blank": "skip_blank",
	"distinct":   "distinct",
	"sort":       "sort",
	"sort-by":    "sort_by",
	"skip":       "skip",
	"take":       "take",
	"group-by":   "group_by",
	"count":      "count",
	"first":      "first",
	"log-level":  "logging.level",
	"log-format": "logging.format",
	"telemetry":  "telemetry.enabled",
}

func newRootCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	var configFile, envFile string

	root := &cobra.Command{
		Use:           "seqq [files...]",
		Short:         "Filter, sort, group and count lines lazily",
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			v := viper.New()
			if err := bindFlags(v, cmd.Flags()); err != nil {
				return err
			}
			cfg, err := loadConfig(v, configFile, envFile, stderr)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg, args, stdin, stdout, stderr)
		},
	}
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	flags := root.Flags()
	flags.StringVar(&configFile, "config", "", "config file (default: search ./config.yml, ./cmd/seqq/config.yml)")
	flags.StringVar(&envFile, "env-file", "", ".env file with SEQQ_* variables")
	flags.String("match", "", "keep lines matching this regular expression")
	flags.String("exclude", "", "drop lines matching this regular expression")
	flags.Bool("trim", false, "trim surrounding whitespace")
	flags.Bool("skip-blank", false, "drop blank lines")
	flags.Bool("distinct", false, "drop repeated lines")
	flags.String("sort", "", "sort output: asc or desc")
	flags.String("sort-by", "", "sort key: line or length")
	flags.Int("skip", 0, "skip the first N rows")
	flags.Int("take", 0, "stop after N rows (0 = all)")
	flags.String("group-by", "", "group lines by line, first-field or length and print key<TAB>count")
	flags.Bool("count", false, "print the number of rows only")
	flags.Bool("first", false, "print the first row only; fails when there is none")
	flags.String("log-level", "", "log level (trace, debug, info, warn, error)")
	flags.String("log-format", "", "log format (console, json)")
	flags.Bool("telemetry", false, "export traces and metrics over OTLP/HTTP")

	root.AddCommand(newVersionCommand())
	return root
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for name, key := range flagKeys {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			return err
		}
	}
	v.SetDefault("name", serviceName)
	v.SetDefault("logging.level", "warn")
	return nil
}

func loadConfig(v *viper.Viper, configFile, envFile string, stderr io.Writer) (*Config, error) {
	// Loader warnings surface before the configured logger exists.
	bootstrap := &logger.Config{Level: "warn", Format: "console", NoColor: true}
	logger.SetGlobalLogger(logger.NewWithWriter(bootstrap, "", stderr))

	opts := []config.LoaderOption{config.WithViper(v), config.WithEnvPrefix("SEQQ")}
	if configFile != "" {
		opts = append(opts, config.WithConfigFile(configFile))
	}
	if envFile != "" {
		opts = append(opts, config.WithEnvFile(envFile))
	}

	var cfg Config
	if err := config.LoadConfig(serviceName, &cfg, opts...); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Plan.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func run(ctx context.Context, cfg *Config, paths []string, stdin io.Reader, stdout, stderr io.Writer) (err error) {
	log := logger.NewWithWriter(&cfg.Logging, serviceName, stderr)
	logger.SetGlobalLogger(log)

	instrument := []observability.Option{observability.WithLogger(log)}
	if cfg.Telemetry.Enabled {
		metrics, shutdown, err := startTelemetry(ctx, cfg)
		if err != nil {
			return err
		}
		defer func() {
			if serr := shutdown(); serr != nil {
				log.Warn("telemetry shutdown failed", logger.ErrorFields("telemetry.shutdown", serr))
			}
		}()
		instrument = append(instrument, observability.WithMetrics(metrics))
	}

	input, err := lineq.Inputs(paths, nil, stdin)
	if err != nil {
		return err
	}
	if input, err = observability.Instrument(input, "seqq.input", instrument...); err != nil {
		return err
	}
	q, err := lineq.Build(cfg.Plan, input)
	if err != nil {
		return err
	}
	log.Debug("query planned", logger.Fields("stages", q.Stages(), "inputs", len(paths)))

	start := time.Now()
	rows, err := q.Run(ctx, stdout)
	if err != nil {
		log.Debug("query failed", logger.ErrorFields("seqq.run", err))
		return err
	}
	log.Debug("query finished", logger.Fields("rows", rows, "duration", time.Since(start).String()))
	return nil
}

func startTelemetry(ctx context.Context, cfg *Config) (*observability.Metrics, func() error, error) {
	info := version.Get()

	tc := observability.DefaultTracerConfig(cfg.Name)
	tc.ServiceVersion = info.Short()
	tc.Environment = cfg.Environment
	tc.Endpoint = cfg.Telemetry.Endpoint
	tc.Insecure = cfg.Telemetry.Insecure
	if cfg.Telemetry.SampleRate > 0 {
		tc.SampleRate = cfg.Telemetry.SampleRate
	}
	tp, err := observability.InitTracer(ctx, tc)
	if err != nil {
		return nil, nil, err
	}

	mc := observability.DefaultMeterConfig(cfg.Name)
	mc.ServiceVersion = tc.ServiceVersion
	mc.Environment = cfg.Environment
	mc.Endpoint = cfg.Telemetry.Endpoint
	mc.Insecure = cfg.Telemetry.Insecure
	mp, err := observability.InitMeter(ctx, mc)
	if err != nil {
		_ = tp.Shutdown(ctx)
		return nil, nil, err
	}

	metrics, err := observability.NewMetrics(observability.Meter(serviceName))
	if err != nil {
		_ = tp.Shutdown(ctx)
		_ = mp.Shutdown(ctx)
		return nil, nil, err
	}

	shutdown := func() error {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return errors.Join(tp.Shutdown(sctx), mp.Shutdown(sctx))
	}
	return metrics, shutdown, nil
}

func newVersionCommand() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := version.Get()
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(info)
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", serviceName, info)
			return err
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	return cmd
}
