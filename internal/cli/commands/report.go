package commands

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ccollicutt/routelog/internal/logging"
	"github.com/ccollicutt/routelog/pkg/analyzer"
	"github.com/ccollicutt/routelog/pkg/config"
	"github.com/ccollicutt/routelog/pkg/output"
	"github.com/ccollicutt/routelog/pkg/parser"
	"github.com/ccollicutt/routelog/pkg/report"
	"github.com/ccollicutt/routelog/pkg/webhook"
)

// ExitCode is set by commands to indicate the result.
// Report runs always leave it at 0, even when some files failed.
var ExitCode = 0

// ReportOptions holds command-line options for a report run.
type ReportOptions struct {
	Report         string
	ConfigPath     string
	Output         string
	Marker         string
	CollectTimeout time.Duration
	WorkerTimeout  time.Duration
	LogLevel       string
	Verbose        bool
	Quiet          bool

	// Webhook options
	WebhookURL     string
	WebhookToken   string
	WebhookTrigger string
}

// NewReportCommand creates the command that analyzes log files and prints a report.
// It serves as the root command of the CLI.
func NewReportCommand() *cobra.Command {
	opts := &ReportOptions{}

	cmd := &cobra.Command{
		Use:   "routelog <log-file>... --report handlers",
		Short: "Count log levels per request route",
		Long: `routelog reads application log files, counts the severity level of every
request-log line per route, and prints a table with one row per route.

Each file is processed by its own worker; counts from all files are summed.
Files that are missing or unreadable are reported and contribute nothing.

Arguments may be file paths or glob patterns (including **).

Report types:
  handlers  per-route DEBUG/INFO/WARNING/ERROR/CRITICAL counts

Any other --report value (or none) prints a notice and does nothing.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd, args, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.Report, "report", "", "Report type ("+strings.Join(report.Names(), "|")+")")
	flags.StringVarP(&opts.ConfigPath, "config", "c", "", "Configuration file (YAML)")
	flags.StringVarP(&opts.Output, "output", "o", config.DefaultOutput, "Output format (text|json)")
	flags.StringVar(&opts.Marker, "marker", config.DefaultMarker, "Token identifying request-log lines")
	flags.DurationVar(&opts.CollectTimeout, "collect-timeout", config.DefaultCollectTimeout, "Maximum wait for each worker result")
	flags.DurationVar(&opts.WorkerTimeout, "worker-timeout", config.DefaultWorkerTimeout, "Maximum wait for all workers (0 disables)")
	flags.StringVar(&opts.LogLevel, "log-level", logging.DefaultLevel, "Diagnostic log level (debug|info|warn|error)")
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "Show per-file results and duration")
	flags.BoolVarP(&opts.Quiet, "quiet", "q", false, "Print only the request total")

	// Webhook flags
	flags.StringVar(&opts.WebhookURL, "webhook-url", "", "Webhook endpoint URL")
	flags.StringVar(&opts.WebhookToken, "webhook-token", "", "Bearer token for webhook auth")
	flags.StringVar(&opts.WebhookTrigger, "webhook-trigger", string(config.WebhookTriggerOnErrors), "When to fire webhook (on_errors|always|never)")

	return cmd
}

func runReport(cmd *cobra.Command, args []string, opts *ReportOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	stdout := cmd.OutOrStdout()
	stderr := cmd.ErrOrStderr()

	logger, err := logging.New(opts.LogLevel, stderr)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := loadConfig(ctx, cmd, opts)
	if err != nil {
		return err
	}

	kind := report.ParseKind(cfg.Report)
	if kind == report.KindInvalid {
		logger.Debug("unrecognized report type", zap.String("report", cfg.Report))
		return report.New(kind, report.Env{Out: stdout}).Generate(ctx)
	}

	files := parser.ExpandGlobs(args)

	lp, err := parser.NewLineParser(cfg.Marker)
	if err != nil {
		return err
	}

	formatter, err := output.NewFormatter(cfg.Output, output.FormatOptions{
		Verbose: opts.Verbose,
		Quiet:   opts.Quiet,
	})
	if err != nil {
		return err
	}

	a := analyzer.New(lp,
		analyzer.WithCollectTimeout(cfg.CollectTimeout),
		analyzer.WithWorkerTimeout(cfg.WorkerTimeout),
		analyzer.WithLogger(logger),
		analyzer.WithFileErrorHandler(analyzer.FileErrorPrinter(stderr)),
	)

	logger.Debug("starting report",
		zap.Stringer("report", kind),
		zap.Strings("files", files),
		zap.String("marker", cfg.Marker))

	gen := report.New(kind, report.Env{
		Files:     files,
		Out:       stdout,
		Analyzer:  a,
		Formatter: formatter,
		OnReport: func(ctx context.Context, rep *output.Report) {
			sendWebhooks(ctx, cfg, opts, rep, stderr, logger)
		},
	})

	return gen.Generate(ctx)
}

// loadConfig reads the config file (or defaults) and applies explicitly set flags on top.
func loadConfig(ctx context.Context, cmd *cobra.Command, opts *ReportOptions) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if opts.ConfigPath != "" {
		cfg, err = config.Load(ctx, opts.ConfigPath)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
	} else {
		cfg, err = config.New(ctx)
		if err != nil {
			return nil, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("report") {
		cfg.Report = opts.Report
	}
	if flags.Changed("output") {
		cfg.Output = opts.Output
	}
	if flags.Changed("marker") {
		cfg.Marker = opts.Marker
	}
	if flags.Changed("collect-timeout") {
		cfg.CollectTimeout = opts.CollectTimeout
	}
	if flags.Changed("worker-timeout") {
		cfg.WorkerTimeout = opts.WorkerTimeout
	}

	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	if opts.WebhookURL != "" {
		if err := config.ValidateTrigger(config.WebhookTrigger(opts.WebhookTrigger)); err != nil {
			return nil, fmt.Errorf("webhook-trigger: %w", err)
		}
	}

	return cfg, nil
}

// sendWebhooks sends the report to all configured webhooks.
// Failures are printed to w but never fail the run.
func sendWebhooks(ctx context.Context, cfg *config.Config, opts *ReportOptions, rep *output.Report, w io.Writer, logger *zap.Logger) {
	webhooks := collectWebhooks(cfg, opts)
	if len(webhooks) == 0 {
		return
	}

	client := webhook.NewClient(webhook.WithLogger(logger))

	for _, wh := range webhooks {
		if !shouldFireWebhook(wh.Trigger, rep.HasErrors()) {
			continue
		}

		resp := client.Send(ctx, rep, webhook.SendOptions{
			URL:     wh.URL,
			Token:   wh.Token,
			Timeout: wh.Timeout,
		})

		name := wh.Name
		if name == "" {
			name = wh.URL
		}

		if resp.Success() {
			fmt.Fprintf(w, "Webhook %s: sent (%d, %s)\n", name, resp.StatusCode, resp.Duration.Round(time.Millisecond))
		} else {
			fmt.Fprintf(w, "Webhook %s: failed (%v)\n", name, resp.Error)
		}
	}
}

// collectWebhooks merges config file webhooks with the CLI webhook.
func collectWebhooks(cfg *config.Config, opts *ReportOptions) []config.WebhookConfig {
	webhooks := make([]config.WebhookConfig, 0, len(cfg.Webhooks)+1)
	webhooks = append(webhooks, cfg.Webhooks...)

	if opts.WebhookURL != "" {
		trigger := config.WebhookTrigger(opts.WebhookTrigger)
		if trigger == "" {
			trigger = config.WebhookTriggerOnErrors
		}

		webhooks = append(webhooks, config.WebhookConfig{
			Name:    "cli",
			URL:     opts.WebhookURL,
			Token:   opts.WebhookToken,
			Trigger: trigger,
			Timeout: config.DefaultWebhookTimeout,
		})
	}

	return webhooks
}

// shouldFireWebhook determines if a webhook should fire based on trigger and error counts.
func shouldFireWebhook(trigger config.WebhookTrigger, hasErrors bool) bool {
	switch trigger {
	case config.WebhookTriggerAlways:
		return true
	case config.WebhookTriggerNever:
		return false
	default:
		return hasErrors
	}
}
