package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/routelog/pkg/config"
	"github.com/ccollicutt/routelog/pkg/report"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <config-file>",
		Short: "Validate a configuration file",
		Long: `Validate a routelog configuration file without analyzing any logs.

Checks:
  - YAML syntax
  - Marker token is set
  - Output format and timeouts
  - Webhook URLs and triggers
  - Report type (warning only)`,
		Args: cobra.ExactArgs(1),
		RunE: runValidate,
	}
}

func runValidate(cmd *cobra.Command, args []string) error {
	configPath := args[0]
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Validating %s...\n", configPath)

	cfg, err := config.Load(ctx, configPath)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	fmt.Fprintf(out, "\nConfiguration valid!\n")
	fmt.Fprintf(out, "  Marker:          %s\n", cfg.Marker)
	fmt.Fprintf(out, "  Output:          %s\n", cfg.Output)
	fmt.Fprintf(out, "  Collect timeout: %s\n", cfg.CollectTimeout)
	fmt.Fprintf(out, "  Worker timeout:  %s\n", cfg.WorkerTimeout)
	fmt.Fprintf(out, "  Webhooks:        %d\n", len(cfg.Webhooks))

	for i, wh := range cfg.Webhooks {
		name := wh.Name
		if name == "" {
			name = wh.URL
		}
		fmt.Fprintf(out, "    %d. %s [%s]\n", i+1, name, wh.Trigger)
	}

	if cfg.Report != "" && report.ParseKind(cfg.Report) == report.KindInvalid {
		fmt.Fprintf(out, "\nWarning: report %q is not a known report type\n", cfg.Report)
	}

	return nil
}
