package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var compareFlags CompareFlags

// NewCompareCommand creates the compare command
func NewCompareCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare LEFT [MIDDLE] RIGHT",
		Short: "Compare two or three folders or files",
		Long: `Compare folders (or single files) side by side and report every entry
as equal, different, unique to one side, skipped or failed.

Exit codes: 0 identical, 1 differences found, 2 errors, 3 aborted.`,
		Args: cobra.RangeArgs(2, 3),
		RunE: runCompare,
	}

	addCompareFlags(cmd, &compareFlags)

	return cmd
}

func runCompare(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	// Load configuration
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Override config with command-line flags
	if err := applyFlagsToConfig(cmd, cfg, &compareFlags); err != nil {
		return err
	}

	paths, err := validateRoots(args)
	if err != nil {
		return err
	}

	return runJob(ctx, cmd, compareJob{
		paths:      paths,
		cfg:        cfg,
		diffReport: compareFlags.DiffReport,
		diffFormat: compareFlags.DiffFormat,
	})
}
