package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sdejongh/dircmp/pkg/config"
	"github.com/sdejongh/dircmp/pkg/models"
)

// validateRoots checks the roots and builds the path set
func validateRoots(paths []string) (models.PathSet, error) {
	if len(paths) < 2 || len(paths) > 3 {
		return models.PathSet{}, fmt.Errorf("expected LEFT [MIDDLE] RIGHT, got %d paths", len(paths))
	}

	ps, err := models.NewPathSet(paths...)
	if err != nil {
		return models.PathSet{}, err
	}
	if err := ps.Validate(); err != nil {
		return models.PathSet{}, err
	}
	return ps, nil
}

// loadConfig loads configuration from file or returns default
func loadConfig() (*config.Config, error) {
	if globalFlags.ConfigFile != "" {
		return config.LoadFromFile(globalFlags.ConfigFile)
	}
	return config.LoadDefault()
}

// applyFlagsToConfig overrides config values with command-line flags.
// Boolean flags only apply when set explicitly.
func applyFlagsToConfig(cmd *cobra.Command, cfg *config.Config, f *CompareFlags) error {
	changed := cmd.Flags().Changed

	if f.Method != "" {
		cfg.Compare.Method = models.CompareMethod(f.Method)
	}
	if f.HashAlgorithm != "" {
		cfg.Compare.HashAlgorithm = f.HashAlgorithm
	}
	if changed("no-recurse") {
		cfg.Compare.Recursive = !f.NoRecurse
	}
	if changed("ignore-name-case") {
		cfg.Compare.CaseSensitive = !f.IgnoreCase
	}
	if changed("expand-unique") {
		cfg.Compare.ExpandUnique = f.ExpandUnique
	}
	if changed("single-threaded") {
		cfg.Compare.SingleThreaded = f.SingleThreaded
	}
	if changed("ignore-eol") {
		cfg.Compare.IgnoreEOL = f.IgnoreEOL
	}
	if changed("ignore-whitespace") {
		cfg.Compare.IgnoreSpace = f.IgnoreSpace
	}
	if changed("ignore-case") {
		cfg.Compare.IgnoreCase = f.IgnoreTextCase
	}

	// Exclude and skip patterns add to the configured ones
	cfg.Filter.Exclude = append(cfg.Filter.Exclude, f.Exclude...)
	cfg.Filter.Skip = append(cfg.Filter.Skip, f.Skip...)

	if changed("read-limit") {
		cfg.Performance.ReadLimit = f.ReadLimit
	}

	if f.Output != "" {
		cfg.Output.Format = f.Output
	}
	if changed("tree") {
		cfg.Output.Tree = f.Tree
	}
	if f.NoProgress {
		cfg.Output.Progress = false
	}

	if f.LogFile != "" {
		cfg.Logging.Enabled = true
		cfg.Logging.File = f.LogFile
	}
	if f.LogFormat != "" {
		cfg.Logging.Format = f.LogFormat
	}
	if f.LogLevel != "" {
		cfg.Logging.Level = f.LogLevel
	}

	// Disable progress in quiet mode
	if globalFlags.Quiet {
		cfg.Output.Progress = false
		cfg.Output.Quiet = true
	}

	// Enable progress in verbose mode
	if globalFlags.Verbose {
		cfg.Output.Progress = true
	}

	return cfg.Validate()
}
