package cli

import (
	"github.com/spf13/cobra"
)

// GlobalFlags holds global flag values
type GlobalFlags struct {
	ConfigFile string
	Verbose    bool
	Quiet      bool
}

var globalFlags GlobalFlags

// AddGlobalFlags adds global flags to the root command
func AddGlobalFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(
		&globalFlags.ConfigFile,
		"config",
		"",
		"config file (default is $HOME/.config/dircmp/config.yaml)",
	)
	cmd.PersistentFlags().BoolVarP(
		&globalFlags.Verbose,
		"verbose",
		"v",
		false,
		"verbose output",
	)
	cmd.PersistentFlags().BoolVarP(
		&globalFlags.Quiet,
		"quiet",
		"q",
		false,
		"suppress non-error output",
	)
}

// GetGlobalFlags returns the global flags
func GetGlobalFlags() *GlobalFlags {
	return &globalFlags
}

// CompareFlags holds the flags shared by compare and project run
type CompareFlags struct {
	Method         string
	HashAlgorithm  string
	NoRecurse      bool
	IgnoreCase     bool
	ExpandUnique   bool
	SingleThreaded bool
	IgnoreEOL      bool
	IgnoreSpace    bool
	IgnoreTextCase bool
	Exclude        []string
	Skip           []string
	ReadLimit      int64
	Output         string
	Tree           bool
	NoProgress     bool
	DiffReport     string
	DiffFormat     string
	// Logging flags
	LogFile   string
	LogFormat string
	LogLevel  string
}

// addCompareFlags registers the compare flags on cmd
func addCompareFlags(cmd *cobra.Command, f *CompareFlags) {
	cmd.Flags().StringVarP(&f.Method, "method", "m", "", "compare method: content, quick, hash, date, datesize, size")
	cmd.Flags().StringVar(&f.HashAlgorithm, "hash", "", "hash algorithm for the hash method: sha256, md5")
	cmd.Flags().BoolVar(&f.NoRecurse, "no-recurse", false, "compare only the top level of each root")
	cmd.Flags().BoolVarP(&f.IgnoreCase, "ignore-name-case", "i", false, "match file names case-insensitively")
	cmd.Flags().BoolVar(&f.ExpandUnique, "expand-unique", false, "list the contents of folders present on only some sides")
	cmd.Flags().BoolVar(&f.SingleThreaded, "single-threaded", false, "collect fully before comparing")
	cmd.Flags().BoolVar(&f.IgnoreEOL, "ignore-eol", false, "treat CRLF, CR and LF line endings as equal")
	cmd.Flags().BoolVar(&f.IgnoreSpace, "ignore-whitespace", false, "ignore whitespace inside lines")
	cmd.Flags().BoolVar(&f.IgnoreTextCase, "ignore-case", false, "ignore letter case inside lines")
	cmd.Flags().StringSliceVar(&f.Exclude, "exclude", []string{}, "glob patterns to exclude")
	cmd.Flags().StringSliceVar(&f.Skip, "skip", []string{}, "glob patterns shown but not compared")
	cmd.Flags().Int64Var(&f.ReadLimit, "read-limit", 0, "throttle comparison reads in bytes per second (0 = unlimited)")
	cmd.Flags().StringVarP(&f.Output, "output", "o", "", "output format: human, json")
	cmd.Flags().BoolVar(&f.Tree, "tree", false, "print every item, not only differences")
	cmd.Flags().BoolVar(&f.NoProgress, "no-progress", false, "disable the progress bar")
	cmd.Flags().StringVar(&f.DiffReport, "diff-report", "", "write differences report to file")
	cmd.Flags().StringVar(&f.DiffFormat, "diff-format", "human", "differences report format: human, json")

	cmd.Flags().StringVar(&f.LogFile, "log-file", "", "write logs to file (enables logging)")
	cmd.Flags().StringVar(&f.LogFormat, "log-format", "", "log format: text, json")
	cmd.Flags().StringVar(&f.LogLevel, "log-level", "", "log level: debug, info, warn, error")
}
