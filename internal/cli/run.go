package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sdejongh/dircmp/pkg/compare"
	"github.com/sdejongh/dircmp/pkg/config"
	"github.com/sdejongh/dircmp/pkg/engine"
	"github.com/sdejongh/dircmp/pkg/filter"
	"github.com/sdejongh/dircmp/pkg/logging"
	"github.com/sdejongh/dircmp/pkg/models"
	"github.com/sdejongh/dircmp/pkg/output"
	"github.com/sdejongh/dircmp/pkg/ratelimit"
)

// ExitError carries a non-zero process exit code out of a command
type ExitError struct {
	Code   int
	Status models.CompareStatus
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("compare finished with status %s", e.Status)
}

// compareJob is one fully configured compare invocation
type compareJob struct {
	paths      models.PathSet
	cfg        *config.Config
	diffReport string
	diffFormat string
}

// runJob runs a compare, writes its output and returns an ExitError for
// any status other than identical
func runJob(ctx context.Context, cmd *cobra.Command, job compareJob) error {
	cfg := job.cfg

	comparer, err := buildComparer(cfg)
	if err != nil {
		return err
	}

	logger, err := createLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Close()

	cc, err := engine.NewLocalContext(job.paths, buildFilter(cfg.Filter))
	if err != nil {
		return err
	}
	defer cc.Close()
	cc.CaseSensitive = cfg.Compare.CaseSensitive
	cc.ExpandUnique = cfg.Compare.ExpandUnique

	formatter, err := output.New(cfg.Output.Format, output.Options{Tree: cfg.Output.Tree, Quiet: cfg.Output.Quiet})
	if err != nil {
		return err
	}
	stdout := cmd.OutOrStdout()
	if err := formatter.Start(stdout, job.paths, cfg.Compare.Method); err != nil {
		return err
	}

	coord := engine.NewCoordinator(comparer, logger, nil, engine.Options{
		SingleThreaded: cfg.Compare.SingleThreaded,
		Method:         cfg.Compare.Method,
	})
	h, err := coord.Run(ctx, cc, engine.RunOptions{Recursive: cfg.Compare.Recursive})
	if err != nil {
		formatter.Error(err)
		return err
	}

	stop := abortOnSignal(h)
	defer stop()

	watchProgress(cmd.ErrOrStderr(), cfg, formatter, h)
	if err := h.Wait(ctx); err != nil {
		return err
	}

	report := h.Report()
	if err := formatter.Complete(report); err != nil {
		return err
	}

	if job.diffReport != "" {
		if err := output.WriteDifferencesReport(report, job.diffReport, job.diffFormat); err != nil {
			return fmt.Errorf("failed to write differences report: %w", err)
		}
	}

	if code := report.Status.ExitCode(); code != 0 {
		return &ExitError{Code: code, Status: report.Status}
	}
	return nil
}

// watchProgress blocks until the run completes, feeding live counters to
// a progress bar on terminals and to the formatter otherwise
func watchProgress(stderr io.Writer, cfg *config.Config, formatter output.Formatter, h *engine.RunHandle) {
	switch {
	case cfg.Output.Quiet || cfg.Output.Format == "json":
		<-h.Done()
	case cfg.Output.Progress && output.IsTerminal(stderr):
		output.NewProgressBar(stderr).Watch(h.Done(), h.Stats)
	default:
		output.Poll(h.Done(), 250*time.Millisecond, h.Stats, func(snap models.StatsSnapshot) {
			formatter.Progress(snap)
		})
	}
}

// abortOnSignal aborts the run on SIGINT or SIGTERM
func abortOnSignal(h *engine.RunHandle) (stop func()) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	quit := make(chan struct{})
	go func() {
		select {
		case <-sigCh:
			h.Abort()
		case <-h.Done():
		case <-quit:
		}
	}()

	return func() {
		signal.Stop(sigCh)
		close(quit)
	}
}

// buildComparer creates the content comparer for the configured method
func buildComparer(cfg *config.Config) (compare.ContentComparer, error) {
	opts := compare.Options{
		BufferSize:    cfg.Performance.BufferSize,
		HashAlgorithm: cfg.Compare.HashAlgorithm,
		TimeTolerance: time.Duration(cfg.Compare.TimeToleranceMS) * time.Millisecond,
		Text: compare.TextOptions{
			IgnoreEOL:        cfg.Compare.IgnoreEOL,
			IgnoreWhitespace: cfg.Compare.IgnoreSpace,
			IgnoreCase:       cfg.Compare.IgnoreCase,
			MaxSize:          cfg.Performance.MaxTextSize,
		},
	}
	if limiter := ratelimit.NewLimiter(cfg.Performance.ReadLimit); limiter != nil {
		opts.ReaderWrapper = limiter.Wrap
	}
	return compare.New(cfg.Compare.Method, opts)
}

// buildFilter creates the walk filter from the configured patterns
func buildFilter(fc config.FilterConfig) filter.Filter {
	g := filter.NewGlob(fc.Exclude, fc.Skip)
	g.NoRecurse = fc.NoRecurse
	return g
}

// createLogger creates a logger based on configuration
func createLogger(lc config.LoggingConfig) (logging.Logger, error) {
	if !lc.Enabled {
		return logging.NewNullLogger(), nil
	}

	format := logging.FormatText
	if lc.Format == "json" {
		format = logging.FormatJSON
	}
	level := logging.ParseLevel(lc.Level)

	if lc.File == "" {
		return logging.NewWriterLogger(os.Stderr, format, level), nil
	}

	return logging.NewFileLogger(logging.FileLoggerConfig{
		Path:       lc.File,
		Format:     format,
		Level:      level,
		MaxSizeMB:  lc.MaxSizeMB,
		MaxBackups: lc.MaxBackups,
		MaxAgeDays: lc.MaxAgeDays,
		Compress:   lc.Compress,
	})
}
