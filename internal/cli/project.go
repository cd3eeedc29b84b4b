package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sdejongh/dircmp/pkg/config"
	"github.com/sdejongh/dircmp/pkg/models"
	"github.com/sdejongh/dircmp/pkg/project"
)

var projectFlags CompareFlags

// NewProjectCommand creates the project command
func NewProjectCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Run or save compare projects",
		Long:  `A project file stores the roots, filters and method of a compare so it can be repeated.`,
	}

	cmd.AddCommand(newProjectRunCommand())
	cmd.AddCommand(newProjectSaveCommand())

	return cmd
}

func newProjectRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run FILE",
		Short: "Compare the roots stored in a project file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			p, err := project.Load(args[0])
			if err != nil {
				return err
			}

			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			applyProject(cmd, cfg, p)
			if err := applyFlagsToConfig(cmd, cfg, &projectFlags); err != nil {
				return err
			}

			paths, err := validateRoots(p.Paths())
			if err != nil {
				return err
			}

			return runJob(ctx, cmd, compareJob{
				paths:      paths,
				cfg:        cfg,
				diffReport: projectFlags.DiffReport,
				diffFormat: projectFlags.DiffFormat,
			})
		},
	}

	addCompareFlags(cmd, &projectFlags)

	return cmd
}

// applyProject layers project settings over the loaded configuration.
// Command-line flags are applied afterwards and win.
func applyProject(cmd *cobra.Command, cfg *config.Config, p *project.Project) {
	cfg.Compare.Recursive = p.Subfolders
	if p.Method != "" {
		cfg.Compare.Method = p.Method
	}
	cfg.Filter.Exclude = append(cfg.Filter.Exclude, p.Exclude...)
	cfg.Filter.Skip = append(cfg.Filter.Skip, p.Skip...)
}

func newProjectSaveCommand() *cobra.Command {
	var (
		exclude   []string
		skip      []string
		noRecurse bool
		method    string
	)

	cmd := &cobra.Command{
		Use:   "save FILE LEFT [MIDDLE] RIGHT",
		Short: "Save roots and filters to a project file",
		Args:  cobra.RangeArgs(3, 4),
		RunE: func(cmd *cobra.Command, args []string) error {
			roots := args[1:]
			p := &project.Project{
				Left:       roots[0],
				Right:      roots[len(roots)-1],
				Exclude:    exclude,
				Skip:       skip,
				Subfolders: !noRecurse,
				Method:     models.CompareMethod(method),
			}
			if len(roots) == 3 {
				p.Middle = roots[1]
			}

			if err := project.Save(p, args[0]); err != nil {
				return err
			}

			if !globalFlags.Quiet {
				fmt.Fprintf(cmd.OutOrStdout(), "Project saved to: %s\n", args[0])
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&exclude, "exclude", []string{}, "glob patterns to exclude")
	cmd.Flags().StringSliceVar(&skip, "skip", []string{}, "glob patterns shown but not compared")
	cmd.Flags().BoolVar(&noRecurse, "no-recurse", false, "compare only the top level of each root")
	cmd.Flags().StringVarP(&method, "method", "m", "", "compare method stored with the project")

	return cmd
}
