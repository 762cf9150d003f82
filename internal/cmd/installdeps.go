package cmd

import (
	"fmt"

	"github.com/jelmer/ognibuild-sub000/internal/config"
	"github.com/jelmer/ognibuild-sub000/internal/deps"
	"github.com/jelmer/ognibuild-sub000/internal/installer"
	"github.com/jelmer/ognibuild-sub000/internal/ui"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// NewInstallDepsCmd creates the install-deps command
func NewInstallDepsCmd(cfg *config.Config, log *zerolog.Logger) *cobra.Command {
	var (
		projectDir string
		scopeName  string
		explain    bool
		yes        bool
	)

	cmd := &cobra.Command{
		Use:   "install-deps DEPENDENCY...",
		Short: "Install missing dependencies",
		Long: `Check each dependency spec for presence and install the missing ones
through the installer stack. With --explain, print what would be run
instead of running it.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			scope, err := ParseScope(scopeName)
			if err != nil {
				ui.PrintError("%v", err)
				return err
			}

			requirements := make([]deps.Dependency, 0, len(args))
			for _, arg := range args {
				dep, err := ParseDependency(arg)
				if err != nil {
					ui.PrintError("%v", err)
					return err
				}
				requirements = append(requirements, dep)
			}

			dir, err := resolveProjectDir(projectDir)
			if err != nil {
				ui.PrintError("%v", err)
				return err
			}

			session := deps.NewSession(dir)
			resolver, cleanup, err := newResolver(ctx, cfg, session, log)
			if err != nil {
				ui.PrintError("building searcher: %v", err)
				return fmt.Errorf("build searcher: %w", err)
			}
			defer cleanup()

			stack := newInstallerStack(session, resolver, log)

			if explain {
				explanations, unhandled, err := stack.ExplainSome(ctx, requirements, scope)
				if err != nil {
					return err
				}
				for _, e := range explanations {
					ui.PrintInfo("%s", e)
				}
				for _, dep := range unhandled {
					ui.PrintWarning("no installer handles %s", dep.Key())
				}
				if len(unhandled) > 0 {
					return fmt.Errorf("%d dependencies cannot be installed", len(unhandled))
				}
				return nil
			}

			if !yes {
				specs := make([]string, len(requirements))
				for i, dep := range requirements {
					specs[i] = dep.Key()
				}
				ui.PrintList(specs)
				ok, err := ui.ConfirmPrompt(fmt.Sprintf("Install %d dependencies (%s scope)", len(requirements), scope))
				if err != nil {
					return err
				}
				if !ok {
					ui.PrintInfo("aborted")
					return nil
				}
			}

			if err := installer.InstallMissing(ctx, stack, session, requirements, scope); err != nil {
				ui.PrintError("%v", err)
				return fmt.Errorf("install dependencies: %w", err)
			}

			ui.PrintSuccess("%d dependencies present", len(requirements))
			return nil
		},
	}

	cmd.Flags().StringVarP(&projectDir, "directory", "C", ".", "project directory")
	cmd.Flags().StringVar(&scopeName, "scope", "global", "installation scope: global, user or vendor")
	cmd.Flags().BoolVar(&explain, "explain", false, "print the commands instead of running them")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")

	return cmd
}
