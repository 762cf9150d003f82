package cmd

import (
	"fmt"
	"strings"

	"github.com/jelmer/ognibuild-sub000/internal/config"
	"github.com/jelmer/ognibuild-sub000/internal/deps"
	"github.com/jelmer/ognibuild-sub000/internal/fix"
	"github.com/jelmer/ognibuild-sub000/internal/ui"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// NewFixCmd creates the fix command
func NewFixCmd(cfg *config.Config, log *zerolog.Logger) *cobra.Command {
	var (
		projectDir  string
		scopeName   string
		maxAttempts int
	)

	cmd := &cobra.Command{
		Use:   "fix -- COMMAND [ARG...]",
		Short: "Run a command, fixing missing dependencies until it succeeds",
		Long: `Run the given command in the project directory. When it fails with a
recognizable missing-dependency error, install the dependency and run
the command again, up to the attempt limit.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			scope, err := ParseScope(scopeName)
			if err != nil {
				ui.PrintError("%v", err)
				return err
			}
			if maxAttempts <= 0 {
				maxAttempts = cfg.Resolve.MaxFixAttempts
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
			fixers := []fix.Fixer{
				fix.NewInstallFixer(stack, session, scope, log),
				fix.NewAutoconfFixer(session, log),
			}
			runner := fix.NewCommandBuildRunner(session.Runner, dir, args, log)
			engine := fix.NewEngine(runner, fixers, maxAttempts, log)

			ui.PrintInfo("running %s", strings.Join(args, " "))
			result, err := engine.Run(ctx)
			if err != nil {
				ui.PrintError("%v", err)
				return err
			}

			switch result.Status {
			case fix.StatusDone:
				ui.PrintSuccess("command succeeded after %d fixes", result.Attempts)
				return nil
			case fix.StatusUnidentified:
				ui.PrintError("command failed and the cause was not recognized")
				tail := result.Lines
				if len(tail) > 20 {
					tail = tail[len(tail)-20:]
				}
				ui.PrintList(tail)
				return fmt.Errorf("unidentified failure")
			case fix.StatusPersistentFailure:
				ui.PrintError("cannot fix: %s", result.Problem)
				return fmt.Errorf("persistent failure: %s", result.Problem)
			case fix.StatusFixerLimitReached:
				ui.PrintError("gave up after %d fix attempts, last problem: %s", result.Attempts, result.Problem)
				return fmt.Errorf("fix attempt limit reached")
			default:
				return fmt.Errorf("unexpected engine status %v", result.Status)
			}
		},
	}

	cmd.Flags().StringVarP(&projectDir, "directory", "C", ".", "project directory")
	cmd.Flags().StringVar(&scopeName, "scope", "global", "installation scope: global, user or vendor")
	cmd.Flags().IntVar(&maxAttempts, "max-attempts", 0, "fix attempt limit (0 uses the configured default)")

	return cmd
}
