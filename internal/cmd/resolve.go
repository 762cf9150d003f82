package cmd

import (
	"fmt"

	"github.com/jelmer/ognibuild-sub000/internal/config"
	"github.com/jelmer/ognibuild-sub000/internal/deps"
	"github.com/jelmer/ognibuild-sub000/internal/ui"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// NewResolveCmd creates the resolve command
func NewResolveCmd(cfg *config.Config, log *zerolog.Logger) *cobra.Command {
	var (
		projectDir    string
		allCandidates bool
	)

	cmd := &cobra.Command{
		Use:   "resolve DEPENDENCY...",
		Short: "Map abstract dependencies onto Debian packages",
		Long: `Resolve dependency specs such as binary:ninja or pkg-config:zlib>=1.2
against the package archive and print the winning package relation.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

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

			table := tablewriter.NewTable(cmd.OutOrStdout(),
				tablewriter.WithHeader([]string{"Dependency", "Family", "Package"}),
				tablewriter.WithAlignment(tw.MakeAlign(3, tw.AlignLeft)),
				tablewriter.WithSymbols(tw.NewSymbols(tw.StyleNone)),
			)

			failed := 0
			for _, dep := range requirements {
				if allCandidates {
					candidates, err := resolver.Candidates(ctx, dep)
					if err != nil {
						ui.PrintWarning("%s: %v", dep.Key(), err)
						failed++
						continue
					}
					for _, c := range candidates {
						table.Append(dep.Key(), ui.ColorizeFamily(string(dep.Family())), c.Relation.String())
					}
					continue
				}

				relation, err := resolver.ResolveRelation(ctx, dep)
				if err != nil {
					ui.PrintWarning("%s: %v", dep.Key(), err)
					failed++
					continue
				}
				table.Append(dep.Key(), ui.ColorizeFamily(string(dep.Family())), relation.String())
			}

			table.Render()
			if failed > 0 {
				return fmt.Errorf("%d of %d dependencies could not be resolved", failed, len(requirements))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&projectDir, "directory", "C", ".", "project directory for tie-breaking context")
	cmd.Flags().BoolVar(&allCandidates, "all", false, "print every candidate instead of the winner")

	return cmd
}
