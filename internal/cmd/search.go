package cmd

import (
	"fmt"

	"github.com/jelmer/ognibuild-sub000/internal/config"
	"github.com/jelmer/ognibuild-sub000/internal/contents"
	"github.com/jelmer/ognibuild-sub000/internal/deps"
	"github.com/jelmer/ognibuild-sub000/internal/ui"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// NewSearchCmd creates the search command
func NewSearchCmd(cfg *config.Config, log *zerolog.Logger) *cobra.Command {
	var (
		regex           bool
		caseInsensitive bool
		filter          string
	)

	cmd := &cobra.Command{
		Use:   "search PATH",
		Short: "Find the packages that ship a file",
		Long: `Search the contents index for the packages shipping the given path.
PATH is an exact path by default; with --regexp it is a pattern matched
against whole paths.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			session := deps.NewSession(".")

			searcher, err := newSearcher(ctx, cfg, session, log)
			if err != nil {
				ui.PrintError("building searcher: %v", err)
				return fmt.Errorf("build searcher: %w", err)
			}

			packages, err := searcher.Search(ctx, args[0], contents.SearchOptions{
				Regex:           regex,
				CaseInsensitive: caseInsensitive,
			})
			if err != nil {
				ui.PrintError("search failed: %v", err)
				return fmt.Errorf("search: %w", err)
			}

			if filter != "" {
				packages = ui.FilterFuzzy(filter, packages)
			}

			if len(packages) == 0 {
				ui.PrintWarning("no package ships %s", args[0])
				return nil
			}

			table := tablewriter.NewTable(cmd.OutOrStdout(),
				tablewriter.WithHeader([]string{"Package"}),
				tablewriter.WithAlignment(tw.MakeAlign(1, tw.AlignLeft)),
				tablewriter.WithSymbols(tw.NewSymbols(tw.StyleNone)),
			)
			for _, pkg := range packages {
				table.Append(pkg)
			}
			table.Render()
			return nil
		},
	}

	cmd.Flags().BoolVar(&regex, "regexp", false, "treat PATH as a regular expression")
	cmd.Flags().BoolVarP(&caseInsensitive, "ignore-case", "i", false, "match case-insensitively")
	cmd.Flags().StringVar(&filter, "filter", "", "fuzzy-filter the package list")

	return cmd
}
