package cmd

import (
	"github.com/jelmer/ognibuild-sub000/internal/config"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command
func NewRootCmd(cfg *config.Config, log *zerolog.Logger, version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "ognibuild",
		Short:        "Detect and install missing build dependencies",
		Long:         `Runs build commands, diagnoses their failures as missing dependencies, and resolves those against the Debian archive.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().BoolVar(&cfg.Resolve.NoCache, "no-cache", cfg.Resolve.NoCache, "skip the resolution cache")

	// Add subcommands
	cmd.AddCommand(NewResolveCmd(cfg, log))
	cmd.AddCommand(NewInstallDepsCmd(cfg, log))
	cmd.AddCommand(NewSearchCmd(cfg, log))
	cmd.AddCommand(NewFixCmd(cfg, log))
	cmd.AddCommand(NewVersionCmd(version))

	return cmd
}
