package cmd

import (
	"github.com/spf13/cobra"

	"github.com/rbenhaga/notionclipper/internal/log"
)

var fVerbose bool

func Root() *cobra.Command {
	cmd := cobra.Command{
		Use:           "clipper",
		Short:         "Convert documents between host, canonical and markdown formats",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if fVerbose {
				log.Set()
			}
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			log.Flush()
		},
	}

	pflags := cmd.PersistentFlags()
	pflags.BoolVarP(&fVerbose, "verbose", "v", false, "Log conversion details to stderr.")

	cmd.AddCommand(importCmd())
	cmd.AddCommand(exportCmd())
	cmd.AddCommand(captureCmd())
	cmd.AddCommand(statsCmd())

	return &cmd
}
