package app

import (
	"github.com/spf13/cobra"

	srcapp "github.com/daniilvolkov/pagecache/src/app"
)

func initRun() {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "run",
		Short: "Runs a concurrent pin/unpin/evict workload against the buffer pool",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return srcapp.Run(cmd.Context(), &srcapp.StressEntrypoint{
				ConfigPath: rootCmd.Options.ConfigPath,
			})
		},
	})
}
