package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/atlas/internal/config"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "atlas",
	Short: "Live dependency and history map of a source repository",
	Long: `Atlas scans a repository, resolves file-level imports, mines git history
for churn and co-change, ranks files by centrality and streams a live 3D
force-directed layout of the result to a browser over WebSocket.`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.DefaultPath, "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
