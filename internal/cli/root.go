package cli

import (
	"fmt"

	"github.com/scanctum/scanctum-web/pkg/version"

	"github.com/spf13/cobra"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "scanctum-web",
	Short: "Web front end for the Scanctum security assessment platform",
	Long: `scanctum-web serves the Scanctum dashboard: scan management, live
progress, vulnerability browsing, comparisons, schedules and report
downloads. All data lives in the Scanctum backend API; this server keeps
only sessions.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "config/config.yaml", "Path to the YAML config file")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("scanctum-web %s (commit: %s, built: %s)\n", version.Version, version.Commit, version.BuildTime)
	},
}
