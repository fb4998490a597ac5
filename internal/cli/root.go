package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	app       *App
	buildInfo BuildInfo

	rootCmd = &cobra.Command{
		Use:   "streamview",
		Short: "Pooled headless Markdown renderer with a web-view bridge",
		Long: `Streamview hosts streaming Markdown in pooled web-view instances.

The library keeps warm, pre-navigated instances ready so that attaching a
view is instant, bridges page height and link activation back to the host,
and coalesces content updates that arrive before a page is ready.

This CLI drives the same pipeline headlessly:

  streamview render README.md          # render once, print height and HTML
  streamview render --watch NOTES.md   # re-render on every file change
  streamview variants                  # list bundle tiers and availability
  streamview bench                     # compare warm and cold attach latency
  streamview config show               # print the effective configuration`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			switch cmd.Name() {
			case "help", "completion", "version":
				return nil
			}
			var err error
			app, err = NewApp()
			if err != nil {
				return fmt.Errorf("initialize app: %w", err)
			}
			app.BuildInfo = buildInfo
			return nil
		},
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("streamview %s\n", buildInfo.Version)
			fmt.Printf("commit: %s\n", buildInfo.Commit)
			fmt.Printf("built: %s\n", buildInfo.Date)
		},
	}
)

// Execute runs the root command with the given build identification.
func Execute(info BuildInfo) {
	buildInfo = info
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
