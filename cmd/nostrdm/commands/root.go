package commands

import (
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"nostrdm/internal/app"
)

var (
	appCtx *app.App

	timeout time.Duration
	proxy   string
	verbose bool
)

// Execute runs the CLI and returns the error for main to map onto an exit
// code.
func Execute() error {
	root := &cobra.Command{
		Use:           "nostrdm",
		Short:         "Private direct messages over nostr relays",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// stdout carries results only; diagnostics go to stderr.
			logrus.SetOutput(os.Stderr)
			if verbose {
				logrus.SetLevel(logrus.DebugLevel)
			} else {
				logrus.SetLevel(logrus.WarnLevel)
			}
			appCtx = app.New(app.Config{Timeout: timeout, Proxy: proxy})
		},
	}

	root.PersistentFlags().DurationVar(&timeout, "timeout", 60*time.Second, "per-call relay deadline")
	root.PersistentFlags().StringVar(&proxy, "proxy", "", "SOCKS5 proxy for relay connections (e.g. 127.0.0.1:9050 for Tor)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(keyCmd(), eventCmd(), metadataCmd(), relayListCmd(), dmCmd())
	return root.Execute()
}
