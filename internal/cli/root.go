package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "0.1.0"

// RootCmd is the base command when called without subcommands.
var RootCmd = &cobra.Command{
	Use:     "sleuth",
	Short:   "Hardened HTTP tooling for passive reconnaissance",
	Version: version,
	Long: `Sleuth issues outbound HTTP requests through a hardened client:
URL-safety policy (https enforcement, private-address rejection), jittered
retries of transient network failures, and browser-realistic header spoofing
with per-request user-agent randomization. Built-in lookups cover
certificate-transparency logs (crt.sh) and IP geolocation (ipinfo.io).`,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// Execute runs the root command.
func Execute() error {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	return nil
}

func init() {
	RootCmd.AddCommand(getCmd)
	RootCmd.AddCommand(crtshCmd)
	RootCmd.AddCommand(ipinfoCmd)

	RootCmd.PersistentFlags().Bool("no-color", false, "Disable colored output")
	RootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")
	RootCmd.PersistentFlags().StringP("config", "c", "", "Path to a YAML client profile")
}
