package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gosleuth/sleuth/internal/httpclient"
	"github.com/gosleuth/sleuth/internal/output"
	"github.com/gosleuth/sleuth/pkg/crtsh"
)

var crtshCmd = &cobra.Command{
	Use:   "crtsh DOMAIN [DOMAIN...]",
	Short: "Discover subdomains via certificate-transparency logs",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		verbose, _ := cmd.Flags().GetBool("verbose")
		noColor, _ := cmd.Flags().GetBool("no-color")
		configPath, _ := cmd.Flags().GetString("config")

		formatter := output.NewFormatter(verbose, noColor)

		var clientOptions []crtsh.Option
		options, err := profileOptions(configPath)
		if err != nil {
			return err
		}
		if len(options) > 0 {
			hc := httpclient.NewClient(options...)
			defer hc.Close()
			clientOptions = append(clientOptions, crtsh.WithHTTPClient(hc))
		}

		client := crtsh.New(clientOptions...)
		defer client.Close()

		results, err := client.Gather(context.Background(), args...)
		if err != nil {
			fmt.Fprint(os.Stderr, formatter.FormatError(err))
			return err
		}

		for _, domain := range args {
			result, ok := results[domain]
			if !ok {
				continue
			}
			label := fmt.Sprintf("%s (%d subdomains)", result.Domain, result.Total)
			fmt.Print(formatter.FormatList(label, result.Subdomains))
		}
		return nil
	},
}
