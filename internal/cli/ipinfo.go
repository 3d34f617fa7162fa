package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gosleuth/sleuth/internal/httpclient"
	"github.com/gosleuth/sleuth/internal/output"
	"github.com/gosleuth/sleuth/pkg/ipinfo"
)

var ipinfoCmd = &cobra.Command{
	Use:   "ipinfo IP [IP...]",
	Short: "Look up IP geolocation records",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		verbose, _ := cmd.Flags().GetBool("verbose")
		noColor, _ := cmd.Flags().GetBool("no-color")
		configPath, _ := cmd.Flags().GetString("config")
		token, _ := cmd.Flags().GetString("token")

		formatter := output.NewFormatter(verbose, noColor)

		clientOptions := []ipinfo.Option{}
		if token != "" {
			clientOptions = append(clientOptions, ipinfo.WithToken(token))
		}
		options, err := profileOptions(configPath)
		if err != nil {
			return err
		}
		if len(options) > 0 {
			hc := httpclient.NewClient(options...)
			defer hc.Close()
			clientOptions = append(clientOptions, ipinfo.WithHTTPClient(hc))
		}

		client := ipinfo.New(clientOptions...)
		defer client.Close()

		records, err := client.Gather(context.Background(), args...)
		if err != nil {
			fmt.Fprint(os.Stderr, formatter.FormatError(err))
			return err
		}

		for _, ip := range args {
			record, ok := records[ip]
			if !ok {
				continue
			}
			fmt.Print(formatter.FormatList(record.IP, nil))
			fmt.Print(formatter.FormatKV([][2]string{
				{"city", record.City},
				{"country", record.Country},
				{"postal", record.Postal},
				{"org", record.Org},
				{"location", record.Location},
				{"timezone", record.Timezone},
			}))
		}
		return nil
	},
}

func init() {
	ipinfoCmd.Flags().String("token", "", "ipinfo.io API token")
}
