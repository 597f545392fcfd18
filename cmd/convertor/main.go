package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/MasakiMu319/External-Convertor/util"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	flagSubscriptionURL string
	flagClientType      string
)

var mainCommand = &cobra.Command{
	Use:     "convertor",
	Short:   "Convert a sing-box subscription into a local config and a Surge external proxy line",
	Version: util.BuildInfo(),
	Run: func(cmd *cobra.Command, args []string) {
		opts := convertOptions{
			subscriptionURL: flagSubscriptionURL,
			clientType:      flagClientType,
			httpClient:      &http.Client{},
			tools:           systemToolchain{},
		}
		if err := runConvert(context.Background(), os.Stdout, opts); err != nil {
			fmt.Println("✖ Error:", err)
			os.Exit(1)
		}
	},
}

func init() {
	mainCommand.Flags().StringVarP(&flagSubscriptionURL, "url", "u", "", "Subscription URL (http or https)")
	mainCommand.Flags().StringVarP(&flagClientType, "client", "c", "sing-box", "Target client type")
	_ = mainCommand.MarkFlagRequired("url")
}

func main() {
	logLevel, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logrus.SetLevel(logLevel)
	logrus.Debugln("[Convertor]", util.BuildInfo())

	if err := mainCommand.Execute(); err != nil {
		os.Exit(1)
	}
}
