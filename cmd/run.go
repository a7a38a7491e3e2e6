package cmd

import (
	"log"

	"github.com/mocha-chaan/Jobhub-bot/jobhub"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run [flags]",
	Short: "Starts the JobHub bot and (optionally) the status API",
	Run: func(cmd *cobra.Command, _ []string) {
		ctx := cmd.Context()
		bot, err := jobhub.New(cfg)
		if err != nil {
			log.Fatalf("error creating jobhub: %s", err.Error())
		}

		if err = bot.Run(ctx); err != nil {
			log.Fatalf("error running jobhub: %s", err.Error())
		}
	},
}

//nolint:gochecknoinits
func init() {
	rootCmd.AddCommand(runCmd)
}
