// Command quiz runs the quiz API and its background worker.
//
//	quiz serve --migrate --seed        HTTP API
//	quiz worker                        email delivery and question import
//	quiz migrate [--to N | --status]   apply or inspect database migrations
//	quiz seed                          insert fixture data (not in production)
//	quiz email preview <template>      render an email template
package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "quiz",
		Short:         "Quiz management API",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.AddCommand(
		newServeCmd(),
		newWorkerCmd(),
		newMigrateCmd(),
		newSeedCmd(),
		newEmailCmd(),
	)

	return root
}
