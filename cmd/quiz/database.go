package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/deppfellow/quiz-api/internal/database"
)

func newMigrateCmd() *cobra.Command {
	var (
		target int32
		status bool
	)

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Long: "Apply pending database migrations. --to rolls forward or back to a given\n" +
			"version and --status only prints the applied and latest versions.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := bootstrap()
			if err != nil {
				return err
			}
			defer a.close()

			if status {
				st, err := database.Status(cmd.Context(), a.cfg)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "current: %d\nlatest:  %d\npending: %d\n", st.Current, st.Latest, st.Pending())
				return nil
			}

			return database.MigrateTo(cmd.Context(), &a.logger, a.cfg, target)
		},
	}

	cmd.Flags().Int32Var(&target, "to", -1, "target schema version (default latest)")
	cmd.Flags().BoolVar(&status, "status", false, "print schema versions and exit")

	return cmd
}

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert fixture categories and accounts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := bootstrap()
			if err != nil {
				return err
			}
			defer a.close()

			db, err := database.New(a.cfg, &a.logger, a.loggerService)
			if err != nil {
				return err
			}
			defer db.Close()

			return database.Seed(cmd.Context(), db.Pool, &a.logger, a.cfg)
		},
	}
}
