package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/deppfellow/quiz-api/internal/lib/email"
)

func newEmailCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "email",
		Short: "Email template tools",
	}
	cmd.AddCommand(newEmailPreviewCmd())
	return cmd
}

func newEmailPreviewCmd() *cobra.Command {
	var text bool

	names := make([]string, 0, len(email.Templates))
	for _, t := range email.Templates {
		names = append(names, string(t))
	}

	cmd := &cobra.Command{
		Use:       "preview <template>",
		Short:     "Render a template with sample data to stdout",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: names,
		RunE: func(cmd *cobra.Command, args []string) error {
			renderer, err := email.NewRenderer()
			if err != nil {
				return err
			}

			html, plain, err := renderer.Preview(email.Template(args[0]))
			if err != nil {
				return err
			}

			if text {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), plain)
			} else {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), html)
			}
			return err
		},
	}

	cmd.Flags().BoolVar(&text, "text", false, "print the plain-text part instead of HTML")
	return cmd
}
