package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/regkit/taxform"
	"github.com/regkit/taxform/pkg/rulecheck"
)

func checkCmd(global *globalFlags) *cobra.Command {
	sub := &submissionFlags{}
	var (
		endpoint string
		timeout  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "check <industry> <year>",
		Short: "Generate a document and submit it to the rule-validation service",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, logger, err := openRegistry(global)
			if err != nil {
				return err
			}
			s, err := buildSubmission(r, sub, args)
			if err != nil {
				return err
			}
			doc, err := taxform.Generate(s)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			client := rulecheck.New(endpoint)
			result, err := client.Check(ctx, doc)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, m := range result.Messages {
				fmt.Fprintf(out, "%-8s %s\n", m.Severity, m.Message)
			}
			if !result.Valid {
				return fmt.Errorf("rule validation rejected the document")
			}
			logger.Info("document accepted", "messages", len(result.Messages))
			return nil
		},
	}

	sub.register(cmd)
	cmd.Flags().StringVar(&endpoint, "endpoint", "", "Rule-validation service URL (required)")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "Request timeout")
	_ = cmd.MarkFlagRequired("endpoint")

	return cmd
}
