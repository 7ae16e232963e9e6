package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/regkit/taxform"
)

func validateCmd(global *globalFlags) *cobra.Command {
	sub := &submissionFlags{}

	cmd := &cobra.Command{
		Use:   "validate <industry> <year>",
		Short: "Validate an answer file against the questionnaire",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, _, err := openRegistry(global)
			if err != nil {
				return err
			}
			s, err := buildSubmission(r, sub, args)
			if err != nil {
				return err
			}

			result, err := taxform.Validate(s)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, f := range result.Errors() {
				fmt.Fprintf(out, "error   %-10s %-8s %s\n", f.Field, f.Check, f.Message)
			}
			for _, f := range result.Warnings() {
				fmt.Fprintf(out, "warning %-10s %-8s %s\n", f.Field, f.Check, f.Message)
			}

			answered, visible, err := s.Progress()
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "answered %d of %d visible fields\n", answered, visible)

			if !result.Valid() {
				return fmt.Errorf("validation failed with %d error(s)", len(result.Errors()))
			}
			return nil
		},
	}

	sub.register(cmd)
	return cmd
}
