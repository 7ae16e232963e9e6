package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/regkit/taxform"
	"github.com/regkit/taxform/registry"
)

type submissionFlags struct {
	entity      string
	period      string
	answersPath string
}

func (f *submissionFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.entity, "entity", "", "Entity identifier (required)")
	cmd.Flags().StringVar(&f.period, "period", "", "Reporting period end date, YYYY-MM-DD (required)")
	cmd.Flags().StringVarP(&f.answersPath, "answers", "a", "", "Answer file (YAML map of field id to value)")
	_ = cmd.MarkFlagRequired("entity")
	_ = cmd.MarkFlagRequired("period")
}

// buildSubmission assembles a submission for <industry> <year> positional
// arguments, resolving the questionnaire through the registry and applying
// every answer from the answer file.
func buildSubmission(r *registry.Registry, flags *submissionFlags, args []string) (*taxform.Submission, error) {
	industry := args[0]
	year, err := strconv.Atoi(args[1])
	if err != nil {
		return nil, fmt.Errorf("invalid year %q: %w", args[1], err)
	}

	period, err := time.Parse("2006-01-02", flags.period)
	if err != nil {
		return nil, fmt.Errorf("invalid period %q: %w", flags.period, err)
	}

	s := taxform.NewSubmission(flags.entity, period, industry, year, r)
	if _, err := s.Questionnaire(); err != nil {
		return nil, err
	}

	if flags.answersPath == "" {
		return s, nil
	}
	answers, err := readAnswers(flags.answersPath)
	if err != nil {
		return nil, err
	}
	for field, raw := range answers {
		if err := s.Set(field, raw); err != nil {
			return nil, fmt.Errorf("answer %q: %w", field, err)
		}
	}
	return s, nil
}

func readAnswers(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read answers %s: %w", path, err)
	}
	var answers map[string]any
	if err := yaml.Unmarshal(data, &answers); err != nil {
		return nil, fmt.Errorf("parse answers %s: %w", path, err)
	}
	return answers, nil
}

func generateCmd(global *globalFlags) *cobra.Command {
	sub := &submissionFlags{}
	var (
		outPath   string
		currency  string
		omitEmpty bool
	)

	cmd := &cobra.Command{
		Use:   "generate <industry> <year>",
		Short: "Generate the XBRL instance document for a submission",
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

			opts := []taxform.GenerateOption{taxform.WithCurrency(currency)}
			if omitEmpty {
				opts = append(opts, taxform.WithOmitEmptyFacts())
			}
			doc, err := taxform.Generate(s, opts...)
			if err != nil {
				return err
			}

			if outPath == "" {
				_, err = cmd.OutOrStdout().Write(doc)
				return err
			}
			if err := os.WriteFile(outPath, doc, 0o644); err != nil {
				return fmt.Errorf("write document %s: %w", outPath, err)
			}
			logger.Info("document written", "path", outPath, "bytes", len(doc))
			return nil
		},
	}

	sub.register(cmd)
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Output file (default stdout)")
	cmd.Flags().StringVar(&currency, "currency", "CAD", "ISO 4217 currency code for monetary facts")
	cmd.Flags().BoolVar(&omitEmpty, "omit-empty", false, "Omit facts for unanswered fields instead of emitting nil facts")

	return cmd
}
