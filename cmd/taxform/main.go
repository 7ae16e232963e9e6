// Package main provides the taxform binary entry point.
// Taxform loads regulator taxonomies, fills submissions from answer files,
// validates them, and generates XBRL instance documents.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/regkit/taxform/registry"
)

const (
	Version = "0.1.0"
	appName = "taxform"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type globalFlags struct {
	configPath string
	logLevel   string
}

func rootCmd() *cobra.Command {
	flags := &globalFlags{}

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Regulatory taxonomy toolkit",
		Long: `Taxform works with regulator-published taxonomy packages: an XSD
schema, label linkbases, questionnaire structure, and gating rules.

It can list registered taxonomies, validate an answer file against a
questionnaire, generate the XBRL instance document, and submit the
document to an external rule-validation service.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "taxonomies.yaml", "Registry config file (YAML)")
	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	cmd.AddCommand(
		generateCmd(flags),
		validateCmd(flags),
		checkCmd(flags),
		yearsCmd(flags),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Printf("%s version %s\n", appName, Version)
			},
		},
	)

	return cmd
}

func newLogger(logLevel string) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func openRegistry(flags *globalFlags) (*registry.Registry, *slog.Logger, error) {
	logger := newLogger(flags.logLevel)
	slog.SetDefault(logger)

	r, err := registry.LoadConfig(flags.configPath, logger)
	if err != nil {
		return nil, nil, err
	}
	return r, logger, nil
}

func yearsCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "years <industry>",
		Short: "List taxonomy years registered for an industry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, _, err := openRegistry(flags)
			if err != nil {
				return err
			}
			industry := args[0]
			if !r.Registered(industry) {
				return fmt.Errorf("unknown industry %q", industry)
			}
			for _, y := range r.SupportedYears(industry) {
				fmt.Fprintln(cmd.OutOrStdout(), y)
			}
			return nil
		},
	}
}
