// Package main provides the CLI entry point for IntentFlow, the intent-routed
// customer service pipeline.
//
// # Basic Usage
//
// Start the HTTP server:
//
//	intentflow serve --config intentflow.yaml
//
// Chat from the terminal:
//
//	intentflow chat --user demo
//
// Run the evaluation suite:
//
//	intentflow evaluate --judge
//
// # Environment Variables
//
//   - OPENAI_API_KEY: OpenAI API key (model provider "openai")
//   - ANTHROPIC_API_KEY: Anthropic API key (model provider "anthropic")
//
// Without provider credentials every command still works on the rule-based
// fallback path.
package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hupe1980/intentflow"
	"github.com/hupe1980/intentflow/config"
	"github.com/hupe1980/intentflow/evaluation"
	"github.com/hupe1980/intentflow/logging"
)

var version = "dev"

func main() {
	if err := buildRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func buildRootCmd() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:          "intentflow",
		Short:        "IntentFlow - intent-routed customer service pipeline",
		Long:         "IntentFlow classifies customer queries by intent and routes them to\nspecialist responders, degrading to deterministic fallbacks when the\ngenerative provider is unavailable.",
		Version:      version,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML config file")

	rootCmd.AddCommand(
		buildServeCmd(&configPath),
		buildChatCmd(&configPath),
		buildEvaluateCmd(&configPath),
	)
	return rootCmd
}

func newIntentFlow(configPath string, logger logging.Logger) (*intentflow.IntentFlow, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	return intentflow.New(func(o *intentflow.Options) {
		o.Config = cfg
		o.Logger = logger
	})
}

func buildServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.NewSlogLogger(logging.LogLevelInfo, "json", false)
			f, err := newIntentFlow(*configPath, logger)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return f.Serve(ctx)
		},
	}
}

func buildChatCmd(configPath *string) *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat interactively from the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := newIntentFlow(*configPath, logging.NoOpLogger{})
			if err != nil {
				return err
			}

			fmt.Println("IntentFlow chat. Type 'quit' to exit.")
			scanner := bufio.NewScanner(cmd.InOrStdin())
			for {
				fmt.Print("> ")
				if !scanner.Scan() {
					return scanner.Err()
				}
				line := strings.TrimSpace(scanner.Text())
				if line == "" {
					continue
				}
				if line == "quit" || line == "exit" {
					return nil
				}

				resp, err := f.ProcessQuery(cmd.Context(), userID, line, nil)
				if err != nil {
					return err
				}
				fmt.Printf("[%s | %.2f | %s]\n%s\n\n", resp.Intent, resp.Confidence, resp.AgentUsed, resp.Response)
			}
		},
	}
	cmd.Flags().StringVar(&userID, "user", "cli", "User id for conversation memory")
	return cmd
}

func buildEvaluateCmd(configPath *string) *cobra.Command {
	var (
		casesPath string
		withJudge bool
	)

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Run the evaluation suite and print the report as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := newIntentFlow(*configPath, logging.NoOpLogger{})
			if err != nil {
				return err
			}

			cases, err := evaluation.LoadTestCases(casesPath)
			if err != nil {
				return err
			}

			runner := f.EvaluationRunner(func(o *evaluation.RunnerOptions) {
				o.Cases = cases
				if withJudge {
					o.Judge = evaluation.NewJudge(f.Model())
				}
			})
			report, err := runner.Run(cmd.Context())
			if err != nil {
				return err
			}

			out, err := json.MarshalIndent(report, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
	cmd.Flags().StringVar(&casesPath, "cases", "", "Path to a JSON file of test cases")
	cmd.Flags().BoolVar(&withJudge, "judge", false, "Score response quality with the model judge")
	return cmd
}
