package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/aretw0/parley"
	"github.com/aretw0/parley/internal/model"
	"github.com/aretw0/parley/pkg/suite"
)

var runCmd = &cobra.Command{
	Use:   "run <config>",
	Short: "Run a test suite against an agent config",
	Long: `Imports the agent config, loads the YAML test suite and executes every
test case: a simulated caller talks to the agent, then judges score the
transcript. The model endpoint must speak the OpenAI chat-completions
format; the API key is read from PARLEY_API_KEY (or OPENAI_API_KEY).`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger(cmd)

		suitePath, _ := cmd.Flags().GetString("suite")
		data, err := os.ReadFile(suitePath)
		if err != nil {
			return fmt.Errorf("failed to read suite: %w", err)
		}
		sf, err := parley.LoadSuite(data)
		if err != nil {
			return err
		}

		g, err := parley.ImportFile(args[0])
		if err != nil {
			return err
		}

		baseURL, _ := cmd.Flags().GetString("model-url")
		modelName, _ := cmd.Flags().GetString("model")
		apiKey := os.Getenv("PARLEY_API_KEY")
		if apiKey == "" {
			apiKey = os.Getenv("OPENAI_API_KEY")
		}
		client := model.New(baseURL, apiKey, modelName)

		concurrency, _ := cmd.Flags().GetInt("concurrency")
		timeout, _ := cmd.Flags().GetDuration("timeout")
		opts := []suite.Option{
			suite.WithConcurrency(concurrency),
			suite.WithLogger(logger),
			suite.WithMetrics(suite.NewMetrics(prometheus.NewRegistry())),
		}
		if timeout > 0 {
			opts = append(opts, suite.WithTimeout(timeout))
		}
		if sf.Threshold > 0 {
			opts = append(opts, suite.WithThreshold(sf.Threshold))
		}

		run, err := parley.Run(cmd.Context(), client, g, sf.Tests, opts...)
		if err != nil {
			return err
		}

		if save, _ := cmd.Flags().GetBool("save"); save {
			store, err := openStore(cmd)
			if err != nil {
				return err
			}
			if err := store.Save(cmd.Context(), run); err != nil {
				return fmt.Errorf("failed to save run: %w", err)
			}
			logger.Info("run saved", "run_id", run.ID)
		}

		if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(run); err != nil {
				return err
			}
		} else {
			printReport(run, sf.Name)
		}

		if !run.OK() {
			os.Exit(1)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String("suite", "parley.yaml", "YAML test suite file")
	runCmd.Flags().String("model-url", "https://api.openai.com/v1", "OpenAI-compatible API base URL")
	runCmd.Flags().String("model", "gpt-4o-mini", "Model name")
	runCmd.Flags().Int("concurrency", suite.DefaultConcurrency, "Concurrent test cases")
	runCmd.Flags().Duration("timeout", 10*time.Minute, "Run-level timeout (0 to disable)")
	runCmd.Flags().Bool("save", false, "Persist the run to the configured store")
	runCmd.Flags().Bool("json", false, "Print the raw run JSON instead of a report")
	addStoreFlags(runCmd)
}
