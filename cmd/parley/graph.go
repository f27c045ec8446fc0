package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/parley"
	"github.com/aretw0/parley/pkg/ports"
)

var graphCmd = &cobra.Command{
	Use:   "graph <config>",
	Short: "Render an agent config as a Mermaid diagram",
	Long: `Imports the config and prints a Mermaid flowchart. With --run and the
store flags, the diagram overlays the node trace of a stored test result.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		g, err := parley.ImportFile(args[0])
		if err != nil {
			return err
		}

		opts := ports.ExportOptions{}
		runID, _ := cmd.Flags().GetString("run")
		caseName, _ := cmd.Flags().GetString("case")
		if runID != "" {
			store, err := openStore(cmd)
			if err != nil {
				return err
			}
			run, err := store.Load(cmd.Context(), runID)
			if err != nil {
				return err
			}
			found := false
			for _, res := range run.Results {
				if caseName == "" || res.Name == caseName {
					opts.VisitedNodes = res.NodeTrace
					if len(res.NodeTrace) > 0 {
						opts.CurrentNode = res.NodeTrace[len(res.NodeTrace)-1]
					}
					found = true
					break
				}
			}
			if !found {
				return fmt.Errorf("run %s has no case named %q", runID, caseName)
			}
		}

		diagram, err := parley.Export(g, "mermaid", opts)
		if err != nil {
			return err
		}
		fmt.Println(diagram)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)

	graphCmd.Flags().String("run", "", "Overlay the node trace of a stored run")
	graphCmd.Flags().String("case", "", "Test case within the run (default: first)")
	addStoreFlags(graphCmd)
}
