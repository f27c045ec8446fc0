package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/parley"
	"github.com/aretw0/parley/pkg/domain"
)

var validateCmd = &cobra.Command{
	Use:   "validate <config>",
	Short: "Import an agent config and check its graph",
	Long: `Imports the config (format auto-detected), validates the graph structure
and compiles every equation condition. Problems are listed one per line.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		g, err := parley.ImportFile(args[0])
		if err != nil {
			reportProblems(err)
			os.Exit(1)
		}
		if err := parley.Validate(g); err != nil {
			reportProblems(err)
			os.Exit(1)
		}
		fmt.Printf("OK: %d nodes, entry %q, source %q\n", g.Len(), g.Entry(), g.SourceType)

		if unreachable := g.Len() - len(g.Reachable()); unreachable > 0 {
			fmt.Printf("warning: %d node(s) unreachable from the entry node\n", unreachable)
		}
	},
}

func reportProblems(err error) {
	var structural *domain.StructuralError
	if errors.As(err, &structural) {
		fmt.Fprintln(os.Stderr, "invalid graph:")
		for _, p := range structural.Problems {
			fmt.Fprintf(os.Stderr, "  - %s\n", p)
		}
		return
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
