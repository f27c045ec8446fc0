package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/parley"
	"github.com/aretw0/parley/internal/importers"
	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/ports"
)

var convertCmd = &cobra.Command{
	Use:   "convert <config>",
	Short: "Convert an agent config to another format",
	Long: `Imports the config (format auto-detected, or forced with --from) and
re-exports it. Formats: ` + strings.Join(parley.ExportFormats(), ", ") + `.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		to, _ := cmd.Flags().GetString("to")
		from, _ := cmd.Flags().GetString("from")
		out, _ := cmd.Flags().GetString("out")
		indent, _ := cmd.Flags().GetBool("indent")

		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		g, err := importBytes(data, from)
		if err != nil {
			return err
		}

		rendered, err := parley.Export(g, to, ports.ExportOptions{Indent: indent})
		if err != nil {
			return err
		}

		if out == "" {
			fmt.Println(rendered)
			return nil
		}
		if err := os.WriteFile(out, []byte(rendered), 0644); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		fmt.Printf("wrote %s (%s)\n", out, to)
		return nil
	},
}

func importBytes(data []byte, from string) (*domain.Graph, error) {
	if from == "" {
		return parley.ImportBytes(data)
	}
	raw, err := importers.DecodeBytes(data)
	if err != nil {
		return nil, err
	}
	return parley.ImportAs(from, raw)
}

func init() {
	rootCmd.AddCommand(convertCmd)

	convertCmd.Flags().String("to", "native", "Target format ("+strings.Join(parley.ExportFormats(), ", ")+")")
	convertCmd.Flags().String("from", "", "Source type, bypassing auto-detection")
	convertCmd.Flags().String("out", "", "Write output to a file instead of stdout")
	convertCmd.Flags().Bool("indent", true, "Pretty-print structured output")
}
