package cli

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/chemforge/smiclean/pkg/errors"
)

func newFilterCommand() *cobra.Command {
	var (
		output     string
		dedup      bool
		reportPath string
	)

	cmd := &cobra.Command{
		Use:   "filter <input.smi>",
		Short: "Curate a raw SMILES dataset",
		Long: `Filter reads a raw SMILES file (one molecule per line, optional name after
whitespace), standardizes each structure, evaluates the configured criteria
in fixed order, and writes the accepted molecules to the curated output.
Rejections are tallied per criterion in the run report.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := args[0]
			if output == "" {
				output = defaultOutputPath(input)
			}

			state := stateFrom(cmd)
			svc, cleanup, err := buildService(cmd.Context(), state, dedup)
			if err != nil {
				return err
			}
			defer cleanup()

			report, err := svc.Run(cmd.Context(), input, output)
			if err != nil {
				return err
			}
			report.Render(cmd.OutOrStdout())

			if reportPath != "" {
				data, err := json.MarshalIndent(report, "", "  ")
				if err != nil {
					return errors.Wrap(err, errors.ErrCodeInternal, "cannot encode run report")
				}
				if err := os.WriteFile(reportPath, data, 0o644); err != nil {
					return errors.Wrap(err, errors.ErrCodeStorageError, "cannot write run report")
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "curated output path (default: <input>.curated.smi)")
	cmd.Flags().BoolVar(&dedup, "dedup", true, "drop molecules whose standardized SMILES was already accepted")
	cmd.Flags().StringVar(&reportPath, "report", "", "also write the run report as JSON to this path")
	return cmd
}

// defaultOutputPath derives the curated path from the input name, keeping
// the file next to its source.
func defaultOutputPath(input string) string {
	base := strings.TrimSuffix(input, ".smi")
	base = strings.TrimSuffix(base, ".txt")
	return base + ".curated.smi"
}
