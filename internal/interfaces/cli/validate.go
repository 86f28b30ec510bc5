package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newValidateCommand() *cobra.Command {
	var vocabPath string

	cmd := &cobra.Command{
		Use:   "validate <curated.smi>",
		Short: "Check a curated stream against its vocabulary",
		Long: `Validate confirms that the curated file is the exact stream the
vocabulary artifact was built from (path and content hash) and that the
vocabulary covers every token in it.  Any mismatch fails before a
downstream consumer would read a single molecule.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			state := stateFrom(cmd)
			if vocabPath == "" {
				vocabPath = state.cfg.Vocabulary.Path
			}

			svc, cleanup, err := buildService(cmd.Context(), state, false)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := svc.Validate(cmd.Context(), args[0], vocabPath); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "stream matches vocabulary")
			return nil
		},
	}

	cmd.Flags().StringVar(&vocabPath, "vocab", "", "vocabulary artifact path (default: vocabulary.path from config)")
	return cmd
}
