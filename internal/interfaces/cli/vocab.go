package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
)

func newVocabCommand() *cobra.Command {
	var (
		output string
		upload bool
	)

	cmd := &cobra.Command{
		Use:   "vocab <curated.smi>",
		Short: "Build the token vocabulary from a curated dataset",
		Long: `Vocab tokenizes every molecule in the curated file and writes the
vocabulary artifact: tokens indexed in first-seen order, per-token
frequencies, the largest ring-closure number, and the source reference
(path and content hash) of the exact stream it was built from.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			curated := args[0]
			state := stateFrom(cmd)
			if output == "" {
				output = state.cfg.Vocabulary.Path
			}

			svc, cleanup, err := buildService(cmd.Context(), state, false)
			if err != nil {
				return err
			}
			defer cleanup()

			voc, err := svc.BuildVocabulary(cmd.Context(), curated)
			if err != nil {
				return err
			}
			if err := voc.Save(output); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "vocabulary: %d tokens, max ring closure %d\nwritten to %s\n",
				voc.Len(), voc.MaxRingClosure(), output)

			if upload {
				store, cleanupStore, err := artifactStore(cmd.Context(), state)
				if err != nil {
					return err
				}
				defer cleanupStore()
				object := filepath.Join("vocabularies", filepath.Base(output))
				if err := store.Upload(cmd.Context(), output, object); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "uploaded as %s\n", object)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "vocabulary artifact path (default: vocabulary.path from config)")
	cmd.Flags().BoolVar(&upload, "upload", false, "upload the artifact to the configured object store")
	return cmd
}
