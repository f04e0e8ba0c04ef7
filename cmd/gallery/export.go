package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/saturnino-fabrica-de-software/pea/internal/gallery"
)

var exportCmd = &cobra.Command{
	Use:   "export <manifest.yaml>",
	Short: "Write the stored gallery to a manifest",
	Long: `export writes every stored entry with its normalized vector. The
resulting manifest can be served directly with GALLERY_SOURCE=manifest.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		entries, err := repo.List(cmd.Context())
		if err != nil {
			return err
		}

		if err := gallery.WriteManifest(args[0], gallery.ManifestFromEntries(entries)); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Exported %d entries to %s\n", len(entries), args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
}
