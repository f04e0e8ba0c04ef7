package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/saturnino-fabrica-de-software/pea/internal/domain"
	"github.com/saturnino-fabrica-de-software/pea/internal/gallery"
	"github.com/saturnino-fabrica-de-software/pea/internal/repository"
)

var importReplace bool

var importCmd = &cobra.Command{
	Use:   "import <manifest.yaml>",
	Short: "Normalize a manifest and insert its entries",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := normalizer()
		if err != nil {
			return err
		}

		m, err := gallery.ReadManifest(args[0])
		if err != nil {
			return err
		}
		entries, err := m.Resolve(n)
		if err != nil {
			return err
		}

		bar := progressbar.NewOptions(len(entries),
			progressbar.OptionSetDescription("Importing paintings"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowCount(),
			progressbar.OptionShowElapsedTimeOnFinish(),
		)

		stats, err := importEntries(cmd.Context(), repo, entries, importReplace, bar)
		_ = bar.Finish()
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "\nInserted %d, skipped %d duplicates, removed %d existing\n",
			stats.Inserted, stats.Duplicates, stats.Removed)
		return nil
	},
}

func init() {
	importCmd.Flags().BoolVar(&importReplace, "replace", false, "Delete every existing entry before importing")
	rootCmd.AddCommand(importCmd)
}

type importStats struct {
	Inserted   int
	Duplicates int
	Removed    int64
}

// importEntries inserts in manifest order, which is the tie-break order of
// the index. Duplicates (same painting and face) are skipped.
func importEntries(ctx context.Context, repo repository.GalleryRepositoryInterface, entries []domain.GalleryEntry, replace bool, progress io.Writer) (importStats, error) {
	var stats importStats

	if replace {
		removed, err := repo.DeleteAll(ctx)
		if err != nil {
			return stats, err
		}
		stats.Removed = removed
	}

	for i := range entries {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		err := repo.Insert(ctx, &entries[i])
		switch {
		case errors.Is(err, repository.ErrDuplicateEntry):
			stats.Duplicates++
		case err != nil:
			return stats, fmt.Errorf("import %s: %w", entries[i].PaintingID, err)
		default:
			stats.Inserted++
		}

		if progress != nil {
			_, _ = progress.Write([]byte{'.'})
		}
	}

	return stats, nil
}
