package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/saturnino-fabrica-de-software/pea/internal/domain"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show how many paintings each emotion category holds",
	RunE: func(cmd *cobra.Command, args []string) error {
		counts, err := repo.CountByEmotion(cmd.Context())
		if err != nil {
			return err
		}
		return printStats(cmd.OutOrStdout(), counts)
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func printStats(out io.Writer, counts map[domain.Emotion]int) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "EMOTION\tENTRIES")

	total := 0
	for _, e := range domain.AllEmotions() {
		n := counts[e]
		total += n
		mark := ""
		if n == 0 {
			mark = "\t(empty)"
		}
		fmt.Fprintf(w, "%s\t%d%s\n", e, n, mark)
	}
	fmt.Fprintf(w, "total\t%d\n", total)

	return w.Flush()
}
