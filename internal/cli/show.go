package cli

import (
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sprite-ai/warnctx/internal/dataset"
)

var showCmd = &cobra.Command{
	Use:   "show <dataset.json.gz>",
	Short: "Print the records of a built dataset",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func init() {
	showCmd.Flags().IntP("limit", "n", 0, "print at most n records (0 = all)")
	showCmd.Flags().String("repo", "", "only records of this repository (owner/name)")
	showCmd.Flags().Bool("no-color", false, "disable syntax highlighting")
	showCmd.Flags().Bool("summary", false, "print only dataset statistics")
}

func runShow(cmd *cobra.Command, args []string) error {
	recs, err := dataset.Read(args[0])
	if err != nil {
		return err
	}

	repo, _ := cmd.Flags().GetString("repo")
	if repo != "" {
		var kept []*dataset.Record
		for _, r := range recs {
			if strings.EqualFold(r.RepositoryName, repo) {
				kept = append(kept, r)
			}
		}
		recs = kept
	}

	out := cmd.OutOrStdout()
	if only, _ := cmd.Flags().GetBool("summary"); only {
		fmt.Fprint(out, dataset.Summarize(recs))
		return nil
	}

	limit, _ := cmd.Flags().GetInt("limit")
	noColor, _ := cmd.Flags().GetBool("no-color")
	for i, r := range recs {
		if limit > 0 && i >= limit {
			break
		}
		printRecord(out, r, !noColor)
	}
	fmt.Fprint(out, dataset.Summarize(recs))
	return nil
}

func printRecord(w io.Writer, r *dataset.Record, color bool) {
	fmt.Fprintf(w, "== %s %s:%d\n", r.RepositoryName, r.FilePath, r.LineNumber)
	fmt.Fprintf(w, "   %s\n", r.CommitLink)
	fmt.Fprintf(w, "   %s\n", r.WarningMessage)
	if r.Difftext != nil {
		fmt.Fprintf(w, "   %s +%d -%d\n", r.Difftext.ChangeType, len(r.Difftext.Added), len(r.Difftext.Deleted))
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, highlight(path.Base(r.FilePath), r.WarningContext, color))
	fmt.Fprintln(w)
}
