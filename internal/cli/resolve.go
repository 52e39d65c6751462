package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sprite-ai/warnctx/internal/dataset"
	"github.com/sprite-ai/warnctx/internal/diff"
	"github.com/sprite-ai/warnctx/internal/resolve"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <commit-link> <file> <line>",
	Short: "Resolve a single warning and print its context",
	Long: `Locate the commit named by commit-link, find its change to file and print
the patch and extracted context for the warning at line.

file is relative to the repository root; a path under the clone root
(tmp_github/<repo>/...) is accepted too.

Examples:
  warnctx resolve https://github.com/acme/widget/commit/3f2a1c src/file.c 12
  warnctx resolve --introduced --repo ./widget https://github.com/acme/widget/commit/3f2a1c src/file.c 12`,
	Args: cobra.ExactArgs(3),
	RunE: runResolve,
}

func init() {
	resolveCmd.Flags().StringP("format", "f", "text", "output format: text, json")
	resolveCmd.Flags().Bool("introduced", false, "the warning was introduced by the commit")
	resolveCmd.Flags().StringP("repo", "r", "", "local repository to use instead of the clone root")
	resolveCmd.Flags().Bool("no-color", false, "disable syntax highlighting")
}

type resolveOutput struct {
	Outcome string `json:"outcome"`
	Repo    string `json:"repo"`
	Commit  string `json:"commit"`
	File    string `json:"file"`
	Line    int    `json:"line"`
	Mode    string `json:"mode,omitempty"`
	Patch   any    `json:"patch,omitempty"`
	Context string `json:"context,omitempty"`
}

func runResolve(cmd *cobra.Command, args []string) error {
	link, err := dataset.ParseCommitLink(args[0])
	if err != nil {
		return err
	}
	line, err := strconv.Atoi(strings.TrimSpace(args[2]))
	if err != nil || line < 1 {
		return fmt.Errorf("line must be a positive integer, got %q", args[2])
	}
	file := args[1]
	if strings.HasPrefix(file, cfg.Filter.PathMarker) {
		file = dataset.TargetPath(file, cfg.Filter.StripSegments)
	}
	introduced, _ := cmd.Flags().GetBool("introduced")

	repo := link.RepoURL
	if local, _ := cmd.Flags().GetString("repo"); local != "" {
		repo = local
	}

	p, err := newPool().Open(cmd.Context(), repo)
	if err != nil {
		return err
	}
	res, err := resolve.New(logger).Resolve(cmd.Context(), p, resolve.Query{
		Commit:     link.Hash,
		File:       file,
		Line:       line,
		Introduced: introduced,
	})
	if err != nil {
		return err
	}

	out := resolveOutput{
		Outcome: res.Outcome.String(),
		Repo:    link.Name,
		Commit:  link.Hash,
		File:    file,
		Line:    line,
		Context: res.Snippet,
	}
	if res.Patch != nil {
		out.Mode = res.Mode.String()
		out.Patch = res.Patch
	}

	format, _ := cmd.Flags().GetString("format")
	switch format {
	case "json":
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	case "text":
		noColor, _ := cmd.Flags().GetBool("no-color")
		printResolve(cmd.OutOrStdout(), out, res, !noColor)
		return nil
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

func printResolve(w io.Writer, out resolveOutput, res resolve.Result, color bool) {
	fmt.Fprintf(w, "%s %s:%d @ %s\n", out.Repo, out.File, out.Line, out.Commit)
	fmt.Fprintf(w, "outcome: %s\n", out.Outcome)
	if res.Patch == nil {
		return
	}
	fmt.Fprintf(w, "mode: %s\n", out.Mode)
	fmt.Fprintf(w, "change: %s (+%d -%d)\n", res.Patch.ChangeType, len(res.Patch.Added), len(res.Patch.Deleted))
	if !res.OK() {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, highlight(out.File, res.Snippet, color))
}

func highlight(file, source string, color bool) string {
	if !color {
		return source
	}
	return strings.TrimRight(diff.HighlightANSI(file, source), "\n")
}
