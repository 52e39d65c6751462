package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sprite-ai/warnctx/internal/dataset"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build warning-context datasets from folders of warning files",
	Long: `Resolve every warning in the configured actionable and non-actionable
folders and write the enriched records as gzip-compressed JSON.

An existing output file is loaded instead of rebuilt unless --rebuild is set.
Warnings in a folder whose path contains the introduced marker
(NonActionableWarning by default) are treated as introduced by their commit.

Examples:
  warnctx build
  warnctx build --input ./warnings/NonActionableWarning --output out.json.gz
  warnctx build --workers 4 --no-clone`,
	Args: cobra.NoArgs,
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().StringP("input", "i", "", "build a single folder instead of the configured pair")
	buildCmd.Flags().StringP("output", "o", "", "output file for --input (default <folder>.json.gz)")
	buildCmd.Flags().Bool("introduced", false, "treat --input warnings as introduced (default: from folder name)")
	buildCmd.Flags().Bool("rebuild", false, "rebuild even if the output exists")
	buildCmd.Flags().IntP("workers", "w", 0, "concurrent warning files (default from config)")
	buildCmd.Flags().Bool("no-clone", false, "never clone; only use existing clones")
}

type buildJob struct {
	input  string
	output string
	// introduced overrides folder-name detection when non-nil.
	introduced *bool
}

func runBuild(cmd *cobra.Command, args []string) error {
	if w, _ := cmd.Flags().GetInt("workers"); w > 0 {
		cfg.Workers = w
	}
	if noClone, _ := cmd.Flags().GetBool("no-clone"); noClone {
		cfg.Clone = false
	}
	rebuild, _ := cmd.Flags().GetBool("rebuild")

	jobs, err := buildJobs(cmd)
	if err != nil {
		return err
	}

	builder := dataset.NewBuilder(cfg, dataset.PoolOpener(newPool()), logger)
	out := cmd.OutOrStdout()

	for _, job := range jobs {
		build := func(ctx context.Context) ([]*dataset.Record, error) {
			if job.introduced != nil {
				return builder.BuildDir(ctx, job.input, *job.introduced)
			}
			return builder.Build(ctx, job.input)
		}

		var recs []*dataset.Record
		if rebuild {
			recs, err = build(cmd.Context())
			if err == nil {
				err = dataset.Write(job.output, recs)
			}
		} else {
			recs, _, err = dataset.LoadOrBuild(cmd.Context(), job.output, build, logger)
		}
		if err != nil {
			return fmt.Errorf("building %s: %w", job.input, err)
		}

		fmt.Fprintf(out, "%s -> %s\n", job.input, job.output)
		fmt.Fprint(out, dataset.Summarize(recs))
		fmt.Fprintln(out)
	}
	return nil
}

func buildJobs(cmd *cobra.Command) ([]buildJob, error) {
	input, _ := cmd.Flags().GetString("input")
	if input == "" {
		return []buildJob{
			{input: cfg.Dataset.ActionableDir, output: cfg.Dataset.ActionableOutput},
			{input: cfg.Dataset.NonActionableDir, output: cfg.Dataset.NonActionableOutput},
		}, nil
	}

	output, _ := cmd.Flags().GetString("output")
	if output == "" {
		name := filepath.Base(filepath.Clean(input))
		if name == "." || name == string(filepath.Separator) {
			return nil, fmt.Errorf("cannot derive an output name from %q; use --output", input)
		}
		output = strings.TrimSuffix(name, ".json") + ".json.gz"
	}

	job := buildJob{input: input, output: output}
	if cmd.Flags().Changed("introduced") {
		v, _ := cmd.Flags().GetBool("introduced")
		job.introduced = &v
	}
	return []buildJob{job}, nil
}
