package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sprite-ai/warnctx/internal/dataset"
	"github.com/sprite-ai/warnctx/internal/tui"
)

var browseCmd = &cobra.Command{
	Use:   "browse <dataset.json.gz>",
	Short: "Browse a built dataset interactively",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		recs, err := dataset.Read(args[0])
		if err != nil {
			return err
		}
		if len(recs) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "Dataset is empty.")
			return nil
		}
		return tui.Run(recs)
	},
}
