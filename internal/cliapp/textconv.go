package cliapp

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vortex/docxreview/pkg/extractor"
	"github.com/vortex/docxreview/pkg/opc"
	"github.com/vortex/docxreview/pkg/textconv"
)

var textconvCmd = &cobra.Command{
	Use:   "textconv <file.docx>",
	Short: "Render a document as deterministic plain text, for git diff drivers",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := opc.Open(args[0])
		if err != nil {
			return fmt.Errorf("opening %s: %w", args[0], err)
		}
		doc, err := extractor.Extract(store)
		if err != nil {
			return fmt.Errorf("reading %s: %w", args[0], err)
		}
		_, err = fmt.Fprint(out, textconv.Render(doc))
		return err
	},
}
