package cliapp

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vortex/docxreview/pkg/extractor"
	"github.com/vortex/docxreview/pkg/opc"
)

var readCmd = &cobra.Command{
	Use:   "read <file.docx>",
	Short: "Extract a document's structure as JSON",
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
		result := extractor.Summarize(args[0], doc)
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}
