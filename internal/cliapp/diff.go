package cliapp

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vortex/docxreview/pkg/differ"
	"github.com/vortex/docxreview/pkg/extractor"
	"github.com/vortex/docxreview/pkg/opc"
)

var diffCmd = &cobra.Command{
	Use:   "diff <old.docx> <new.docx>",
	Short: "Compare two documents' content, comments, and tracked changes",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		oldDoc, err := extractFile(args[0])
		if err != nil {
			return err
		}
		newDoc, err := extractFile(args[1])
		if err != nil {
			return err
		}
		result := differ.Diff(args[0], args[1], oldDoc, newDoc)
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

func extractFile(path string) (*extractor.Document, error) {
	store, err := opc.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	doc, err := extractor.Extract(store)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return doc, nil
}
