package cliapp

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vortex/docxreview/pkg/editor"
	"github.com/vortex/docxreview/pkg/opc"
)

var createManifestPath string

var createCmd = &cobra.Command{
	Use:   "create <output.docx>",
	Short: "Write a new, empty .docx, optionally followed by manifest edits",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		blank, err := newMinimalDocx()
		if err != nil {
			return fmt.Errorf("building blank document: %w", err)
		}

		if createManifestPath == "" {
			return os.WriteFile(args[0], blank, 0o644)
		}

		store, err := opc.OpenReader(bytes.NewReader(blank), int64(len(blank)))
		if err != nil {
			return fmt.Errorf("opening blank document: %w", err)
		}
		m, err := readManifest(createManifestPath)
		if err != nil {
			return err
		}
		result := editor.Run(store, m, editor.Options{
			CLIAuthor:    author,
			ConfigAuthor: cfg.Author,
			Now:          time.Now(),
		})
		if err := store.Save(args[0]); err != nil {
			return fmt.Errorf("writing %s: %w", args[0], err)
		}
		if jsonOut {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		}
		printHumanResult(result)
		if !result.Success {
			return errSilentFailure
		}
		return nil
	},
}

func init() {
	createCmd.Flags().StringVar(&createManifestPath, "manifest", "", "edit manifest to apply to the new document")
}

// newMinimalDocx builds a single-paragraph, empty-body WordprocessingML
// package from scratch: no embedded binary asset, since a correct .docx
// is a zip container built at runtime from these plain-text XML parts.
func newMinimalDocx() ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	parts := []struct{ name, body string }{
		{"[Content_Types].xml", contentTypesXML},
		{"_rels/.rels", relsXML},
		{"word/document.xml", documentXML},
		{"word/_rels/document.xml.rels", documentRelsXML},
		{"docProps/core.xml", corePropsXML},
		{"docProps/app.xml", appPropsXML},
	}
	for _, p := range parts {
		w, err := zw.Create(p.name)
		if err != nil {
			return nil, err
		}
		if _, err := w.Write([]byte(p.body)); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

const contentTypesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
  <Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
  <Default Extension="xml" ContentType="application/xml"/>
  <Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
  <Override PartName="/docProps/core.xml" ContentType="application/vnd.openxmlformats-package.core-properties+xml"/>
  <Override PartName="/docProps/app.xml" ContentType="application/vnd.openxmlformats-officedocument.extended-properties+xml"/>
</Types>`

const relsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
  <Relationship Id="rId2" Type="http://schemas.openxmlformats.org/package/2006/relationships/metadata/core-properties" Target="docProps/core.xml"/>
  <Relationship Id="rId3" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/extended-properties" Target="docProps/app.xml"/>
</Relationships>`

const documentRelsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
</Relationships>`

const documentXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p/>
    <w:sectPr/>
  </w:body>
</w:document>`

const corePropsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties" xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:dcterms="http://purl.org/dc/terms/" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance">
  <dc:title></dc:title>
  <dc:creator>docxreview</dc:creator>
  <cp:lastModifiedBy>docxreview</cp:lastModifiedBy>
  <cp:revision>1</cp:revision>
</cp:coreProperties>`

const appPropsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Properties xmlns="http://schemas.openxmlformats.org/officeDocument/2006/extended-properties">
  <Application>docxreview</Application>
</Properties>`
