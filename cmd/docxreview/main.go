// Command docxreview applies tracked-change edits and comments to
// WordprocessingML documents, and can read, diff, or textconv them.
package main

import "github.com/vortex/docxreview/internal/cliapp"

func main() {
	cliapp.Execute()
}
