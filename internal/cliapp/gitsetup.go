package cliapp

import (
	"fmt"

	"github.com/spf13/cobra"
)

var gitSetupCmd = &cobra.Command{
	Use:   "git-setup",
	Short: "Print the .gitattributes/git config lines that wire textconv as a diff driver",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintln(out, "# Add to .gitattributes:")
		fmt.Fprintln(out, "*.docx diff=docxreview")
		fmt.Fprintln(out)
		fmt.Fprintln(out, "# Then run:")
		fmt.Fprintln(out, `git config diff.docxreview.textconv "docxreview textconv"`)
		return nil
	},
}
