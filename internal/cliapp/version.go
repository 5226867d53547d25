package cliapp

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// buildVersion is overridden at release-build time via:
//
//	go build -ldflags "-X github.com/vortex/docxreview/internal/cliapp.buildVersion=v1.2.3"
var buildVersion = ""

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the docxreview version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintln(out, resolveVersion())
		return nil
	},
}

func resolveVersion() string {
	if buildVersion != "" {
		return buildVersion
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "(devel)"
}
