package commands

import (
	"fmt"
	"runtime"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// versionInfo describes the build.
type versionInfo struct {
	Version   string `json:"version"    yaml:"version"`
	Commit    string `json:"commit"     yaml:"commit"`
	Built     string `json:"built"      yaml:"built"`
	GoVersion string `json:"go_version" yaml:"go_version"`
}

// newVersionCommand creates the version command
func newVersionCommand(a *app, version, commit, date string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Display version information",
		Long:  "Display detailed version information about the partner CLI",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			info := versionInfo{
				Version:   version,
				Commit:    commit,
				Built:     date,
				GoVersion: runtime.Version(),
			}

			structured, err := writeStructured(a.stdout, a.cfg.Output, info)
			if structured || err != nil {
				return err
			}

			table := tablewriter.NewWriter(a.stdout)
			table.Header("Property", "Value")
			_ = table.Append("Version", info.Version)
			_ = table.Append("Commit", info.Commit)
			_ = table.Append("Built", info.Built)
			_ = table.Append("Go", info.GoVersion)

			err = table.Render()
			if err != nil {
				return fmt.Errorf("failed to render table: %w", err)
			}

			return nil
		},
	}
}
