/*
Copyright © 2026 Benny Powers <web@bennypowers.com>

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program. If not, see <http://www.gnu.org/licenses/>.
*/
// Package version provides the version command for bundledeps.
package version

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"bennypowers.dev/bundledeps/internal/version"
)

// Cmd prints the bundledeps build information.
var Cmd = &cobra.Command{
	Use:   "version",
	Short: "Print the bundledeps version and build details",
	Long: `Print the bundledeps release, the commit it was built from and the Go
toolchain used. Release builds take these from -ldflags; go install builds
read them from the embedded module and VCS information.`,
	Example: `  bundledeps version
  bundledeps version --format short
  bundledeps version -f json`,
	Args: cobra.NoArgs,
	RunE: run,
}

func init() {
	Cmd.Flags().StringP("format", "f", "text", "Output format (text, short, json)")
}

func run(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	return write(cmd.OutOrStdout(), format, version.Get())
}

func write(w io.Writer, format string, info version.Info) error {
	switch format {
	case "text":
		_, err := fmt.Fprintf(w, "bundledeps %s\n", info)
		return err
	case "short":
		_, err := fmt.Fprintln(w, info.Version)
		return err
	case "json":
		data, err := json.MarshalIndent(info, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding build info: %w", err)
		}
		_, err = fmt.Fprintf(w, "%s\n", data)
		return err
	}
	return fmt.Errorf("unknown format %q, want text, short or json", format)
}
