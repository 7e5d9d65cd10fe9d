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
// Package deps provides the deps command for bundledeps.
package deps

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"bennypowers.dev/bundledeps/bundle"
	"bennypowers.dev/bundledeps/fs"
	"bennypowers.dev/bundledeps/internal/config"
	"bennypowers.dev/bundledeps/internal/logging"
	"bennypowers.dev/bundledeps/internal/output"
)

// Cmd is the deps cobra command. It prints what bundle would work on
// without touching the filesystem.
var Cmd = &cobra.Command{
	Use:   "deps",
	Short: "List a project's non-buildable dependencies as JSON",
	Long: `Resolve the non-buildable dependencies of a project and print one JSON
object per dependency: its project, package name, whether that name is
valid for publishing, whether it is scoped, and the output directory its
files would be copied from. Nothing is written.`,
	Example: `  bundledeps deps --project feature
  bundledeps deps --project feature --target bundle -o deps.json`,
	RunE: run,
}

func init() {
	config.AddTaskFlags(Cmd, true)
	Cmd.Flags().StringP("output", "o", "", "Output file (default: stdout)")
}

func run(cmd *cobra.Command, args []string) error {
	osfs := fs.NewOSFileSystem()

	cfg, err := config.Load(viper.GetViper(), cmd.Flags(), osfs)
	if err != nil {
		return err
	}
	opts, err := cfg.Options()
	if err != nil {
		return err
	}
	graph, err := cfg.LoadGraph(osfs)
	if err != nil {
		return fmt.Errorf("loading workspace graph: %w", err)
	}

	logger := logging.New(cmd.ErrOrStderr(), cfg.Verbose)
	deps, err := bundle.Dependencies(graph, osfs, logger, opts, nil)
	if err != nil {
		return err
	}
	return output.JSON(osfs, cmd.OutOrStdout(), deps)
}
