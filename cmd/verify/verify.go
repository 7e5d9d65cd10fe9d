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
// Package verify provides the verify command for bundledeps.
package verify

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"bennypowers.dev/bundledeps/bundle"
	"bennypowers.dev/bundledeps/fs"
	"bennypowers.dev/bundledeps/internal/config"
	"bennypowers.dev/bundledeps/internal/output"
)

// ErrStale is returned when the output declares bundled dependencies that
// are missing from its node_modules.
var ErrStale = errors.New("stale bundledDependencies")

// Cmd is the verify cobra command.
var Cmd = &cobra.Command{
	Use:   "verify",
	Short: "Check that every bundled dependency is present in node_modules",
	Long: `Read the bundledDependencies of a project's build output and print each
entry whose node_modules/<package> directory is missing, one per line.
Exits non-zero when any entry is stale.`,
	Example: `  bundledeps verify --project feature -c production`,
	RunE:    run,
}

func init() {
	config.AddTaskFlags(Cmd, false)
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

	outputDir, err := bundle.OutputDir(graph, opts)
	if err != nil {
		return err
	}
	stale, err := bundle.StaleEntries(osfs, outputDir)
	if err != nil {
		return err
	}
	if err := output.Lines(cmd.OutOrStdout(), stale); err != nil {
		return err
	}
	if len(stale) > 0 {
		return fmt.Errorf("%w: %d in %s", ErrStale, len(stale), outputDir)
	}
	return nil
}
