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
// Package bundle provides the bundle command for bundledeps.
package bundle

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"bennypowers.dev/bundledeps/bundle"
	"bennypowers.dev/bundledeps/fs"
	"bennypowers.dev/bundledeps/internal/config"
	"bennypowers.dev/bundledeps/internal/logging"
	"bennypowers.dev/bundledeps/packagejson"
)

// Cmd is the bundle cobra command that copies a project's non-buildable
// dependencies into its build output.
var Cmd = &cobra.Command{
	Use:   "bundle",
	Short: "Bundle non-buildable dependencies into a project's build output",
	Long: `Copy every non-buildable workspace dependency of a project into
<output>/node_modules/<package> and declare it in the output package.json
bundledDependencies, so the published package ships with them.

A dependency is non-buildable when it is a library that does not define
the --target. Its files are taken from the output of its "build" target.
Run this after the project itself has been built.`,
	Example: `  # Bundle the dependencies of libs/feature after building it
  bundledeps bundle --project feature

  # Only treat dependencies without a "bundle" target as non-buildable
  bundledeps bundle --project feature --target bundle

  # Use the production build outputs
  bundledeps bundle --project feature -c production`,
	RunE: run,
}

func init() {
	config.AddTaskFlags(Cmd, true)
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
	logger := logging.New(cmd.ErrOrStderr(), cfg.Verbose).With("project", opts.Project)
	if cfg.File != "" {
		logger.Debug("Using config file %s", cfg.File)
	}

	graph, err := cfg.LoadGraph(osfs)
	if err != nil {
		return fmt.Errorf("loading workspace graph: %w", err)
	}

	ok, err := bundle.Run(graph, osfs, logger, opts, packagejson.NewMemoryCache())
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w for %s", bundle.ErrBundleFailed, opts.Project)
	}
	return nil
}
