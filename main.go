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

// Command bundledeps bundles a monorepo project's non-buildable workspace
// dependencies into its build output.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime/pprof"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"bennypowers.dev/bundledeps/cmd/bundle"
	"bennypowers.dev/bundledeps/cmd/deps"
	"bennypowers.dev/bundledeps/cmd/verify"
	"bennypowers.dev/bundledeps/cmd/version"
	iversion "bennypowers.dev/bundledeps/internal/version"
	"bennypowers.dev/bundledeps/workspace"
)

var (
	cpuprofile     string
	cpuprofileFile *os.File
	rootCmd        = &cobra.Command{
		Use:   "bundledeps",
		Short: "Bundle non-buildable workspace dependencies into build outputs",
		Long: `bundledeps copies the workspace libraries a project depends on, but which
have no build of their own, into the project's build output and lists them
in its package.json bundledDependencies.

The workspace graph is discovered from project.json files and package
manager workspaces, or read from a file written by "nx graph --file".
Settings can also come from BUNDLEDEPS_* environment variables or a
.bundledeps.{yaml,json,toml} file in the workspace root.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cpuprofile != "" {
				f, err := os.Create(cpuprofile)
				if err != nil {
					return fmt.Errorf("could not create CPU profile: %w", err)
				}
				cpuprofileFile = f
				if err := pprof.StartCPUProfile(f); err != nil {
					closeErr := f.Close()
					return errors.Join(
						fmt.Errorf("could not start CPU profile: %w", err),
						closeErr,
					)
				}
			}
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if cpuprofileFile != nil {
				pprof.StopCPUProfile()
				if err := cpuprofileFile.Close(); err != nil {
					return fmt.Errorf("closing CPU profile: %w", err)
				}
			}
			return nil
		},
	}
)

func init() {
	// Root flags (persistent across all commands)
	rootCmd.PersistentFlags().String("root", "", "Workspace root (default: nearest directory with nx.json, workspaces or .git)")
	rootCmd.PersistentFlags().String("graph", "", "Project graph JSON written by `nx graph --file` (default: discover)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Show debug output")
	rootCmd.PersistentFlags().StringSlice("projects", workspace.DefaultPatterns, "Globs selecting project.json files during discovery")
	rootCmd.PersistentFlags().StringSlice("ignore", workspace.DefaultIgnore, "Globs excluded from discovery")
	rootCmd.PersistentFlags().StringVar(&cpuprofile, "cpuprofile", "", "Write CPU profile to file")

	for _, name := range []string{"root", "graph", "verbose", "projects", "ignore"} {
		_ = viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name))
	}

	// Add commands
	rootCmd.AddCommand(bundle.Cmd)
	rootCmd.AddCommand(deps.Cmd)
	rootCmd.AddCommand(verify.Cmd)
	rootCmd.AddCommand(version.Cmd)
}

func main() {
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(iversion.Get().String()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		os.Exit(1)
	}
}
