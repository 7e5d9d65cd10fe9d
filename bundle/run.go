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
package bundle

import (
	"fmt"

	"bennypowers.dev/bundledeps/fs"
	"bennypowers.dev/bundledeps/packagejson"
	"bennypowers.dev/bundledeps/workspace"
)

// Options identify the target run whose output receives the bundle.
type Options struct {
	Project       string
	Target        string // defaults to BuildTarget
	Configuration string
}

func (o Options) target() string {
	if o.Target == "" {
		return BuildTarget
	}
	return o.Target
}

// Dependencies resolves the non-buildable dependencies of opts.Project
// without modifying anything. cache may be nil.
func Dependencies(graph Graph, fsys fs.FileSystem, logger Logger, opts Options, cache *packagejson.MemoryCache) ([]Dependency, error) {
	projects, err := graph.NonBuildableDependencies(opts.Project, opts.target())
	if err != nil {
		return nil, fmt.Errorf("listing dependencies of %s: %w", opts.Project, err)
	}
	resolver := NewResolver(fsys, graph, logger, opts.Project, opts.Configuration).WithCache(cache)
	return resolver.ResolveAll(projects), nil
}

// OutputDir returns the build output directory of opts.Project.
func OutputDir(graph Graph, opts Options) (string, error) {
	task := workspace.Task{Project: opts.Project, Target: BuildTarget, Configuration: opts.Configuration}
	return graph.OutputDir(task, opts.Project)
}

// Run bundles the non-buildable dependencies of opts.Project into its build
// output. It reports false when the output manifest is unreadable or a
// dependency could not be bundled; errors are reserved for graph lookups,
// copies and writes.
func Run(graph Graph, fsys fs.FileSystem, logger Logger, opts Options, cache *packagejson.MemoryCache) (bool, error) {
	logger = orNop(logger)

	deps, err := Dependencies(graph, fsys, logger, opts, cache)
	if err != nil {
		return false, err
	}
	logger.Debug("%s has %d non-buildable dependencies", opts.Project, len(deps))

	outputDir, err := OutputDir(graph, opts)
	if err != nil {
		logger.Error("Could not determine the output path of %s", opts.Project)
		return false, err
	}

	return NewUpdater(fsys, logger).Update(outputDir, deps)
}
