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
	"encoding/json"
	"path/filepath"

	"bennypowers.dev/bundledeps/fs"
	"bennypowers.dev/bundledeps/npmname"
	"bennypowers.dev/bundledeps/packagejson"
	"bennypowers.dev/bundledeps/workspace"
)

// BuildTarget is the target whose outputs locate a dependency's files.
const BuildTarget = "build"

// Resolver turns dependency project names into Dependency descriptors by
// reading the package.json in each dependency's build output.
type Resolver struct {
	fs            fs.FileSystem
	graph         Graph
	logger        Logger
	cache         *packagejson.MemoryCache
	project       string
	configuration string
}

// NewResolver creates a Resolver for dependencies of project, built under
// configuration. The configuration applies to every dependency.
func NewResolver(fs fs.FileSystem, graph Graph, logger Logger, project, configuration string) *Resolver {
	return &Resolver{
		fs:            fs,
		graph:         graph,
		logger:        orNop(logger),
		project:       project,
		configuration: configuration,
	}
}

// WithCache returns a new Resolver that reads manifests through cache.
func (r *Resolver) WithCache(cache *packagejson.MemoryCache) *Resolver {
	return &Resolver{
		fs:            r.fs,
		graph:         r.graph,
		logger:        r.logger,
		cache:         cache,
		project:       r.project,
		configuration: r.configuration,
	}
}

// Resolve describes the dependency project. Failures are logged and leave
// PackageName empty; they never stop the caller from resolving the rest.
func (r *Resolver) Resolve(project string) Dependency {
	dep := Dependency{Project: project}

	task := workspace.Task{Project: r.project, Target: BuildTarget, Configuration: r.configuration}
	outputDir, err := r.graph.OutputDir(task, project)
	if err != nil {
		r.logger.Error("Error reading package.json from %s", project)
		r.logger.Debug("%v", err)
		return dep
	}
	dep.OutputPath = outputDir

	doc, err := r.cache.Load(r.fs, filepath.Join(outputDir, packagejson.FileName))
	if err != nil {
		r.logger.Error("Error reading package.json from %s", project)
		r.logger.Debug("%v", err)
		return dep
	}
	var raw any
	if _, err := doc.Get("name", &raw); err != nil {
		r.logger.Error("Error reading package.json from %s", project)
		r.logger.Debug("%v", err)
		return dep
	}

	name, isString := packageName(raw)
	dep.PackageName = name
	if isString && name != "" {
		dep.ValidPackageName = npmname.Validate(name).ValidForNewPackages
		dep.Scoped = npmname.IsScoped(name)
	}
	return dep
}

// packageName renders a manifest's name field. Only strings can be valid
// names; any other non-empty value is returned in its JSON form so it is
// reported as invalid. null, false and 0 count as no name.
func packageName(v any) (name string, isString bool) {
	switch v := v.(type) {
	case string:
		return v, true
	case nil:
		return "", false
	case bool:
		if !v {
			return "", false
		}
	case float64:
		if v == 0 {
			return "", false
		}
	}
	data, err := json.Marshal(v)
	if err != nil {
		return "", false
	}
	return string(data), false
}

// ResolveAll resolves each project in order.
func (r *Resolver) ResolveAll(projects []string) []Dependency {
	deps := make([]Dependency, 0, len(projects))
	for _, project := range projects {
		deps = append(deps, r.Resolve(project))
	}
	return deps
}
