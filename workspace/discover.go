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
package workspace

import (
	"encoding/json"
	"fmt"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"bennypowers.dev/bundledeps/fs"
	"bennypowers.dev/bundledeps/packagejson"
)

// ProjectFileName is the per-project configuration file.
const ProjectFileName = "project.json"

// DefaultPatterns select the project configuration files to load.
var DefaultPatterns = []string{"**/" + ProjectFileName}

// DefaultIgnore excludes build output and installed packages from discovery.
var DefaultIgnore = []string{"**/node_modules/**", "dist/**", "tmp/**", ".git/**"}

// DiscoverOptions controls which files Discover considers.
// Patterns and Ignore are doublestar globs over workspace-relative slash paths.
type DiscoverOptions struct {
	Patterns []string
	Ignore   []string
}

func (o DiscoverOptions) withDefaults() DiscoverOptions {
	if len(o.Patterns) == 0 {
		o.Patterns = DefaultPatterns
	}
	if o.Ignore == nil {
		o.Ignore = DefaultIgnore
	}
	return o
}

func (o DiscoverOptions) validate() error {
	for _, p := range slices.Concat(o.Patterns, o.Ignore) {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("invalid glob pattern %q", p)
		}
	}
	return nil
}

func (o DiscoverOptions) ignored(rel string) bool {
	return matchAny(o.Ignore, rel)
}

// ignoredDir reports whether the whole directory is excluded, so the walk
// can skip it without listing its contents.
func (o DiscoverOptions) ignoredDir(rel string) bool {
	return o.ignored(rel) || o.ignored(path.Join(rel, packagejson.FileName))
}

// projectConfig is the shape of project.json and of the "nx" block in a
// package.json.
type projectConfig struct {
	Name                 string            `json:"name"`
	ProjectType          string            `json:"projectType"`
	Targets              map[string]Target `json:"targets"`
	ImplicitDependencies []string          `json:"implicitDependencies"`
}

func (c projectConfig) projectType() ProjectType {
	switch c.ProjectType {
	case "application":
		return TypeApplication
	case "e2e":
		return TypeE2E
	}
	return TypeLibrary
}

// candidate is a project found on disk before edges are computed.
type candidate struct {
	project  *Project
	implicit []string
	pkg      *packagejson.PackageJSON
}

// Discover builds the graph of the workspace at root from project.json
// files and package-manager workspace packages.
func Discover(fsys fs.FileSystem, root string, opts DiscoverOptions) (*Graph, error) {
	opts = opts.withDefaults()
	if err := opts.validate(); err != nil {
		return nil, err
	}

	projectFiles, packageDirs, err := walk(fsys, root, opts)
	if err != nil {
		return nil, err
	}

	var candidates []candidate
	configured := make(map[string]bool)
	for _, rel := range projectFiles {
		c, err := loadProjectFile(fsys, root, rel)
		if err != nil {
			return nil, err
		}
		configured[c.project.Root] = true
		candidates = append(candidates, c)
	}

	if rootPkg, err := packagejson.ParseFile(fsys, filepath.Join(root, packagejson.FileName)); err == nil {
		members := workspaceMembers(rootPkg.WorkspacePatterns(), packageDirs)
		for _, dir := range members {
			if configured[dir] {
				continue
			}
			c, ok, err := loadPackageProject(fsys, root, dir)
			if err != nil {
				return nil, err
			}
			if ok {
				candidates = append(candidates, c)
			}
		}
	}

	graph := NewGraph(root)
	for _, c := range candidates {
		if err := graph.AddProject(c.project); err != nil {
			return nil, err
		}
	}
	if err := addEdges(graph, candidates); err != nil {
		return nil, err
	}
	return graph, nil
}

// walk lists the workspace breadth-first and returns the matching project
// files and every directory holding a package.json, as relative paths.
func walk(fsys fs.FileSystem, root string, opts DiscoverOptions) (projectFiles, packageDirs []string, err error) {
	queue := []string{"."}
	for len(queue) > 0 {
		dir := queue[0]
		queue = queue[1:]

		entries, err := fsys.ReadDir(filepath.Join(root, filepath.FromSlash(dir)))
		if err != nil {
			return nil, nil, fmt.Errorf("listing %s: %w", dir, err)
		}
		for _, entry := range entries {
			rel := path.Join(dir, entry.Name())
			if entry.IsDir() {
				if !opts.ignoredDir(rel) {
					queue = append(queue, rel)
				}
				continue
			}
			if opts.ignored(rel) {
				continue
			}
			if entry.Name() == packagejson.FileName {
				packageDirs = append(packageDirs, dir)
			}
			if matchAny(opts.Patterns, rel) {
				projectFiles = append(projectFiles, rel)
			}
		}
	}
	return projectFiles, packageDirs, nil
}

func loadProjectFile(fsys fs.FileSystem, root, rel string) (candidate, error) {
	dir := path.Dir(rel)
	data, err := fsys.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
	if err != nil {
		return candidate{}, fmt.Errorf("reading %s: %w", rel, err)
	}
	var cfg projectConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return candidate{}, fmt.Errorf("parsing %s: %w", rel, err)
	}

	// The sibling package.json is optional; it names the package and
	// contributes dependency edges.
	pkg, _ := packagejson.ParseFile(fsys, filepath.Join(root, filepath.FromSlash(dir), packagejson.FileName))

	name := cfg.Name
	if name == "" && pkg != nil {
		name = pkg.Name
	}
	if name == "" {
		name = path.Base(dir)
	}

	p := &Project{
		Name:    name,
		Type:    cfg.projectType(),
		Root:    dir,
		Targets: cfg.Targets,
	}
	if p.Targets == nil {
		p.Targets = make(map[string]Target)
	}
	if pkg != nil {
		p.PackageName = pkg.Name
	}
	return candidate{project: p, implicit: cfg.ImplicitDependencies, pkg: pkg}, nil
}

// loadPackageProject turns a workspace package without project.json into a
// project. Scripts become nx:run-script targets; "nx.targets" override them.
func loadPackageProject(fsys fs.FileSystem, root, dir string) (candidate, bool, error) {
	pkgPath := filepath.Join(root, filepath.FromSlash(dir), packagejson.FileName)
	pkg, err := packagejson.ParseFile(fsys, pkgPath)
	if err != nil {
		return candidate{}, false, fmt.Errorf("parsing %s: %w", path.Join(dir, packagejson.FileName), err)
	}

	var cfg projectConfig
	if len(pkg.Nx) > 0 {
		if err := json.Unmarshal(pkg.Nx, &cfg); err != nil {
			return candidate{}, false, fmt.Errorf("parsing nx block of %s: %w", path.Join(dir, packagejson.FileName), err)
		}
	}

	name := cfg.Name
	if name == "" {
		name = pkg.Name
	}
	if name == "" {
		return candidate{}, false, nil
	}

	targets := make(map[string]Target)
	for script := range pkg.Scripts {
		targets[script] = Target{
			Executor: "nx:run-script",
			Options:  map[string]any{"script": script},
		}
	}
	for targetName, t := range cfg.Targets {
		targets[targetName] = t
	}

	return candidate{
		project: &Project{
			Name:        name,
			Type:        cfg.projectType(),
			Root:        dir,
			PackageName: pkg.Name,
			Targets:     targets,
		},
		implicit: cfg.ImplicitDependencies,
		pkg:      pkg,
	}, true, nil
}

// workspaceMembers returns the package directories selected by the root
// package.json workspaces patterns. Patterns starting with "!" exclude.
func workspaceMembers(patterns, packageDirs []string) []string {
	var include, exclude []string
	for _, p := range patterns {
		p = strings.TrimSuffix(strings.TrimPrefix(p, "./"), "/")
		if rest, ok := strings.CutPrefix(p, "!"); ok {
			exclude = append(exclude, strings.TrimPrefix(rest, "./"))
		} else {
			include = append(include, p)
		}
	}

	var members []string
	for _, dir := range packageDirs {
		if dir == "." {
			continue
		}
		if matchAny(include, dir) && !matchAny(exclude, dir) {
			members = append(members, dir)
		}
	}
	return members
}

// addEdges derives dependency edges: implicit dependencies first, then
// package.json dependencies that name another workspace project.
func addEdges(graph *Graph, candidates []candidate) error {
	byPackage := make(map[string]string)
	var names []string
	for _, c := range candidates {
		names = append(names, c.project.Name)
		if c.project.PackageName != "" {
			byPackage[c.project.PackageName] = c.project.Name
		}
	}

	for _, c := range candidates {
		source := c.project.Name
		var removed []string

		for _, dep := range c.implicit {
			if rest, ok := strings.CutPrefix(dep, "!"); ok {
				removed = append(removed, rest)
				continue
			}
			targets, err := implicitTargets(dep, names)
			if err != nil {
				return fmt.Errorf("project %q: %w", source, err)
			}
			for _, target := range targets {
				if target != source {
					graph.AddDependency(source, target)
				}
			}
		}

		if c.pkg != nil {
			for _, field := range c.pkg.DependencyFields() {
				deps := make([]string, 0, len(field))
				for dep := range field {
					deps = append(deps, dep)
				}
				slices.Sort(deps)
				for _, dep := range deps {
					if target, ok := byPackage[dep]; ok && target != source {
						graph.AddDependency(source, target)
					}
				}
			}
		}

		for _, target := range removed {
			graph.RemoveDependency(source, target)
		}
	}
	return nil
}

// implicitTargets expands an implicitDependencies entry, which is either a
// project name or a glob over project names.
func implicitTargets(dep string, names []string) ([]string, error) {
	if !strings.ContainsAny(dep, "*?[{") {
		if !slices.Contains(names, dep) {
			return nil, fmt.Errorf("implicit dependency %q is not a workspace project", dep)
		}
		return []string{dep}, nil
	}
	var matched []string
	for _, name := range names {
		if ok, _ := doublestar.Match(dep, name); ok {
			matched = append(matched, name)
		}
	}
	return matched, nil
}

func matchAny(patterns []string, name string) bool {
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, name); ok {
			return true
		}
	}
	return false
}

// FindWorkspaceRoot walks up from startDir to the directory holding nx.json,
// a package.json with workspaces, or .git, in that order of preference at
// each level. Returns startDir when none is found.
func FindWorkspaceRoot(fsys fs.FileSystem, startDir string) string {
	dir := startDir
	for {
		if fsys.Exists(filepath.Join(dir, "nx.json")) {
			return dir
		}

		pkgPath := filepath.Join(dir, packagejson.FileName)
		if pkg, err := packagejson.ParseFile(fsys, pkgPath); err == nil && len(pkg.WorkspacePatterns()) > 0 {
			return dir
		}

		if fs.IsDir(fsys, filepath.Join(dir, ".git")) {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return startDir
		}
		dir = parent
	}
}
