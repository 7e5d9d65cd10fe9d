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
// Package workspace models a monorepo's project graph: which projects exist,
// what targets they define, which projects they depend on, and where their
// build outputs land.
package workspace

import (
	"errors"
	"fmt"
	"slices"
	"sync"
)

// ErrProjectNotFound is returned when a project name is not in the graph.
var ErrProjectNotFound = errors.New("project not found in workspace graph")

// ProjectType classifies graph nodes the way Nx does.
type ProjectType string

const (
	TypeLibrary     ProjectType = "lib"
	TypeApplication ProjectType = "app"
	TypeE2E         ProjectType = "e2e"
)

// Project is a node of the workspace graph.
type Project struct {
	Name        string            `json:"name"`
	Type        ProjectType       `json:"type"`
	Root        string            `json:"root"`                  // workspace-relative, slash separated
	PackageName string            `json:"packageName,omitempty"` // name from the project's own package.json
	Targets     map[string]Target `json:"targets,omitempty"`
}

// Target is a named operation of a project, e.g. "build".
type Target struct {
	Executor       string                    `json:"executor,omitempty"`
	Command        string                    `json:"command,omitempty"`
	Outputs        []string                  `json:"outputs,omitempty"`
	Options        map[string]any            `json:"options,omitempty"`
	Configurations map[string]map[string]any `json:"configurations,omitempty"`
}

// normalize fills in the executor implied by shorthand target forms.
func (t Target) normalize() Target {
	if t.Executor == "" && t.Command != "" {
		t.Executor = "nx:run-commands"
	}
	return t
}

// HasTarget reports whether p defines target with a runnable executor.
func (p *Project) HasTarget(target string) bool {
	t, ok := p.Targets[target]
	return ok && t.Executor != ""
}

// Graph is a workspace's projects and the dependency edges between them.
// Edges keep insertion order, which is the order dependencies are reported.
type Graph struct {
	// Root is the absolute workspace root; project roots and outputs are
	// relative to it.
	Root string

	mu        sync.RWMutex
	projects  map[string]*Project
	order     []string
	dependsOn map[string][]string
}

// NewGraph creates an empty graph rooted at root.
func NewGraph(root string) *Graph {
	return &Graph{
		Root:      root,
		projects:  make(map[string]*Project),
		dependsOn: make(map[string][]string),
	}
}

// AddProject adds p to the graph. Project names must be unique.
func (g *Graph) AddProject(p *Project) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if existing, ok := g.projects[p.Name]; ok {
		return fmt.Errorf("duplicate project name %q (%s and %s)", p.Name, existing.Root, p.Root)
	}
	for name, t := range p.Targets {
		p.Targets[name] = t.normalize()
	}
	g.projects[p.Name] = p
	g.order = append(g.order, p.Name)
	return nil
}

// AddDependency records that source depends on target. Repeated edges are
// ignored; target need not be a project (e.g. "npm:lodash").
func (g *Graph) AddDependency(source, target string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if slices.Contains(g.dependsOn[source], target) {
		return
	}
	g.dependsOn[source] = append(g.dependsOn[source], target)
}

// RemoveDependency deletes the edge from source to target, if any.
func (g *Graph) RemoveDependency(source, target string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.dependsOn[source] = slices.DeleteFunc(g.dependsOn[source], func(dep string) bool {
		return dep == target
	})
}

// Project returns the named project.
func (g *Graph) Project(name string) (*Project, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	p, ok := g.projects[name]
	return p, ok
}

// Projects returns all projects in the order they were added.
func (g *Graph) Projects() []*Project {
	g.mu.RLock()
	defer g.mu.RUnlock()

	result := make([]*Project, 0, len(g.order))
	for _, name := range g.order {
		result = append(result, g.projects[name])
	}
	return result
}

// Dependencies returns the direct dependencies of name in edge order.
func (g *Graph) Dependencies(name string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return slices.Clone(g.dependsOn[name])
}

// NonBuildableDependencies returns the library projects reachable from
// project that do not define target, in depth-first pre-order. Every
// workspace project is traversed, buildable or not; external nodes are
// skipped.
func (g *Graph) NonBuildableDependencies(project, target string) ([]string, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if _, ok := g.projects[project]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrProjectNotFound, project)
	}

	var result []string
	seen := map[string]bool{project: true}

	// Explicit stack; children are pushed in reverse so they pop in edge order.
	stack := slices.Clone(g.dependsOn[project])
	slices.Reverse(stack)
	for len(stack) > 0 {
		name := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[name] {
			continue
		}
		seen[name] = true

		node, ok := g.projects[name]
		if !ok {
			continue
		}
		if node.Type == TypeLibrary && !node.HasTarget(target) {
			result = append(result, name)
		}

		children := slices.Clone(g.dependsOn[name])
		slices.Reverse(children)
		stack = append(stack, children...)
	}
	return result, nil
}
