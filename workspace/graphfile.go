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
	"slices"

	"bennypowers.dev/bundledeps/fs"
)

// graphDocument is the JSON written by `nx graph --file=graph.json`. The
// inner object may also appear on its own.
type graphDocument struct {
	Graph *graphData `json:"graph"`
	graphData
}

type graphData struct {
	Nodes        map[string]graphNode         `json:"nodes"`
	Dependencies map[string][]graphDependency `json:"dependencies"`
}

type graphNode struct {
	Name string      `json:"name"`
	Type ProjectType `json:"type"`
	Data struct {
		Root    string            `json:"root"`
		Targets map[string]Target `json:"targets"`
	} `json:"data"`
}

type graphDependency struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Type   string `json:"type"`
}

// LoadGraphFile reads an exported project graph. root is the workspace the
// graph describes; node roots are relative to it.
func LoadGraphFile(fsys fs.FileSystem, root, path string) (*Graph, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading graph file: %w", err)
	}

	var doc graphDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing graph file %s: %w", path, err)
	}
	gd := doc.graphData
	if doc.Graph != nil {
		gd = *doc.Graph
	}
	if len(gd.Nodes) == 0 {
		return nil, fmt.Errorf("graph file %s has no project nodes", path)
	}

	names := make([]string, 0, len(gd.Nodes))
	for key := range gd.Nodes {
		names = append(names, key)
	}
	slices.Sort(names)

	graph := NewGraph(root)
	for _, key := range names {
		node := gd.Nodes[key]
		name := node.Name
		if name == "" {
			name = key
		}
		targets := node.Data.Targets
		if targets == nil {
			targets = make(map[string]Target)
		}
		if err := graph.AddProject(&Project{
			Name:    name,
			Type:    node.Type,
			Root:    node.Data.Root,
			Targets: targets,
		}); err != nil {
			return nil, err
		}
	}

	for _, source := range names {
		for _, dep := range gd.Dependencies[source] {
			from := dep.Source
			if from == "" {
				from = source
			}
			graph.AddDependency(from, dep.Target)
		}
	}
	return graph, nil
}
