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
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// ErrNoOutputs is returned when a target has no output paths.
var ErrNoOutputs = errors.New("target has no outputs")

// Task identifies one target run of a project under a configuration. It is
// a plain value; nothing about it changes after construction.
type Task struct {
	Project       string
	Target        string
	Configuration string
}

var (
	tokenPattern      = regexp.MustCompile(`\{([^{}]+?)\}`)
	unresolvedPattern = regexp.MustCompile(`\{(projectRoot|workspaceRoot|options\..*)\}`)
)

// Outputs returns the workspace-relative output paths of task's target on
// the given project node. The node need not be task.Project: the target
// and configuration come from the task, everything else from the node.
//
// Declared outputs are interpolated; without them the target's outputPath
// option is used, and "build"/"prepare" targets fall back to the
// conventional locations.
func Outputs(task Task, node *Project) []string {
	targetConfig, hasTarget := node.Targets[task.Target]

	options := make(map[string]any)
	if hasTarget {
		for k, v := range targetConfig.Options {
			options[k] = v
		}
		for k, v := range targetConfig.Configurations[task.Configuration] {
			options[k] = v
		}
	}

	if hasTarget && targetConfig.Outputs != nil {
		data := map[string]any{
			"projectRoot": node.Root,
			"projectName": node.Name,
			"project":     map[string]any{"root": node.Root, "name": node.Name},
			"options":     options,
		}
		var outputs []string
		for _, output := range targetConfig.Outputs {
			resolved := interpolate(output, data)
			if resolved == "" || unresolvedPattern.MatchString(resolved) {
				continue
			}
			outputs = append(outputs, resolved)
		}
		return outputs
	}

	switch outputPath := options["outputPath"].(type) {
	case string:
		if outputPath != "" {
			return []string{outputPath}
		}
	case []any:
		var outputs []string
		for _, item := range outputPath {
			if s, ok := item.(string); ok {
				outputs = append(outputs, s)
			}
		}
		if len(outputs) > 0 {
			return outputs
		}
	}

	if task.Target == "build" || task.Target == "prepare" {
		return []string{
			path.Join("dist", node.Root),
			path.Join(node.Root, "dist"),
			path.Join(node.Root, "build"),
			path.Join(node.Root, "public"),
		}
	}
	return nil
}

// OutputDir returns the absolute path of the first output of task's target
// on the named project.
func (g *Graph) OutputDir(task Task, project string) (string, error) {
	node, ok := g.Project(project)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrProjectNotFound, project)
	}
	outputs := Outputs(task, node)
	if len(outputs) == 0 {
		return "", fmt.Errorf("%w: %s:%s", ErrNoOutputs, project, task.Target)
	}
	out := filepath.FromSlash(outputs[0])
	if filepath.IsAbs(out) {
		return filepath.Clean(out), nil
	}
	return filepath.Join(g.Root, out), nil
}

// interpolate replaces {a.b.c} tokens with values looked up in data.
// Tokens whose value is missing or empty are left in place.
func interpolate(template string, data map[string]any) string {
	template = strings.Replace(template, "{workspaceRoot}/", "", 1)
	return tokenPattern.ReplaceAllStringFunc(template, func(match string) string {
		var value any = data
		for _, key := range strings.Split(strings.TrimSpace(match[1:len(match)-1]), ".") {
			m, ok := value.(map[string]any)
			if !ok {
				return match
			}
			value = m[key]
		}
		if s, ok := render(value); ok {
			return s
		}
		return match
	})
}

func render(value any) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, v != ""
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), v != 0
	case bool:
		return "true", v
	}
	return "", false
}
