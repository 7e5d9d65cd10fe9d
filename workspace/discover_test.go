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
package workspace_test

import (
	"reflect"
	"testing"

	"bennypowers.dev/bundledeps/internal/mapfs"
	"bennypowers.dev/bundledeps/testutil"
	"bennypowers.dev/bundledeps/workspace"
)

func TestDiscover(t *testing.T) {
	mfs := testutil.NewFixtureFS(t, "workspace", "/test")

	g, err := workspace.Discover(mfs, "/test", workspace.DiscoverOptions{})
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}

	var names []string
	for _, p := range g.Projects() {
		names = append(names, p.Name)
	}
	want := []string{"web", "bad", "feature", "legacy", "strings", "util", "left-pad"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("Projects = %v, want %v", names, want)
	}

	edges := map[string][]string{
		"web":      {"feature"},
		"feature":  {"util", "left-pad"},
		"util":     {"strings"},
		"legacy":   {"bad"},
		"strings":  nil,
		"left-pad": nil,
	}
	for project, deps := range edges {
		if got := g.Dependencies(project); !reflect.DeepEqual(got, deps) {
			t.Errorf("Dependencies(%s) = %v, want %v", project, got, deps)
		}
	}

	feature, _ := g.Project("feature")
	if feature.PackageName != "@acme/feature" {
		t.Errorf("feature.PackageName = %q", feature.PackageName)
	}
	if !feature.HasTarget("bundle") {
		t.Error("Expected feature to have a bundle target")
	}

	web, _ := g.Project("web")
	if web.Type != workspace.TypeApplication {
		t.Errorf("web.Type = %q, want app", web.Type)
	}

	leftPad, ok := g.Project("left-pad")
	if !ok {
		t.Fatal("Expected workspace package left-pad to become a project")
	}
	if leftPad.Root != "packages/left-pad" || leftPad.Type != workspace.TypeLibrary {
		t.Errorf("left-pad = %+v", leftPad)
	}
	if got := leftPad.Targets["build"].Executor; got != "nx:run-script" {
		t.Errorf("left-pad build executor = %q, want nx:run-script", got)
	}

	if _, ok := g.Project("stray"); ok {
		t.Error("Expected node_modules to be ignored")
	}
}

func TestDiscoverNonBuildable(t *testing.T) {
	mfs := testutil.NewFixtureFS(t, "workspace", "/test")

	g, err := workspace.Discover(mfs, "/test", workspace.DiscoverOptions{})
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}

	tests := []struct {
		project string
		target  string
		want    []string
	}{
		{"feature", "bundle", []string{"util", "strings", "left-pad"}},
		{"feature", "build", nil},
		{"web", "bundle", []string{"util", "strings", "left-pad"}},
		{"legacy", "bundle", []string{"bad"}},
	}
	for _, tt := range tests {
		t.Run(tt.project+":"+tt.target, func(t *testing.T) {
			got, err := g.NonBuildableDependencies(tt.project, tt.target)
			if err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDiscoverPackageNxBlock(t *testing.T) {
	mfs := mapfs.New()
	mfs.AddFile("/repo/package.json", `{"workspaces": {"packages": ["packages/*", "!packages/private"]}}`, 0644)
	mfs.AddFile("/repo/packages/core/package.json", `{
		"name": "@acme/core",
		"scripts": {"build": "tsc"},
		"nx": {
			"name": "core",
			"targets": {"build": {"executor": "@nx/js:tsc", "options": {"outputPath": "dist/core"}}}
		}
	}`, 0644)
	mfs.AddFile("/repo/packages/ui/package.json", `{"name": "@acme/ui", "peerDependencies": {"@acme/core": "*"}}`, 0644)
	mfs.AddFile("/repo/packages/private/package.json", `{"name": "@acme/private"}`, 0644)
	mfs.AddFile("/repo/packages/unnamed/package.json", `{}`, 0644)

	g, err := workspace.Discover(mfs, "/repo", workspace.DiscoverOptions{})
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}

	if len(g.Projects()) != 2 {
		t.Fatalf("Expected 2 projects, got %d", len(g.Projects()))
	}
	core, ok := g.Project("core")
	if !ok {
		t.Fatal("Expected nx.name to name the project")
	}
	if got := core.Targets["build"].Executor; got != "@nx/js:tsc" {
		t.Errorf("nx.targets should override scripts, got executor %q", got)
	}
	if got := g.Dependencies("@acme/ui"); !reflect.DeepEqual(got, []string{"core"}) {
		t.Errorf("Dependencies(@acme/ui) = %v", got)
	}
}

func TestDiscoverImplicitGlob(t *testing.T) {
	mfs := mapfs.New()
	mfs.AddFile("/repo/libs/a/project.json", `{"name": "shared-a"}`, 0644)
	mfs.AddFile("/repo/libs/b/project.json", `{"name": "shared-b"}`, 0644)
	mfs.AddFile("/repo/apps/site/project.json", `{
		"name": "site",
		"projectType": "application",
		"implicitDependencies": ["shared-*", "!shared-b"]
	}`, 0644)

	g, err := workspace.Discover(mfs, "/repo", workspace.DiscoverOptions{})
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}
	if got := g.Dependencies("site"); !reflect.DeepEqual(got, []string{"shared-a"}) {
		t.Errorf("Dependencies(site) = %v, want [shared-a]", got)
	}
}

func TestDiscoverErrors(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
		opts  workspace.DiscoverOptions
	}{
		{
			name:  "unknown implicit dependency",
			files: map[string]string{"/repo/libs/a/project.json": `{"name": "a", "implicitDependencies": ["ghost"]}`},
		},
		{
			name: "duplicate project names",
			files: map[string]string{
				"/repo/libs/a/project.json": `{"name": "dup"}`,
				"/repo/libs/b/project.json": `{"name": "dup"}`,
			},
		},
		{
			name:  "malformed project file",
			files: map[string]string{"/repo/libs/a/project.json": `{`},
		},
		{
			name:  "invalid pattern",
			files: map[string]string{"/repo/libs/a/project.json": `{}`},
			opts:  workspace.DiscoverOptions{Patterns: []string{"libs/[a"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mfs := mapfs.New()
			for path, content := range tt.files {
				mfs.AddFile(path, content, 0644)
			}
			if _, err := workspace.Discover(mfs, "/repo", tt.opts); err == nil {
				t.Error("Expected error")
			}
		})
	}
}

func TestDiscoverCustomPatterns(t *testing.T) {
	mfs := testutil.NewFixtureFS(t, "workspace", "/test")

	g, err := workspace.Discover(mfs, "/test", workspace.DiscoverOptions{
		Patterns: []string{"libs/*/project.json"},
		Ignore:   []string{"**/node_modules/**", "dist/**", "libs/legacy/**"},
	})
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}
	if _, ok := g.Project("web"); ok {
		t.Error("Expected apps/ to fall outside the patterns")
	}
	if _, ok := g.Project("legacy"); ok {
		t.Error("Expected libs/legacy to be ignored")
	}
	if _, ok := g.Project("util"); !ok {
		t.Error("Expected util to be discovered")
	}
}

func TestFindWorkspaceRoot(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*mapfs.MapFileSystem)
		start string
		want  string
	}{
		{
			name:  "nx.json",
			setup: func(m *mapfs.MapFileSystem) { m.AddFile("/repo/nx.json", "{}", 0644) },
			start: "/repo/libs/util/src",
			want:  "/repo",
		},
		{
			name: "package.json workspaces",
			setup: func(m *mapfs.MapFileSystem) {
				m.AddFile("/repo/package.json", `{"workspaces": ["packages/*"]}`, 0644)
				m.AddFile("/repo/packages/a/package.json", `{"name": "a"}`, 0644)
			},
			start: "/repo/packages/a",
			want:  "/repo",
		},
		{
			name:  "git directory",
			setup: func(m *mapfs.MapFileSystem) { m.AddDir("/repo/.git", 0755) },
			start: "/repo/src",
			want:  "/repo",
		},
		{
			name:  "nothing found",
			setup: func(m *mapfs.MapFileSystem) {},
			start: "/lonely/dir",
			want:  "/lonely/dir",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mfs := mapfs.New()
			tt.setup(mfs)
			if got := workspace.FindWorkspaceRoot(mfs, tt.start); got != tt.want {
				t.Errorf("FindWorkspaceRoot(%s) = %q, want %q", tt.start, got, tt.want)
			}
		})
	}
}
