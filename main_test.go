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
package main

import (
	"bytes"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"bennypowers.dev/bundledeps/testutil"
)

func TestMain(m *testing.M) {
	// Build the binary before running tests
	wd := mustGetwd()
	cmd := exec.Command("go", "build", "-o", "bundledeps_test", ".")
	cmd.Dir = wd
	if out, err := cmd.CombinedOutput(); err != nil {
		panic("failed to build test binary: " + err.Error() + "\n" + string(out))
	}
	code := m.Run()
	_ = os.Remove(filepath.Join(wd, "bundledeps_test"))
	os.Exit(code)
}

func mustGetwd() string {
	wd, err := os.Getwd()
	if err != nil {
		panic(err)
	}
	return wd
}

func runCLI(t *testing.T, args ...string) (stdout, stderr string, exitCode int) {
	t.Helper()
	return runCLIWithEnv(t, nil, args...)
}

func runCLIWithEnv(t *testing.T, env []string, args ...string) (stdout, stderr string, exitCode int) {
	t.Helper()
	binary := filepath.Join(mustGetwd(), "bundledeps_test")
	cmd := exec.Command(binary, args...)
	cmd.Env = append(os.Environ(), env...)

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	err := cmd.Run()
	stdout = stdoutBuf.String()
	stderr = stderrBuf.String()

	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		} else {
			t.Fatalf("Failed to run CLI: %v", err)
		}
	}

	return stdout, stderr, exitCode
}

func readBundled(t *testing.T, root, project string) []string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(root, "dist", "libs", project, "package.json"))
	if err != nil {
		t.Fatalf("Failed to read output manifest: %v", err)
	}
	var pkg struct {
		BundledDependencies []string `json:"bundledDependencies"`
	}
	if err := json.Unmarshal(data, &pkg); err != nil {
		t.Fatalf("Failed to parse output manifest: %v", err)
	}
	return pkg.BundledDependencies
}

func TestBundle(t *testing.T) {
	root := testutil.CopyFixtureDir(t, "workspace")

	_, stderr, code := runCLI(t, "bundle", "--root", root, "--project", "feature", "--target", "bundle")
	if code != 0 {
		t.Fatalf("Expected exit code 0, got %d\nstderr: %s", code, stderr)
	}

	want := []string{"@acme/util", "@acme/strings", "left-pad"}
	if got := readBundled(t, root, "feature"); !reflect.DeepEqual(got, want) {
		t.Errorf("bundledDependencies = %v, want %v", got, want)
	}
	if _, err := os.Stat(filepath.Join(root, "dist", "libs", "feature", "node_modules", "left-pad", "index.js")); err != nil {
		t.Errorf("Expected left-pad to be copied: %v", err)
	}
	if !strings.Contains(stderr, "Processing util") {
		t.Errorf("Expected progress on stderr, got: %s", stderr)
	}

	// A second run is a no-op.
	manifest := filepath.Join(root, "dist", "libs", "feature", "package.json")
	before, _ := os.ReadFile(manifest)
	if _, stderr, code := runCLI(t, "bundle", "--root", root, "--project", "feature", "--target", "bundle"); code != 0 {
		t.Fatalf("Second run failed with %d\nstderr: %s", code, stderr)
	}
	after, _ := os.ReadFile(manifest)
	if !bytes.Equal(before, after) {
		t.Error("Expected the second run to leave the manifest unchanged")
	}
}

func TestBundleInvalidPackageName(t *testing.T) {
	root := testutil.CopyFixtureDir(t, "workspace")

	_, stderr, code := runCLI(t, "bundle", "--root", root, "--project", "legacy", "--target", "bundle")
	if code == 0 {
		t.Fatal("Expected non-zero exit code for an invalid package name")
	}
	if !strings.Contains(stderr, "The package name Bad_Name associated with bad is not valid") {
		t.Errorf("Expected invalid name diagnostic, got: %s", stderr)
	}
	if got := readBundled(t, root, "legacy"); len(got) != 0 {
		t.Errorf("Expected no bundledDependencies, got %v", got)
	}
}

func TestBundleFromEnvironment(t *testing.T) {
	root := testutil.CopyFixtureDir(t, "workspace")

	env := []string{
		"BUNDLEDEPS_ROOT=" + root,
		"BUNDLEDEPS_PROJECT=feature",
		"BUNDLEDEPS_TARGET=bundle",
	}
	if _, stderr, code := runCLIWithEnv(t, env, "bundle"); code != 0 {
		t.Fatalf("Expected exit code 0, got %d\nstderr: %s", code, stderr)
	}
	if got := readBundled(t, root, "feature"); len(got) != 3 {
		t.Errorf("bundledDependencies = %v", got)
	}
}

func TestBundleConfigFile(t *testing.T) {
	root := testutil.CopyFixtureDir(t, "workspace")
	config := "project: feature\ntarget: bundle\n"
	if err := os.WriteFile(filepath.Join(root, ".bundledeps.yaml"), []byte(config), 0644); err != nil {
		t.Fatal(err)
	}

	if _, stderr, code := runCLI(t, "bundle", "--root", root); code != 0 {
		t.Fatalf("Expected exit code 0, got %d\nstderr: %s", code, stderr)
	}
	if got := readBundled(t, root, "feature"); len(got) != 3 {
		t.Errorf("bundledDependencies = %v", got)
	}
}

func TestBundleMissingProject(t *testing.T) {
	root := testutil.CopyFixtureDir(t, "workspace")

	if _, _, code := runCLI(t, "bundle", "--root", root); code == 0 {
		t.Error("Expected non-zero exit code without --project")
	}
	if _, _, code := runCLI(t, "bundle", "--root", root, "--project", "ghost"); code == 0 {
		t.Error("Expected non-zero exit code for an unknown project")
	}
}

type dependency struct {
	Project          string `json:"project"`
	PackageName      string `json:"packageName"`
	ValidPackageName bool   `json:"validPackageName"`
	Scoped           bool   `json:"scoped"`
	OutputPath       string `json:"outputPath"`
}

func TestDeps(t *testing.T) {
	root := testutil.CopyFixtureDir(t, "workspace")

	stdout, stderr, code := runCLI(t, "deps", "--root", root, "--project", "feature", "--target", "bundle")
	if code != 0 {
		t.Fatalf("Expected exit code 0, got %d\nstderr: %s", code, stderr)
	}

	var deps []dependency
	if err := json.Unmarshal([]byte(stdout), &deps); err != nil {
		t.Fatalf("Failed to parse JSON output: %v\nstdout: %s", err, stdout)
	}
	if len(deps) != 3 {
		t.Fatalf("Expected 3 dependencies, got %d", len(deps))
	}
	if deps[0].PackageName != "@acme/util" || !deps[0].Scoped || !deps[0].ValidPackageName {
		t.Errorf("Unexpected first dependency: %+v", deps[0])
	}
	if want := filepath.Join(root, "dist", "libs", "util"); deps[0].OutputPath != want {
		t.Errorf("OutputPath = %q, want %q", deps[0].OutputPath, want)
	}

	// deps never writes to the workspace
	if got := readBundled(t, root, "feature"); len(got) != 0 {
		t.Errorf("Expected no bundledDependencies, got %v", got)
	}
}

func TestDepsOutputFile(t *testing.T) {
	root := testutil.CopyFixtureDir(t, "workspace")
	tmpFile := filepath.Join(t.TempDir(), "deps.json")

	stdout, stderr, code := runCLI(t, "deps", "--root", root, "--project", "legacy", "--target", "bundle", "-o", tmpFile)
	if code != 0 {
		t.Fatalf("Expected exit code 0, got %d\nstderr: %s", code, stderr)
	}
	if stdout != "" {
		t.Errorf("Expected no stdout when writing to file, got: %s", stdout)
	}

	data, err := os.ReadFile(tmpFile)
	if err != nil {
		t.Fatalf("Failed to read output file: %v", err)
	}
	var deps []dependency
	if err := json.Unmarshal(data, &deps); err != nil {
		t.Fatalf("Failed to parse output file: %v", err)
	}
	if len(deps) != 1 || deps[0].PackageName != "Bad_Name" || deps[0].ValidPackageName {
		t.Errorf("Unexpected dependencies: %+v", deps)
	}
}

func TestDepsGraphFile(t *testing.T) {
	root := testutil.CopyFixtureDir(t, "workspace")
	graphFile, err := filepath.Abs(testutil.FixturePath(t, "graph/graph.json"))
	if err != nil {
		t.Fatal(err)
	}

	stdout, stderr, code := runCLI(t, "deps", "--root", root, "--graph", graphFile, "--project", "web", "--target", "bundle")
	if code != 0 {
		t.Fatalf("Expected exit code 0, got %d\nstderr: %s", code, stderr)
	}
	var deps []dependency
	if err := json.Unmarshal([]byte(stdout), &deps); err != nil {
		t.Fatalf("Failed to parse JSON output: %v\nstdout: %s", err, stdout)
	}
	if len(deps) != 1 || deps[0].Project != "util" || deps[0].PackageName != "@acme/util" {
		t.Errorf("Unexpected dependencies: %+v", deps)
	}
}

func TestVerify(t *testing.T) {
	root := testutil.CopyFixtureDir(t, "workspace")
	manifest := filepath.Join(root, "dist", "libs", "feature", "package.json")
	stale := `{"name": "@acme/feature", "bundledDependencies": ["left-pad"]}`
	if err := os.WriteFile(manifest, []byte(stale), 0644); err != nil {
		t.Fatal(err)
	}

	stdout, _, code := runCLI(t, "verify", "--root", root, "--project", "feature")
	if code == 0 {
		t.Error("Expected non-zero exit code for a stale entry")
	}
	if strings.TrimSpace(stdout) != "left-pad" {
		t.Errorf("Expected stale entry on stdout, got: %q", stdout)
	}

	// bundle warns about the stale entry but does not repair it
	_, stderr, code := runCLI(t, "bundle", "--root", root, "--project", "feature", "--target", "bundle")
	if code != 0 {
		t.Fatalf("Expected exit code 0, got %d\nstderr: %s", code, stderr)
	}
	if !strings.Contains(stderr, "was already declared in your bundledDependencies") {
		t.Errorf("Expected stale warning, got: %s", stderr)
	}

	if err := os.MkdirAll(filepath.Join(root, "dist", "libs", "feature", "node_modules", "left-pad"), 0755); err != nil {
		t.Fatal(err)
	}
	if stdout, stderr, code := runCLI(t, "verify", "--root", root, "--project", "feature"); code != 0 {
		t.Errorf("Expected exit code 0, got %d\nstdout: %s\nstderr: %s", code, stdout, stderr)
	}
}

func TestVersion(t *testing.T) {
	stdout, stderr, code := runCLI(t, "version")
	if code != 0 {
		t.Fatalf("Expected exit code 0, got %d\nstderr: %s", code, stderr)
	}
	if !strings.HasPrefix(stdout, "bundledeps ") {
		t.Errorf("Expected version line, got: %s", stdout)
	}

	stdout, _, code = runCLI(t, "version", "-f", "json")
	if code != 0 {
		t.Fatalf("Expected exit code 0, got %d", code)
	}
	var info map[string]any
	if err := json.Unmarshal([]byte(stdout), &info); err != nil {
		t.Fatalf("Failed to parse JSON output: %v\nstdout: %s", err, stdout)
	}
	if _, ok := info["version"]; !ok {
		t.Errorf("Expected version field, got %v", info)
	}
}
