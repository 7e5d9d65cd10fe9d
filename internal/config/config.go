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
// Package config resolves bundledeps settings from flags, environment
// variables and an optional .bundledeps config file in the workspace root.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"bennypowers.dev/bundledeps/bundle"
	"bennypowers.dev/bundledeps/fs"
	"bennypowers.dev/bundledeps/workspace"
)

const (
	// FileName is the config file base name; any extension viper
	// understands (yaml, json, toml, ...) is accepted.
	FileName = ".bundledeps"
	// EnvPrefix prefixes environment variables, e.g. BUNDLEDEPS_PROJECT.
	EnvPrefix = "BUNDLEDEPS"
)

// ErrMissingProject is returned when a command needs --project and none is set.
var ErrMissingProject = errors.New("no project given: use --project or set BUNDLEDEPS_PROJECT")

// Config is the resolved configuration for one command run.
type Config struct {
	Root          string   `mapstructure:"root"`
	Graph         string   `mapstructure:"graph"`
	Verbose       bool     `mapstructure:"verbose"`
	Project       string   `mapstructure:"project"`
	Target        string   `mapstructure:"target"`
	Configuration string   `mapstructure:"configuration"`
	Output        string   `mapstructure:"output"`
	Projects      []string `mapstructure:"projects"`
	Ignore        []string `mapstructure:"ignore"`

	// File is the config file that was read, if any.
	File string `mapstructure:"-"`
}

// SetDefaults registers the default value of every key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("root", "")
	v.SetDefault("graph", "")
	v.SetDefault("verbose", false)
	v.SetDefault("project", "")
	v.SetDefault("target", bundle.BuildTarget)
	v.SetDefault("configuration", "")
	v.SetDefault("output", "")
	v.SetDefault("projects", workspace.DefaultPatterns)
	v.SetDefault("ignore", workspace.DefaultIgnore)
}

// AddTaskFlags adds --project and --configuration to cmd, and --target
// when withTarget is set.
func AddTaskFlags(cmd *cobra.Command, withTarget bool) {
	cmd.Flags().StringP("project", "p", "", "Project whose build output receives the bundle")
	if withTarget {
		cmd.Flags().StringP("target", "t", bundle.BuildTarget, "Target a dependency must define to count as buildable")
	}
	cmd.Flags().StringP("configuration", "c", "", "Build configuration used to locate outputs")
}

// Load binds flags to v, reads the environment and the workspace config
// file, and decodes the result. Precedence is flag, environment, config
// file, default. The workspace root is --root, or else the nearest
// ancestor of the working directory that looks like a workspace.
func Load(v *viper.Viper, flags *pflag.FlagSet, fsys fs.FileSystem) (*Config, error) {
	SetDefaults(v)
	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("binding flags: %w", err)
		}
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	root, err := resolveRoot(fsys, v.GetString("root"))
	if err != nil {
		return nil, err
	}

	v.SetConfigName(FileName)
	v.AddConfigPath(root)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	cfg.Root = root
	cfg.File = v.ConfigFileUsed()
	if cfg.Graph != "" && !filepath.IsAbs(cfg.Graph) {
		abs, err := filepath.Abs(cfg.Graph)
		if err != nil {
			return nil, fmt.Errorf("invalid graph file path: %w", err)
		}
		cfg.Graph = abs
	}
	return &cfg, nil
}

func resolveRoot(fsys fs.FileSystem, root string) (string, error) {
	if root != "" {
		abs, err := filepath.Abs(root)
		if err != nil {
			return "", fmt.Errorf("invalid workspace root: %w", err)
		}
		return abs, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("finding working directory: %w", err)
	}
	return workspace.FindWorkspaceRoot(fsys, wd), nil
}

// Options returns the bundle options for the configured project.
func (c *Config) Options() (bundle.Options, error) {
	if c.Project == "" {
		return bundle.Options{}, ErrMissingProject
	}
	return bundle.Options{
		Project:       c.Project,
		Target:        c.Target,
		Configuration: c.Configuration,
	}, nil
}

// LoadGraph reads the exported graph file when one is configured, and
// otherwise discovers the workspace.
func (c *Config) LoadGraph(fsys fs.FileSystem) (*workspace.Graph, error) {
	if c.Graph != "" {
		return workspace.LoadGraphFile(fsys, c.Root, c.Graph)
	}
	return workspace.Discover(fsys, c.Root, workspace.DiscoverOptions{
		Patterns: c.Projects,
		Ignore:   c.Ignore,
	})
}
