// Package config provides configuration management for rulekit.
// It supports YAML configuration files, environment variables, and
// sensible defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rulekit/rulekit/internal/adapter"
	"github.com/rulekit/rulekit/internal/source"
	"github.com/rulekit/rulekit/internal/sync"
	"github.com/rulekit/rulekit/internal/util"
)

// ProjectConfigName is the config file looked up in the project root.
const ProjectConfigName = "rulekit.yaml"

// Config represents the complete rulekit configuration.
type Config struct {
	// Sources are additional content roots merged after the project's
	// own content directory, in precedence order.
	Sources []SourceConfig `yaml:"sources,omitempty"`

	// Tools selects which editor tools receive distributed content.
	// Empty means all registered tools.
	Tools []string `yaml:"tools,omitempty"`

	// Sync configures default synchronization behavior.
	Sync SyncConfig `yaml:"sync"`

	// MCP configures the MCP servers distributed to editor configs.
	MCP MCPConfig `yaml:"mcp"`

	// Watch configures continuous sync.
	Watch WatchConfig `yaml:"watch"`

	// Output configures display preferences.
	Output OutputConfig `yaml:"output"`
}

// SourceConfig names one external content source.
type SourceConfig struct {
	// Kind is "local" or "package".
	Kind string `yaml:"kind"`
	// Location is a path for local sources, a package name otherwise.
	Location string `yaml:"location"`
}

// SyncConfig holds synchronization settings.
type SyncConfig struct {
	// Direction is the default sync direction (push, pull).
	Direction string `yaml:"direction"`
	// TieBreak picks the winner when conflicting copies share a
	// modification time (local, remote).
	TieBreak string `yaml:"tie_break"`
	// Prefer settles detected conflicts without prompting
	// (empty, source, target).
	Prefer string `yaml:"prefer,omitempty"`
	// Delete enables removal of target files absent from the source.
	Delete bool `yaml:"delete"`
	// Include is the scanner's include pattern list.
	Include []string `yaml:"include,omitempty"`
}

// MCPConfig holds MCP server definitions.
type MCPConfig struct {
	Servers map[string]MCPServerConfig `yaml:"servers,omitempty"`
}

// MCPServerConfig is one configured MCP server.
type MCPServerConfig struct {
	Command string            `yaml:"command"`
	Args    []string          `yaml:"args,omitempty"`
	Env     map[string]string `yaml:"env,omitempty"`
}

// WatchConfig holds continuous-sync settings.
type WatchConfig struct {
	// Debounce is the quiet period after the last change before a sync.
	Debounce time.Duration `yaml:"debounce"`
}

// OutputConfig holds display preferences.
type OutputConfig struct {
	// Format is the default output format (text, json).
	Format string `yaml:"format"`
	// Color controls color output (auto, always, never).
	Color string `yaml:"color"`
	// Verbose enables verbose output.
	Verbose bool `yaml:"verbose"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Sync: SyncConfig{
			Direction: sync.DirectionPush.String(),
			TieBreak:  string(sync.SideRemote),
			Delete:    false,
		},
		Watch: WatchConfig{
			Debounce: 500 * time.Millisecond,
		},
		Output: OutputConfig{
			Format:  "text",
			Color:   "auto",
			Verbose: false,
		},
	}
}

// UserConfigPath returns the user-level config file path.
func UserConfigPath() string {
	return filepath.Join(util.RulekitConfigPath(), "config.yaml")
}

// Load loads configuration for a project, merging the project's
// rulekit.yaml over the user-level config over defaults. Missing files
// contribute nothing.
func Load(projectRoot string) (*Config, error) {
	cfg := Default()

	for _, path := range []string{
		UserConfigPath(),
		filepath.Join(projectRoot, ProjectConfigName),
	} {
		// #nosec G304 - paths are fixed config locations
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.applyEnvironment()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromPath loads configuration from a specific file.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	// #nosec G304 - path is provided by caller
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.applyEnvironment()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SaveToPath writes the configuration to a specific path.
func (c *Config) SaveToPath(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return err
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	// #nosec G306 - config file should be readable by user
	return os.WriteFile(path, data, 0o644)
}

// applyEnvironment applies environment variable overrides.
// Variables follow the pattern RULEKIT_<SECTION>_<KEY>.
func (c *Config) applyEnvironment() {
	if v := os.Getenv("RULEKIT_SYNC_DIRECTION"); v != "" {
		c.Sync.Direction = v
	}
	if v := os.Getenv("RULEKIT_SYNC_TIE_BREAK"); v != "" {
		c.Sync.TieBreak = v
	}
	if v := os.Getenv("RULEKIT_SYNC_PREFER"); v != "" {
		c.Sync.Prefer = v
	}
	if v := os.Getenv("RULEKIT_SYNC_DELETE"); v != "" {
		c.Sync.Delete = parseBool(v)
	}

	if v := os.Getenv("RULEKIT_TOOLS"); v != "" {
		c.Tools = splitList(v)
	}

	if v := os.Getenv("RULEKIT_WATCH_DEBOUNCE"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Watch.Debounce = d
		}
	}

	if v := os.Getenv("RULEKIT_OUTPUT_FORMAT"); v != "" {
		c.Output.Format = v
	}
	if v := os.Getenv("RULEKIT_OUTPUT_COLOR"); v != "" {
		c.Output.Color = v
	}
	if v := os.Getenv("RULEKIT_OUTPUT_VERBOSE"); v != "" {
		c.Output.Verbose = parseBool(v)
	}
}

func (c *Config) validate() error {
	if !sync.Direction(c.Sync.Direction).IsValid() {
		return fmt.Errorf("invalid sync direction %q (want push or pull)", c.Sync.Direction)
	}
	switch sync.Side(c.Sync.TieBreak) {
	case sync.SideLocal, sync.SideRemote:
	default:
		return fmt.Errorf("invalid tie_break %q (want local or remote)", c.Sync.TieBreak)
	}
	switch sync.ConflictPreference(c.Sync.Prefer) {
	case sync.PreferNone, sync.PreferSource, sync.PreferTarget:
	default:
		return fmt.Errorf("invalid conflict preference %q (want source or target)", c.Sync.Prefer)
	}
	for _, src := range c.Sources {
		switch source.Kind(src.Kind) {
		case source.KindLocal, source.KindPackage:
		default:
			return fmt.Errorf("invalid source kind %q for %q", src.Kind, src.Location)
		}
	}
	return nil
}

// SyncOptions converts the sync section into executor options.
func (c *Config) SyncOptions(dryRun bool) sync.Options {
	return sync.Options{
		DryRun:           dryRun,
		Direction:        sync.Direction(c.Sync.Direction),
		Delete:           c.Sync.Delete,
		ResolveConflicts: sync.ConflictPreference(c.Sync.Prefer),
	}
}

// TieBreakSide returns the configured tie-break side.
func (c *Config) TieBreakSide() sync.Side {
	return sync.Side(c.Sync.TieBreak)
}

// ContentSources converts the sources section for the source resolver.
func (c *Config) ContentSources() []source.Source {
	sources := make([]source.Source, 0, len(c.Sources))
	for _, src := range c.Sources {
		sources = append(sources, source.Source{
			Kind:     source.Kind(src.Kind),
			Location: src.Location,
		})
	}
	return sources
}

// MCPServers converts the mcp section for the distributor.
func (c *Config) MCPServers() adapter.MCPServers {
	if len(c.MCP.Servers) == 0 {
		return nil
	}
	servers := make(adapter.MCPServers, len(c.MCP.Servers))
	for name, s := range c.MCP.Servers {
		servers[name] = adapter.MCPServer{
			Command: s.Command,
			Args:    s.Args,
			Env:     s.Env,
		}
	}
	return servers
}

// parseBool parses a boolean from common string representations.
func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "1" || s == "yes" || s == "on"
}

// splitList splits a comma-separated list, dropping empty segments.
func splitList(s string) []string {
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
