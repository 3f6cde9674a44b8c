package adapter

import (
	"fmt"
	"sort"

	"github.com/rulekit/rulekit/internal/content"
)

// Registry holds the known editor specs. Construct it once at startup
// with NewRegistry and pass it to whatever needs tool lookups.
type Registry struct {
	specs map[string]Spec
}

// NewRegistry builds the registry of supported editor tools.
func NewRegistry() *Registry {
	r := &Registry{specs: make(map[string]Spec)}
	for _, spec := range builtinSpecs() {
		r.specs[spec.Name] = spec
	}
	return r
}

// Get returns the spec for a tool name.
func (r *Registry) Get(name string) (Spec, bool) {
	spec, ok := r.specs[name]
	return spec, ok
}

// Names returns all registered tool names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.specs))
	for name := range r.specs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All returns every spec, sorted by name.
func (r *Registry) All() []Spec {
	specs := make([]Spec, 0, len(r.specs))
	for _, name := range r.Names() {
		specs = append(specs, r.specs[name])
	}
	return specs
}

// Resolve maps tool names to specs, failing on the first unknown name.
// An empty list selects every registered tool.
func (r *Registry) Resolve(names []string) ([]Spec, error) {
	if len(names) == 0 {
		return r.All(), nil
	}
	specs := make([]Spec, 0, len(names))
	for _, name := range names {
		spec, ok := r.specs[name]
		if !ok {
			return nil, fmt.Errorf("unknown editor tool %q (known: %v)", name, r.Names())
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

func allKindDirs(base string) map[content.Kind]string {
	return map[content.Kind]string{
		content.KindRule:     base + "/rules",
		content.KindSkill:    base + "/skills",
		content.KindWorkflow: base + "/workflows",
	}
}

func ruleDir(dir string) map[content.Kind]string {
	return map[content.Kind]string{content.KindRule: dir}
}

func builtinSpecs() []Spec {
	return []Spec{
		{
			Name:          "claude",
			DisplayName:   "Claude Code",
			Dirs:          allKindDirs(".claude"),
			Layout:        LayoutSubdir,
			EntryPoint:    "CLAUDE.md",
			MCPConfigPath: ".mcp.json",
			MCPFormat:     FormatJSON,
		},
		{
			Name:          "cursor",
			DisplayName:   "Cursor",
			Dirs:          ruleDir(".cursor/rules"),
			Layout:        LayoutFlat,
			MCPConfigPath: ".cursor/mcp.json",
			MCPFormat:     FormatJSON,
		},
		{
			Name:        "cline",
			DisplayName: "Cline",
			Dirs:        ruleDir(".clinerules"),
			Layout:      LayoutFlat,
		},
		{
			Name:          "windsurf",
			DisplayName:   "Windsurf",
			Dirs:          ruleDir(".windsurf/rules"),
			Layout:        LayoutFlat,
			MCPConfigPath: ".windsurf/mcp.json",
			MCPFormat:     FormatJSON,
		},
		{
			Name:          "copilot",
			DisplayName:   "GitHub Copilot",
			Dirs:          ruleDir(".github/instructions"),
			Layout:        LayoutFlat,
			EntryPoint:    ".github/copilot-instructions.md",
			GenerateEntry: entryContextOnly,
		},
		{
			Name:          "codex",
			DisplayName:   "Codex",
			Dirs:          allKindDirs(".codex"),
			Layout:        LayoutSubdir,
			EntryPoint:    "AGENTS.md",
			MCPConfigPath: ".codex/config.toml",
			MCPFormat:     FormatTOML,
		},
		{
			Name:          "aider",
			DisplayName:   "Aider",
			EntryPoint:    "CONVENTIONS.md",
			GenerateEntry: entryInline,
		},
		{
			Name:          "continue",
			DisplayName:   "Continue",
			Dirs:          ruleDir(".continue/rules"),
			Layout:        LayoutFlat,
			MCPConfigPath: ".continue/mcpServers/rulekit.json",
			MCPFormat:     FormatJSON,
		},
		{
			Name:        "roo",
			DisplayName: "Roo Code",
			Dirs:        ruleDir(".roo/rules"),
			Layout:      LayoutFlat,
		},
		{
			Name:          "zed",
			DisplayName:   "Zed",
			EntryPoint:    ".rules",
			GenerateEntry: entryInline,
		},
		{
			Name:          "junie",
			DisplayName:   "Junie",
			EntryPoint:    ".junie/guidelines.md",
			GenerateEntry: entryInline,
		},
		{
			Name:        "kiro",
			DisplayName: "Kiro",
			Dirs:        ruleDir(".kiro/steering"),
			Layout:      LayoutFlat,
		},
		{
			Name:          "gemini",
			DisplayName:   "Gemini CLI",
			EntryPoint:    "GEMINI.md",
			MCPConfigPath: ".gemini/settings.json",
			MCPFormat:     FormatJSON,
		},
		{
			Name:        "qodo",
			DisplayName: "Qodo",
			EntryPoint:  "best_practices.md",
		},
		{
			Name:        "amazonq",
			DisplayName: "Amazon Q Developer",
			Dirs:        ruleDir(".amazonq/rules"),
			Layout:      LayoutFlat,
		},
		{
			Name:          "tabnine",
			DisplayName:   "Tabnine",
			EntryPoint:    ".tabnine/guidelines.md",
			GenerateEntry: entryInline,
		},
		{
			Name:          "cody",
			DisplayName:   "Sourcegraph Cody",
			EntryPoint:    ".sourcegraph/memory.md",
			GenerateEntry: entryInline,
		},
		{
			Name:        "opencode",
			DisplayName: "OpenCode",
			Dirs:        allKindDirs(".opencode"),
			Layout:      LayoutSubdir,
			EntryPoint:  "AGENTS.md",
		},
		{
			Name:          "goose",
			DisplayName:   "Goose",
			EntryPoint:    ".goosehints",
			GenerateEntry: entryInline,
		},
		{
			Name:          "void",
			DisplayName:   "Void",
			EntryPoint:    ".voidrules",
			GenerateEntry: entryInline,
		},
	}
}
