package adapter

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/BurntSushi/toml"
)

// MCPServer is one MCP server definition distributed to editor configs.
type MCPServer struct {
	Command string            `json:"command" toml:"command"`
	Args    []string          `json:"args,omitempty" toml:"args,omitempty"`
	Env     map[string]string `json:"env,omitempty" toml:"env,omitempty"`
}

// MCPServers maps server names to definitions.
type MCPServers map[string]MCPServer

// renderMCPConfig serializes the server map in the tool's format. JSON
// output uses the conventional top-level "mcpServers" key; TOML uses
// per-server [mcp_servers.<name>] tables.
func renderMCPConfig(servers MCPServers, format ConfigFormat) ([]byte, error) {
	switch format {
	case FormatJSON:
		doc := struct {
			MCPServers MCPServers `json:"mcpServers"`
		}{MCPServers: servers}
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encode mcp config: %w", err)
		}
		return append(data, '\n'), nil

	case FormatTOML:
		doc := struct {
			MCPServers MCPServers `toml:"mcp_servers"`
		}{MCPServers: servers}
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(doc); err != nil {
			return nil, fmt.Errorf("encode mcp config: %w", err)
		}
		return buf.Bytes(), nil

	default:
		return nil, fmt.Errorf("unknown mcp config format %q", format)
	}
}
