package mcp

import "github.com/agentsync/agentsync/engine/platform"

// sectionKey returns the document key holding the servers for a
// dialect.
func sectionKey(d platform.Dialect) string {
	switch d {
	case platform.DialectCodex:
		return "mcp_servers"
	case platform.DialectOpenCode:
		return "mcp"
	default:
		return "mcpServers"
	}
}

// sectionOf extracts the servers section of a decoded document.
func sectionOf(doc map[string]any, d platform.Dialect) map[string]map[string]any {
	raw, ok := doc[sectionKey(d)].(map[string]any)
	if !ok {
		return nil
	}
	section := make(map[string]map[string]any, len(raw))
	for name, value := range raw {
		if entry, ok := value.(map[string]any); ok {
			section[name] = entry
		}
	}
	return section
}

// toDialect converts a canonical entry to the shape a dialect stores.
func toDialect(d platform.Dialect, s Server) map[string]any {
	switch d {
	case platform.DialectCodex:
		return toCodex(s)
	case platform.DialectOpenCode:
		return toOpenCode(s)
	default:
		out := make(map[string]any, len(s))
		for k, v := range s {
			out[k] = v
		}
		return out
	}
}

// fromDialect converts a stored entry back to canonical form.
func fromDialect(d platform.Dialect, entry map[string]any) Server {
	if d == platform.DialectOpenCode {
		return fromOpenCode(entry)
	}
	return Server(entry)
}

// toCodex keeps only the keys Codex understands.
func toCodex(s Server) map[string]any {
	out := make(map[string]any)
	for _, key := range []string{"command", "args", "env"} {
		if v, ok := s[key]; ok {
			out[key] = v
		}
	}
	return out
}

// toOpenCode translates to OpenCode's local/remote shapes. Entries
// without a type are treated as stdio.
func toOpenCode(s Server) map[string]any {
	kind, _ := s["type"].(string)
	if kind == "" || kind == "stdio" {
		command := make([]any, 0, 4)
		if cmd, ok := s["command"].(string); ok && cmd != "" {
			command = append(command, cmd)
		} else {
			command = append(command, "")
		}
		command = append(command, argList(s["args"])...)
		out := map[string]any{
			"type":    "local",
			"command": command,
			"enabled": true,
		}
		if env, ok := s["env"]; ok {
			out["environment"] = env
		}
		return out
	}
	url, _ := s["url"].(string)
	out := map[string]any{
		"type":    "remote",
		"url":     url,
		"enabled": true,
	}
	if headers, ok := s["headers"]; ok {
		out["headers"] = headers
	}
	return out
}

// fromOpenCode reverses toOpenCode so OpenCode configs can act as a
// sync source.
func fromOpenCode(entry map[string]any) Server {
	kind, _ := entry["type"].(string)
	out := make(Server)
	switch kind {
	case "local":
		out["type"] = "stdio"
		command := argList(entry["command"])
		if len(command) > 0 {
			out["command"] = command[0]
			if len(command) > 1 {
				out["args"] = command[1:]
			}
		}
		if env, ok := entry["environment"]; ok {
			out["env"] = env
		}
	case "remote":
		out["type"] = "http"
		if url, ok := entry["url"]; ok {
			out["url"] = url
		}
		if headers, ok := entry["headers"]; ok {
			out["headers"] = headers
		}
	default:
		for k, v := range entry {
			out[k] = v
		}
	}
	return out
}

// argList normalizes the decoded representation of a string list.
func argList(v any) []any {
	switch args := v.(type) {
	case []any:
		return args
	case []string:
		out := make([]any, len(args))
		for i, a := range args {
			out[i] = a
		}
		return out
	default:
		return nil
	}
}
