package source

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
)

// Registry maps encoded project folder names to the absolute project paths
// registered in ~/.claude.json.
type Registry map[string]string

// EncodeProjectPath returns the folder name Claude Code stores a project's
// transcripts under: every path separator becomes "-".
func EncodeProjectPath(path string) string {
	return strings.NewReplacer("/", "-", `\`, "-").Replace(path)
}

// LoadRegistry reads the project registry at path. A missing or malformed
// file yields an empty registry.
func LoadRegistry(path string) Registry {
	data, err := os.ReadFile(path) //nolint:gosec // path is derived from the Claude dir
	if err != nil {
		return Registry{}
	}

	var raw struct {
		Projects map[string]json.RawMessage `json:"projects"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return Registry{}
	}

	reg := make(Registry, len(raw.Projects))
	for p := range raw.Projects {
		reg[EncodeProjectPath(p)] = p
	}
	return reg
}

// Project resolves an encoded folder name, falling back to the name itself.
func (r Registry) Project(encoded string) string {
	if p, ok := r[encoded]; ok {
		return p
	}
	return encoded
}

// ShortProjectName returns a compact display name for a project identifier.
// Registered projects are absolute paths and display as their last element.
// Unregistered ones are still encoded, so the name is recovered heuristically:
//
//	"-Users-alice-projects-gitlore" -> "gitlore"
//	"-Users-alice-projects-my-cool-project" -> "my-cool-project"
//
// We find the last known path component ("projects", "repos", "src", "code", ...)
// and take everything after it. Falls back to the last non-empty segment.
func ShortProjectName(project string) string {
	if strings.ContainsAny(project, `/\`) {
		base := filepath.Base(filepath.FromSlash(strings.ReplaceAll(project, `\`, "/")))
		if base != "." && base != string(filepath.Separator) {
			return base
		}
		return project
	}

	parts := strings.Split(project, "-")

	knownParents := map[string]bool{
		"projects": true, "repos": true, "src": true,
		"code": true, "workspace": true, "dev": true,
	}

	for i := len(parts) - 2; i >= 0; i-- {
		if knownParents[strings.ToLower(parts[i])] {
			name := strings.Join(parts[i+1:], "-")
			if name != "" {
				return name
			}
		}
	}

	for i := len(parts) - 1; i >= 0; i-- {
		if parts[i] != "" {
			return parts[i]
		}
	}

	return project
}
