package source

import (
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Scan walks root (the Claude projects directory) and discovers all JSONL
// session files, newest modification first. A missing or unreadable root
// yields no files; unreadable entries below it are skipped. A symlinked root
// is followed, and returned paths stay under root as given.
func Scan(root string, registry Registry) []DiscoveredFile {
	info, err := os.Stat(root)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("claudit: scan %s: %v", root, err)
		}
		return nil
	}
	if !info.IsDir() {
		return nil
	}

	walkRoot, err := filepath.EvalSymlinks(root)
	if err != nil {
		log.Printf("claudit: scan %s: %v", root, err)
		return nil
	}

	var files []DiscoveredFile

	err = filepath.WalkDir(walkRoot, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil //nolint:nilerr // intentionally skip unreadable entries
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".jsonl") {
			return nil
		}

		fi, err := d.Info()
		if err != nil {
			return nil //nolint:nilerr // file vanished between readdir and stat
		}

		rel, err := filepath.Rel(walkRoot, path)
		if err != nil {
			return nil //nolint:nilerr // path is always below walkRoot
		}
		path = filepath.Join(root, rel)
		parts := strings.Split(rel, string(filepath.Separator))
		name := d.Name()

		// Files sitting directly in root belong to the root folder itself.
		projectDir := filepath.Base(root)
		if len(parts) >= 2 {
			projectDir = parts[0]
		}

		df := DiscoveredFile{
			Path:       path,
			Project:    registry.Project(projectDir),
			ProjectDir: projectDir,
			ModTime:    fi.ModTime(),
		}

		// Pattern: <project>/<session-uuid>/subagents/agent-<id>.jsonl
		if len(parts) >= 4 && parts[2] == "subagents" {
			df.IsSubagent = true
			df.ParentSession = parts[1]
			// Use parent+agent to avoid collisions across sessions
			df.SessionID = parts[1] + "/" + strings.TrimSuffix(name, ".jsonl")
		} else {
			df.SessionID = strings.TrimSuffix(name, ".jsonl")
		}

		files = append(files, df)
		return nil
	})
	if err != nil {
		log.Printf("claudit: scan %s: %v", root, err)
		return nil
	}

	sort.SliceStable(files, func(i, j int) bool {
		if !files[i].ModTime.Equal(files[j].ModTime) {
			return files[i].ModTime.After(files[j].ModTime)
		}
		return files[i].Path < files[j].Path
	})

	return files
}

// CountProjects returns the number of unique projects in a set of discovered files.
func CountProjects(files []DiscoveredFile) int {
	seen := make(map[string]struct{})
	for _, f := range files {
		seen[f.Project] = struct{}{}
	}
	return len(seen)
}
