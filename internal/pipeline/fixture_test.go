package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/theirongolddev/claudit/internal/model"
)

// entryLine renders an assistant JSONL line with the given usage.
func entryLine(uuid string, ts time.Time, modelName string, in, out int64) string {
	return fmt.Sprintf(
		`{"type":"assistant","uuid":%q,"sessionId":"s","timestamp":%q,"message":{"role":"assistant","model":%q,"content":[{"type":"text","text":"ok"}],"usage":{"input_tokens":%d,"output_tokens":%d}}}`,
		uuid, ts.UTC().Format(time.RFC3339Nano), modelName, in, out,
	)
}

// writeLog writes lines to root/project/session.jsonl with the given mtime.
func writeLog(t *testing.T, root, project, session string, mtime time.Time, lines ...string) string {
	t.Helper()
	dir := filepath.Join(root, project)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, session+".jsonl")
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatal(err)
	}
	return path
}

// rec builds an in-memory record for Compute/BuildCharts tests.
func rec(ts time.Time, modelName, project string, in, out int64) model.UsageRecord {
	return model.UsageRecord{
		Timestamp:    ts,
		Model:        modelName,
		Project:      project,
		InputTokens:  in,
		OutputTokens: out,
	}
}

func approx(a, b float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d < 1e-9
}

// syncProgress serializes a ProgressFunc; workers report concurrently.
func syncProgress(fn ProgressFunc) ProgressFunc {
	var mu sync.Mutex
	return func(current, total int) {
		mu.Lock()
		defer mu.Unlock()
		fn(current, total)
	}
}
