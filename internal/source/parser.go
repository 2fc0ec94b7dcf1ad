// Package source discovers and parses Claude Code JSONL session files.
package source

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"time"

	"github.com/theirongolddev/claudit/internal/model"
)

// maxLineSize bounds a single JSONL line. Longer lines are counted and skipped.
const maxLineSize = 8 * 1024 * 1024

// ParseResult holds the output of parsing a single JSONL file.
type ParseResult struct {
	Records   []model.UsageRecord
	Lines     int // non-empty lines seen
	Oversized int // lines skipped for exceeding maxLineSize
	Err       error
}

// ParseFile reads a JSONL session file and returns every usage record in
// file order. Non-assistant and malformed lines are skipped silently.
// Deduplication is the caller's concern since it spans files.
func ParseFile(df DiscoveredFile) ParseResult {
	f, err := os.Open(df.Path)
	if err != nil {
		return ParseResult{Err: err}
	}
	defer func() { _ = f.Close() }()

	var res ParseResult
	res.Oversized, res.Err = eachLine(f, func(line []byte) {
		res.Lines++
		if rec, ok := ParseLine(line, df.Project); ok {
			res.Records = append(res.Records, rec)
		}
	})
	return res
}

// ParseLine decodes one JSONL line into a usage record. A record is produced
// only for assistant entries with assistant role, a usage object, a model
// name and an RFC3339 timestamp. The timestamp is normalized to UTC.
func ParseLine(line []byte, project string) (model.UsageRecord, bool) {
	// Most lines are user/progress/system entries; reject them before the
	// full decode.
	if typ, found := extractTopLevelType(line); found && typ != "assistant" {
		return model.UsageRecord{}, false
	}

	var entry RawEntry
	if err := json.Unmarshal(line, &entry); err != nil {
		return model.UsageRecord{}, false
	}
	if entry.Type != "assistant" || entry.Message == nil {
		return model.UsageRecord{}, false
	}

	msg := entry.Message
	if msg.Role != "assistant" || msg.Usage == nil || msg.Model == nil {
		return model.UsageRecord{}, false
	}

	ts, err := time.Parse(time.RFC3339Nano, entry.Timestamp)
	if err != nil {
		return model.UsageRecord{}, false
	}

	u := msg.Usage
	return model.UsageRecord{
		Timestamp:           ts.UTC(),
		SessionID:           entry.SessionID,
		Model:               *msg.Model,
		InputTokens:         clampInt64(u.InputTokens),
		OutputTokens:        clampInt64(u.OutputTokens),
		CacheCreationTokens: clampInt64(u.CacheCreationInputTokens),
		CacheReadTokens:     clampInt64(u.CacheReadInputTokens),
		UniqueID:            entry.UUID,
		Project:             project,
	}, true
}

func clampInt64(v uint64) int64 {
	const maxInt64 = 1<<63 - 1
	if v > maxInt64 {
		return maxInt64
	}
	return int64(v)
}

// eachLine calls fn for every non-empty line of r. The slice passed to fn is
// only valid for the duration of the call.
func eachLine(r io.Reader, fn func(line []byte)) (oversized int, err error) {
	br := bufio.NewReaderSize(r, 256*1024)

	var (
		buf  []byte
		skip bool
	)
	for {
		chunk, isPrefix, err := br.ReadLine()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return oversized, nil
			}
			return oversized, err
		}

		if !isPrefix && len(buf) == 0 && !skip {
			if len(bytes.TrimSpace(chunk)) > 0 {
				fn(chunk)
			}
			continue
		}

		if !skip && len(buf)+len(chunk) > maxLineSize {
			skip = true
			buf = buf[:0]
		}
		if !skip {
			buf = append(buf, chunk...)
		}
		if isPrefix {
			continue
		}

		if skip {
			oversized++
		} else if len(bytes.TrimSpace(buf)) > 0 {
			fn(buf)
		}
		buf = buf[:0]
		skip = false
	}
}

// typeKey is the byte sequence for a JSON key named "type" (with quotes).
var typeKey = []byte(`"type"`)

// extractTopLevelType finds the top-level "type" field in a JSONL line.
// Tracks brace depth and string boundaries so nested "type" keys are ignored.
// Early-exits once found (~400 bytes in), making cost O(1) vs line length.
// found is false when no plain string value could be located; callers must
// then fall back to a full decode.
func extractTopLevelType(line []byte) (val string, found bool) {
	depth := 0
	for i := 0; i < len(line); {
		switch line[i] {
		case '"':
			if depth == 1 && bytes.HasPrefix(line[i:], typeKey) {
				val, isKey, ok := classifyType(line, i+len(typeKey))
				if isKey {
					return val, ok // found the "type" key — done regardless of value
				}
				// "type" appeared as a value, not a key. Continue scanning.
			}
			i = skipJSONString(line, i)
		case '{', '[':
			depth++
			i++
		case '}', ']':
			depth--
			i++
		default:
			i++
		}
	}
	return "", false
}

// classifyType checks whether pos follows a JSON key (expects : then value).
// isKey=false means "type" appeared as a value, not a key — caller should continue.
// ok=false means the value is not a plain string and could not be classified.
func classifyType(line []byte, pos int) (val string, isKey, ok bool) {
	i := skipSpaces(line, pos)
	if i >= len(line) || line[i] != ':' {
		return "", false, false // no colon — this was a value, not a key
	}
	i = skipSpaces(line, i+1)
	if i >= len(line) || line[i] != '"' {
		return "", true, true // key with non-string value (null, number, etc.)
	}
	i++ // past opening quote

	end := bytes.IndexByte(line[i:], '"')
	if end < 0 || end > 64 {
		return "", true, false
	}
	v := line[i : i+end]
	if bytes.IndexByte(v, '\\') >= 0 {
		return "", true, false // escaped value, leave it to the decoder
	}
	return string(v), true, true
}

// skipJSONString advances past a JSON string starting at the opening quote.
//
//nolint:gosec // manual bounds checking throughout
func skipJSONString(line []byte, i int) int {
	i++ // skip opening quote
	for i < len(line) {
		switch line[i] {
		case '\\':
			i += 2
		case '"':
			return i + 1
		default:
			i++
		}
	}
	return i
}

func skipSpaces(line []byte, i int) int {
	for i < len(line) {
		switch line[i] {
		case ' ', '\t', '\r', '\n':
			i++
		default:
			return i
		}
	}
	return i
}
