package source

import (
	"encoding/json"
	"time"
)

// RawEntry represents a single line in a Claude Code JSONL session file.
// Only the fields usage accounting needs are decoded.
type RawEntry struct {
	Type      string      `json:"type"`
	Timestamp string      `json:"timestamp,omitempty"`
	SessionID string      `json:"sessionId,omitempty"`
	UUID      string      `json:"uuid,omitempty"`
	Cwd       string      `json:"cwd,omitempty"`
	Message   *RawMessage `json:"message,omitempty"`
}

// RawMessage represents the assistant's message envelope.
type RawMessage struct {
	ID    string    `json:"id"`
	Role  string    `json:"role"`
	Model *string   `json:"model"`
	Usage *RawUsage `json:"usage,omitempty"`
}

// RawUsage holds token counts from the API response. Counts are unsigned so
// negative or fractional values fail the decode.
type RawUsage struct {
	InputTokens              uint64 `json:"input_tokens"`
	OutputTokens             uint64 `json:"output_tokens"`
	CacheCreationInputTokens uint64 `json:"cache_creation_input_tokens"`
	CacheReadInputTokens     uint64 `json:"cache_read_input_tokens"`
}

// contentEntry decodes the message content of an assistant line. It is kept
// apart from RawEntry so that unusual content shapes never affect usage parsing.
type contentEntry struct {
	Type    string `json:"type"`
	Message *struct {
		Role    string         `json:"role"`
		Content []ContentBlock `json:"content"`
	} `json:"message"`
}

// BlockKind tags a ContentBlock.
type BlockKind int

// Content block kinds. Anything unrecognised decodes as BlockOther.
const (
	BlockOther BlockKind = iota
	BlockText
	BlockThinking
	BlockToolUse
)

func (k BlockKind) String() string {
	switch k {
	case BlockText:
		return "text"
	case BlockThinking:
		return "thinking"
	case BlockToolUse:
		return "tool_use"
	default:
		return "other"
	}
}

// ContentBlock is one element of an assistant message's content array.
// Exactly the fields belonging to Kind are populated.
type ContentBlock struct {
	Kind      BlockKind
	Type      string // raw "type" value
	Text      string
	Thinking  string
	Signature string
	ToolID    string
	ToolName  string
	ToolInput json.RawMessage
}

// UnmarshalJSON reads the "type" discriminator first, then decodes the
// payload for that variant. Unknown types and variants missing their payload
// field become BlockOther instead of failing the whole message.
func (b *ContentBlock) UnmarshalJSON(data []byte) error {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return err
	}
	*b = ContentBlock{Kind: BlockOther, Type: head.Type}

	switch head.Type {
	case "text":
		var v struct {
			Text *string `json:"text"`
		}
		if err := json.Unmarshal(data, &v); err == nil && v.Text != nil {
			b.Kind = BlockText
			b.Text = *v.Text
		}
	case "thinking":
		var v struct {
			Thinking  *string `json:"thinking"`
			Signature string  `json:"signature"`
		}
		if err := json.Unmarshal(data, &v); err == nil && v.Thinking != nil {
			b.Kind = BlockThinking
			b.Thinking = *v.Thinking
			b.Signature = v.Signature
		}
	case "tool_use":
		var v struct {
			ID    string          `json:"id"`
			Name  string          `json:"name"`
			Input json.RawMessage `json:"input"`
		}
		if err := json.Unmarshal(data, &v); err == nil {
			b.Kind = BlockToolUse
			b.ToolID = v.ID
			b.ToolName = v.Name
			b.ToolInput = v.Input
		}
	}
	return nil
}

// DiscoveredFile represents a JSONL file found during directory scanning.
type DiscoveredFile struct {
	Path          string
	Project       string // registered project path, or ProjectDir when unregistered
	ProjectDir    string // raw encoded directory name
	SessionID     string // extracted from filename
	IsSubagent    bool
	ParentSession string // for subagents: parent session UUID
	ModTime       time.Time
}
