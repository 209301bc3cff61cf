package model

import "encoding/json"

// ToolUseResult is the structured side-channel attached to a user entry
// that answers a tool call. Variants are matched by shape, not by a tag.
type ToolUseResult interface {
	isToolUseResult()
}

type TodoStatus string

const (
	TodoPending    TodoStatus = "pending"
	TodoInProgress TodoStatus = "in_progress"
	TodoCompleted  TodoStatus = "completed"
)

func (s TodoStatus) Valid() bool {
	return s == TodoPending || s == TodoInProgress || s == TodoCompleted
}

type TodoPriority string

const (
	PriorityHigh   TodoPriority = "high"
	PriorityMedium TodoPriority = "medium"
	PriorityLow    TodoPriority = "low"
)

func (p TodoPriority) Valid() bool {
	return p == PriorityHigh || p == PriorityMedium || p == PriorityLow
}

type TodoItem struct {
	ID       string       `json:"id"`
	Content  string       `json:"content"`
	Status   TodoStatus   `json:"status"`
	Priority TodoPriority `json:"priority"`
}

type TextResult string

type TodoList []TodoItem

type FileInfo struct {
	FilePath   string `json:"filePath"`
	Content    string `json:"content"`
	NumLines   int    `json:"numLines"`
	StartLine  int    `json:"startLine"`
	TotalLines int    `json:"totalLines"`
}

type FileReadResult struct {
	Type string   `json:"type"`
	File FileInfo `json:"file"`
}

type CommandResult struct {
	Stdout      string `json:"stdout"`
	Stderr      string `json:"stderr"`
	Interrupted bool   `json:"interrupted"`
	IsImage     bool   `json:"isImage"`
}

type TodoResult struct {
	OldTodos []TodoItem `json:"oldTodos"`
	NewTodos []TodoItem `json:"newTodos"`
}

type EditResult struct {
	OldString       *string `json:"oldString,omitempty"`
	NewString       *string `json:"newString,omitempty"`
	ReplaceAll      *bool   `json:"replaceAll,omitempty"`
	OriginalFile    *string `json:"originalFile,omitempty"`
	StructuredPatch any     `json:"structuredPatch,omitempty"`
	UserModified    *bool   `json:"userModified,omitempty"`
}

// ContentResult is an MCP-style list of content blocks.
type ContentResult []ContentBlock

// RawResult keeps a value that matched no other variant, verbatim.
type RawResult json.RawMessage

func (r RawResult) MarshalJSON() ([]byte, error) {
	if len(r) == 0 {
		return []byte("null"), nil
	}
	return json.RawMessage(r).MarshalJSON()
}

func (TextResult) isToolUseResult()     {}
func (TodoList) isToolUseResult()       {}
func (FileReadResult) isToolUseResult() {}
func (CommandResult) isToolUseResult()  {}
func (TodoResult) isToolUseResult()     {}
func (EditResult) isToolUseResult()     {}
func (ContentResult) isToolUseResult()  {}
func (RawResult) isToolUseResult()      {}
