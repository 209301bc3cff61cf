package parse

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/Zuo-Peng/ai-session-log/internal/model"
)

// ToolUseResult matches raw against the tool-use-result shapes in order
// and returns the first that fits. Unmatched values are kept as RawResult.
func (p *Parser) ToolUseResult(raw json.RawMessage) model.ToolUseResult {
	if isNull(raw) {
		return nil
	}
	v := gjson.ParseBytes(raw)
	switch {
	case v.Type == gjson.String:
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return model.TextResult(s)
		}
	case v.IsArray():
		return p.listResult(raw, v)
	case v.IsObject():
		if r, ok := objectResult(raw); ok {
			return r
		}
	}
	return model.RawResult(raw)
}

func (p *Parser) listResult(raw json.RawMessage, v gjson.Result) model.ToolUseResult {
	items := v.Array()
	// MCP tool outputs: content blocks, non-object items dropped.
	if len(items) > 0 && items[0].IsObject() && items[0].Get("type").Exists() {
		blocks := make(model.ContentResult, 0, len(items))
		for _, it := range items {
			if it.IsObject() {
				blocks = append(blocks, p.ContentItem(json.RawMessage(it.Raw)))
			}
		}
		return blocks
	}
	if todos, err := todoList(raw); err == nil {
		return model.TodoList(todos)
	}
	return model.RawResult(raw)
}

func objectResult(raw json.RawMessage) (model.ToolUseResult, bool) {
	if r, err := fileReadResult(raw); err == nil {
		return r, true
	}
	if r, err := commandResult(raw); err == nil {
		return r, true
	}
	if r, err := todoResult(raw); err == nil {
		return r, true
	}
	if r, err := editResult(raw); err == nil {
		return r, true
	}
	return nil, false
}

func fileReadResult(raw []byte) (model.FileReadResult, error) {
	var v struct {
		Type *string `json:"type"`
		File *struct {
			FilePath   *string `json:"filePath"`
			Content    *string `json:"content"`
			NumLines   *int    `json:"numLines"`
			StartLine  *int    `json:"startLine"`
			TotalLines *int    `json:"totalLines"`
		} `json:"file"`
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return model.FileReadResult{}, err
	}
	switch {
	case v.Type == nil || *v.Type != "text":
		return model.FileReadResult{}, mistyped("type", `"text"`)
	case v.File == nil:
		return model.FileReadResult{}, required("file")
	case v.File.FilePath == nil || v.File.Content == nil:
		return model.FileReadResult{}, required("file.filePath")
	case v.File.NumLines == nil || v.File.StartLine == nil || v.File.TotalLines == nil:
		return model.FileReadResult{}, required("file.numLines")
	}
	return model.FileReadResult{
		Type: *v.Type,
		File: model.FileInfo{
			FilePath:   *v.File.FilePath,
			Content:    *v.File.Content,
			NumLines:   *v.File.NumLines,
			StartLine:  *v.File.StartLine,
			TotalLines: *v.File.TotalLines,
		},
	}, nil
}

func commandResult(raw []byte) (model.CommandResult, error) {
	var v struct {
		Stdout      *string `json:"stdout"`
		Stderr      *string `json:"stderr"`
		Interrupted *bool   `json:"interrupted"`
		IsImage     *bool   `json:"isImage"`
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return model.CommandResult{}, err
	}
	if v.Stdout == nil || v.Stderr == nil || v.Interrupted == nil || v.IsImage == nil {
		return model.CommandResult{}, required("stdout")
	}
	return model.CommandResult{
		Stdout:      *v.Stdout,
		Stderr:      *v.Stderr,
		Interrupted: *v.Interrupted,
		IsImage:     *v.IsImage,
	}, nil
}

func todoResult(raw []byte) (model.TodoResult, error) {
	var v struct {
		OldTodos json.RawMessage `json:"oldTodos"`
		NewTodos json.RawMessage `json:"newTodos"`
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return model.TodoResult{}, err
	}
	if isNull(v.OldTodos) || isNull(v.NewTodos) {
		return model.TodoResult{}, required("oldTodos")
	}
	oldTodos, err := todoList(v.OldTodos)
	if err != nil {
		return model.TodoResult{}, fmt.Errorf("oldTodos%w", err)
	}
	newTodos, err := todoList(v.NewTodos)
	if err != nil {
		return model.TodoResult{}, fmt.Errorf("newTodos%w", err)
	}
	return model.TodoResult{OldTodos: oldTodos, NewTodos: newTodos}, nil
}

var editKeys = []string{"oldString", "newString", "replaceAll", "originalFile", "structuredPatch", "userModified"}

func editResult(raw []byte) (model.EditResult, error) {
	obj := gjson.ParseBytes(raw)
	known := false
	for _, k := range editKeys {
		if obj.Get(k).Exists() {
			known = true
			break
		}
	}
	if !known {
		return model.EditResult{}, required("oldString")
	}
	var r model.EditResult
	if err := json.Unmarshal(raw, &r); err != nil {
		return model.EditResult{}, err
	}
	return r, nil
}

func todoList(raw []byte) ([]model.TodoItem, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, err
	}
	todos := make([]model.TodoItem, 0, len(items))
	for i, it := range items {
		t, err := todoItem(it)
		if err != nil {
			return nil, fmt.Errorf("[%d]: %w", i, err)
		}
		todos = append(todos, t)
	}
	return todos, nil
}

func todoItem(raw []byte) (model.TodoItem, error) {
	var v struct {
		ID       *string             `json:"id"`
		Content  *string             `json:"content"`
		Status   *model.TodoStatus   `json:"status"`
		Priority *model.TodoPriority `json:"priority"`
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return model.TodoItem{}, err
	}
	switch {
	case v.ID == nil:
		return model.TodoItem{}, required("id")
	case v.Content == nil:
		return model.TodoItem{}, required("content")
	case v.Status == nil || !v.Status.Valid():
		return model.TodoItem{}, mistyped("status", "pending, in_progress or completed")
	case v.Priority == nil || !v.Priority.Valid():
		return model.TodoItem{}, mistyped("priority", "high, medium or low")
	}
	return model.TodoItem{ID: *v.ID, Content: *v.Content, Status: *v.Status, Priority: *v.Priority}, nil
}
