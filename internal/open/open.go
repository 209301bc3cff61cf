// Package open jumps to a transcript entry in an external editor.
package open

import (
	"bufio"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// LineOf returns the 1-based line of the entry whose uuid (or leafUuid for
// summaries) matches, or 0 if it is not in the file.
func LineOf(path, uuid string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 1024*1024), 64*1024*1024)
	n := 0
	for sc.Scan() {
		n++
		line := sc.Bytes()
		if !gjson.ValidBytes(line) {
			continue
		}
		res := gjson.GetManyBytes(line, "uuid", "leafUuid")
		if res[0].String() == uuid || (res[0].Type == gjson.Null && res[1].String() == uuid) {
			return n, nil
		}
	}
	return 0, sc.Err()
}

// Entry opens path in $EDITOR (less by default) at the line holding uuid,
// or at the top when uuid is empty or absent.
func Entry(path, uuid string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("file not found: %s", path)
	}

	lineNum := 1
	if uuid != "" {
		n, err := LineOf(path, uuid)
		if err != nil {
			return fmt.Errorf("find entry: %w", err)
		}
		if n == 0 {
			return fmt.Errorf("entry not found: %s", uuid)
		}
		lineNum = n
	}

	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "less"
	}
	cmd := editorCommand(editor, path, lineNum)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func editorCommand(editor, filePath string, lineNum int) *exec.Cmd {
	switch {
	case strings.Contains(editor, "vim") || strings.Contains(editor, "nvim"):
		return exec.Command(editor, fmt.Sprintf("+%d", lineNum), filePath)
	case strings.Contains(editor, "code"):
		return exec.Command(editor, "--goto", filePath+":"+strconv.Itoa(lineNum))
	case strings.Contains(editor, "less"):
		return exec.Command(editor, "+"+strconv.Itoa(lineNum), filePath)
	default:
		return exec.Command(editor, filePath)
	}
}
