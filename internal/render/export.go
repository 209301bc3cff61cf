package render

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/Zuo-Peng/ai-session-log/internal/model"
	"github.com/Zuo-Peng/ai-session-log/internal/sanitize"
)

// WriteJSONL writes entries as normalized transcript lines.
func WriteJSONL(w io.Writer, entries []model.Entry) error {
	bw := bufio.NewWriter(w)
	for i, e := range entries {
		data, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("encode entry %d: %w", i, err)
		}
		if _, err := bw.Write(sanitize.Bytes(data)); err != nil {
			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}
