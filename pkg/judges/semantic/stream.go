package semantic

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Snapshot lines can carry whole documents; allow generous line sizes
// before giving up on line-based parsing.
const maxLineSize = 4 * 1024 * 1024

// readSnapshot consumes a newline-delimited JSON stream and returns
// the last line that parsed as JSON, together with the number of body
// bytes consumed. Lines that do not parse are skipped; if no line
// parses at all, the whole body is parsed once as a fallback for
// judges that answer with a single unframed document.
func readSnapshot(r io.Reader) (any, int, error) {
	var body bytes.Buffer
	scanner := bufio.NewScanner(io.TeeReader(r, &body))
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	var snapshot any
	parsed := false
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var value any
		if err := json.Unmarshal([]byte(line), &value); err != nil {
			continue
		}
		snapshot = value
		parsed = true
	}
	if err := scanner.Err(); err != nil {
		// Drain the rest so the whole-body fallback sees everything.
		if _, copyErr := io.Copy(&body, r); copyErr != nil {
			return nil, body.Len(), fmt.Errorf("read stream: %w", err)
		}
	}
	if parsed {
		return snapshot, body.Len(), nil
	}

	var value any
	if err := json.Unmarshal(bytes.TrimSpace(body.Bytes()), &value); err != nil {
		return nil, body.Len(), fmt.Errorf("no parseable snapshot in stream: %w", err)
	}
	return value, body.Len(), nil
}
