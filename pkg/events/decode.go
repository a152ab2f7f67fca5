package events

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ritzau/award-network/pkg/model"
)

// Decoded holds the events read from one input plus the records that were rejected
type Decoded struct {
	Events   []model.ActivityEvent
	Rejected []error
}

// DecodeJSON reads a JSON array of event objects, or an object with an
// "events" array. Field values may be strings, numbers or null.
func DecodeJSON(ctx context.Context, r io.Reader) (*Decoded, error) {
	br := bufio.NewReader(r)
	first, err := peekNonSpace(br)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return &Decoded{}, nil
		}
		return nil, err
	}

	var records []map[string]json.RawMessage
	dec := json.NewDecoder(br)
	switch first {
	case '[':
		if err := dec.Decode(&records); err != nil {
			return nil, fmt.Errorf("failed to decode event array: %w", err)
		}
	case '{':
		var envelope struct {
			Events []map[string]json.RawMessage `json:"events"`
		}
		if err := dec.Decode(&envelope); err != nil {
			return nil, fmt.Errorf("failed to decode event envelope: %w", err)
		}
		records = envelope.Events
	default:
		return nil, fmt.Errorf("unexpected JSON token %q, want array or object", first)
	}

	out := &Decoded{Events: make([]model.ActivityEvent, 0, len(records))}
	for i, rec := range records {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		values := make(map[string]string, len(rec))
		var bad error
		for k, raw := range rec {
			v, err := scalarString(raw)
			if err != nil {
				bad = &FieldError{Record: i + 1, Field: k, Err: err}
				break
			}
			values[k] = v
		}
		if bad != nil {
			out.Rejected = append(out.Rejected, bad)
			continue
		}
		e, err := assign(i+1, values)
		if err != nil {
			out.Rejected = append(out.Rejected, err)
			continue
		}
		out.Events = append(out.Events, e)
	}
	return out, nil
}

// scalarString flattens a JSON scalar to its text form
func scalarString(raw json.RawMessage) (string, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return "", nil
	}
	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return "", err
		}
		return s, nil
	case '{', '[':
		return "", fmt.Errorf("nested value not supported")
	default:
		// numbers and booleans keep their literal text
		return string(trimmed), nil
	}
}

func peekNonSpace(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.ReadByte()
		if err != nil {
			return 0, err
		}
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		case 0xEF:
			// UTF-8 byte order mark
			if _, err := br.Discard(2); err != nil {
				return 0, err
			}
			continue
		}
		if err := br.UnreadByte(); err != nil {
			return 0, err
		}
		return b, nil
	}
}

// DecodeCSV reads a CSV file whose header row names the event fields.
// Header names are matched case-insensitively.
func DecodeCSV(ctx context.Context, r io.Reader) (*Decoded, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return &Decoded{}, nil
		}
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	out := &Decoded{}
	for record := 1; ; record++ {
		if record%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				out.Rejected = append(out.Rejected, fmt.Errorf("record %d: %w", record, err))
				continue
			}
			return nil, err
		}
		if isBlank(row) {
			continue
		}

		values := make(map[string]string, len(header))
		for i, name := range header {
			if i < len(row) {
				values[name] = row[i]
			}
		}
		e, err := assign(record, values)
		if err != nil {
			out.Rejected = append(out.Rejected, err)
			continue
		}
		out.Events = append(out.Events, e)
	}
	return out, nil
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
