package document

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/segmentio/encoding/json"

	"github.com/inamate/inamate/editor-go/internal/geometry"
)

// Marshal encodes shapes as a pretty-printed JSON array of records.
func Marshal(shapes []geometry.Shape) ([]byte, error) {
	data, err := json.MarshalIndent(ToRecords(shapes), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal shapes: %w", err)
	}
	return data, nil
}

// Encode writes shapes to w as a pretty-printed JSON array.
func Encode(w io.Writer, shapes []geometry.Shape) error {
	data, err := Marshal(shapes)
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

// Unmarshal decodes a JSON array of records. Records that fail on their own
// are skipped and reported in errs; err is only set when the array itself
// cannot be read.
func Unmarshal(data []byte) (shapes []geometry.Shape, errs []error, err error) {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, nil, fmt.Errorf("decode shapes: %w", err)
	}

	shapes = make([]geometry.Shape, 0, len(raws))
	for i, raw := range raws {
		var rec Record
		if err := json.Unmarshal(raw, &rec); err != nil {
			errs = append(errs, skip(i, err))
			continue
		}
		s, err := FromRecord(rec)
		if err != nil {
			errs = append(errs, skip(i, err))
			continue
		}
		shapes = append(shapes, s)
	}
	return shapes, errs, nil
}

// Decode reads a JSON array of records from r. See Unmarshal.
func Decode(r io.Reader) ([]geometry.Shape, []error, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, fmt.Errorf("read shapes: %w", err)
	}
	return Unmarshal(data)
}

func skip(i int, err error) error {
	slog.Warn("skip shape record", "index", i, "error", err)
	return &RecordError{Index: i, Err: err}
}

// SaveFile writes shapes to path, replacing it.
func SaveFile(path string, shapes []geometry.Shape) error {
	var buf bytes.Buffer
	if err := Encode(&buf, shapes); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("save shapes: %w", err)
	}
	return nil
}

// LoadFile reads shapes from path. See Unmarshal for the error split.
func LoadFile(path string) ([]geometry.Shape, []error, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("load shapes: %w", err)
	}
	defer f.Close()
	return Decode(f)
}
