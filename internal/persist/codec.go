package persist

import (
	"bytes"
	"fmt"
	"io"

	"github.com/goccy/go-json"
	"github.com/pierrec/lz4"
)

// lz4 frame magic, little-endian 0x184D2204.
var lz4Magic = []byte{0x04, 0x22, 0x4d, 0x18}

// Encode serializes r as JSON, LZ4-framed when compress is set.
func Encode(r Record, compress bool) ([]byte, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	if !compress {
		return data, nil
	}
	return compressLZ4(data)
}

// Decode parses a document written by Encode, detecting compression from
// the frame magic.
func Decode(data []byte) (Record, error) {
	if bytes.HasPrefix(data, lz4Magic) {
		plain, err := decompressLZ4(data)
		if err != nil {
			return Record{}, fmt.Errorf("decompress record: %w", err)
		}
		data = plain
	}
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return Record{}, fmt.Errorf("decode record: %w", err)
	}
	return r, nil
}

func compressLZ4(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := lz4.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		w.Close()
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decompressLZ4(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, lz4.NewReader(bytes.NewReader(data))); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
