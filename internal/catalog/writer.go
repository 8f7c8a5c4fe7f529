package catalog

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"
)

// WriteJSON marshals v with two-space indentation and a trailing newline,
// then writes it atomically: the bytes land in a temp file that is
// renamed over path, so readers never observe a partial document.
func WriteJSON(path string, v any) error {
	data, err := marshalJSON(v)
	if err != nil {
		return err
	}
	return writeFileAtomic(path, data)
}

// WriteCatalog emits the catalog document and, when compress is set, a
// gzipped sibling at path + ".gz" with identical contents. The gzip
// header carries no timestamp, so identical inputs compress to identical
// bytes.
func WriteCatalog(path string, c Catalog, compress bool) error {
	data, err := marshalJSON(c)
	if err != nil {
		return err
	}
	if err := writeFileAtomic(path, data); err != nil {
		return err
	}
	if !compress {
		return nil
	}

	gz, err := gzipBytes(data)
	if err != nil {
		return err
	}
	return writeFileAtomic(path+".gz", gz)
}

func marshalJSON(v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

func writeFileAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func gzipBytes(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw, err := gzip.NewWriterLevel(&buf, gzip.BestCompression)
	if err != nil {
		return nil, err
	}
	if _, err := zw.Write(data); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
