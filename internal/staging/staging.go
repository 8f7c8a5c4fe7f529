// Package staging copies a curated list of source textures into the site
// tree. The block list is the manual counterpart of the generated catalog:
// one id per line, maintained by hand, synced verbatim.
package staging

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrMissingSource marks a source directory that does not exist.
var ErrMissingSource = errors.New("missing source directory")

// Result reports one sync run.
type Result struct {
	// Copied counts images written to the destination.
	Copied int

	// Missing lists ids whose source image was absent, in list order.
	Missing []string
}

// ReadBlockList parses a block-list file: one id per line, surrounding
// whitespace ignored, blank lines and #-comments skipped.
func ReadBlockList(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var ids []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		ids = append(ids, line)
	}
	return ids, nil
}

// Sync copies <srcDir>/<id>.png to <dstDir>/<id>.png for every id. Absent
// source images are collected in the result, not treated as errors; a
// failed copy aborts the run.
func Sync(srcDir, dstDir string, ids []string) (Result, error) {
	if _, err := os.Stat(srcDir); err != nil {
		return Result{}, fmt.Errorf("%w: %s", ErrMissingSource, srcDir)
	}
	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return Result{}, err
	}

	var res Result
	for _, id := range ids {
		src := filepath.Join(srcDir, id+".png")
		data, err := os.ReadFile(src)
		if err != nil {
			if os.IsNotExist(err) {
				res.Missing = append(res.Missing, id)
				continue
			}
			return res, err
		}
		if err := os.WriteFile(filepath.Join(dstDir, id+".png"), data, 0o644); err != nil {
			return res, fmt.Errorf("syncing %s: %w", id, err)
		}
		res.Copied++
	}
	return res, nil
}
