package dilemma

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dilma-lab/dilma/internal/domain"
)

// Line is one non-blank line of a JSONL file.
type Line struct {
	Num int
	Raw []byte
}

// ScanFile calls fn for every non-blank line of a JSONL file. Lines of any
// length are delivered whole. Returning an error from fn stops the scan and
// returns that error.
func ScanFile(path string, fn func(Line) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ScanReader(f, fn)
}

// ScanReader is ScanFile over an arbitrary reader.
func ScanReader(r io.Reader, fn func(Line) error) error {
	br := bufio.NewReaderSize(r, 64*1024)

	num := 0
	for {
		buf, err := br.ReadBytes('\n')
		if len(buf) > 0 {
			num++
			if raw := bytes.TrimSpace(buf); len(raw) > 0 {
				if ferr := fn(Line{Num: num, Raw: raw}); ferr != nil {
					return ferr
				}
			}
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read line %d: %w", num+1, err)
		}
	}
}

// DiscoverFiles resolves path to a sorted list of .jsonl files. A file path
// must itself end in .jsonl. A directory yields its direct *.jsonl children,
// or every *.jsonl below it when recursive is set.
func DiscoverFiles(path string, recursive bool) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	if !info.IsDir() {
		if !isJSONL(path) {
			return nil, fmt.Errorf("%s is not a .jsonl file: %w", path, domain.ErrUnsupportedInput)
		}
		return []string{path}, nil
	}

	var files []string
	if recursive {
		err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && isJSONL(p) {
				files = append(files, p)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", path, err)
		}
	} else {
		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, fmt.Errorf("read dir %s: %w", path, err)
		}
		for _, e := range entries {
			if !e.IsDir() && isJSONL(e.Name()) {
				files = append(files, filepath.Join(path, e.Name()))
			}
		}
	}

	sort.Strings(files)
	return files, nil
}

func isJSONL(p string) bool {
	return strings.EqualFold(filepath.Ext(p), ".jsonl")
}

// Provenance derives the order (first directory under root) and tractate
// (file stem) of a dilemma file.
func Provenance(root, path string) (order, tractate string) {
	tractate = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	rel, err := filepath.Rel(root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", tractate
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")
	if len(parts) > 1 {
		order = parts[0]
	}
	return order, tractate
}
