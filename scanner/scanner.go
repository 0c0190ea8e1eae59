package scanner

import (
	"encoding/hex"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/codectx/codectx/ignore"
	"github.com/zeebo/xxh3"
)

// FileRecord describes one discovered file.
type FileRecord struct {
	Path        string // slash-separated, relative to the scan root
	AbsPath     string
	Size        int64
	Fingerprint string // 32 lowercase hex chars
	IsBinary    bool
}

// SkippedFile is a file that was discovered but excluded from
// processing, with a human-readable reason.
type SkippedFile struct {
	Path   string
	Reason string
}

// Result is the outcome of a scan.
type Result struct {
	Root    string
	Records []FileRecord
	Skipped []SkippedFile
}

// Scan walks root, applies the matcher, fingerprints every eligible
// file and flags binaries. Records come back in lexical path order.
// Unreadable files and files over maxFileSize are reported in Skipped
// rather than failing the scan.
func Scan(root string, matcher *ignore.Matcher, maxFileSize int64) (*Result, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("not a directory: %s", root)
	}

	result := &Result{Root: absRoot}

	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == absRoot {
				return err
			}
			rel, relErr := filepath.Rel(absRoot, path)
			if relErr != nil {
				rel = path
			}
			result.Skipped = append(result.Skipped, SkippedFile{
				Path:   filepath.ToSlash(rel),
				Reason: err.Error(),
			})
			return nil
		}
		if path == absRoot {
			return nil
		}

		rel, err := filepath.Rel(absRoot, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if matcher.Matches(rel, true) {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type()&fs.ModeSymlink != 0 {
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if matcher.Matches(rel, false) {
			return nil
		}

		fi, err := d.Info()
		if err != nil {
			result.Skipped = append(result.Skipped, SkippedFile{Path: rel, Reason: err.Error()})
			return nil
		}
		if fi.Size() > maxFileSize {
			result.Skipped = append(result.Skipped, SkippedFile{
				Path:   rel,
				Reason: fmt.Sprintf("exceeds maximum file size (%d bytes)", fi.Size()),
			})
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			result.Skipped = append(result.Skipped, SkippedFile{Path: rel, Reason: err.Error()})
			return nil
		}

		result.Records = append(result.Records, FileRecord{
			Path:        rel,
			AbsPath:     path,
			Size:        int64(len(data)),
			Fingerprint: Fingerprint(data),
			IsBinary:    isBinary(data),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Fingerprint returns the 128-bit content hash as 32 lowercase hex chars.
func Fingerprint(data []byte) string {
	sum := xxh3.Hash128(data).Bytes()
	return hex.EncodeToString(sum[:])
}

// isBinary applies a heuristic over the first 4 KiB: a null byte, or
// more than 10% control characters outside the usual whitespace set.
func isBinary(data []byte) bool {
	sample := data
	if len(sample) > 4096 {
		sample = sample[:4096]
	}
	if len(sample) == 0 {
		return false
	}

	control := 0
	for _, b := range sample {
		if b == 0 {
			return true
		}
		if b < 32 && b != '\t' && b != '\n' && b != '\r' && b != '\f' {
			control++
		}
	}
	return control*10 > len(sample)
}
