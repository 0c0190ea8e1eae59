package summary

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// The document is plain markdown with a machine-readable metadata line
// per entry. The metadata records the exact number of body lines, so
// bodies containing "## " or "---" survive a load/save round trip.

var metaLine = regexp.MustCompile(
	`^Summarized on (\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}) \(fingerprint: ([0-9a-f]{32}), kind: ([a-z-]+), lines: (\d+)\)$`,
)

// Load reads the output document at path and returns its entries keyed
// by file path. A missing file yields an empty map. A document that
// does not parse also yields an empty map: a corrupt prior run means a
// full rebuild, never a crash.
func Load(path string) (map[string]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]Entry{}, nil
		}
		return nil, err
	}
	return parse(string(data)), nil
}

func parse(doc string) map[string]Entry {
	entries := map[string]Entry{}
	lines := strings.Split(doc, "\n")

	i := 0
	for i < len(lines) {
		if !strings.HasPrefix(lines[i], "## ") {
			i++
			continue
		}
		entryPath := strings.TrimPrefix(lines[i], "## ")

		// Expect: blank, metadata, blank, body lines.
		if i+2 >= len(lines) || lines[i+1] != "" {
			i++
			continue
		}
		m := metaLine.FindStringSubmatch(lines[i+2])
		if m == nil {
			i++
			continue
		}
		count, err := strconv.Atoi(m[4])
		if err != nil || i+4+count > len(lines) {
			i++
			continue
		}
		if lines[i+3] != "" {
			i++
			continue
		}

		body := strings.Join(lines[i+4:i+4+count], "\n")
		entries[entryPath] = Entry{
			Path:         entryPath,
			Fingerprint:  m[2],
			Kind:         Kind(m[3]),
			SummarizedAt: m[1],
			Body:         body,
		}
		i += 4 + count
	}
	return entries
}

// Save writes entries to path atomically: a temp file in the same
// directory, then a rename. Entries are written in the order given.
func Save(path string, entries []Entry, generatedAt time.Time) error {
	var sb strings.Builder
	sb.WriteString("# Project Context\n\n")
	sb.WriteString(fmt.Sprintf("Generated on %s\n\n", generatedAt.Format(TimeLayout)))
	sb.WriteString(fmt.Sprintf("Total files: %d\n\n", len(entries)))
	sb.WriteString("---\n\n")

	for _, e := range entries {
		bodyLines := len(strings.Split(e.Body, "\n"))
		sb.WriteString(fmt.Sprintf("## %s\n\n", e.Path))
		sb.WriteString(fmt.Sprintf("Summarized on %s (fingerprint: %s, kind: %s, lines: %d)\n\n",
			e.SummarizedAt, e.Fingerprint, e.Kind, bodyLines))
		sb.WriteString(e.Body)
		sb.WriteString("\n\n")
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.WriteString(sb.String()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
