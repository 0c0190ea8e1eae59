package ignore

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

// IgnoreFileName is looked up in the scan root on every run.
const IgnoreFileName = ".codectxignore"

// DefaultPatterns are always active, ahead of anything loaded from the
// ignore file or passed on the command line.
var DefaultPatterns = []string{
	".git/",
	".hg/",
	".svn/",
	"__pycache__/",
	".pytest_cache/",
	".mypy_cache/",
	".tox/",
	".venv/",
	"venv/",
	"node_modules/",
	"dist/",
	"build/",
	"target/",
	".idea/",
	".vscode/",
	"*.pyc",
	"*.pyo",
	"*.class",
	"*.o",
	"*.so",
	"*.dll",
	"*.exe",
	"*.log",
	".DS_Store",
	".codectxignore",
}

// Matcher decides whether a relative path is excluded from a scan.
type Matcher struct {
	patterns []string

	// Malformed holds patterns rejected by filepath.Match. They never
	// exclude anything; callers surface them as warnings.
	Malformed []string
}

// NewMatcher builds a matcher from the default patterns, the root's
// ignore file if present, and any extra patterns. A missing ignore file
// is not an error.
func NewMatcher(root string, extra []string) (*Matcher, error) {
	patterns := make([]string, 0, len(DefaultPatterns)+len(extra))
	patterns = append(patterns, DefaultPatterns...)

	loaded, err := loadIgnoreFile(filepath.Join(root, IgnoreFileName))
	if err != nil {
		return nil, err
	}
	patterns = append(patterns, loaded...)
	patterns = append(patterns, extra...)

	m := &Matcher{}
	for _, p := range patterns {
		if _, err := filepath.Match(strings.TrimSuffix(p, "/"), "x"); err != nil {
			m.Malformed = append(m.Malformed, p)
			continue
		}
		m.patterns = append(m.patterns, p)
	}
	return m, nil
}

func loadIgnoreFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var patterns []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, line)
	}
	return patterns, scanner.Err()
}

// Matches reports whether the slash-separated relative path is
// excluded. Patterns apply to the path itself and to every trailing
// subpath, so "node_modules/" anywhere in the tree excludes the whole
// subtree. A "dir/*" pattern stays one level deep: it covers entries
// directly inside a matching directory, not the directory itself.
func (m *Matcher) Matches(rel string, isDir bool) bool {
	rel = filepath.ToSlash(rel)
	segments := strings.Split(rel, "/")

	for _, pattern := range m.patterns {
		dirOnly := strings.HasSuffix(pattern, "/")
		pattern = strings.TrimSuffix(pattern, "/")
		patSegs := strings.Split(filepath.ToSlash(pattern), "/")

		if matchesAt(segments, patSegs, dirOnly, isDir) {
			return true
		}
	}
	return false
}

// matchesAt tries the pattern segments against every window of the
// path segments. A directory pattern matching an intermediate window
// covers everything beneath it; matching the final segment requires
// the path to actually be a directory.
func matchesAt(segments, patSegs []string, dirOnly, isDir bool) bool {
	n := len(patSegs)
	for start := 0; start+n <= len(segments); start++ {
		ok := true
		for i := 0; i < n; i++ {
			matched, err := filepath.Match(patSegs[i], segments[start+i])
			if err != nil || !matched {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}
		if dirOnly {
			if start+n < len(segments) {
				return true
			}
			if isDir {
				return true
			}
			continue
		}
		// Plain patterns match files and directories alike, but only
		// at the end of the path.
		if start+n == len(segments) {
			return true
		}
	}
	return false
}
