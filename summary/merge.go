package summary

import (
	"sort"

	"github.com/codectx/codectx/scanner"
)

// Merge builds the next document from the prior entries, the change
// classification and the freshly produced entries. Unchanged files keep
// their prior entry verbatim. A new or modified file whose processing
// failed falls back to its prior entry when one exists, otherwise it is
// omitted. Deleted files are dropped. Output is sorted by path.
func Merge(prior map[string]Entry, cs ChangeSet, fresh map[string]Entry) []Entry {
	out := make([]Entry, 0, len(cs.Unchanged)+len(cs.New)+len(cs.Modified))

	for _, rec := range cs.Unchanged {
		out = append(out, prior[rec.Path])
	}
	out = appendProcessed(out, cs.New, prior, fresh)
	out = appendProcessed(out, cs.Modified, prior, fresh)

	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

func appendProcessed(out []Entry, recs []scanner.FileRecord, prior, fresh map[string]Entry) []Entry {
	for _, rec := range recs {
		if e, ok := fresh[rec.Path]; ok {
			out = append(out, e)
			continue
		}
		if e, ok := prior[rec.Path]; ok {
			out = append(out, e)
		}
	}
	return out
}
