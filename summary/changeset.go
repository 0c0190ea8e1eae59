package summary

import "github.com/codectx/codectx/scanner"

// ChangeSet partitions the current scan against the prior document.
type ChangeSet struct {
	New       []scanner.FileRecord
	Modified  []scanner.FileRecord
	Unchanged []scanner.FileRecord
	Deleted   []string
}

// Classify compares the scan records with the prior entries. With
// processAll set, fingerprint-equal files are treated as modified so
// every present file gets reprocessed; deletions are detected either
// way.
func Classify(records []scanner.FileRecord, prior map[string]Entry, processAll bool) ChangeSet {
	var cs ChangeSet
	present := make(map[string]struct{}, len(records))

	for _, rec := range records {
		present[rec.Path] = struct{}{}
		entry, ok := prior[rec.Path]
		switch {
		case !ok:
			cs.New = append(cs.New, rec)
		case processAll || entry.Fingerprint != rec.Fingerprint:
			cs.Modified = append(cs.Modified, rec)
		default:
			cs.Unchanged = append(cs.Unchanged, rec)
		}
	}

	for path := range prior {
		if _, ok := present[path]; !ok {
			cs.Deleted = append(cs.Deleted, path)
		}
	}
	return cs
}
