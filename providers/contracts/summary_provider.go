package contracts

import "context"

// ISummaryProvider produces a structured summary for one source file.
type ISummaryProvider interface {
	Summarize(ctx context.Context, relPath string, content string) (string, error)
}
