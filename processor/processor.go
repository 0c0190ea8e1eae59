package processor

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/codectx/codectx/embed_data"
	"github.com/codectx/codectx/providers/contracts"
	"github.com/codectx/codectx/scanner"
	"github.com/codectx/codectx/summary"
	"github.com/codectx/codectx/token_management"
)

// Mode is the user-selected processing strategy.
type Mode string

const (
	ModeAI     Mode = "ai"
	ModeMock   Mode = "mock"
	ModeCopy   Mode = "copy"
	ModeStatic Mode = "static"
)

// Processor turns a file record into a summary entry.
type Processor struct {
	Mode      Mode
	Threshold int // estimated-token floor below which files are embedded raw
	Provider  contracts.ISummaryProvider
	Now       func() time.Time
}

// SelectKind picks the entry kind for a file. Copy mode and binaries
// always yield raw entries; files whose estimated token count falls
// below the threshold are embedded raw rather than summarized. A file
// exactly at the threshold gets the requested strategy.
func SelectKind(mode Mode, size int64, isBinary bool, threshold int) summary.Kind {
	if mode == ModeCopy || isBinary {
		return summary.KindRaw
	}
	if token_management.Estimate(size) < threshold {
		return summary.KindRaw
	}
	switch mode {
	case ModeMock:
		return summary.KindMock
	case ModeStatic:
		return summary.KindSignature
	default:
		return summary.KindAISummary
	}
}

// Kind resolves the entry kind for rec under this processor's settings.
func (p *Processor) Kind(rec scanner.FileRecord) summary.Kind {
	return SelectKind(p.Mode, rec.Size, rec.IsBinary, p.Threshold)
}

// Process produces the entry for rec. Unreadable files are terminal.
// Provider failures keep their own classification.
func (p *Processor) Process(ctx context.Context, rec scanner.FileRecord) (summary.Entry, error) {
	kind := p.Kind(rec)

	var body string
	switch kind {
	case summary.KindRaw:
		if rec.IsBinary {
			body = fmt.Sprintf("Binary file (%d bytes); content not included.", rec.Size)
			break
		}
		data, err := os.ReadFile(rec.AbsPath)
		if err != nil {
			return summary.Entry{}, Terminal(err)
		}
		body = string(data)
	case summary.KindMock:
		body = string(embed_data.MockSummary)
	case summary.KindSignature:
		data, err := os.ReadFile(rec.AbsPath)
		if err != nil {
			return summary.Entry{}, Terminal(err)
		}
		body, err = ExtractSignatures(rec.Path, data)
		if err != nil {
			return summary.Entry{}, Terminal(err)
		}
	case summary.KindAISummary:
		data, err := os.ReadFile(rec.AbsPath)
		if err != nil {
			return summary.Entry{}, Terminal(err)
		}
		body, err = p.Provider.Summarize(ctx, rec.Path, string(data))
		if err != nil {
			return summary.Entry{}, err
		}
	}

	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	return summary.Entry{
		Path:         rec.Path,
		Fingerprint:  rec.Fingerprint,
		Kind:         kind,
		SummarizedAt: now().Format(summary.TimeLayout),
		Body:         body,
	}, nil
}
