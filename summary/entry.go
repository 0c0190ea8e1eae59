package summary

// Kind identifies how an entry's body was produced.
type Kind string

const (
	KindAISummary Kind = "ai-summary"
	KindSignature Kind = "signature"
	KindRaw       Kind = "raw"
	KindMock      Kind = "mock"
)

// TimeLayout is the timestamp format used in the output document.
const TimeLayout = "2006-01-02 15:04:05"

// Entry is one file's record in the output document.
type Entry struct {
	Path         string
	Fingerprint  string
	Kind         Kind
	SummarizedAt string // TimeLayout formatted
	Body         string
}
