package extract

// Status classifies the outcome of extracting one file.
type Status int

const (
	// StatusExtracted means extraction produced text (possibly empty for a
	// document with no textual content).
	StatusExtracted Status = iota
	// StatusSkipped means the file type is unsupported; this is a skip
	// signal, not an error.
	StatusSkipped
	// StatusFailed means extraction was attempted and failed for this file.
	StatusFailed
)

// String returns the status name for logs and batch reports.
func (s Status) String() string {
	switch s {
	case StatusExtracted:
		return "extracted"
	case StatusSkipped:
		return "skipped"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result is the per-file outcome of an extraction attempt. Batch drivers
// aggregate Results instead of aborting on the first failure.
type Result struct {
	Status Status
	Text   string
	Reason string // populated for StatusSkipped
	Err    error  // populated for StatusFailed
}

func extracted(text string) Result { return Result{Status: StatusExtracted, Text: text} }

func skipped(reason string) Result { return Result{Status: StatusSkipped, Reason: reason} }

func failed(err error) Result { return Result{Status: StatusFailed, Err: err} }
