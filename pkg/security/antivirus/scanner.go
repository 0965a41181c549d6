// Package antivirus scans uploaded CV bytes before they reach the analyzer.
package antivirus

import "context"

// Verdict is the outcome of one scan. Callers must reject the upload when
// Infected is set, including when Err is non-nil.
type Verdict struct {
	Infected bool
	Threat   string
	Scanner  string
	Err      error
}

// Scanner inspects a complete in-memory file.
type Scanner interface {
	Name() string
	Scan(ctx context.Context, data []byte) Verdict
	Ping(ctx context.Context) error
}
