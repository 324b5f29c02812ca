// Package export renders office reports as HTML and converts them to PDF
// with headless Chrome.
package export

import "errors"

// Format represents the export output format.
type Format string

const (
	FormatHTML Format = "html"
	FormatPDF  Format = "pdf"
)

// Report identifies which report to generate.
type Report string

const (
	ReportFinancial Report = "financial"
	ReportProcesses Report = "processes"
)

// Request contains parameters for an export operation.
type Request struct {
	Report Report
	Format Format
	// Month limits the financial report to entries due in YYYY-MM.
	// Empty means all entries.
	Month string
}

// Result contains the export output.
type Result struct {
	Data     []byte
	Filename string
	MimeType string
}

var (
	// ErrPDFDependencyMissing indicates PDF export runtime dependencies are unavailable.
	ErrPDFDependencyMissing = errors.New("export pdf dependency missing")
	// ErrUnknownReport indicates the requested report does not exist.
	ErrUnknownReport = errors.New("export unknown report")
)
