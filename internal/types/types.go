package types

import (
	"strconv"
	"strings"
)

// Field identifies one logical column of a rule request row. Spreadsheets
// label these columns however they like; the config maps their literal
// header text onto these names.
type Field string

const (
	FieldSource      Field = "SRC"
	FieldDestination Field = "DST"
	FieldService     Field = "SRV"
	FieldAdd         Field = "ADD"
	FieldRemove      Field = "RM"
	FieldUsage       Field = "USG"
	FieldComment     Field = "CMT"
)

// RequiredFields must all resolve to a column before a sheet is converted.
// Usage and comment are optional.
var RequiredFields = []Field{FieldSource, FieldDestination, FieldService, FieldAdd, FieldRemove}

// CellKind distinguishes the three value shapes a spreadsheet cell can hold.
type CellKind int

const (
	CellEmpty CellKind = iota
	CellText
	CellNumber
)

// Cell is a single spreadsheet cell value.
type Cell struct {
	Kind CellKind
	Raw  string
}

// CellOf classifies a raw cell string as read from the workbook.
func CellOf(raw string) Cell {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Cell{Kind: CellEmpty}
	}
	if _, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return Cell{Kind: CellNumber, Raw: raw}
	}
	return Cell{Kind: CellText, Raw: raw}
}

// Norm returns the canonical text of the cell: trimmed for text and numbers,
// "" for empty cells.
func (c Cell) Norm() string {
	if c.Kind == CellEmpty {
		return ""
	}
	return strings.TrimSpace(c.Raw)
}

// ResolvedColumns maps each logical field found in a sheet's headers to its
// zero-based column index. Fields absent from the map were not resolved.
type ResolvedColumns map[Field]int

// CanonicalRow is one normalized output row in Secure Track Accept Format.
type CanonicalRow struct {
	Source      string
	Destination string
	Service     string
	Action      string // "accept", "remove", or ""
	Comment     string
}

// OutcomeKind classifies what happened to one input data row.
type OutcomeKind int

const (
	// Accepted rows are written to the output sheet.
	Accepted OutcomeKind = iota
	// Skipped rows were blank across source, destination, and service.
	Skipped
	// Rejected rows were partially filled or set both add and remove.
	Rejected
)

// RowOutcome is the result of normalizing one input data row. Reasons is
// populated only for Rejected rows, core-field reasons first.
type RowOutcome struct {
	Kind    OutcomeKind
	Row     CanonicalRow
	Reasons []string
}

// SheetResult summarizes the conversion of one input sheet.
type SheetResult struct {
	Sheet        string
	Converted    bool
	MissingField []Field
	RowsAccepted int
	RowsSkipped  int
	RowsRejected int
}

// FileResult summarizes the conversion of one input workbook.
type FileResult struct {
	Path   string
	Err    error
	Sheets []SheetResult
}

// RunResult aggregates a whole conversion run.
type RunResult struct {
	OutputFile      string
	Files           []FileResult
	SheetsWritten   int
	RowsAccepted    int
	RowsSkipped     int
	RowsRejected    int
	SheetsSkipped   int
	FilesUnreadable int
}
