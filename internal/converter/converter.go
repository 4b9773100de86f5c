package converter

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/chumicat/SecureChangeRequestFormatter/internal/config"
	"github.com/chumicat/SecureChangeRequestFormatter/internal/logging"
	"github.com/chumicat/SecureChangeRequestFormatter/internal/types"

	"github.com/xuri/excelize/v2"
)

// output sheet column widths, matching the Secure Track import template.
var outputWidths = []float64{15, 15, 15, 8, 130}

// Run converts every input workbook into one output workbook in Secure Track
// Accept Format. Files, sheets, and rows are processed strictly in order;
// each accepted sheet becomes a fresh output sheet. Failures are contained
// to their scope: an unreadable file, an unresolvable sheet, or an invalid
// row is reported and the run moves on.
//
// progressChan, if non-nil, receives the fraction of input files completed.
// Sends never block.
func Run(cfg *config.Config, inputs []string, outputPath string, sink logging.Sink, progressChan chan<- float64) (*types.RunResult, error) {
	if outputPath == "" {
		return nil, fmt.Errorf("output file is empty")
	}

	reverseIndex := cfg.ReverseIndex()

	out := excelize.NewFile()
	defer out.Close()

	result := &types.RunResult{OutputFile: outputPath}
	outSheets := 0

	for i, path := range inputs {
		sink.Infof("--- Processing file: %s ---", filepath.Base(path))

		fileResult := convertFile(out, &outSheets, cfg, reverseIndex, path, sink)
		result.Files = append(result.Files, fileResult)
		if fileResult.Err != nil {
			result.FilesUnreadable++
		}
		for _, s := range fileResult.Sheets {
			if s.Converted {
				result.SheetsWritten++
			} else {
				result.SheetsSkipped++
			}
			result.RowsAccepted += s.RowsAccepted
			result.RowsSkipped += s.RowsSkipped
			result.RowsRejected += s.RowsRejected
		}

		if progressChan != nil {
			select {
			case progressChan <- float64(i+1) / float64(len(inputs)):
			default:
			}
		}
	}

	if err := out.SaveAs(outputPath); err != nil {
		return nil, fmt.Errorf("saving output workbook: %w", err)
	}

	return result, nil
}

// convertFile converts all sheets of one input workbook. Open/parse errors
// are recorded on the FileResult; they abandon the file, not the run.
func convertFile(out *excelize.File, outSheets *int, cfg *config.Config, reverseIndex map[string]types.Field, path string, sink logging.Sink) types.FileResult {
	fileResult := types.FileResult{Path: path}

	in, err := excelize.OpenFile(path)
	if err != nil {
		sink.Errorf("ERROR: cannot open %s: %v", filepath.Base(path), err)
		fileResult.Err = err
		return fileResult
	}
	defer in.Close()

	for _, sheetName := range in.GetSheetList() {
		rows, err := in.GetRows(sheetName)
		if err != nil {
			sink.Errorf("ERROR: cannot read sheet [%s]: %v", sheetName, err)
			fileResult.Err = err
			return fileResult
		}
		sheetResult := convertSheet(out, outSheets, cfg, reverseIndex, sheetName, rows, sink)
		fileResult.Sheets = append(fileResult.Sheets, sheetResult)
	}

	return fileResult
}

// convertSheet resolves one sheet's headers and normalizes its data rows
// into a fresh output sheet. A sheet whose headers don't cover the required
// fields is skipped whole.
func convertSheet(out *excelize.File, outSheets *int, cfg *config.Config, reverseIndex map[string]types.Field, sheetName string, rows [][]string, sink logging.Sink) types.SheetResult {
	sheetResult := types.SheetResult{Sheet: sheetName}

	cols, missing := ResolveColumns(headerCells(rows), reverseIndex)
	if len(missing) > 0 {
		var headers []string
		for _, f := range missing {
			headers = append(headers, fmt.Sprintf("%q", cfg.Header(f)))
		}
		sheetResult.MissingField = missing
		sink.Warnf("> Sheet: [%s] skipped. (missing headers: %s)", sheetName, strings.Join(headers, ", "))
		return sheetResult
	}

	sink.Successf("> Sheet: [%s] resolved at columns %s", sheetName, formatColumns(cols))

	outName, err := newOutputSheet(out, outSheets)
	if err != nil {
		sink.Errorf("ERROR: cannot create output sheet for [%s]: %v", sheetName, err)
		return sheetResult
	}
	sheetResult.Converted = true

	outRow := 0
	// Row 1 is always headers; data (and possibly a second header row)
	// starts at row 2.
	for i, raw := range rows {
		if i == 0 {
			continue
		}
		rowNumber := i + 1

		outcome := NormalizeRow(rowCells(raw), cols, cfg.ServiceReplace)
		switch outcome.Kind {
		case types.Skipped:
			sheetResult.RowsSkipped++
		case types.Rejected:
			sheetResult.RowsRejected++
			sink.Warnf("  Row %d rejected: %s", rowNumber, strings.Join(outcome.Reasons, ", "))
		case types.Accepted:
			outRow++
			if err := writeCanonicalRow(out, outName, outRow, outcome.Row); err != nil {
				sink.Errorf("ERROR: cannot write row %d: %v", rowNumber, err)
				continue
			}
			sheetResult.RowsAccepted++
		}
	}

	return sheetResult
}

// headerCells returns the first two rows as cells for header resolution.
func headerCells(rows [][]string) [][]types.Cell {
	var headers [][]types.Cell
	for i := 0; i < len(rows) && i < 2; i++ {
		headers = append(headers, rowCells(rows[i]))
	}
	return headers
}

func rowCells(raw []string) []types.Cell {
	cells := make([]types.Cell, len(raw))
	for i, v := range raw {
		cells[i] = types.CellOf(v)
	}
	return cells
}

// newOutputSheet creates the next output sheet and sets the template column
// widths. The first output sheet reuses the workbook's default "Sheet1".
func newOutputSheet(out *excelize.File, outSheets *int) (string, error) {
	*outSheets++
	name := fmt.Sprintf("Sheet%d", *outSheets)
	if _, err := out.NewSheet(name); err != nil {
		return "", err
	}
	for i, width := range outputWidths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return "", err
		}
		if err := out.SetColWidth(name, col, col, width); err != nil {
			return "", err
		}
	}
	return name, nil
}

func writeCanonicalRow(out *excelize.File, sheet string, row int, r types.CanonicalRow) error {
	values := []string{r.Source, r.Destination, r.Service, r.Action, r.Comment}
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}
		if err := out.SetCellValue(sheet, cell, v); err != nil {
			return err
		}
	}
	return nil
}

// formatColumns renders a resolved mapping as "SRC=0 DST=1 ..." in field
// order for the per-sheet success line.
func formatColumns(cols types.ResolvedColumns) string {
	fields := make([]types.Field, 0, len(cols))
	for f := range cols {
		fields = append(fields, f)
	}
	sort.Slice(fields, func(i, j int) bool { return fieldOrder(fields[i]) < fieldOrder(fields[j]) })

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, fmt.Sprintf("%s=%d", f, cols[f]))
	}
	return strings.Join(parts, " ")
}

func fieldOrder(f types.Field) int {
	order := []types.Field{
		types.FieldSource, types.FieldDestination, types.FieldService,
		types.FieldAdd, types.FieldRemove, types.FieldUsage, types.FieldComment,
	}
	for i, v := range order {
		if v == f {
			return i
		}
	}
	return len(order)
}
