package converter

import (
	"github.com/chumicat/SecureChangeRequestFormatter/internal/types"
)

// ResolveColumns scans a sheet's header rows (row one, then row two) and maps
// each configured header string to the column index where it first appears.
// Later occurrences of an already-resolved field never overwrite the first.
// Header cells that match nothing in the reverse index are ignored.
//
// missing lists the required fields that resolved to no column, in the fixed
// field order. A sheet with a non-empty missing set is skipped by the caller.
func ResolveColumns(headerRows [][]types.Cell, reverseIndex map[string]types.Field) (cols types.ResolvedColumns, missing []types.Field) {
	cols = make(types.ResolvedColumns)

	for _, row := range headerRows {
		for idx, cell := range row {
			text := cell.Norm()
			if text == "" {
				continue
			}
			field, ok := reverseIndex[text]
			if !ok {
				continue
			}
			if _, seen := cols[field]; !seen {
				cols[field] = idx
			}
		}
	}

	for _, f := range types.RequiredFields {
		if _, ok := cols[f]; !ok {
			missing = append(missing, f)
		}
	}

	return cols, missing
}
