package converter

import (
	"strings"

	"github.com/chumicat/SecureChangeRequestFormatter/internal/config"
	"github.com/chumicat/SecureChangeRequestFormatter/internal/types"
)

const (
	reasonMissingSource      = "missing source"
	reasonMissingDestination = "missing destination"
	reasonMissingService     = "missing service"
	reasonBothFlags          = "both add and remove flags set"
)

// NormalizeRow validates one data row against the resolved columns and
// produces its outcome:
//
//   - Accepted with the canonical 5-tuple when source, destination, and
//     service are all present and at most one of the add/remove flags is set.
//   - Skipped when all three core fields are blank (separator or trailing
//     row, not an error).
//   - Rejected otherwise, with one reason per failed check.
func NormalizeRow(row []types.Cell, cols types.ResolvedColumns, rules []config.ReplaceRule) types.RowOutcome {
	var reasons []string
	var out types.CanonicalRow

	if val := fieldText(row, cols, types.FieldSource); val != "" {
		out.Source = joinFragments(splitList(val))
	} else {
		reasons = append(reasons, reasonMissingSource)
	}

	if val := fieldText(row, cols, types.FieldDestination); val != "" {
		out.Destination = joinFragments(splitList(val))
	} else {
		reasons = append(reasons, reasonMissingDestination)
	}

	if val := fieldText(row, cols, types.FieldService); val != "" {
		out.Service = normalizeService(val, rules)
	} else {
		reasons = append(reasons, reasonMissingService)
	}

	coreMissing := len(reasons)

	addSet := fieldText(row, cols, types.FieldAdd) != ""
	rmSet := fieldText(row, cols, types.FieldRemove) != ""
	switch {
	case addSet && rmSet:
		reasons = append(reasons, reasonBothFlags)
	case addSet:
		out.Action = "accept"
	case rmSet:
		out.Action = "remove"
	default:
		// Neither flag set: blank action is valid, the row is kept.
		out.Action = ""
	}

	var parts []string
	if val := fieldText(row, cols, types.FieldUsage); val != "" {
		parts = append(parts, val)
	}
	if val := fieldText(row, cols, types.FieldComment); val != "" {
		parts = append(parts, val)
	}
	out.Comment = strings.Join(parts, "|")

	// All three core fields blank means a separator or trailing row.
	if coreMissing == 3 {
		return types.RowOutcome{Kind: types.Skipped}
	}
	if len(reasons) > 0 {
		return types.RowOutcome{Kind: types.Rejected, Reasons: reasons}
	}
	return types.RowOutcome{Kind: types.Accepted, Row: out}
}

// fieldText reads and normalizes the cell a field resolved to. Unresolved
// fields and out-of-range indices read as "".
func fieldText(row []types.Cell, cols types.ResolvedColumns, f types.Field) string {
	idx, ok := cols[f]
	if !ok || idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx].Norm()
}

// splitList breaks a multi-value cell on newlines and commas, dropping empty
// fragments and trimming the rest.
func splitList(val string) []string {
	var frags []string
	for _, frag := range strings.FieldsFunc(val, func(r rune) bool {
		return r == '\n' || r == ','
	}) {
		frag = strings.TrimSpace(frag)
		if frag != "" {
			frags = append(frags, frag)
		}
	}
	return frags
}

func joinFragments(frags []string) string {
	return strings.Join(frags, "; ")
}

// normalizeService splits the service list, expands bare port numbers to
// "TCP <port>", rejoins, then applies the configured literal substitutions
// in order over the joined string.
func normalizeService(val string, rules []config.ReplaceRule) string {
	frags := splitList(val)
	for i, frag := range frags {
		if isNumeric(frag) {
			frags[i] = "TCP " + frag
		}
	}
	joined := joinFragments(frags)
	for _, rule := range rules {
		joined = strings.ReplaceAll(joined, rule.Pattern, rule.Replacement)
	}
	return joined
}

// isNumeric reports whether s is a non-empty run of decimal digits.
func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
