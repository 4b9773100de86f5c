package converter

import (
	"path/filepath"
	"strings"
	"time"
)

// workbook extensions accepted as input.
var workbookExts = []string{"*.xlsx", "*.xls"}

// FindWorkbooks lists the spreadsheet files in dir, in glob order per
// extension. Office lock/cache files ("~$...") are excluded.
func FindWorkbooks(dir string) ([]string, error) {
	var files []string
	for _, ext := range workbookExts {
		matches, err := filepath.Glob(filepath.Join(dir, ext))
		if err != nil {
			return nil, err
		}
		for _, m := range matches {
			if strings.HasPrefix(filepath.Base(m), "~$") {
				continue
			}
			files = append(files, m)
		}
	}
	return files, nil
}

// OutputFilename builds the output workbook name from the local time,
// e.g. "2026-08-23T14_05_09.xlsx". Colons are unusable on Windows.
func OutputFilename(now time.Time) string {
	return strings.ReplaceAll(now.Format("2006-01-02T15:04:05"), ":", "_") + ".xlsx"
}
