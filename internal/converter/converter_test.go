package converter

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/chumicat/SecureChangeRequestFormatter/internal/types"

	"github.com/xuri/excelize/v2"
)

// nopSink discards events; converter tests assert on the written workbook.
type nopSink struct{}

func (nopSink) Infof(string, ...any)    {}
func (nopSink) Successf(string, ...any) {}
func (nopSink) Warnf(string, ...any)    {}
func (nopSink) Errorf(string, ...any)   {}

func writeWorkbook(t *testing.T, path string, sheets map[string][][]string) {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	first := true
	for name, rows := range sheets {
		if first {
			if err := f.SetSheetName(f.GetSheetName(0), name); err != nil {
				t.Fatal(err)
			}
			first = false
		} else {
			if _, err := f.NewSheet(name); err != nil {
				t.Fatal(err)
			}
		}
		for i, row := range rows {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			if err != nil {
				t.Fatal(err)
			}
			if err := f.SetSheetRow(name, cell, &row); err != nil {
				t.Fatal(err)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
}

func readSheet(t *testing.T, path, sheet string) [][]string {
	t.Helper()

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheet)
	if err != nil {
		t.Fatal(err)
	}
	return rows
}

func TestRunConvertsSheet(t *testing.T) {
	tmpDir := t.TempDir()
	input := filepath.Join(tmpDir, "requests.xlsx")
	output := filepath.Join(tmpDir, "out.xlsx")

	writeWorkbook(t, input, map[string][][]string{
		"Requests": {
			{"Source", "Destination", "Service", "Add", "Remove", "Usage", "Comment"},
			{"10.0.0.1\n10.0.0.2", "10.0.0.5", "80,443", "yes", "", "build access", "ticket#123"},
			{"", "", "", "", "", "", ""},
			{"", "10.0.0.9", "22", "", "", "", ""},
			{"10.0.0.3", "10.0.0.6", "ssh", "", "x", "", ""},
		},
	})

	cfg := testConfig()
	result, err := Run(cfg, []string{input}, output, nopSink{}, nil)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if result.SheetsWritten != 1 {
		t.Errorf("SheetsWritten = %d; want 1", result.SheetsWritten)
	}
	if result.RowsAccepted != 2 {
		t.Errorf("RowsAccepted = %d; want 2", result.RowsAccepted)
	}
	if result.RowsSkipped != 1 {
		t.Errorf("RowsSkipped = %d; want 1", result.RowsSkipped)
	}
	if result.RowsRejected != 1 {
		t.Errorf("RowsRejected = %d; want 1", result.RowsRejected)
	}

	rows := readSheet(t, output, "Sheet1")
	if len(rows) != 2 {
		t.Fatalf("output rows = %d; want 2", len(rows))
	}

	want := []string{"10.0.0.1; 10.0.0.2", "10.0.0.5", "TCP 80; TCP 443", "accept", "build access|ticket#123"}
	for i, v := range want {
		if rows[0][i] != v {
			t.Errorf("row 1 col %d = %q; want %q", i+1, rows[0][i], v)
		}
	}
	if rows[1][3] != "remove" {
		t.Errorf("row 2 action = %q; want %q", rows[1][3], "remove")
	}
}

func TestRunSecondRowHeaders(t *testing.T) {
	tmpDir := t.TempDir()
	input := filepath.Join(tmpDir, "requests.xlsx")
	output := filepath.Join(tmpDir, "out.xlsx")

	writeWorkbook(t, input, map[string][][]string{
		"Requests": {
			{"Firewall Change Request 2026-08"},
			{"Source", "Destination", "Service", "Add", "Remove"},
			{"10.0.0.1", "10.0.0.2", "443", "yes", ""},
		},
	})

	result, err := Run(testConfig(), []string{input}, output, nopSink{}, nil)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	// The header row itself is re-read as data and rejected (both flag
	// cells hold header text), so only the real data row is written.
	if result.RowsAccepted != 1 {
		t.Errorf("RowsAccepted = %d; want 1", result.RowsAccepted)
	}

	rows := readSheet(t, output, "Sheet1")
	if len(rows) != 1 {
		t.Fatalf("output rows = %d; want 1", len(rows))
	}
	if rows[0][2] != "TCP 443" {
		t.Errorf("service = %q; want %q", rows[0][2], "TCP 443")
	}
}

func TestRunSkipsUnresolvableSheet(t *testing.T) {
	tmpDir := t.TempDir()
	input := filepath.Join(tmpDir, "requests.xlsx")
	output := filepath.Join(tmpDir, "out.xlsx")

	writeWorkbook(t, input, map[string][][]string{
		"NoRemove": {
			{"Source", "Destination", "Service", "Add"},
			{"10.0.0.1", "10.0.0.2", "443", "yes"},
		},
	})

	result, err := Run(testConfig(), []string{input}, output, nopSink{}, nil)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if result.SheetsWritten != 0 {
		t.Errorf("SheetsWritten = %d; want 0", result.SheetsWritten)
	}
	if result.SheetsSkipped != 1 {
		t.Errorf("SheetsSkipped = %d; want 1", result.SheetsSkipped)
	}

	if len(result.Files) != 1 || len(result.Files[0].Sheets) != 1 {
		t.Fatalf("unexpected result shape: %+v", result)
	}
	missing := result.Files[0].Sheets[0].MissingField
	if len(missing) != 1 || missing[0] != types.FieldRemove {
		t.Errorf("missing = %v; want [RM]", missing)
	}
}

func TestRunContinuesPastUnreadableFile(t *testing.T) {
	tmpDir := t.TempDir()
	bad := filepath.Join(tmpDir, "corrupt.xlsx")
	good := filepath.Join(tmpDir, "good.xlsx")
	output := filepath.Join(tmpDir, "out.xlsx")

	if err := os.WriteFile(bad, []byte("not a workbook"), 0o644); err != nil {
		t.Fatal(err)
	}
	writeWorkbook(t, good, map[string][][]string{
		"Requests": {
			{"Source", "Destination", "Service", "Add", "Remove"},
			{"10.0.0.1", "10.0.0.2", "443", "yes", ""},
		},
	})

	result, err := Run(testConfig(), []string{bad, good}, output, nopSink{}, nil)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if result.FilesUnreadable != 1 {
		t.Errorf("FilesUnreadable = %d; want 1", result.FilesUnreadable)
	}
	if result.RowsAccepted != 1 {
		t.Errorf("RowsAccepted = %d; want 1", result.RowsAccepted)
	}
}

func TestRunRejectsEmptyOutputPath(t *testing.T) {
	if _, err := Run(testConfig(), nil, "", nopSink{}, nil); err == nil {
		t.Fatal("expected error for empty output path")
	}
}

func TestRunReportsProgress(t *testing.T) {
	tmpDir := t.TempDir()
	input := filepath.Join(tmpDir, "requests.xlsx")
	output := filepath.Join(tmpDir, "out.xlsx")

	writeWorkbook(t, input, map[string][][]string{
		"Requests": {
			{"Source", "Destination", "Service", "Add", "Remove"},
			{"10.0.0.1", "10.0.0.2", "443", "yes", ""},
		},
	})

	progressChan := make(chan float64, 8)
	if _, err := Run(testConfig(), []string{input}, output, nopSink{}, progressChan); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	select {
	case p := <-progressChan:
		if p != 1.0 {
			t.Errorf("progress = %f; want 1.0", p)
		}
	default:
		t.Error("no progress reported")
	}
}
