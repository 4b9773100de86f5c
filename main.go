package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/chumicat/SecureChangeRequestFormatter/internal/config"
	"github.com/chumicat/SecureChangeRequestFormatter/internal/converter"
	"github.com/chumicat/SecureChangeRequestFormatter/internal/logging"
	"github.com/chumicat/SecureChangeRequestFormatter/internal/ui"

	tea "github.com/charmbracelet/bubbletea"
)

const logPath = "output.log"

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.BoolVar(showVersion, "v", false, "print version and exit")
	configPath := flag.String("config", "config.yaml", "path to the field mapping file")
	noTUI := flag.Bool("no-tui", false, "plain console output, no interactive screen")
	flag.Parse()

	if *showVersion {
		fmt.Printf("scformatter %s\ncommit: %s\nbuilt: %s\n", version, commit, date)
		os.Exit(0)
	}

	if err := run(*configPath, *noTUI); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, noTUI bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	dir, err := os.Getwd()
	if err != nil {
		return err
	}

	inputs, err := converter.FindWorkbooks(dir)
	if err != nil {
		return err
	}
	if len(inputs) == 0 {
		return fmt.Errorf("no Excel files found in %s", dir)
	}

	outputFile := converter.OutputFilename(time.Now())

	if noTUI {
		tee, err := logging.NewTee(os.Stdout, logPath)
		if err != nil {
			return err
		}
		defer tee.Close()

		result, err := converter.Run(cfg, inputs, outputFile, tee, nil)
		if err != nil {
			return err
		}
		tee.Successf("Done. %d sheet(s), %d row(s) written to %s", result.SheetsWritten, result.RowsAccepted, result.OutputFile)
		return nil
	}

	// The TUI owns the screen; the tee only writes the log file.
	tee, err := logging.NewTee(nil, logPath)
	if err != nil {
		return err
	}
	defer tee.Close()

	p := tea.NewProgram(ui.New(cfg, inputs, outputFile, logPath, tee), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}
