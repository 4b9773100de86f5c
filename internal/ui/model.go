package ui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/chumicat/SecureChangeRequestFormatter/internal/config"
	"github.com/chumicat/SecureChangeRequestFormatter/internal/converter"
	"github.com/chumicat/SecureChangeRequestFormatter/internal/logging"
	"github.com/chumicat/SecureChangeRequestFormatter/internal/types"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
)

// eventTail is how many recent log lines the processing view keeps on screen.
const eventTail = 12

type state int

const (
	stateProcessing state = iota
	stateComplete
	stateError
)

type Model struct {
	state      state
	cfg        *config.Config
	inputs     []string
	outputFile string
	sink       logging.Sink
	logPath    string

	progress     progress.Model
	progressChan chan float64
	resultChan   chan runResultMsg
	events       *logging.ChannelSink

	lines  []string
	result *types.RunResult
	err    error
	width  int
	height int
}

type runResultMsg struct {
	result *types.RunResult
	err    error
}

type progressMsg float64

type eventMsg string

// New builds the run model. tee records every event to the log file; the
// model mirrors the same stream on screen through a channel sink.
func New(cfg *config.Config, inputs []string, outputFile, logPath string, tee logging.Sink) Model {
	return Model{
		state:        stateProcessing,
		cfg:          cfg,
		inputs:       inputs,
		outputFile:   outputFile,
		logPath:      logPath,
		sink:         tee,
		progress:     progress.New(progress.WithGradient("#4D96FF", "#6BCB77")),
		events:       logging.NewChannelSink(256),
		progressChan: make(chan float64, 100),
		resultChan:   make(chan runResultMsg, 1),
	}
}

func (m Model) Init() tea.Cmd {
	// Capture for the goroutine; the model value is copied by bubbletea.
	cfg := m.cfg
	inputs := m.inputs
	outputFile := m.outputFile
	sink := logging.Fanout{m.sink, m.events}
	progressChan := m.progressChan
	resultChan := m.resultChan

	go func() {
		result, err := converter.Run(cfg, inputs, outputFile, sink, progressChan)
		resultChan <- runResultMsg{result: result, err: err}
		close(progressChan)
		close(resultChan)
	}()

	return tea.Batch(
		waitForProgress(progressChan, resultChan),
		waitForEvent(m.events),
		m.progress.Init(),
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = msg.Width - 12
		if m.progress.Width > 60 {
			m.progress.Width = 60
		}
		if m.progress.Width < 10 {
			m.progress.Width = 10
		}
		return m, nil

	case tea.KeyMsg:
		switch m.state {
		case stateProcessing:
			if msg.String() == "ctrl+c" {
				return m, tea.Quit
			}
		case stateComplete, stateError:
			switch msg.String() {
			case "ctrl+c", "q", "enter", "esc":
				return m, tea.Quit
			}
		}
		return m, nil

	case eventMsg:
		m.lines = append(m.lines, string(msg))
		if len(m.lines) > eventTail {
			m.lines = m.lines[len(m.lines)-eventTail:]
		}
		return m, waitForEvent(m.events)

	case progressMsg:
		if m.state == stateProcessing {
			cmd := m.progress.SetPercent(float64(msg))
			return m, tea.Batch(cmd, waitForProgress(m.progressChan, m.resultChan))
		}
		return m, nil

	case runResultMsg:
		if msg.err != nil {
			m.err = msg.err
			m.state = stateError
			return m, nil
		}
		m.result = msg.result
		m.state = stateComplete
		return m, nil

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		return m, cmd
	}

	return m, nil
}

func waitForProgress(progressChan chan float64, resultChan chan runResultMsg) tea.Cmd {
	return func() tea.Msg {
		if progressChan == nil {
			return nil
		}

		p, ok := <-progressChan
		if !ok {
			res, ok := <-resultChan
			if ok {
				return res
			}
			return nil
		}

		return progressMsg(p)
	}
}

func waitForEvent(events *logging.ChannelSink) tea.Cmd {
	return func() tea.Msg {
		line, ok := <-events.C
		if !ok {
			return nil
		}
		return eventMsg(line)
	}
}

func (m Model) View() string {
	switch m.state {
	case stateProcessing:
		return m.viewProcessing()
	case stateComplete:
		return m.viewComplete()
	case stateError:
		return m.viewError()
	}
	return ""
}

func (m Model) viewProcessing() string {
	var s strings.Builder

	s.WriteString(TitleStyle.Render("Secure Change Request Formatter"))
	s.WriteString("\n")
	s.WriteString(SubtitleStyle.Render(fmt.Sprintf("Converting %d workbook(s) to Secure Track Accept Format", len(m.inputs))))
	s.WriteString("\n\n")
	s.WriteString(m.progress.View())
	s.WriteString("\n\n")
	s.WriteString(strings.Join(m.lines, "\n"))
	s.WriteString("\n")
	s.WriteString(HelpStyle.Render("ctrl+c: abort"))

	return BoxStyle.Render(s.String())
}

func (m Model) viewComplete() string {
	var s strings.Builder

	s.WriteString(TitleStyle.Render("✓ Conversion Complete"))
	s.WriteString("\n\n")
	s.WriteString(SuccessStyle.Render(fmt.Sprintf("Output: %s\n", filepath.Base(m.result.OutputFile))))
	s.WriteString("\n")
	s.WriteString(fmt.Sprintf("Sheets written:  %d (skipped %d)\n", m.result.SheetsWritten, m.result.SheetsSkipped))
	s.WriteString(fmt.Sprintf("Rows accepted:   %d\n", m.result.RowsAccepted))
	s.WriteString(fmt.Sprintf("Rows rejected:   %d\n", m.result.RowsRejected))
	s.WriteString(fmt.Sprintf("Blank rows:      %d\n", m.result.RowsSkipped))
	if m.result.FilesUnreadable > 0 {
		s.WriteString(ErrorStyle.Render(fmt.Sprintf("Unreadable files: %d\n", m.result.FilesUnreadable)))
	}
	s.WriteString("\n")
	s.WriteString(SubtitleStyle.Render(fmt.Sprintf("Full log: %s", m.logPath)))
	s.WriteString("\n")
	s.WriteString(HelpStyle.Render("Press enter to exit"))

	return BoxStyle.Render(s.String())
}

func (m Model) viewError() string {
	var s strings.Builder

	s.WriteString(ErrorStyle.Render("✗ Error"))
	s.WriteString("\n\n")
	s.WriteString(m.err.Error())
	s.WriteString("\n\n")
	s.WriteString(HelpStyle.Render("Press any key to exit"))

	return BoxStyle.Render(s.String())
}
