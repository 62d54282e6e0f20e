// Package ui provides the bubbletea progress view for batch rendering.
package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// FileStatus represents the processing state of a single file.
type FileStatus int

const (
	StatusQueued FileStatus = iota
	StatusProcessing
	StatusComplete
	StatusError
)

// FileProgress tracks progress for a single audio file.
type FileProgress struct {
	InputPath  string
	OutputPath string
	Status     FileStatus

	Progress    float64
	StartTime   time.Time
	ElapsedTime time.Duration

	PeakDB     float64
	InputLUFS  float64
	OutputLUFS float64

	Error error
}

// Model is the bubbletea model for the processing UI. Updates arrive via
// tea.Program.Send from the rendering goroutine.
type Model struct {
	Title string

	Files          []FileProgress
	CurrentIndex   int
	CompletedFiles int
	FailedFiles    int

	Done bool

	Width  int
	Height int
}

// NewModel creates a new UI model with the given input files.
func NewModel(title string, inputFiles []string) Model {
	files := make([]FileProgress, len(inputFiles))
	for i, path := range inputFiles {
		files[i] = FileProgress{InputPath: path, Status: StatusQueued, PeakDB: -120}
	}

	return Model{
		Title:        title,
		Files:        files,
		CurrentIndex: -1,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height

	case FileStartMsg:
		if msg.FileIndex < 0 || msg.FileIndex >= len(m.Files) {
			return m, nil
		}

		m.CurrentIndex = msg.FileIndex
		m.Files[m.CurrentIndex].Status = StatusProcessing
		m.Files[m.CurrentIndex].StartTime = time.Now()

	case ProgressMsg:
		if m.current() != nil {
			m.Files[m.CurrentIndex] = updateFileProgress(m.Files[m.CurrentIndex], msg)
		}

	case FileCompleteMsg:
		if msg.FileIndex < 0 || msg.FileIndex >= len(m.Files) {
			return m, nil
		}

		fp := &m.Files[msg.FileIndex]
		fp.OutputPath = msg.OutputPath
		fp.InputLUFS = msg.InputLUFS
		fp.OutputLUFS = msg.OutputLUFS
		fp.Error = msg.Error
		fp.ElapsedTime = time.Since(fp.StartTime)

		if msg.Error != nil {
			fp.Status = StatusError
			m.FailedFiles++
		} else {
			fp.Status = StatusComplete
			fp.Progress = 1
			m.CompletedFiles++
		}

	case AllCompleteMsg:
		m.Done = true
		return m, tea.Quit
	}

	return m, nil
}

// View renders the UI.
func (m Model) View() string {
	if m.Done {
		return renderCompletionSummary(m)
	}

	return renderProcessingView(m)
}

func (m Model) current() *FileProgress {
	if m.CurrentIndex < 0 || m.CurrentIndex >= len(m.Files) {
		return nil
	}

	return &m.Files[m.CurrentIndex]
}

func updateFileProgress(fp FileProgress, msg ProgressMsg) FileProgress {
	fp.Progress = msg.Progress
	fp.ElapsedTime = time.Since(fp.StartTime)

	if msg.PeakDB > fp.PeakDB {
		fp.PeakDB = msg.PeakDB
	}

	return fp
}
