package ui

// ProgressMsg reports how far the current file has been rendered.
type ProgressMsg struct {
	Progress float64 // 0.0 to 1.0
	PeakDB   float64 // output peak of the latest block
}

// FileStartMsg indicates a new file has started processing.
type FileStartMsg struct {
	FileIndex int
	FileName  string
}

// FileCompleteMsg indicates a file has finished processing.
type FileCompleteMsg struct {
	FileIndex  int
	OutputPath string
	InputLUFS  float64
	OutputLUFS float64
	Error      error
}

// AllCompleteMsg indicates all files have been processed.
type AllCompleteMsg struct{}
