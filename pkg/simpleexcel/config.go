package simpleexcel

// ColumnConfig defines a column of a streamed sheet.
type ColumnConfig struct {
	Header string  `json:"header" yaml:"header"`
	Width  float64 `json:"width" yaml:"width"`
}

// Option configures a StreamExporter.
type Option func(*StreamExporter)

// WindowObserver is told the number of buffered rows after every append.
type WindowObserver func(sheet string, buffered int)

// WithWindowSize sets how many rows each sheet keeps in memory.
func WithWindowSize(n int) Option {
	return func(e *StreamExporter) {
		e.windowSize = n
	}
}

// WithTmpDir sets the directory for excelize's spill-over temp files.
func WithTmpDir(dir string) Option {
	return func(e *StreamExporter) {
		e.tmpDir = dir
	}
}

// WithWindowObserver registers a callback for buffered-row counts.
func WithWindowObserver(fn WindowObserver) Option {
	return func(e *StreamExporter) {
		e.observer = fn
	}
}

// WithHeaderBold toggles the bold header style. Default is on.
func WithHeaderBold(bold bool) Option {
	return func(e *StreamExporter) {
		e.headerBold = bold
	}
}
