package simpleexcel

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// ErrExporterClosed is returned by operations on a closed or aborted exporter.
var ErrExporterClosed = errors.New("stream exporter is closed")

const defaultSheetName = "Sheet1"

// StreamExporter manages a streaming Excel export session. Sheets are written
// one after another; starting a sheet flushes the previous one.
type StreamExporter struct {
	file   *excelize.File
	writer io.Writer
	sheets []*StreamSheet
	names  map[string]*StreamSheet
	active *StreamSheet

	windowSize  int
	tmpDir      string
	observer    WindowObserver
	headerBold  bool
	headerStyle int
	closed      bool
}

// NewStreamExporter creates a new StreamExporter writing the finished workbook to w.
func NewStreamExporter(w io.Writer, opts ...Option) (*StreamExporter, error) {
	e := &StreamExporter{
		writer:     w,
		names:      make(map[string]*StreamSheet),
		windowSize: DefaultWindowSize,
		headerBold: true,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.windowSize < 1 {
		return nil, fmt.Errorf("window size must be at least 1, got %d", e.windowSize)
	}

	e.file = excelize.NewFile(excelize.Options{TmpDir: e.tmpDir})
	// The archive goes straight to w in chunks instead of an in-memory buffer.
	e.file.SetZipWriter(func(io.Writer) excelize.ZipWriter {
		return zip.NewWriter(e.writer)
	})
	if e.headerBold {
		sid, err := e.file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
		if err != nil {
			_ = e.file.Close()
			return nil, err
		}
		e.headerStyle = sid
	}
	return e, nil
}

// StreamSheet represents a single sheet in a streaming export.
type StreamSheet struct {
	exporter    *StreamExporter
	stream      *excelize.StreamWriter
	window      *RowWindow
	name        string
	columns     []ColumnConfig
	currentRow  int
	rowsWritten int
	headerShown bool
	finished    bool
}

// AddSheet adds a new sheet and returns a StreamSheet builder.
func (e *StreamExporter) AddSheet(name string) (*StreamSheet, error) {
	if e.closed {
		return nil, ErrExporterClosed
	}
	if _, ok := e.names[name]; ok {
		return nil, fmt.Errorf("sheet %s already exists", name)
	}

	if e.active != nil {
		if err := e.active.finish(); err != nil {
			return nil, err
		}
	}

	index, err := e.file.GetSheetIndex(name)
	if err != nil {
		return nil, err
	}
	if index == -1 {
		if _, err := e.file.NewSheet(name); err != nil {
			return nil, err
		}
	}

	sw, err := e.file.NewStreamWriter(name)
	if err != nil {
		return nil, err
	}

	sheet := &StreamSheet{
		exporter:   e,
		stream:     sw,
		name:       name,
		currentRow: 1,
	}
	e.sheets = append(e.sheets, sheet)
	e.names[name] = sheet
	e.active = sheet
	return sheet, nil
}

// Name returns the sheet name.
func (s *StreamSheet) Name() string {
	return s.name
}

// RowsWritten returns the number of data rows appended so far.
func (s *StreamSheet) RowsWritten() int {
	return s.rowsWritten
}

// Buffered returns the number of data rows not yet committed to the stream.
func (s *StreamSheet) Buffered() int {
	if s.window == nil {
		return 0
	}
	return s.window.Buffered()
}

// WriteHeader writes the header row for the sheet.
func (s *StreamSheet) WriteHeader(columns []ColumnConfig) error {
	if err := s.writable(); err != nil {
		return err
	}
	if s.headerShown {
		return fmt.Errorf("header already written for sheet %s", s.name)
	}

	s.columns = columns
	header := make([]interface{}, len(columns))
	for i, col := range columns {
		header[i] = excelize.Cell{Value: col.Header, StyleID: s.exporter.headerStyle}

		// Column widths must be set before the first SetRow
		if col.Width > 0 {
			if err := s.stream.SetColWidth(i+1, i+1, col.Width); err != nil {
				return err
			}
		}
	}

	cell, _ := excelize.CoordinatesToCellName(1, s.currentRow)
	if err := s.stream.SetRow(cell, header); err != nil {
		return err
	}
	s.currentRow++
	s.headerShown = true

	window, err := NewRowWindow(s.exporter.windowSize, s.currentRow, s.stream)
	if err != nil {
		return err
	}
	s.window = window
	return nil
}

// WriteRow appends a single data row. Values must follow the header order.
func (s *StreamSheet) WriteRow(values []interface{}) error {
	if err := s.writable(); err != nil {
		return err
	}
	if !s.headerShown {
		return fmt.Errorf("header must be written before data")
	}
	if len(values) != len(s.columns) {
		return fmt.Errorf("row has %d values, sheet %s has %d columns", len(values), s.name, len(s.columns))
	}

	if err := s.window.Append(values); err != nil {
		return err
	}
	s.currentRow++
	s.rowsWritten++

	if s.exporter.observer != nil {
		s.exporter.observer(s.name, s.window.Buffered())
	}
	return nil
}

// WriteBatch writes multiple rows in order.
func (s *StreamSheet) WriteBatch(rows [][]interface{}) error {
	for _, row := range rows {
		if err := s.WriteRow(row); err != nil {
			return err
		}
	}
	return nil
}

func (s *StreamSheet) writable() error {
	if s.exporter.closed {
		return ErrExporterClosed
	}
	if s.finished {
		return fmt.Errorf("sheet %s is already finished", s.name)
	}
	return nil
}

// finish commits the window and flushes the stream writer.
func (s *StreamSheet) finish() error {
	if s.finished {
		return nil
	}
	s.finished = true
	if s.window != nil {
		if err := s.window.Flush(); err != nil {
			return err
		}
	}
	return s.stream.Flush()
}

// Close finalizes all sheets and streams the workbook to the output writer.
// It runs once; temp files are released whether or not the write succeeds.
func (e *StreamExporter) Close() (err error) {
	if e.closed {
		return ErrExporterClosed
	}
	e.closed = true
	defer func() {
		if cerr := e.file.Close(); err == nil && cerr != nil {
			err = cerr
		}
	}()

	if len(e.sheets) == 0 {
		return fmt.Errorf("no sheets to write")
	}
	for _, sheet := range e.sheets {
		if err := sheet.finish(); err != nil {
			return err
		}
	}

	// Remove default Sheet1 if it wasn't used
	if _, ok := e.names[defaultSheetName]; !ok {
		if err := e.file.DeleteSheet(defaultSheetName); err != nil {
			return err
		}
	}
	if index, err := e.file.GetSheetIndex(e.sheets[0].name); err == nil && index >= 0 {
		e.file.SetActiveSheet(index)
	}

	// The returned buffer stays empty; the zip writer targets e.writer.
	_, err = e.file.WriteToBuffer()
	return err
}

// Abort releases every resource without writing. It is a no-op after Close.
func (e *StreamExporter) Abort() error {
	if e.closed {
		return nil
	}
	e.closed = true
	for _, sheet := range e.sheets {
		sheet.finished = true
		if sheet.window != nil {
			sheet.window.Reset()
		}
	}
	return e.file.Close()
}

// Closed reports whether Close or Abort has run.
func (e *StreamExporter) Closed() bool {
	return e.closed
}
