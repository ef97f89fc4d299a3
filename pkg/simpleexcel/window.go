package simpleexcel

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// DefaultWindowSize is the number of rows kept in memory before the oldest one
// is committed to the stream writer.
const DefaultWindowSize = 100

// RowCommitter receives rows leaving the window. *excelize.StreamWriter
// implements it.
type RowCommitter interface {
	SetRow(cell string, values []interface{}, opts ...excelize.RowOpts) error
}

// RowWindow is a fixed-capacity ring of un-committed rows. Appending to a full
// window commits the oldest row first, so Buffered never exceeds Size.
type RowWindow struct {
	committer RowCommitter
	rows      [][]interface{}
	start     int // ring position of the oldest row
	count     int
	nextRow   int // sheet row number of the oldest row
}

// NewRowWindow creates a window of the given size whose first row lands on
// sheet row firstRow.
func NewRowWindow(size int, firstRow int, committer RowCommitter) (*RowWindow, error) {
	if size < 1 {
		return nil, fmt.Errorf("window size must be at least 1, got %d", size)
	}
	return &RowWindow{
		committer: committer,
		rows:      make([][]interface{}, size),
		nextRow:   firstRow,
	}, nil
}

// Size returns the window capacity.
func (w *RowWindow) Size() int {
	return len(w.rows)
}

// Buffered returns the number of rows held in memory.
func (w *RowWindow) Buffered() int {
	return w.count
}

// Append adds a row, committing the oldest one first if the window is full.
func (w *RowWindow) Append(values []interface{}) error {
	if w.count == len(w.rows) {
		if err := w.commitOldest(); err != nil {
			return err
		}
	}
	w.rows[(w.start+w.count)%len(w.rows)] = values
	w.count++
	return nil
}

// Flush commits every buffered row in order.
func (w *RowWindow) Flush() error {
	for w.count > 0 {
		if err := w.commitOldest(); err != nil {
			return err
		}
	}
	return nil
}

// Reset drops buffered rows without committing them.
func (w *RowWindow) Reset() {
	for i := range w.rows {
		w.rows[i] = nil
	}
	w.start, w.count = 0, 0
}

func (w *RowWindow) commitOldest() error {
	cell, err := excelize.CoordinatesToCellName(1, w.nextRow)
	if err != nil {
		return err
	}
	if err := w.committer.SetRow(cell, w.rows[w.start]); err != nil {
		return fmt.Errorf("failed to commit row %d: %w", w.nextRow, err)
	}
	w.rows[w.start] = nil
	w.start = (w.start + 1) % len(w.rows)
	w.count--
	w.nextRow++
	return nil
}
