package domain

import (
	"errors"
	"fmt"
)

// ErrEmptyDataset indicates the reference dataset holds no names.
var ErrEmptyDataset = errors.New("reference dataset is empty")

// ResourceLoadError represents a failure to load a bundled or external resource.
type ResourceLoadError struct {
	Source string
	Err    error
}

func (e *ResourceLoadError) Error() string {
	return fmt.Sprintf("failed to load resource %q: %v", e.Source, e.Err)
}

func (e *ResourceLoadError) Unwrap() error {
	return e.Err
}

// NewResourceLoadError creates a new ResourceLoadError.
func NewResourceLoadError(source string, err error) *ResourceLoadError {
	return &ResourceLoadError{Source: source, Err: err}
}

// GenerationError is returned when a row cannot be generated.
type GenerationError struct {
	RowIndex int
	Err      error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation error at row %d: %v", e.RowIndex, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// NewGenerationError creates a new GenerationError.
func NewGenerationError(rowIndex int, err error) *GenerationError {
	return &GenerationError{RowIndex: rowIndex, Err: err}
}

// SinkWriteError represents an I/O failure on the output stream, including a
// consumer that went away mid-stream.
type SinkWriteError struct {
	Err error
}

func (e *SinkWriteError) Error() string {
	return fmt.Sprintf("sink write failed: %v", e.Err)
}

func (e *SinkWriteError) Unwrap() error {
	return e.Err
}

// NewSinkWriteError creates a new SinkWriteError.
func NewSinkWriteError(err error) *SinkWriteError {
	return &SinkWriteError{Err: err}
}

// ConfigurationError reports row/sheet settings that cannot produce a valid workbook.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "invalid export configuration: " + e.Reason
}

// NewConfigurationError creates a new ConfigurationError.
func NewConfigurationError(format string, args ...interface{}) *ConfigurationError {
	return &ConfigurationError{Reason: fmt.Sprintf(format, args...)}
}

// ExportError wraps any failure of an export at the orchestrator boundary.
type ExportError struct {
	Op  string // "partition", "sheet", "generate", "write", "finalize"
	Err error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export failed during %s: %v", e.Op, e.Err)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}

// NewExportError creates a new ExportError.
func NewExportError(op string, err error) *ExportError {
	return &ExportError{Op: op, Err: err}
}
