package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/locvowork/export_generator/apigateway/internal/domain"
	"github.com/locvowork/export_generator/apigateway/internal/logger"
	"github.com/locvowork/export_generator/apigateway/internal/rowgen"
	"github.com/locvowork/export_generator/apigateway/pkg/dataflow"
	"github.com/locvowork/export_generator/apigateway/pkg/simpleexcel"
)

const (
	// ContentType is sent with every export. The payload is a generic binary attachment.
	ContentType = "application/octet-stream"

	filenameLayout = "20060102_150405"
	progressEvery  = 10000
)

// TimestampScope decides how often the StartDate timestamp is captured.
type TimestampScope string

const (
	// TimestampScopeSheet captures a new timestamp for every sheet.
	TimestampScopeSheet TimestampScope = "sheet"
	// TimestampScopeExport captures one timestamp for the whole workbook.
	TimestampScopeExport TimestampScope = "export"
)

// ParseTimestampScope converts a configuration string to a TimestampScope.
func ParseTimestampScope(s string) (TimestampScope, error) {
	switch TimestampScope(strings.ToLower(strings.TrimSpace(s))) {
	case TimestampScopeSheet, "":
		return TimestampScopeSheet, nil
	case TimestampScopeExport:
		return TimestampScopeExport, nil
	}
	return "", fmt.Errorf("unknown timestamp scope %q", s)
}

// ExportOptions controls the size and shape of a generated workbook.
type ExportOptions struct {
	TotalRows       int
	SheetCount      int
	WindowSize      int
	Workers         int
	BufferSize      int
	TimestampScope  TimestampScope
	RemainderPolicy rowgen.RemainderPolicy
	TmpDir          string
	WindowObserver  simpleexcel.WindowObserver
}

// DefaultExportOptions returns the 100,000 rows over 5 sheets layout.
func DefaultExportOptions() ExportOptions {
	return ExportOptions{
		TotalRows:       100000,
		SheetCount:      5,
		WindowSize:      simpleexcel.DefaultWindowSize,
		Workers:         4,
		BufferSize:      256,
		TimestampScope:  TimestampScopeSheet,
		RemainderPolicy: rowgen.RemainderToLastSheet,
	}
}

type ExportService interface {
	// Export generates the workbook and streams it to sink.
	Export(ctx context.Context, sink io.Writer) error
	// Filename returns the suggested attachment name for an export started at now.
	Filename(now time.Time) string
}

type exportService struct {
	gen  *rowgen.Generator
	opts ExportOptions
	now  func() time.Time
}

// NewExportService creates an ExportService. now defaults to time.Now.
func NewExportService(gen *rowgen.Generator, opts ExportOptions, now func() time.Time) ExportService {
	if now == nil {
		now = time.Now
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.BufferSize < 0 {
		opts.BufferSize = 0
	}
	if opts.TimestampScope == "" {
		opts.TimestampScope = TimestampScopeSheet
	}
	return &exportService{gen: gen, opts: opts, now: now}
}

func (s *exportService) Filename(now time.Time) string {
	return "data_" + now.Format(filenameLayout) + ".xlsx"
}

func (s *exportService) Export(ctx context.Context, sink io.Writer) error {
	start := time.Now()

	ranges, err := rowgen.Partition(s.opts.TotalRows, s.opts.SheetCount, s.opts.RemainderPolicy)
	if err != nil {
		return domain.NewExportError("partition", err)
	}

	out := &sinkWriter{ctx: ctx, w: sink}
	exporter, err := simpleexcel.NewStreamExporter(out,
		simpleexcel.WithWindowSize(s.opts.WindowSize),
		simpleexcel.WithTmpDir(s.opts.TmpDir),
		simpleexcel.WithWindowObserver(s.opts.WindowObserver),
	)
	if err != nil {
		return domain.NewExportError("open", domain.NewConfigurationError("%v", err))
	}
	defer exporter.Abort()

	columns := columnConfigs(s.gen.Schema())
	exportTime := s.now()

	logger.InfoLog(ctx, "Starting export: %d rows over %d sheets (window=%d, workers=%d)",
		s.opts.TotalRows, len(ranges), s.opts.WindowSize, s.opts.Workers)

	for _, r := range ranges {
		ts := exportTime
		if s.opts.TimestampScope == TimestampScopeSheet {
			ts = s.now()
		}
		if err := s.writeSheet(ctx, exporter, r, ts, columns); err != nil {
			return err
		}
	}

	if err := exporter.Close(); err != nil {
		if out.err != nil {
			return domain.NewExportError("finalize", out.err)
		}
		return domain.NewExportError("finalize", err)
	}

	logger.InfoLog(ctx, "Export finished in %s: %d rows, %d bytes", time.Since(start), s.opts.TotalRows, out.n)
	return nil
}

func (s *exportService) writeSheet(ctx context.Context, exporter *simpleexcel.StreamExporter, r domain.SheetRange, ts time.Time, columns []simpleexcel.ColumnConfig) error {
	sheet, err := exporter.AddSheet(r.SheetName)
	if err != nil {
		return domain.NewExportError("sheet", err)
	}
	if err := sheet.WriteHeader(columns); err != nil {
		return domain.NewExportError("sheet", err)
	}

	flow := dataflow.New(ctx)
	indices := flow.Range(r.Start, r.End, dataflow.WithBufferSize(s.opts.BufferSize))
	rows := flow.Map(indices, func(msg interface{}) (interface{}, error) {
		row, err := s.gen.Generate(msg.(int), ts)
		if err != nil {
			return nil, err
		}
		return row, nil
	}, dataflow.WithWorkers(s.opts.Workers), dataflow.WithBufferSize(s.opts.BufferSize))

	err = flow.ForEach(rows, func(msg interface{}) error {
		if err := sheet.WriteRow(msg.(domain.Row).Values()); err != nil {
			return err
		}
		if n := sheet.RowsWritten(); n%progressEvery == 0 {
			logger.DebugLog(ctx, "Sheet %s: %d/%d rows written", r.SheetName, n, r.Len())
		}
		return nil
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return domain.NewExportError("generate", domain.NewSinkWriteError(ctxErr))
		}
		var genErr *domain.GenerationError
		if errors.As(err, &genErr) {
			return domain.NewExportError("generate", err)
		}
		return domain.NewExportError("write", err)
	}

	logger.DebugLog(ctx, "Sheet %s complete: rows %d..%d", r.SheetName, r.Start, r.End)
	return nil
}

func columnConfigs(schema rowgen.Schema) []simpleexcel.ColumnConfig {
	cols := make([]simpleexcel.ColumnConfig, len(schema))
	for i, col := range schema {
		cols[i] = simpleexcel.ColumnConfig{Header: col.Name, Width: col.Width}
	}
	return cols
}

// sinkWriter forwards to the real sink and turns write failures and context
// cancellation into a SinkWriteError. After the first failure every write fails.
type sinkWriter struct {
	ctx context.Context
	w   io.Writer
	n   int64
	err error
}

func (s *sinkWriter) Write(p []byte) (int, error) {
	if s.err != nil {
		return 0, s.err
	}
	if err := s.ctx.Err(); err != nil {
		s.err = domain.NewSinkWriteError(err)
		return 0, s.err
	}
	n, err := s.w.Write(p)
	s.n += int64(n)
	if err != nil {
		s.err = domain.NewSinkWriteError(err)
		return n, s.err
	}
	return n, nil
}
