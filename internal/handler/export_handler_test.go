package handler_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/locvowork/export_generator/apigateway/internal/domain"
	"github.com/locvowork/export_generator/apigateway/internal/handler"
	"github.com/locvowork/export_generator/apigateway/internal/refdata"
	"github.com/locvowork/export_generator/apigateway/internal/rowgen"
	"github.com/locvowork/export_generator/apigateway/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var dispositionPattern = regexp.MustCompile(`^attachment; filename=data_\d{8}_\d{6}\.xlsx$`)

type stubService struct {
	partial []byte
	err     error
}

func (s stubService) Export(ctx context.Context, sink io.Writer) error {
	if len(s.partial) > 0 {
		if _, err := sink.Write(s.partial); err != nil {
			return err
		}
	}
	return s.err
}

func (s stubService) Filename(now time.Time) string {
	return "data_" + now.Format("20060102_150405") + ".xlsx"
}

func newRealService(t *testing.T) service.ExportService {
	t.Helper()
	ds, err := refdata.LoadBundled()
	require.NoError(t, err)

	opts := service.DefaultExportOptions()
	opts.TotalRows = 50
	opts.SheetCount = 2
	opts.WindowSize = 10
	return service.NewExportService(rowgen.NewGenerator(rowgen.DefaultSchema(), ds), opts, nil)
}

func TestDownloadHandler(t *testing.T) {
	e := echo.New()

	t.Run("Streams workbook", func(t *testing.T) {
		h := handler.NewExportHandler(newRealService(t))
		req := httptest.NewRequest(http.MethodGet, "/api/export", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		require.NoError(t, h.DownloadHandler(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/octet-stream", rec.Header().Get(echo.HeaderContentType))
		assert.Regexp(t, dispositionPattern, rec.Header().Get(echo.HeaderContentDisposition))

		f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
		require.NoError(t, err)
		defer f.Close()
		assert.Equal(t, []string{"Data_Sheet1", "Data_Sheet2"}, f.GetSheetList())

		rows, err := f.GetRows("Data_Sheet2")
		require.NoError(t, err)
		assert.Len(t, rows, 26)
		assert.Equal(t, "26", rows[1][0])
		assert.Equal(t, "Raichu", rows[1][13])
	})

	t.Run("Failure before commit", func(t *testing.T) {
		h := handler.NewExportHandler(stubService{err: domain.NewExportError("generate", errors.New("boom"))})
		req := httptest.NewRequest(http.MethodGet, "/api/export", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		require.NoError(t, h.DownloadHandler(c))
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Empty(t, rec.Body.Bytes())
		assert.Empty(t, rec.Header().Get(echo.HeaderContentDisposition))
	})

	t.Run("Failure after commit", func(t *testing.T) {
		h := handler.NewExportHandler(stubService{
			partial: []byte("PK\x03\x04"),
			err:     domain.NewExportError("finalize", domain.NewSinkWriteError(errors.New("reset"))),
		})
		req := httptest.NewRequest(http.MethodGet, "/api/export", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		require.NoError(t, h.DownloadHandler(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, []byte("PK\x03\x04"), rec.Body.Bytes())
	})
}

func TestMessageHandler(t *testing.T) {
	e := echo.New()
	h := handler.NewExportHandler(stubService{})
	req := httptest.NewRequest(http.MethodGet, "/api/message", nil)
	rec := httptest.NewRecorder()

	require.NoError(t, h.MessageHandler(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Export Controller"}`, rec.Body.String())
}

func TestHealthHandler(t *testing.T) {
	e := echo.New()
	h := handler.NewExportHandler(stubService{})
	req := httptest.NewRequest(http.MethodGet, "/api/public/health", nil)
	rec := httptest.NewRecorder()

	require.NoError(t, h.HealthHandler(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
