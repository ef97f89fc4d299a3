package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/locvowork/export_generator/apigateway/internal/logger"
	"github.com/locvowork/export_generator/apigateway/internal/service"
	"github.com/locvowork/export_generator/apigateway/internal/service/serviceutils"
)

const controllerMessage = "Export Controller"

type ExportHandler struct {
	svc service.ExportService
	now func() time.Time
}

func NewExportHandler(svc service.ExportService) *ExportHandler {
	return &ExportHandler{svc: svc, now: time.Now}
}

// DownloadHandler streams a freshly generated workbook as the response body.
// Headers are fixed before the first byte; once the body is committed a
// failure can only be logged.
func (h *ExportHandler) DownloadHandler(c echo.Context) error {
	ctx := c.Request().Context()
	start := time.Now()
	filename := h.svc.Filename(h.now())

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, service.ContentType)
	res.Header().Set(echo.HeaderContentDisposition, "attachment; filename="+filename)

	if err := h.svc.Export(ctx, res); err != nil {
		if res.Committed {
			logger.ErrorLog(ctx, "Export %s failed after %d bytes were sent: %v", filename, res.Size, err)
			return nil
		}
		logger.ErrorLog(ctx, "Export %s failed: %v", filename, err)
		return serviceutils.ResponseFailure(c, http.StatusInternalServerError)
	}

	if !res.Committed {
		res.WriteHeader(http.StatusOK)
	}
	logger.InfoLog(ctx, "Export %s sent in %v (%d bytes)", filename, time.Since(start), res.Size)
	return nil
}

func (h *ExportHandler) MessageHandler(c echo.Context) error {
	return serviceutils.ResponseMessage(c, http.StatusOK, controllerMessage)
}

func (h *ExportHandler) HealthHandler(c echo.Context) error {
	return serviceutils.ResponseHealth(c, http.StatusOK, "ok")
}
