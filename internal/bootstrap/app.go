package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/locvowork/export_generator/apigateway/internal/config"
	"github.com/locvowork/export_generator/apigateway/internal/handler"
	"github.com/locvowork/export_generator/apigateway/internal/logger"
	"github.com/locvowork/export_generator/apigateway/internal/refdata"
	"github.com/locvowork/export_generator/apigateway/internal/rowgen"
	"github.com/locvowork/export_generator/apigateway/internal/service"
)

type App struct {
	Echo    *echo.Echo
	Config  config.EnvConfig
	Service service.ExportService
}

func NewApp() *App {
	e := echo.New()
	e.HideBanner = true
	return &App{
		Echo: e,
	}
}

// Initialize loads the environment configuration and wires the application.
func (a *App) Initialize(ctx context.Context) error {
	// Load environment configuration
	if err := config.LoadEnvConfig(); err != nil {
		return fmt.Errorf("failed to load env config: %w", err)
	}

	// Initialize logging
	if err := logger.InitLogging(config.DefaultEnvConfig.LOG_FILE_PATH); err != nil {
		return err
	}
	logger.SetLevel(config.DefaultEnvConfig.LOG_LEVEL)
	logger.InfoLog(ctx, "Environment variables loaded successfully")

	return a.Setup(ctx, config.DefaultEnvConfig)
}

// Setup wires services, middlewares and routes from cfg.
func (a *App) Setup(ctx context.Context, cfg config.EnvConfig) error {
	a.Config = cfg

	svc, err := NewExportService(ctx, cfg)
	if err != nil {
		return err
	}
	a.Service = svc
	exportHandler := handler.NewExportHandler(svc)

	// Register Middlewares
	a.RegisterMiddlewares()

	// Register Routes
	a.RegisterRoutes(exportHandler)

	return nil
}

// NewExportService loads the reference dataset once and builds the export
// service the HTTP handler and the CLI share.
func NewExportService(ctx context.Context, cfg config.EnvConfig) (service.ExportService, error) {
	var (
		names *refdata.Dataset
		err   error
	)
	if cfg.REFERENCE_DATASET_PATH != "" {
		names, err = refdata.LoadFile(cfg.REFERENCE_DATASET_PATH)
	} else {
		names, err = refdata.LoadBundled()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load reference dataset: %w", err)
	}
	logger.InfoLog(ctx, "Reference dataset loaded: %d names", names.Len())

	opts, err := ExportOptions(cfg)
	if err != nil {
		return nil, err
	}
	gen := rowgen.NewGenerator(rowgen.DefaultSchema(), names)
	return service.NewExportService(gen, opts, nil), nil
}

// ExportOptions maps the EXPORT_* settings onto service options.
func ExportOptions(cfg config.EnvConfig) (service.ExportOptions, error) {
	scope, err := service.ParseTimestampScope(cfg.EXPORT_TIMESTAMP_SCOPE)
	if err != nil {
		return service.ExportOptions{}, err
	}
	policy, err := rowgen.ParseRemainderPolicy(cfg.EXPORT_REMAINDER_POLICY)
	if err != nil {
		return service.ExportOptions{}, err
	}

	opts := service.DefaultExportOptions()
	opts.TotalRows = cfg.EXPORT_TOTAL_ROWS
	opts.SheetCount = cfg.EXPORT_SHEET_COUNT
	opts.WindowSize = cfg.EXPORT_WINDOW_SIZE
	opts.Workers = cfg.EXPORT_WORKERS
	opts.BufferSize = cfg.EXPORT_BUFFER_SIZE
	opts.TimestampScope = scope
	opts.RemainderPolicy = policy
	opts.TmpDir = cfg.EXPORT_TMP_DIR
	return opts, nil
}

func (a *App) RegisterMiddlewares() {
	a.Echo.Use(RequestID())
	a.Echo.Use(RequestLogger())
	a.Echo.Use(middleware.Recover())
	a.Echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{http.MethodGet},
		ExposeHeaders: []string{echo.HeaderContentDisposition, echo.HeaderXRequestID},
	}))
	if a.Config.AUTH_ENABLED {
		a.Echo.Use(JWTAuth(a.Config.AUTH_JWT_SECRET))
	}
}

func (a *App) RegisterRoutes(exportHandler *handler.ExportHandler) {
	api := a.Echo.Group("/api")
	api.GET("/export", exportHandler.DownloadHandler)
	api.GET("/message", exportHandler.MessageHandler)
	api.GET("/public/health", exportHandler.HealthHandler)
}

// Run serves until ctx is cancelled, then shuts down gracefully. In-flight
// exports get SHUTDOWN_TIMEOUT to finish.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		if err := a.Echo.Start(":" + a.Config.APP_PORT); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.InfoLog(ctx, "Shutting down, waiting up to %v for in-flight requests", a.Config.SHUTDOWN_TIMEOUT)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.SHUTDOWN_TIMEOUT)
	defer cancel()
	if err := a.Echo.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}
