package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/locvowork/export_generator/apigateway/internal/bootstrap"
	"github.com/locvowork/export_generator/apigateway/internal/config"
	"github.com/locvowork/export_generator/apigateway/internal/logger"
	"github.com/spf13/cobra"
)

var (
	outputPath string
	totalRows  int
	sheetCount int

	nowFunc = time.Now
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "export-generator",
		Short: "Generate large synthetic xlsx workbooks",
		Long: `export-generator streams a synthetic 30-column workbook, either over HTTP
(GET /api/export) or straight to a file.`,
		SilenceUsage: true,
		RunE:         runServe,
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP export server (default)",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}

	generateCmd := &cobra.Command{
		Use:   "generate",
		Short: "Write one workbook to a file or stdout",
		Args:  cobra.NoArgs,
		RunE:  runGenerate,
	}
	generateCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path, - for stdout (default: data_<timestamp>.xlsx)")
	generateCmd.Flags().IntVar(&totalRows, "rows", 0, "Override EXPORT_TOTAL_ROWS")
	generateCmd.Flags().IntVar(&sheetCount, "sheets", 0, "Override EXPORT_SHEET_COUNT")

	rootCmd.AddCommand(serveCmd, generateCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := bootstrap.NewApp()
	if err := app.Initialize(ctx); err != nil {
		logger.ErrorLog(ctx, "Failed to initialize application: %v", err)
		return err
	}
	defer logger.Close()

	if err := app.Run(ctx); err != nil {
		logger.ErrorLog(ctx, "Application failed: %v", err)
		return err
	}
	return nil
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := config.LoadEnvConfig(); err != nil {
		return fmt.Errorf("failed to load env config: %w", err)
	}
	cfg := config.DefaultEnvConfig
	if totalRows > 0 {
		cfg.EXPORT_TOTAL_ROWS = totalRows
	}
	if sheetCount > 0 {
		cfg.EXPORT_SHEET_COUNT = sheetCount
	}

	if err := logger.InitLogging(cfg.LOG_FILE_PATH); err != nil {
		return err
	}
	defer logger.Close()
	logger.SetLevel(cfg.LOG_LEVEL)

	svc, err := bootstrap.NewExportService(ctx, cfg)
	if err != nil {
		return err
	}

	path := outputPath
	if path == "" {
		path = svc.Filename(nowFunc())
	}
	if path == "-" {
		return svc.Export(ctx, cmd.OutOrStdout())
	}
	return writeFile(ctx, path, func(w io.Writer) error { return svc.Export(ctx, w) })
}

// writeFile runs export into path and removes the partial file on failure.
func writeFile(ctx context.Context, path string, export func(w io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("failed to close output: %w", cerr)
		}
		if err != nil {
			_ = os.Remove(path)
		}
	}()

	if err := export(f); err != nil {
		return err
	}
	logger.InfoLog(ctx, "Workbook written to %s", path)
	return nil
}
