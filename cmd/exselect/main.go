// Package main provides the CLI entry point for exselect-go.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/ukaji3/exselect-go/internal/auth"
	"github.com/ukaji3/exselect-go/internal/config"
	"github.com/ukaji3/exselect-go/internal/logging"
	"github.com/ukaji3/exselect-go/internal/server"
	"github.com/ukaji3/exselect-go/pkg/exselect"
	"github.com/ukaji3/exselect-go/pkg/exselect/codec"
	"github.com/ukaji3/exselect-go/pkg/exselect/export"
	"github.com/ukaji3/exselect-go/pkg/exselect/selection"
)

var (
	configPath string
	addr       string
	rows       []int
	prefix     string
	outDir     string
	sheetName  string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "exselect",
		Short: "Select rows from spreadsheets and export them",
		Long: `exselect-go serves a login-protected spreadsheet widget: upload an xlsx file,
page through it, tick rows and export the selection as a new workbook.`,
		SilenceUsage: true,
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP service",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	serveCmd.Flags().StringVarP(&configPath, "config", "c", "exselect.yaml", "Config file path")
	serveCmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides server.addr)")

	exportCmd := &cobra.Command{
		Use:   "export [input.xlsx]",
		Short: "Export selected rows of a spreadsheet",
		Args:  cobra.ExactArgs(1),
		RunE:  runExport,
	}
	exportCmd.Flags().IntSliceVar(&rows, "rows", nil, "Zero-based data row indices to export, e.g. 1,4")
	exportCmd.Flags().StringVar(&prefix, "prefix", exselect.DefaultExportPrefix, "Output file name prefix")
	exportCmd.Flags().StringVar(&outDir, "out-dir", ".", "Directory for the exported file")
	exportCmd.Flags().StringVar(&sheetName, "sheet", "", "Sheet to read (default: first sheet)")
	_ = exportCmd.MarkFlagRequired("rows")

	hashCmd := &cobra.Command{
		Use:   "hash-password [password]",
		Short: "Print a bcrypt hash for auth.users in the config file",
		Args:  cobra.ExactArgs(1),
		RunE:  runHashPassword,
	}

	rootCmd.AddCommand(serveCmd, exportCmd, hashCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}

	logger, err := logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}

	users := auth.NewUserStore(cfg.Auth.MinPasswordScore)
	for _, u := range cfg.Auth.Users {
		if err := users.Seed(u.Email, u.PasswordHash); err != nil {
			return fmt.Errorf("invalid user %s: %w", u.Email, err)
		}
	}
	if users.Len() == 0 && !cfg.Auth.AllowSignup {
		logger.Warn("no users configured and signup disabled; nobody can log in")
	}

	srv, err := server.New(cfg, users, logger)
	if err != nil {
		return fmt.Errorf("failed to build server: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return srv.Run(ctx)
}

func runExport(cmd *cobra.Command, args []string) error {
	inputPath := args[0]

	ds, err := codec.DecodeFile(inputPath, codec.DecodeOptions{SheetName: sheetName})
	if err != nil {
		return fmt.Errorf("decode failed: %w", err)
	}

	store := selection.New()
	for _, r := range rows {
		store.Add(r)
	}

	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	outputPath := filepath.Join(outDir, export.FileName(prefix, time.Now()))

	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output: %w", err)
	}
	res, err := export.Write(f, ds, store, export.Options{})
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(outputPath)
		if errors.Is(err, exselect.ErrNoValidRows) {
			return fmt.Errorf("none of rows %v exist in %s (%d data rows)", rows, inputPath, ds.Len())
		}
		return fmt.Errorf("export failed: %w", err)
	}

	if len(res.Skipped) > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "skipped missing rows: %v\n", res.Skipped)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s (%d rows)\n", outputPath, len(res.Rows))
	return nil
}

func runHashPassword(cmd *cobra.Command, args []string) error {
	hash, err := auth.HashPassword(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), hash)
	return nil
}
