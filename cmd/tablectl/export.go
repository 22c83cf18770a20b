package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"jiraview/internal/validation"
)

type exportOptions struct {
	input   string
	out     string
	filters []string
	years   []string
}

func newExportCmd(root *rootOptions) *cobra.Command {
	opts := &exportOptions{}
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the filtered rows of a file",
		Long: `Load a CSV or XLSX file, apply filters and write the matching rows.

The output format follows the extension of --out: .csv writes CSV and .xlsx
a single-sheet workbook.

Examples:
  # Closed issues created in 2023
  tablectl export --csv issues.csv --filter Estado=Cerrado --year Creada=2023 --out cerradas.xlsx

  # Two states of one column
  tablectl export --csv issues.csv --filter Estado=Cerrado --filter Estado=Resuelto --out done.csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, root, opts)
		},
	}
	cmd.Flags().StringVar(&opts.input, "csv", "", "input file, CSV or XLSX (required)")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "datos_con_grafico.xlsx", "output file")
	cmd.Flags().StringArrayVar(&opts.filters, "filter", nil, "Column=Value filter, repeatable")
	cmd.Flags().StringArrayVar(&opts.years, "year", nil, "DateColumn=YYYY or DateColumn=YYYY-M selector, one per date column")
	_ = cmd.MarkFlagRequired("csv")
	return cmd
}

func runExport(cmd *cobra.Command, root *rootOptions, opts *exportOptions) error {
	ctx := cmd.Context()
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	logger := root.logger(cmd.ErrOrStderr())
	if err := validation.NewFileValidator(logger).ValidateOutputFile(opts.out); err != nil {
		return err
	}

	svc, err := loadFile(ctx, cfg, opts.input, logger)
	if err != nil {
		return err
	}
	if err := applyFilters(ctx, svc, opts.filters, opts.years); err != nil {
		return err
	}

	var buf bytes.Buffer
	if strings.EqualFold(filepath.Ext(opts.out), ".csv") {
		err = svc.ExportViewCSV(ctx, &buf)
	} else {
		err = svc.ExportView(ctx, &buf, nil)
	}
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}
	if err := os.WriteFile(opts.out, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", opts.out, err)
	}

	page, err := svc.Page(ctx, 0)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d rows to %s\n", page.TotalRows, opts.out)
	return nil
}
