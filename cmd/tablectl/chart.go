package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"jiraview/internal/aggregate"
	"jiraview/pkg/contracts/domain"
)

type chartOptions struct {
	input    string
	category string
	value    string
	mapper   string
	bucket   string
	sort     string
	filters  []string
	years    []string
}

func newChartCmd(root *rootOptions) *cobra.Command {
	opts := &chartOptions{}
	cmd := &cobra.Command{
		Use:   "chart",
		Short: "Aggregate a file by category",
		Long: `Group the filtered rows of a file by a category column and sum a
numeric column, or count rows with __count__.

Examples:
  # Issues per state
  tablectl chart --csv issues.csv --category Estado --value __count__

  # Hours per month of creation
  tablectl chart --csv issues.csv --category Creada --bucket month --value Horas`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChart(cmd, root, opts)
		},
	}
	cmd.Flags().StringVar(&opts.input, "csv", "", "input file, CSV or XLSX (required)")
	cmd.Flags().StringVar(&opts.category, "category", "", "category column (required)")
	cmd.Flags().StringVar(&opts.value, "value", domain.CountSentinel, "numeric value column, or __count__")
	cmd.Flags().StringVar(&opts.mapper, "mapper", "", "category mapper: none, status or priority")
	cmd.Flags().StringVar(&opts.bucket, "bucket", "", "date bucket: year or month")
	cmd.Flags().StringVar(&opts.sort, "sort", "", "order: value_desc, label_asc or label_desc")
	cmd.Flags().StringArrayVar(&opts.filters, "filter", nil, "Column=Value filter, repeatable")
	cmd.Flags().StringArrayVar(&opts.years, "year", nil, "DateColumn=YYYY or DateColumn=YYYY-M selector, one per date column")
	_ = cmd.MarkFlagRequired("csv")
	_ = cmd.MarkFlagRequired("category")
	return cmd
}

func runChart(cmd *cobra.Command, root *rootOptions, opts *chartOptions) error {
	ctx := cmd.Context()
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	logger := root.logger(cmd.ErrOrStderr())

	svc, err := loadFile(ctx, cfg, opts.input, logger)
	if err != nil {
		return err
	}
	if err := applyFilters(ctx, svc, opts.filters, opts.years); err != nil {
		return err
	}

	result, err := svc.Chart(ctx, aggregate.Request{
		CategoryColumn: opts.category,
		ValueColumn:    opts.value,
		Mapper:         aggregate.MapperKind(opts.mapper),
		Bucket:         aggregate.Bucket(opts.bucket),
		Sort:           aggregate.SortOrder(opts.sort),
	})
	if err != nil {
		return fmt.Errorf("aggregation failed: %w", err)
	}

	if root.jsonOutput {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\n", result.CategoryColumn, valueHeader(result.ValueColumn))
	for i, label := range result.Labels {
		fmt.Fprintf(w, "%s\t%g\n", label, result.Values[i])
	}
	fmt.Fprintf(w, "TOTAL\t%g\n", result.Total)
	return w.Flush()
}

func valueHeader(column string) string {
	if column == domain.CountSentinel {
		return "Count"
	}
	return column
}
