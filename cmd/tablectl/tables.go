package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"jiraview/internal/exporter"
	"jiraview/internal/services"
	"jiraview/internal/store"
)

func newTablesCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tables",
		Short: "Inspect saved tables",
		Long: `Read the saved tables from the store configured for the server.

Examples:
  # List saved tables
  tablectl tables list

  # Print the rows of a saved table against the stored dataset
  tablectl tables replay 01907c4e-5d3a-7c1e-9f5b-2a6e8d4c1b00 > soporte.csv
  tablectl tables replay 01907c4e-5d3a-7c1e-9f5b-2a6e8d4c1b00 -o soporte.csv`,
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List saved tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTablesList(cmd, root)
		},
	})
	var out string
	replay := &cobra.Command{
		Use:   "replay <id>",
		Short: "Print the rows of a saved table as CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTablesReplay(cmd, root, args[0], out)
		},
	}
	replay.Flags().StringVarP(&out, "out", "o", "", "write the CSV to a file instead of stdout")
	cmd.AddCommand(replay)
	return cmd
}

// openStore restores the server session from the configured store
func openStore(ctx context.Context, root *rootOptions, logger *slog.Logger) (*services.TableService, store.Store, error) {
	cfg, err := root.loadConfig()
	if err != nil {
		return nil, nil, err
	}
	paths, err := cfg.ResolvePaths()
	if err != nil {
		return nil, nil, err
	}
	st, err := store.Open(ctx, cfg.StoreOptions(paths))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open store: %w", err)
	}
	svc := newService(cfg, st, logger)
	if _, err := svc.Restore(ctx); err != nil {
		st.Close()
		return nil, nil, fmt.Errorf("failed to restore session: %w", err)
	}
	return svc, st, nil
}

func runTablesList(cmd *cobra.Command, root *rootOptions) error {
	ctx := cmd.Context()
	svc, st, err := openStore(ctx, root, root.logger(cmd.ErrOrStderr()))
	if err != nil {
		return err
	}
	defer st.Close()

	tables := svc.Tables(ctx)
	if root.jsonOutput {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(tables)
	}
	if len(tables) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No saved tables")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCOLUMNS\tCHARTS\tCREATED")
	for _, t := range tables {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\n", t.ID, t.Name, len(t.VisibleColumns), len(t.Charts), t.CreatedAt.Format(time.DateTime))
	}
	return w.Flush()
}

func runTablesReplay(cmd *cobra.Command, root *rootOptions, id, out string) error {
	ctx := cmd.Context()
	svc, st, err := openStore(ctx, root, root.logger(cmd.ErrOrStderr()))
	if err != nil {
		return err
	}
	defer st.Close()

	replayed, err := svc.ReplayTable(ctx, id)
	if err != nil {
		return fmt.Errorf("replay %s: %w", id, err)
	}
	if replayed.Stale {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: table %q was saved against a different dataset\n", replayed.Table.Name)
	}
	for _, missing := range replayed.MissingColumns {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: column %q no longer exists\n", missing)
	}

	if root.jsonOutput {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(replayed.Rows)
	}

	header := make([]string, 0, len(replayed.Columns))
	for _, c := range replayed.Columns {
		header = append(header, c.Name)
	}
	records := make([][]string, 0, len(replayed.Rows))
	for _, row := range replayed.Rows {
		record := make([]string, len(header))
		for i, col := range header {
			record[i] = row.Get(col)
		}
		records = append(records, record)
	}

	opts := exporter.WriteOptions{Headers: header, Records: records}
	if out == "" {
		return exporter.WriteCSV(cmd.OutOrStdout(), opts)
	}
	if err := exporter.WriteCSVFile(out, opts); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d rows to %s\n", len(records), out)
	return nil
}
