// Command tablectl runs table operations from the shell: filtered exports,
// chart aggregation and access to the saved tables of a configured store.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"jiraview/internal/config"
	"jiraview/internal/infrastructure"
	"jiraview/internal/services"
	"jiraview/internal/session"
	"jiraview/internal/store"
	"jiraview/internal/validation"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// rootOptions holds the persistent flags
type rootOptions struct {
	configFile string
	jsonOutput bool
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "tablectl",
		Short: "Filter, chart and export issue tracker tables",
		Long: `tablectl works on CSV or XLSX exports of an issue tracker.

It applies the same filters, aggregations and workbook exports as the web
server, and reads the saved tables from the store the server is configured
with.`,
		Version:       config.AppVersion,
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	cmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "config file (defaults to the server's lookup)")
	cmd.PersistentFlags().BoolVar(&opts.jsonOutput, "json", false, "Output results as JSON")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log debug output to stderr")

	cmd.AddCommand(newExportCmd(opts))
	cmd.AddCommand(newChartCmd(opts))
	cmd.AddCommand(newTablesCmd(opts))
	return cmd
}

func (o *rootOptions) loadConfig() (*config.Config, error) {
	if o.configFile != "" {
		return config.LoadFile(o.configFile)
	}
	return config.Load()
}

func (o *rootOptions) logger(w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if o.verbose {
		level = slog.LevelDebug
	}
	return infrastructure.NewJSONLogger(w, level).With(slog.String("component", "tablectl"))
}

// newService builds a table service over st
func newService(cfg *config.Config, st store.Store, logger *slog.Logger) *services.TableService {
	sess := session.New(cfg.SessionOptions(), st, logger)
	return services.NewTableService(sess, nil, nil, nil, logger)
}

// loadFile starts an in-memory session holding the file at path
func loadFile(ctx context.Context, cfg *config.Config, path string, logger *slog.Logger) (*services.TableService, error) {
	if err := validation.NewFileValidator(logger).ValidateTableFile(path); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	svc := newService(cfg, store.NewMemory(), logger)
	if _, err := svc.Load(ctx, filepath.Base(path), data); err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return svc, nil
}

// applyFilters applies Column=Value filters and Column=Year selectors.
// Repeated --filter columns accumulate values. A date column takes a single
// selector, so repeating --year for one column is an error.
func applyFilters(ctx context.Context, svc *services.TableService, filters, years []string) error {
	byColumn := make(map[string][]string)
	var order []string
	for _, f := range filters {
		col, val, err := splitAssignment(f)
		if err != nil {
			return fmt.Errorf("--filter: %w", err)
		}
		if _, seen := byColumn[col]; !seen {
			order = append(order, col)
		}
		byColumn[col] = append(byColumn[col], val)
	}
	for _, col := range order {
		if _, err := svc.SetColumnFilter(ctx, col, byColumn[col]); err != nil {
			return fmt.Errorf("filter %s: %w", col, err)
		}
	}

	selected := make(map[string]string)
	for _, y := range years {
		col, val, err := splitAssignment(y)
		if err != nil {
			return fmt.Errorf("--year: %w", err)
		}
		key := strings.ToLower(col)
		if prev, dup := selected[key]; dup {
			return fmt.Errorf("--year: %s already selects %s, give one selector per date column", col, prev)
		}
		selected[key] = val
		if _, err := svc.ToggleQuickFilter(ctx, col, val); err != nil {
			return fmt.Errorf("year %s: %w", col, err)
		}
	}
	return nil
}

func splitAssignment(s string) (string, string, error) {
	col, val, ok := strings.Cut(s, "=")
	col = strings.TrimSpace(col)
	if !ok || col == "" {
		return "", "", fmt.Errorf("expected Column=Value, got %q", s)
	}
	return col, strings.TrimSpace(val), nil
}
