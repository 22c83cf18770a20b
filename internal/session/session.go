package session

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/semaphore"

	"jiraview/internal/aggregate"
	"jiraview/internal/dataset"
	"jiraview/internal/exporter"
	"jiraview/internal/filter"
	"jiraview/internal/registry"
	"jiraview/internal/store"
	"jiraview/internal/view"
	"jiraview/pkg/contracts/domain"
)

// Session is the engine state behind one user's table.
type Session struct {
	opts     Options
	store    store.Store
	registry *registry.Registry
	replayer *registry.Replayer
	engine   *aggregate.Engine
	workbook *exporter.WorkbookWriter
	logger   *slog.Logger
	busy     *semaphore.Weighted

	ds      *dataset.Dataset
	filters *filter.Set
	view    []domain.Row
	page    int
	derived domain.DerivedColumnConfig
}

// New creates an empty session persisting to st
func New(opts Options, st store.Store, logger *slog.Logger) *Session {
	opts = opts.withDefaults()
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		opts:     opts,
		store:    st,
		registry: registry.New(st, logger),
		replayer: registry.NewReplayer(opts.DateRoles, opts.Parser, logger),
		engine:   aggregate.NewEngine(opts.MapperRoles, opts.Parser),
		workbook: exporter.NewWorkbookWriter(opts.Workbook, logger),
		logger:   logger.With(slog.String("component", "session")),
		busy:     semaphore.NewWeighted(1),
		filters:  filter.New(opts.DateRoles, opts.Parser),
		page:     1,
		derived:  domain.DefaultDerivedColumnConfig(),
	}
}

// Options returns the session configuration
func (s *Session) Options() Options { return s.opts }

// Load parses a new file, persists it and resets filters and paging.
// Files named *.xlsx are read as workbooks, anything else as CSV.
func (s *Session) Load(ctx context.Context, name string, data []byte) (domain.DatasetSummary, error) {
	ds, err := s.parse(name, data)
	if err != nil {
		return domain.DatasetSummary{}, err
	}

	if err := s.store.Put(ctx, store.KeyCSVData, data); err != nil {
		return domain.DatasetSummary{}, fmt.Errorf("persist dataset: %w", err)
	}
	if err := s.store.Put(ctx, store.KeyCSVFileName, []byte(name)); err != nil {
		return domain.DatasetSummary{}, fmt.Errorf("persist file name: %w", err)
	}

	s.install(ctx, ds)
	s.filters.Clear()
	s.persistFilters(ctx)
	s.recompute()

	s.logger.InfoContext(ctx, "dataset loaded",
		slog.String("file_name", name),
		slog.Int("rows", ds.Len()),
		slog.Int("columns", len(ds.ColumnNames())),
		slog.String("fingerprint", ds.Fingerprint()))
	return ds.Summary(), nil
}

// Restore reloads the persisted file, derived column configuration and
// filters. It reports false when nothing was persisted.
func (s *Session) Restore(ctx context.Context) (bool, error) {
	s.derived = store.LoadJSON(ctx, s.store, store.KeyDerivedColumn, domain.DefaultDerivedColumnConfig(), s.logger)

	data, ok, err := s.store.Get(ctx, store.KeyCSVData)
	if err != nil {
		return false, fmt.Errorf("read persisted dataset: %w", err)
	}
	if !ok || len(data) == 0 {
		return false, nil
	}
	name, err := store.LoadString(ctx, s.store, store.KeyCSVFileName)
	if err != nil {
		return false, fmt.Errorf("read persisted file name: %w", err)
	}

	ds, err := s.parse(name, data)
	if err != nil {
		s.logger.WarnContext(ctx, "persisted dataset is unreadable, starting empty", slog.String("error", err.Error()))
		return false, nil
	}
	s.install(ctx, ds)

	snapshot := store.LoadJSON(ctx, s.store, store.KeyFilters, map[string][]string{}, s.logger)
	s.filters.Restore(snapshot)
	s.recompute()

	s.logger.InfoContext(ctx, "session restored",
		slog.String("file_name", name),
		slog.Int("rows", ds.Len()),
		slog.Int("filters", s.filters.Len()))
	return true, nil
}

func (s *Session) parse(name string, data []byte) (*dataset.Dataset, error) {
	var (
		ds  *dataset.Dataset
		err error
	)
	if strings.HasSuffix(strings.ToLower(name), ".xlsx") {
		ds, err = dataset.ParseWorkbook(name, bytes.NewReader(data))
	} else {
		ds, err = dataset.ParseBytes(name, data)
	}
	if err != nil {
		return nil, err
	}
	if s.opts.Normalize {
		dataset.Normalize(ds, dataset.NormalizeOptions{
			DateColumns:   s.opts.DateRoles.Names(),
			SummaryColumn: s.opts.SummaryColumn,
			Parser:        s.opts.Parser,
		})
	}
	return ds, nil
}

func (s *Session) install(ctx context.Context, ds *dataset.Dataset) {
	s.ds = ds
	s.page = 1
	if s.derived.Enabled {
		if err := dataset.ApplyDerived(ds, s.derived); err != nil {
			s.logger.WarnContext(ctx, "stored derived column does not fit this file",
				slog.String("source", s.derived.Source), slog.String("error", err.Error()))
		}
	}
}

// HasDataset reports whether a file is loaded
func (s *Session) HasDataset() bool { return s.ds != nil }

// Dataset returns the loaded dataset or ErrNoDataset
func (s *Session) Dataset() (*dataset.Dataset, error) {
	if s.ds == nil {
		return nil, ErrNoDataset
	}
	return s.ds, nil
}

// Summary describes the loaded dataset
func (s *Session) Summary() (domain.DatasetSummary, error) {
	ds, err := s.Dataset()
	if err != nil {
		return domain.DatasetSummary{}, err
	}
	return ds.Summary(), nil
}

// View returns the filtered rows in dataset order
func (s *Session) View() []domain.Row { return s.view }

// CurrentPage returns the current page of the filtered view
func (s *Session) CurrentPage() (domain.Page, error) {
	return s.Page(s.page)
}

// Page moves to page, clamped to the available pages, and returns it.
func (s *Session) Page(page int) (domain.Page, error) {
	if s.ds == nil {
		return domain.Page{}, ErrNoDataset
	}
	s.page = view.Clamp(page, view.TotalPages(len(s.view), s.opts.PageSize))
	return view.Paginate(s.view, s.ds.Columns(), s.opts.PageSize, s.page)
}

// PageNumber returns the current 1-based page
func (s *Session) PageNumber() int { return s.page }

func (s *Session) recompute() {
	if s.ds == nil {
		s.view = nil
		return
	}
	s.view = s.filters.Apply(s.ds.Rows())
}

// filtersChanged recomputes the view, returns to the first page and persists the filters.
func (s *Session) filtersChanged(ctx context.Context) {
	s.recompute()
	s.page = 1
	s.persistFilters(ctx)
}

func (s *Session) persistFilters(ctx context.Context) {
	if err := store.SaveJSON(ctx, s.store, store.KeyFilters, s.filters.Snapshot()); err != nil {
		s.logger.WarnContext(ctx, "failed to persist filters", slog.String("error", err.Error()))
	}
}
