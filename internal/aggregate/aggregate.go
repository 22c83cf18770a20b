package aggregate

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"jiraview/internal/dates"
	"jiraview/pkg/contracts/domain"
)

// Labels used for cells that carry no category
const (
	Uncategorized = "Sin categoría"
	Undated       = "Sin fecha"
)

// ErrMissingSelection is returned when the category or value column is not chosen
var ErrMissingSelection = errors.New("category and value columns are required")

// Bucket groups a date category by period
type Bucket string

const (
	BucketNone  Bucket = ""
	BucketYear  Bucket = "year"
	BucketMonth Bucket = "month"
)

// SortOrder orders the groups of a result
type SortOrder string

const (
	// SortNone keeps the order of first appearance
	SortNone      SortOrder = ""
	SortValueDesc SortOrder = "value_desc"
	SortLabelAsc  SortOrder = "label_asc"
	SortLabelDesc SortOrder = "label_desc"
)

// Request describes one aggregation over a view
type Request struct {
	CategoryColumn string     `json:"categoryCol" validate:"required"`
	ValueColumn    string     `json:"valueCol" validate:"required"`
	Mapper         MapperKind `json:"mapper,omitempty" validate:"omitempty,oneof=none status priority"`
	Bucket         Bucket     `json:"bucket,omitempty" validate:"omitempty,oneof=year month"`
	Sort           SortOrder  `json:"sort,omitempty" validate:"omitempty,oneof=value_desc label_asc label_desc"`
}

// Engine aggregates rows using configured mapper roles and date parser.
type Engine struct {
	roles    Roles
	parser   dates.Parser
	validate *validator.Validate
}

// NewEngine returns an aggregation engine
func NewEngine(roles Roles, parser dates.Parser) *Engine {
	return &Engine{roles: roles, parser: parser, validate: validator.New()}
}

// Aggregate groups rows by req.CategoryColumn. It never modifies rows.
func (e *Engine) Aggregate(rows []domain.Row, req Request) (domain.AggregationResult, error) {
	if req.CategoryColumn == "" || req.ValueColumn == "" {
		return domain.AggregationResult{}, ErrMissingSelection
	}
	if err := e.validate.Struct(req); err != nil {
		return domain.AggregationResult{}, fmt.Errorf("invalid aggregation request: %w", err)
	}

	key := e.keyFunc(req)
	count := req.ValueColumn == domain.CountSentinel

	totals := make(map[string]float64)
	var order []string
	for _, row := range rows {
		var v float64
		if count {
			v = 1
		} else {
			n, ok := ParseNumber(row.Get(req.ValueColumn))
			if !ok || n == 0 {
				continue
			}
			v = n
		}
		label := key(row.Get(req.CategoryColumn))
		if _, seen := totals[label]; !seen {
			order = append(order, label)
		}
		totals[label] += v
	}

	sortLabels(order, totals, req.Sort)

	result := domain.AggregationResult{
		CategoryColumn: req.CategoryColumn,
		ValueColumn:    req.ValueColumn,
		Labels:         order,
		Values:         make([]float64, len(order)),
	}
	for i, label := range order {
		result.Values[i] = totals[label]
		result.Total += totals[label]
	}
	result.Slices = Percentages(result.Labels, result.Values)
	return result, nil
}

func (e *Engine) keyFunc(req Request) func(string) string {
	switch req.Bucket {
	case BucketYear, BucketMonth:
		return func(cell string) string {
			d, ok := e.parser.ParseLeading(cell)
			if !ok {
				return Undated
			}
			if req.Bucket == BucketYear {
				return strconv.Itoa(d.Year)
			}
			return fmt.Sprintf("%04d-%02d", d.Year, int(d.Month))
		}
	}

	mapper := e.roles.resolve(req.Mapper, req.CategoryColumn)
	return func(cell string) string {
		if mapper != nil {
			return mapper(cell)
		}
		if cell == "" {
			return Uncategorized
		}
		return cell
	}
}

// Percentages returns each value as a share of the total. A zero total yields zero shares.
func Percentages(labels []string, values []float64) []domain.Slice {
	var total float64
	for _, v := range values {
		total += v
	}
	out := make([]domain.Slice, len(labels))
	for i, label := range labels {
		out[i] = domain.Slice{Label: label, Value: values[i]}
		if total != 0 {
			out[i].Percent = values[i] / total * 100
		}
	}
	return out
}

// ParseNumber parses a numeric cell after removing thousands separators.
func ParseNumber(cell string) (float64, bool) {
	s := strings.ReplaceAll(strings.TrimSpace(cell), ",", "")
	if s == "" {
		return 0, false
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

// NumericColumns lists the visible columns usable as a sum: at least one
// non-empty cell and every non-empty cell numeric.
func NumericColumns(rows []domain.Row, columns []domain.Column) []string {
	var out []string
	for _, c := range columns {
		if !c.Visible {
			continue
		}
		seen := false
		numeric := true
		for _, r := range rows {
			v := strings.TrimSpace(r.Get(c.Name))
			if v == "" {
				continue
			}
			seen = true
			if _, ok := ParseNumber(v); !ok {
				numeric = false
				break
			}
		}
		if seen && numeric {
			out = append(out, c.Name)
		}
	}
	return out
}

func sortLabels(labels []string, totals map[string]float64, order SortOrder) {
	switch order {
	case SortValueDesc:
		sort.SliceStable(labels, func(i, j int) bool { return totals[labels[i]] > totals[labels[j]] })
	case SortLabelAsc:
		sort.Strings(labels)
	case SortLabelDesc:
		sort.Sort(sort.Reverse(sort.StringSlice(labels)))
	}
}
