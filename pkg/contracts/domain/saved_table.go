package domain

import "time"

// CountSentinel selects row counting instead of summing a value column
const CountSentinel = "__count__"

// SavedTable is a named recipe over the base dataset. Only the recipe is
// stored; rows are recomputed on replay.
type SavedTable struct {
	ID              string              `json:"id" validate:"required"`
	Name            string              `json:"name" validate:"required,max=200"`
	Filters         map[string][]string `json:"filters"`
	VisibleColumns  []string            `json:"visibleColumns" validate:"min=1"`
	Charts          []ChartDefinition   `json:"charts"`
	CreatedAt       time.Time           `json:"createdAt"`
	BaseFingerprint string              `json:"baseFingerprint,omitempty"`
}

// ChartDefinition is a chart recipe attached to a saved table
type ChartDefinition struct {
	ID             string `json:"id"`
	Title          string `json:"title" validate:"required"`
	CategoryColumn string `json:"categoryCol" validate:"required"`
	ValueColumn    string `json:"valueCol" validate:"required"`
}

// IsCount reports whether the chart counts rows
func (c ChartDefinition) IsCount() bool {
	return c.ValueColumn == CountSentinel
}

// FindChart returns the chart with the given id
func (t *SavedTable) FindChart(id string) (ChartDefinition, bool) {
	for _, c := range t.Charts {
		if c.ID == id {
			return c, true
		}
	}
	return ChartDefinition{}, false
}
