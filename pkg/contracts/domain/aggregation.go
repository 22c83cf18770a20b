package domain

// Slice is one category of an aggregation result
type Slice struct {
	Label   string  `json:"label"`
	Value   float64 `json:"value"`
	Percent float64 `json:"percent"`
}

// AggregationResult holds the grouped values of a chart request
type AggregationResult struct {
	CategoryColumn string    `json:"categoryCol"`
	ValueColumn    string    `json:"valueCol"`
	Labels         []string  `json:"labels"`
	Values         []float64 `json:"values"`
	Total          float64   `json:"total"`
	Slices         []Slice   `json:"slices"`
}
