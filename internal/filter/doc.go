// Package filter implements the composable filter set applied to a dataset.
//
// A Set maps column names to the values accepted for that column. A row
// passes when every constrained column accepts its cell (AND across columns)
// and a column accepts a cell when the cell is one of its values (OR within a
// column). Missing cells are treated as empty strings.
//
// Columns playing a date role (see Roles) additionally accept a single
// selector value: "YYYY" matches every date in that year and "YYYY-M" every
// date in that year and 0-based month. Quick filters on date columns replace
// the previous selector instead of accumulating values.
//
// A Set never stores an empty value set: clearing the last value of a column
// removes the column's constraint.
package filter
