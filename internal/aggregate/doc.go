// Package aggregate groups the rows of a filtered view by a category column
// and either counts them or sums a numeric column.
//
// Groups keep the order in which their first row appears unless a sort is
// requested. Category cells may be collapsed through a mapper (status or
// priority groups) or bucketed by year or month when the category is a date.
// Empty categories are reported as "Sin categoría".
//
// Summing strips thousands separators before parsing; cells that are empty,
// unparsable or zero contribute nothing and never create a group. The count
// sentinel "__count__" adds one per row instead.
package aggregate
