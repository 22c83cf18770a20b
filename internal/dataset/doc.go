// Package dataset holds the loaded CSV export: an ordered list of rows plus
// column descriptors in display order.
//
// A Dataset is created once per load and its row count never changes
// afterwards. Rows are mutated in place only by ingestion normalization
// (Normalize) and by derived columns (ApplyDerived), which append a column
// descriptor exactly once and overwrite its values on every re-application.
//
// Input may be CSV (Parse) or the first sheet of an xlsx workbook
// (ParseWorkbook). Both paths trim cells, drop a leading UTF-8 BOM, give
// duplicate headers a numeric suffix and pad short records with empty cells.
package dataset
