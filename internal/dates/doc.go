// Package dates parses the date strings found in issue tracker exports into
// calendar dates.
//
// Accepted forms are ISO (2023-03-15), day-month-year tokens separated by
// slashes, dashes or spaces (15/03/2023, 15-03-23) and Spanish month names
// or abbreviations, optionally joined by "de" (15 de marzo de 2023, 15-mar-23).
// Two-digit years are resolved with a single pivot: years above the pivot
// belong to the 1900s, the rest to the 2000s.
//
// Anything that does not resolve to a valid day, month and year is rejected
// with ok == false. Parsing never panics.
package dates
