// Package http implements the REST handlers of the table viewer.
//
// Handlers are thin: they decode and validate the request, call the table
// service and render the result with go-chi/render. Service errors are
// handed to errors.ErrorHandler, which answers with RFC 7807 problem
// documents.
//
// All table endpoints live under /api:
//
//	POST   /dataset                    upload a CSV or XLSX file
//	GET    /view?page=N                current page of the filtered view
//	PUT    /filters/{column}           replace a column filter
//	POST   /filters/{column}/toggle    toggle one quick filter value
//	GET    /columns, PUT /columns/{c}  column visibility
//	PUT    /derived-column             configure the derived column
//	POST   /charts                     aggregate the current view
//	/tables/...                        saved tables and their charts
//	/export/...                        workbook and CSV downloads
//
// Column names in paths are percent-encoded.
package http
