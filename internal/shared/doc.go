// Package shared holds small helpers used by several engine packages that
// carry no domain logic of their own.
//
// # Text folding
//
// Fold lower-cases text and strips combining accents so that "Crítica",
// "CRITICA" and "critica" compare equal. Column roles, Spanish month names
// and priority labels are all matched through it.
//
// # Test Utilities
//
// The testutil subpackage provides:
//
//	- A buffered slog handler for asserting on log output
//	- Fixture CSV exports shaped like the issue tracker's
//
// Example usage:
//
//	func TestSomething(t *testing.T) {
//	    logger, handler := testutil.NewTestLogger(t)
//	    ds, _ := dataset.Parse("issues.csv", strings.NewReader(testutil.IssuesCSV))
//	    ...
//	    testutil.AssertLogContains(t, handler, slog.LevelWarn, "fingerprint")
//	}
package shared
