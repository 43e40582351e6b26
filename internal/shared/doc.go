// Package shared holds helpers used across packages that do not belong to
// any one layer.
//
// The testutil subpackage provides a capturing slog handler and builders for
// in-memory broker workbooks:
//
//	func TestSomething(t *testing.T) {
//	    logger, logs := testutil.NewTestLogger(t)
//	    data := testutil.NewWorkbook(t).
//	        BankSheet(testutil.BankRow{...}).
//	        Bytes()
//	    // use logger and data
//	    assert.True(t, logs.ContainsMessage("..."))
//	}
package shared
