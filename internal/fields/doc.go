// Package fields turns raw spreadsheet cells into typed values.
//
// Parsers never fail loudly: a value that cannot be read returns false and
// the caller decides whether the row survives. Text values follow Brazilian
// conventions (day-first dates, "," as the decimal separator).
package fields
