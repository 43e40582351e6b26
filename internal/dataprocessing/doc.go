// Package dataprocessing reads the broker's daily offer workbook and turns
// its sheets into normalized fixed-income records.
//
// # Architecture
//
// The package is organized into three steps:
//
// 1. Reader: opens the xlsx in memory and loads one sheet into a Table, starting
// at a sheet-specific header row and stopping after a run of blank rows
// 2. Column resolution: maps free-text headers to ColumnRoles through a ranked
// alias table, once per table
// 3. Normalizer: parses and classifies every row, dropping the ones that lack a
// rate, indexer class or horizon
//
// # Usage
//
//	wb, err := dataprocessing.OpenWorkbook(bytes.NewReader(data), logger)
//	if err != nil {
//	    return err
//	}
//	defer wb.Close()
//
//	table, err := wb.ReadSheet(dataprocessing.DefaultBankSheetSpec())
//	if err != nil {
//	    return err // *errors.IngestionError
//	}
//
//	n := dataprocessing.NewNormalizer(today, classify.IndexerRules{}, logger)
//	result, err := n.NormalizeBank(table)
//
// Missing sheets and unresolvable required columns are fatal and reported as
// *errors.IngestionError carrying the detected headers. Dropped rows are
// counted in NormalizationResult.Dropped and never fail the run.
package dataprocessing
