// Package exporter writes the day's selection to files people open in Excel.
//
// CSVWriter is the low-level writer: headers, append mode, streaming and a
// UTF-8 BOM so accents survive Excel's import. BucketExporter builds on it to
// produce the consolidated top-per-bucket table, as CSV or XLSX, with a
// "Bloco" column naming the indexer x horizon cell of every row.
//
// Example usage:
//
//	buckets := selection.AllBuckets(records, 5)
//	exp := exporter.NewBucketExporter(buckets, presentation.DefaultRatePolicy(), logger)
//	path, err := exp.SaveCSV("data/exports", time.Now())
package exporter
