// Package files handles the workbooks and exports kept on disk.
//
// Discovery finds workbooks and export files in a directory, newest last,
// and resolves a directory argument to its most recent workbook.
//
// Manager archives uploaded workbooks under data/uploads, one file per
// reference date and content hash, and writes files atomically.
//
//	discovery := files.NewDiscovery(paths.WorkingDir)
//	latest, err := discovery.LatestWorkbook("data")
//
//	manager := files.NewManager(paths, logger)
//	archived, err := manager.ArchiveUpload(today, res.InputHash, data)
package files
