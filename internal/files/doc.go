// Package files locates analysis inputs on disk.
//
// Discovery lists the batch files of a directory or glob, skipping lock
// files and unsupported extensions. Manager wraps the chosen paths as a
// domain.UploadBatch whose files are opened lazily:
//
//	found, err := files.NewDiscovery("").FindBatchFiles("exports/acme")
//	batch, err := files.NewManager("", logger).BuildBatch(paths, map[domain.FileRole]string{
//	    domain.RoleCrossReference: "xref.csv",
//	})
package files
