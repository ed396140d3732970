// Package logtail reads the tail of the dashboard's JSON log for the in-app
// log view.
//
// Lines keeps only the last N lines in a ring buffer, so memory stays
// O(N) whatever the file size. Parse decodes zerolog JSON lines with gjson;
// anything that is not JSON is kept as a plain message so nothing written to
// the file is hidden.
//
//	entries, err := logtail.Read(cfg.LogFile, 200, zerolog.InfoLevel)
//	for _, e := range entries {
//		fmt.Println(e.Format())
//	}
package logtail
