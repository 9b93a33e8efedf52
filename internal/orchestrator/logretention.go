package orchestrator

import (
	"os"
	"path/filepath"
	"sort"
)

// applyLogRetention keeps the keepCount most-recently-modified "*.log"
// files in logDir and removes the rest, mirroring RetentionEngine's
// keep-newest-N rule but applied to job log files rather than archive
// instances (§4.9 "log-file retention"). keepCount <= 0 means "keep all."
func applyLogRetention(logDir string, keepCount int) {
	if keepCount <= 0 {
		return
	}
	entries, err := os.ReadDir(logDir)
	if err != nil {
		return
	}

	type logFile struct {
		path    string
		modTime int64
	}
	var logs []logFile
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".log" {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		logs = append(logs, logFile{path: filepath.Join(logDir, e.Name()), modTime: info.ModTime().UnixNano()})
	}
	if len(logs) <= keepCount {
		return
	}

	sort.Slice(logs, func(i, j int) bool { return logs[i].modTime > logs[j].modTime })
	for _, l := range logs[keepCount:] {
		_ = os.Remove(l.path)
	}
}
