package watcher

import (
	"fmt"
	"path/filepath"
)

// ChangeAnalysis describes what changed and what needs to be redone
type ChangeAnalysis struct {
	NeedGraphRebuild  bool
	NeedLocatorReload bool
	ChangedFiles      []string
	Reason            string
}

// AnalyzeChanges determines what to redo based on what changed
func AnalyzeChanges(event ChangeEvent) *ChangeAnalysis {
	analysis := &ChangeAnalysis{
		ChangedFiles: event.Paths,
	}

	switch event.Type {
	case ChangeTypeEvents:
		// New or edited activity events change nodes, edges and clusters
		analysis.NeedGraphRebuild = true

	case ChangeTypeLocations:
		// Coordinates only decorate clusters; the graph itself is unchanged
		analysis.NeedLocatorReload = true
	}

	names := make([]string, 0, len(event.Paths))
	for _, p := range event.Paths {
		names = append(names, filepath.Base(p))
	}
	analysis.Reason = fmt.Sprintf("%s changed: %v", event.Type, names)

	return analysis
}
