package present

import (
	"strings"

	"github.com/s1natex/taskboard-GO/internal/tasks"
)

type Stats struct {
	Total      int `json:"total"`
	New        int `json:"new"`
	InProgress int `json:"inProgress"`
	Completed  int `json:"completed"`
}

// RecomputeStats counts the rendered cards by status label. Labels are
// matched loosely (case-insensitive substring), so text that matches no
// bucket only counts toward Total.
func RecomputeStats(rendered []tasks.Task) Stats {
	s := Stats{Total: len(rendered)}
	for _, t := range rendered {
		label := strings.ToLower(strings.TrimSpace(string(t.Status)))
		switch {
		case strings.Contains(label, "new"):
			s.New++
		case strings.Contains(label, "progress"):
			s.InProgress++
		case strings.Contains(label, "complete"):
			s.Completed++
		}
	}
	return s
}
