package present

import "github.com/s1natex/taskboard-GO/internal/tasks"

type NoticeView struct {
	Kind    string // success, warning or validation
	Title   string
	Message string
	Items   []string
}

// PageData is everything the board page shows.
type PageData struct {
	FormVisible bool
	Draft       tasks.Fields
	FieldErrors map[string]string
	Notices     []NoticeView
	Stats       Stats
	Cards       []tasks.Task
	Statuses    []tasks.Status
}
