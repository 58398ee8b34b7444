package board

import "time"

type NoticeKind string

const (
	NoticeSuccess    NoticeKind = "success"
	NoticeWarning    NoticeKind = "warning"
	NoticeValidation NoticeKind = "validation"
)

// How long each kind of notice stays visible.
var noticeTTL = map[NoticeKind]time.Duration{
	NoticeSuccess:    3 * time.Second,
	NoticeWarning:    4 * time.Second,
	NoticeValidation: 5 * time.Second,
}

// noticeOrder is the display order of the notice slots.
var noticeOrder = []NoticeKind{NoticeValidation, NoticeWarning, NoticeSuccess}

type Notice struct {
	Kind      NoticeKind `json:"kind"`
	Message   string     `json:"message"`
	Items     []string   `json:"items,omitempty"`
	ExpiresAt time.Time  `json:"expiresAt"`
}

// Title is the bold lead-in shown before the message.
func (n Notice) Title() string {
	switch n.Kind {
	case NoticeSuccess:
		return "Success!"
	case NoticeWarning:
		return "Warning!"
	default:
		return "Please fix the following errors:"
	}
}

// notices holds at most one notice per kind; posting replaces.
type notices map[NoticeKind]Notice

func (ns notices) post(now time.Time, kind NoticeKind, msg string, items ...string) {
	ns[kind] = Notice{Kind: kind, Message: msg, Items: items, ExpiresAt: now.Add(noticeTTL[kind])}
}

func (ns notices) active(now time.Time) []Notice {
	var out []Notice
	for _, k := range noticeOrder {
		n, ok := ns[k]
		if !ok {
			continue
		}
		if !now.Before(n.ExpiresAt) {
			delete(ns, k)
			continue
		}
		out = append(out, n)
	}
	return out
}
