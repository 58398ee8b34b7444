package tasks

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// Form field identifiers. Validation errors are anchored to these.
const (
	FieldTitle       = "txtTitle"
	FieldDescription = "txtDescription"
	FieldColor       = "selColor"
	FieldStartDate   = "selStartDate"
	FieldStatus      = "selStatus"
	FieldBudget      = "numBudget"
)

const (
	minTitleLen = 3
	maxTitleLen = 50
	minDescLen  = 10
	maxDescLen  = 200
	maxBudget   = 1_000_000
)

// DateInputLayout is the layout of a datetime-local input value.
const DateInputLayout = "2006-01-02T15:04"

var dateLayouts = []string{
	DateInputLayout,
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02",
}

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// FieldError is one failed rule, anchored to the input it came from.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Result is the verdict of Validate. The parsed values are only meaningful
// when Valid is true.
type Result struct {
	Valid  bool
	Errors []FieldError

	Title       string
	Description string
	Color       string
	StartDate   time.Time
	Status      Status
	Budget      float64
}

// Messages returns the error messages in field order.
func (r Result) Messages() []string {
	out := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		out = append(out, e.Message)
	}
	return out
}

type Validator struct {
	// Now defaults to time.Now.
	Now func() time.Time
	// Location is used for dates without an offset and for "today". Defaults to time.Local.
	Location *time.Location
}

func (v Validator) now() time.Time {
	if v.Now != nil {
		return v.Now()
	}
	return time.Now()
}

// Loc is the time zone dates are read in.
func (v Validator) Loc() *time.Location {
	if v.Location != nil {
		return v.Location
	}
	return time.Local
}

// Validate checks every field and accumulates one message per failing field,
// ordered title, description, start date, budget, color, status.
func (v Validator) Validate(f Fields) Result {
	var res Result
	add := func(field, msg string) {
		res.Errors = append(res.Errors, FieldError{Field: field, Message: msg})
	}

	res.Title = strings.TrimSpace(f.Title)
	switch n := utf8.RuneCountInString(res.Title); {
	case n == 0:
		add(FieldTitle, "Title is required")
	case n < minTitleLen:
		add(FieldTitle, "Title must be at least 3 characters long")
	case n > maxTitleLen:
		add(FieldTitle, "Title cannot exceed 50 characters")
	}

	res.Description = strings.TrimSpace(f.Description)
	switch n := utf8.RuneCountInString(res.Description); {
	case n == 0:
		add(FieldDescription, "Description is required")
	case n < minDescLen:
		add(FieldDescription, "Description must be at least 10 characters long")
	case n > maxDescLen:
		add(FieldDescription, "Description cannot exceed 200 characters")
	}

	if date := strings.TrimSpace(f.StartDate); date == "" {
		add(FieldStartDate, "Start date is required")
	} else if start, ok := v.parseDate(date); !ok {
		add(FieldStartDate, "Start date must be a valid date")
	} else if start.Before(v.startOfToday()) {
		add(FieldStartDate, "Start date cannot be in the past")
	} else {
		res.StartDate = start
	}

	if raw := strings.TrimSpace(f.Budget); raw == "" {
		add(FieldBudget, "Budget is required")
	} else if b, err := strconv.ParseFloat(raw, 64); err != nil || math.IsNaN(b) || math.IsInf(b, 0) {
		add(FieldBudget, "Budget must be a valid number")
	} else if b <= 0 {
		add(FieldBudget, "Budget must be greater than 0")
	} else if b > maxBudget {
		add(FieldBudget, "Budget cannot exceed $1,000,000")
	} else {
		res.Budget = b
	}

	res.Color = strings.TrimSpace(f.Color)
	if res.Color == "" {
		res.Color = DefaultColor
	} else if !hexColor.MatchString(res.Color) {
		add(FieldColor, "Color must be a 6-digit hex value")
	}

	if s, ok := ParseStatus(f.Status); ok {
		res.Status = s
	} else {
		add(FieldStatus, "Status must be New, In Progress or Completed")
	}

	res.Valid = len(res.Errors) == 0
	return res
}

// ParseStatus maps a form value to a Status. Empty input selects StatusNew.
func ParseStatus(s string) (Status, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return StatusNew, true
	}
	for _, st := range Statuses {
		if strings.EqualFold(s, string(st)) {
			return st, true
		}
	}
	return "", false
}

func (v Validator) parseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, v.Loc()); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func (v Validator) startOfToday() time.Time {
	now := v.now().In(v.Loc())
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, v.Loc())
}
