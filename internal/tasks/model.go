package tasks

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusNew        Status = "New"
	StatusInProgress Status = "In Progress"
	StatusCompleted  Status = "Completed"
)

// Statuses lists the selectable statuses in form order.
var Statuses = []Status{StatusNew, StatusInProgress, StatusCompleted}

const (
	Important    = "Yes"
	DefaultColor = "#667eea"
)

type Task struct {
	ID          string    `json:"id,omitempty"`
	UserID      string    `json:"userId"`
	Important   string    `json:"important"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Color       string    `json:"color"`
	StartDate   time.Time `json:"startDate"`
	Status      Status    `json:"status"`
	Budget      float64   `json:"budget"`
}

// Fields is the raw form input, exactly as submitted.
type Fields struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Color       string `json:"color"`
	StartDate   string `json:"startDate"`
	Status      string `json:"status"`
	Budget      string `json:"budget"`
}

// NewTask validates f and builds a task owned by owner. No task is returned
// when validation fails; the error is a *ValidationError.
func NewTask(owner string, f Fields, v Validator) (Task, error) {
	res := v.Validate(f)
	if !res.Valid {
		return Task{}, &ValidationError{Fields: res.Errors}
	}
	return Task{
		ID:          uuid.NewString(),
		UserID:      owner,
		Important:   Important,
		Title:       res.Title,
		Description: res.Description,
		Color:       res.Color,
		StartDate:   res.StartDate,
		Status:      res.Status,
		Budget:      res.Budget,
	}, nil
}
