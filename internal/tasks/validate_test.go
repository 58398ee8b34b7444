package tasks

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 10, 18, 15, 30, 0, 0, time.UTC)

func testValidator() Validator {
	return Validator{
		Now:      func() time.Time { return fixedNow },
		Location: time.UTC,
	}
}

func validFields() Fields {
	return Fields{
		Title:       "Launch Campaign",
		Description: "Coordinate the Q3 product launch",
		Color:       "#667eea",
		StartDate:   "2026-10-19T09:00",
		Status:      "New",
		Budget:      "2500",
	}
}

func TestValidate_ValidInput(t *testing.T) {
	res := testValidator().Validate(validFields())

	require.True(t, res.Valid, "errors: %v", res.Messages())
	assert.Empty(t, res.Errors)
	assert.Equal(t, "Launch Campaign", res.Title)
	assert.Equal(t, StatusNew, res.Status)
	assert.Equal(t, 2500.0, res.Budget)
	assert.True(t, res.StartDate.Equal(time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)))
}

func TestValidate_SingleFieldRules(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Fields)
		field  string
		msg    string
	}{
		{"title missing", func(f *Fields) { f.Title = "   " }, FieldTitle, "Title is required"},
		{"title short", func(f *Fields) { f.Title = "Hi" }, FieldTitle, "Title must be at least 3 characters long"},
		{"title long", func(f *Fields) { f.Title = strings.Repeat("a", 51) }, FieldTitle, "Title cannot exceed 50 characters"},
		{"description missing", func(f *Fields) { f.Description = "" }, FieldDescription, "Description is required"},
		{"description short", func(f *Fields) { f.Description = "too short" }, FieldDescription, "Description must be at least 10 characters long"},
		{"description long", func(f *Fields) { f.Description = strings.Repeat("d", 201) }, FieldDescription, "Description cannot exceed 200 characters"},
		{"date missing", func(f *Fields) { f.StartDate = "" }, FieldStartDate, "Start date is required"},
		{"date garbage", func(f *Fields) { f.StartDate = "next tuesday" }, FieldStartDate, "Start date must be a valid date"},
		{"date yesterday", func(f *Fields) { f.StartDate = "2026-10-17T23:59" }, FieldStartDate, "Start date cannot be in the past"},
		{"budget missing", func(f *Fields) { f.Budget = "" }, FieldBudget, "Budget is required"},
		{"budget not a number", func(f *Fields) { f.Budget = "lots" }, FieldBudget, "Budget must be a valid number"},
		{"budget zero", func(f *Fields) { f.Budget = "0" }, FieldBudget, "Budget must be greater than 0"},
		{"budget negative", func(f *Fields) { f.Budget = "-5" }, FieldBudget, "Budget must be greater than 0"},
		{"budget too large", func(f *Fields) { f.Budget = "1000001" }, FieldBudget, "Budget cannot exceed $1,000,000"},
		{"color malformed", func(f *Fields) { f.Color = "blue" }, FieldColor, "Color must be a 6-digit hex value"},
		{"status unknown", func(f *Fields) { f.Status = "Blocked" }, FieldStatus, "Status must be New, In Progress or Completed"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := validFields()
			tc.mutate(&f)

			res := testValidator().Validate(f)
			require.False(t, res.Valid)
			require.Len(t, res.Errors, 1)
			assert.Equal(t, tc.field, res.Errors[0].Field)
			assert.Equal(t, tc.msg, res.Errors[0].Message)
		})
	}
}

func TestValidate_Boundaries(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Fields)
	}{
		{"title 3 chars", func(f *Fields) { f.Title = "abc" }},
		{"title 50 chars", func(f *Fields) { f.Title = strings.Repeat("a", 50) }},
		{"title multibyte counted as runes", func(f *Fields) { f.Title = strings.Repeat("é", 50) }},
		{"description 10 chars", func(f *Fields) { f.Description = "0123456789" }},
		{"description 200 chars", func(f *Fields) { f.Description = strings.Repeat("d", 200) }},
		{"date today at midnight", func(f *Fields) { f.StartDate = "2026-10-18T00:00" }},
		{"date only", func(f *Fields) { f.StartDate = "2026-10-18" }},
		{"date rfc3339", func(f *Fields) { f.StartDate = "2026-12-01T08:00:00Z" }},
		{"budget max", func(f *Fields) { f.Budget = "1000000" }},
		{"budget cents", func(f *Fields) { f.Budget = "0.01" }},
		{"empty color defaults", func(f *Fields) { f.Color = "" }},
		{"empty status defaults", func(f *Fields) { f.Status = "" }},
		{"status any case", func(f *Fields) { f.Status = "in progress" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := validFields()
			tc.mutate(&f)
			res := testValidator().Validate(f)
			assert.True(t, res.Valid, "errors: %v", res.Messages())
		})
	}
}

func TestValidate_AccumulatesInFieldOrder(t *testing.T) {
	res := testValidator().Validate(Fields{
		Title:       "Hi",
		Description: "short",
		StartDate:   "2020-01-01T00:00",
		Budget:      "0",
	})

	require.False(t, res.Valid)
	assert.Equal(t, []string{
		"Title must be at least 3 characters long",
		"Description must be at least 10 characters long",
		"Start date cannot be in the past",
		"Budget must be greater than 0",
	}, res.Messages())

	fields := make([]string, 0, len(res.Errors))
	for _, e := range res.Errors {
		fields = append(fields, e.Field)
	}
	assert.Equal(t, []string{FieldTitle, FieldDescription, FieldStartDate, FieldBudget}, fields)
}

func TestValidate_Defaults(t *testing.T) {
	f := validFields()
	f.Color = ""
	f.Status = ""

	res := testValidator().Validate(f)
	require.True(t, res.Valid)
	assert.Equal(t, DefaultColor, res.Color)
	assert.Equal(t, StatusNew, res.Status)
}

func TestNewTask(t *testing.T) {
	task, err := NewTask("user123", validFields(), testValidator())
	require.NoError(t, err)

	assert.NotEmpty(t, task.ID)
	assert.Equal(t, "user123", task.UserID)
	assert.Equal(t, Important, task.Important)
	assert.Equal(t, "Launch Campaign", task.Title)
	assert.Equal(t, "#667eea", task.Color)
	assert.Equal(t, StatusNew, task.Status)

	other, err := NewTask("user123", validFields(), testValidator())
	require.NoError(t, err)
	assert.NotEqual(t, task.ID, other.ID, "ids must be unique per task")
}

func TestNewTask_InvalidReturnsValidationError(t *testing.T) {
	f := validFields()
	f.Title = "Hi"

	task, err := NewTask("user123", f, testValidator())
	require.Error(t, err)
	assert.Equal(t, Task{}, task)

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	require.Len(t, vErr.Fields, 1)
	assert.Equal(t, "Title must be at least 3 characters long", vErr.Fields[0].Message)
	assert.Contains(t, err.Error(), "Title must be at least 3 characters long")
}
