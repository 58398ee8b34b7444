package present

import (
	"bytes"
	"embed"
	"html/template"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/s1natex/taskboard-GO/internal/tasks"
)

//go:embed templates/*.html
var templateFS embed.FS

const dateLayout = "Jan 2, 2006, 03:04 PM"

var templates = template.Must(template.New("").Funcs(template.FuncMap{
	"formatDate":   FormatDate,
	"formatBudget": FormatBudget,
	"statusClass":  StatusClass,
	"fieldError":   fieldError,
}).ParseFS(templateFS, "templates/*.html"))

// FormatDate renders a start date for a card, "No date set" when unset.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return "No date set"
	}
	return t.Format(dateLayout)
}

// FormatBudget renders an amount as US dollars, e.g. $2,500.00.
func FormatBudget(v float64) string {
	if v < 0 {
		return "-$" + humanize.FormatFloat("#,###.##", -v)
	}
	return "$" + humanize.FormatFloat("#,###.##", v)
}

// StatusClass derives the CSS class of a status badge: "In Progress" becomes
// "status-in-progress".
func StatusClass(s tasks.Status) string {
	return "status-" + strings.Replace(strings.ToLower(string(s)), " ", "-", 1)
}

// RenderCard renders the markup of a single task card.
func RenderCard(t tasks.Task) (template.HTML, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "card", t); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

// RenderPage writes the full board page.
func RenderPage(w io.Writer, data PageData) error {
	return templates.ExecuteTemplate(w, "page", data)
}

func fieldError(errs map[string]string, field string) string {
	return errs[field]
}
