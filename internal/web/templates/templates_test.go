package templates

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/JonMunkholm/portfolio/internal/core"
	"github.com/JonMunkholm/portfolio/internal/portfolio"
	"github.com/a-h/templ"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var b strings.Builder
	if err := c.Render(context.Background(), &b); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	return b.String()
}

func testPage() Page {
	return Page{Title: "Demo", Owner: "Jane Doe", Active: "portfolio", Year: 2026}
}

func TestLayout(t *testing.T) {
	p := testPage()
	p.Flashes = []Flash{
		{Level: "success", Message: "Cleaning complete!"},
		{Level: "bogus", Message: "<b>escaped</b>"},
	}

	out := render(t, Home(p))

	for _, want := range []string{
		"<title>Demo | Jane Doe</title>",
		"&copy; 2026 Jane Doe",
		`class="alert alert-success"`,
		`class="alert alert-info"`,
		"&lt;b&gt;escaped&lt;/b&gt;",
		`href="/portfolio" class="active"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("layout missing %q", want)
		}
	}
	if strings.Contains(out, "<b>escaped</b>") {
		t.Error("flash message not escaped")
	}
}

func TestPortfolio(t *testing.T) {
	out := render(t, Portfolio(testPage(), portfolio.All()))

	if got := strings.Count(out, `class="card"`); got != portfolio.Count() {
		t.Errorf("rendered %d cards, want %d", got, portfolio.Count())
	}
	if got := strings.Count(out, "Live demo"); got != 1 {
		t.Errorf("rendered %d demo links, want 1", got)
	}
	if !strings.Contains(out, `href="/projects/data-cleaning/demo"`) {
		t.Error("demo link missing")
	}
}

func TestDemo(t *testing.T) {
	job := &core.Job{
		FileName:  "sales <2024>.csv",
		Status:    core.JobSucceeded,
		CreatedAt: time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC),
		Report: core.Report{
			RowsIn: 3, ColumnsIn: 3, RowsOut: 2, ColumnsOut: 2,
			DuplicatesRemoved: 1, CellsImputed: 1,
			ImputedColumns: []string{"age"}, DroppedColumns: []string{"notes"},
		},
	}

	out := render(t, Demo(testPage(), DemoView{
		Download:    "cleaned_abc_sales 2024.csv",
		Job:         job,
		Mine:        []core.Job{*job},
		Stats:       &core.JobStats{Total: 4, Succeeded: 3, RowsCleaned: 120, DuplicatesRemoved: 7},
		MaxFileSize: 10 << 20,
	}))

	for _, want := range []string{
		`enctype="multipart/form-data"`,
		`name="file"`,
		"up to 10 MB",
		`href="/downloads/cleaned_abc_sales%202024.csv"`,
		"Duplicate rows removed",
		"1 in age",
		"notes",
		"sales &lt;2024&gt;.csv",
		"3 → 2",
		"Your recent runs",
		"3 files cleaned so far, 120 rows written and 7 duplicate rows removed.",
		`class="status-succeeded"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("demo page missing %q", want)
		}
	}
}

func TestDemo_Empty(t *testing.T) {
	out := render(t, Demo(testPage(), DemoView{MaxFileSize: 1 << 20, Stats: &core.JobStats{}}))
	if strings.Contains(out, "/downloads/") || strings.Contains(out, "recent runs") || strings.Contains(out, "files cleaned") {
		t.Error("empty demo page shows results")
	}
}

func TestErrorPage(t *testing.T) {
	out := render(t, ErrorPage(testPage(), 404, core.UserMessage{
		Message: "The requested file does not exist",
		Code:    "FILE006",
	}))

	for _, want := range []string{"404 Not Found", "The requested file does not exist", "Code: FILE006"} {
		if !strings.Contains(out, want) {
			t.Errorf("error page missing %q", want)
		}
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{10 << 20, "10 MB"},
		{1536 << 10, "1.5 MB"},
		{512, "512 bytes"},
	}
	for _, tt := range tests {
		if got := formatBytes(tt.n); got != tt.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}
