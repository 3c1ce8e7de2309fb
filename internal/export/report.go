package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"statflow/domain/analysis"
	"statflow/domain/project"
)

// Section is one ordered block of the printable report
type Section struct {
	Title string
	Body  string // markdown
}

// Report is the printable representation: ordered sections suitable for
// rendering to a paginated document.
type Report struct {
	Title    string
	Sections []Section
}

// BuildReport assembles the overview, summary and one section per result
func BuildReport(proj *project.Project, results []analysis.Result) *Report {
	report := &Report{Title: fmt.Sprintf("Analysis Report: %s", proj.Name)}

	report.Sections = append(report.Sections, Section{
		Title: "Overview",
		Body: fmt.Sprintf("Project **%s** (status: %s), exported %s.",
			proj.Name, proj.Status, time.Now().Format("2006-01-02 15:04")),
	})

	succeeded, failed := 0, 0
	for _, r := range results {
		if r.IsError() {
			failed++
		} else {
			succeeded++
		}
	}
	report.Sections = append(report.Sections, Section{
		Title: "Summary",
		Body: fmt.Sprintf("%d analyses run: %d succeeded, %d failed.",
			len(results), succeeded, failed),
	})

	for _, r := range results {
		report.Sections = append(report.Sections, resultSection(r))
	}

	return report
}

func resultSection(r analysis.Result) Section {
	title := strings.ToUpper(string(r.AnalysisType()))

	if r.IsError() {
		return Section{
			Title: title,
			Body:  fmt.Sprintf("**Error:** %s", r.Failure().Message),
		}
	}

	var body strings.Builder
	switch r.AnalysisType() {
	case analysis.TypeDescriptive:
		if p, ok := parseDescriptive(r); ok {
			body.WriteString("| Variable | N | Mean | SD | Min | Max | Skew | Kurtosis |\n")
			body.WriteString("|---|---|---|---|---|---|---|---|\n")
			for _, v := range p.Variables {
				fmt.Fprintf(&body, "| %s | %d | %.3f | %.3f | %.3f | %.3f | %.3f | %.3f |\n",
					v.Variable, v.N, v.Mean, v.SD, v.Min, v.Max, v.Skewness, v.Kurtosis)
			}
			return Section{Title: title, Body: body.String()}
		}
	case analysis.TypeReliability:
		if p, ok := parseReliability(r); ok {
			for _, g := range p.Groups {
				fmt.Fprintf(&body, "**%s** — Cronbach's α = %.3f\n\n", g.Group, g.Alpha)
				for _, item := range g.Items {
					fmt.Fprintf(&body, "- %s: item-total r = %.3f\n", item.Item, item.ItemTotal)
				}
				body.WriteString("\n")
			}
			return Section{Title: title, Body: body.String()}
		}
	case analysis.TypeCorrelation:
		if pairs, ok := parseCorrelation(r); ok {
			body.WriteString("| Variable 1 | Variable 2 | r |\n|---|---|---|\n")
			for _, p := range pairs {
				fmt.Fprintf(&body, "| %s | %s | %.3f |\n", p.X, p.Y, p.R)
			}
			return Section{Title: title, Body: body.String()}
		}
	}

	return Section{
		Title: title,
		Body:  "```json\n" + rawDump(r.Payload()) + "\n```",
	}
}

// Markdown renders the full report as one markdown document
func (r *Report) Markdown() string {
	var doc strings.Builder
	fmt.Fprintf(&doc, "# %s\n\n", r.Title)
	for _, s := range r.Sections {
		fmt.Fprintf(&doc, "## %s\n\n%s\n\n", s.Title, s.Body)
	}
	return doc.String()
}

// HTML renders the report as a printable HTML document
func (r *Report) HTML() []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.Tables)
	doc := p.Parse([]byte(r.Markdown()))
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.CompletePage})
	return markdown.Render(doc, renderer)
}
