package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/toyinlola/complyscore/pkg/interfaces"
)

// MarkdownFormatter writes a report as Markdown suitable for sharing with
// the assessed organization.
type MarkdownFormatter struct{}

// NewMarkdownFormatter creates a Markdown report formatter.
func NewMarkdownFormatter() *MarkdownFormatter {
	return &MarkdownFormatter{}
}

// Format writes the report as Markdown to the given writer.
func (f *MarkdownFormatter) Format(w io.Writer, report *interfaces.Report) error {
	f.writeHeader(w, report)
	f.writeSummaryTable(w, report)
	f.writeCategories(w, report)
	f.writeGaps(w, report)
	f.writeLowConfidence(w, report)
	f.writeFooter(w, report)
	return nil
}

func (f *MarkdownFormatter) writeHeader(w io.Writer, report *interfaces.Report) {
	badge := "⚪"
	if report.Result != nil {
		badge = riskBadge(report.Result.RiskLevel)
	}
	fmt.Fprintf(w, "# ComplyScore Assessment Report %s\n\n", badge)
}

func (f *MarkdownFormatter) writeSummaryTable(w io.Writer, report *interfaces.Report) {
	fmt.Fprintln(w, "| Metric | Value |")
	fmt.Fprintln(w, "|--------|-------|")
	fmt.Fprintf(w, "| **Organization** | %s |\n", report.Organization)

	if result := report.Result; result != nil {
		fmt.Fprintf(w, "| **Compliance Score** | %.0f/100 %s |\n", result.Overall, riskBadge(result.RiskLevel))
		fmt.Fprintf(w, "| **Risk Level** | %s |\n", result.RiskLevel)
		fmt.Fprintf(w, "| **Gaps** | %d |\n", len(result.Gaps))
		fmt.Fprintf(w, "| **Needs Review** | %d |\n", len(result.LowConfidence))
	}
	fmt.Fprintf(w, "| **Evidence Analyzed** | %d of %d |\n", report.EvidenceUsed, report.EvidenceTotal)
	if report.ReviewSkipped {
		fmt.Fprintln(w, "| **Disclosure** | Review skipped; low-confidence answers included as-is |")
	}
	fmt.Fprintln(w)
}

func (f *MarkdownFormatter) writeCategories(w io.Writer, report *interfaces.Report) {
	result := report.Result
	if result == nil || len(result.ByCategory) == 0 {
		return
	}

	fmt.Fprintln(w, "## Category Breakdown")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "| Category | Score |")
	fmt.Fprintln(w, "|----------|-------|")
	for _, cat := range sortedCategories(result.ByCategory) {
		fmt.Fprintf(w, "| %s | %.1f |\n", cat, result.ByCategory[cat])
	}
	fmt.Fprintln(w)
}

func (f *MarkdownFormatter) writeGaps(w io.Writer, report *interfaces.Report) {
	result := report.Result
	if result == nil {
		return
	}
	if len(result.Gaps) == 0 {
		fmt.Fprintln(w, "> No compliance gaps identified.")
		fmt.Fprintln(w)
		return
	}

	fmt.Fprintf(w, "## Compliance Gaps (%d)\n\n", len(result.Gaps))

	for _, gap := range result.Gaps {
		fmt.Fprintf(w, "<details>\n")
		fmt.Fprintf(w, "<summary><strong>%s</strong> [%s]</summary>\n\n",
			gap.GapCategory, strings.ToUpper(string(gap.Severity)))
		fmt.Fprintf(w, "%s\n\n", gap.Description)
		if gap.VendorCategory != "" {
			fmt.Fprintf(w, "**Vendor category:** `%s`\n\n", gap.VendorCategory)
		}
		fmt.Fprintln(w, "</details>")
		fmt.Fprintln(w)
	}
}

func (f *MarkdownFormatter) writeLowConfidence(w io.Writer, report *interfaces.Report) {
	result := report.Result
	if result == nil || len(result.LowConfidence) == 0 {
		return
	}

	fmt.Fprintf(w, "## Needs Review (%d)\n\n", len(result.LowConfidence))
	for _, lc := range result.LowConfidence {
		fmt.Fprintf(w, "- **%s** (`%s`, section %q, confidence %.0f%%)", lc.Question, lc.QuestionID, lc.SectionTitle, lc.Confidence*100)
		if lc.CurrentAnswer != "" {
			fmt.Fprintf(w, " — current answer: %s", lc.CurrentAnswer)
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintln(w)
}

func (f *MarkdownFormatter) writeFooter(w io.Writer, report *interfaces.Report) {
	fmt.Fprintln(w, "---")
	fmt.Fprintf(w, "*Report ID: %s | Run: %s | Generated: %s*\n",
		report.ID, report.RunID, report.Timestamp.Format("2006-01-02 15:04:05"))
}

// riskBadge returns a text badge based on the risk level.
func riskBadge(r interfaces.RiskLevel) string {
	switch r {
	case interfaces.RiskLow:
		return "🟢"
	case interfaces.RiskMedium:
		return "🟡"
	case interfaces.RiskHigh:
		return "🟠"
	case interfaces.RiskCritical:
		return "🔴"
	default:
		return "⚪"
	}
}
