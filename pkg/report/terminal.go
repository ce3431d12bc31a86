package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/toyinlola/complyscore/pkg/interfaces"
)

// ANSI color codes for terminal output.
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorBold   = "\033[1m"
	colorDim    = "\033[2m"
)

// TerminalFormatter writes a color-coded report to a terminal.
type TerminalFormatter struct{}

// NewTerminalFormatter creates a terminal report formatter.
func NewTerminalFormatter() *TerminalFormatter {
	return &TerminalFormatter{}
}

// Format writes the report to the given writer using ANSI colors.
func (f *TerminalFormatter) Format(w io.Writer, report *interfaces.Report) error {
	f.writeHeader(w, report)
	f.writeSummary(w, report)
	f.writeCategories(w, report)
	f.writeGaps(w, report)
	f.writeLowConfidence(w, report)
	f.writeFooter(w, report)
	return nil
}

func (f *TerminalFormatter) writeHeader(w io.Writer, report *interfaces.Report) {
	fmt.Fprintf(w, "\n%s%s══════════════════════════════════════════%s\n", colorBold, colorCyan, colorReset)
	fmt.Fprintf(w, "%s%s  ComplyScore Assessment Report%s\n", colorBold, colorCyan, colorReset)
	fmt.Fprintf(w, "%s%s══════════════════════════════════════════%s\n\n", colorBold, colorCyan, colorReset)
	if report.Organization != "" {
		fmt.Fprintf(w, "  Organization: %s\n\n", report.Organization)
	}
}

func (f *TerminalFormatter) writeSummary(w io.Writer, report *interfaces.Report) {
	result := report.Result
	if result == nil {
		fmt.Fprintf(w, "  %sNo score available (run state: %s)%s\n\n", colorDim, report.RunState, colorReset)
		return
	}

	color := riskColor(result.RiskLevel)
	fmt.Fprintf(w, "  %s%sCompliance Score: %.0f/100 [%s risk]%s\n",
		colorBold, color, result.Overall, result.RiskLevel, colorReset)

	if report.ReviewSkipped {
		fmt.Fprintf(w, "  %sReview skipped: unresolved low-confidence answers are included as-is%s\n", colorYellow, colorReset)
	}
	fmt.Fprintln(w)
}

func (f *TerminalFormatter) writeCategories(w io.Writer, report *interfaces.Report) {
	result := report.Result
	if result == nil || len(result.ByCategory) == 0 {
		return
	}

	fmt.Fprintf(w, "  %s── Category Breakdown ──%s\n", colorBold, colorReset)
	for _, cat := range sortedCategories(result.ByCategory) {
		score := result.ByCategory[cat]
		color := colorGreen
		if score < 60 {
			color = colorRed
		} else if score < 80 {
			color = colorYellow
		}
		fmt.Fprintf(w, "    %s%5.1f%s  %s\n", color, score, colorReset, cat)
	}
	fmt.Fprintln(w)
}

func (f *TerminalFormatter) writeGaps(w io.Writer, report *interfaces.Report) {
	result := report.Result
	if result == nil {
		return
	}
	if len(result.Gaps) == 0 {
		fmt.Fprintf(w, "  %sNo compliance gaps identified.%s\n\n", colorGreen, colorReset)
		return
	}

	grouped := make(map[interfaces.Severity][]interfaces.Gap)
	for _, gap := range result.Gaps {
		grouped[gap.Severity] = append(grouped[gap.Severity], gap)
	}

	for _, sev := range []interfaces.Severity{
		interfaces.SeverityCritical,
		interfaces.SeverityHigh,
		interfaces.SeverityMedium,
		interfaces.SeverityLow,
	} {
		gaps, ok := grouped[sev]
		if !ok {
			continue
		}

		color := severityColor(sev)
		label := strings.ToUpper(string(sev))
		fmt.Fprintf(w, "  %s%s── %s GAPS (%d) ──%s\n", colorBold, color, label, len(gaps), colorReset)

		for _, gap := range gaps {
			fmt.Fprintf(w, "    %s%s%s\n", color, gap.GapCategory, colorReset)
			fmt.Fprintf(w, "      %s\n", gap.Description)
			if gap.VendorCategory != "" {
				fmt.Fprintf(w, "      %s→ vendor category: %s%s\n", colorCyan, gap.VendorCategory, colorReset)
			}
			fmt.Fprintln(w)
		}
	}
}

func (f *TerminalFormatter) writeLowConfidence(w io.Writer, report *interfaces.Report) {
	result := report.Result
	if result == nil || len(result.LowConfidence) == 0 {
		return
	}

	fmt.Fprintf(w, "  %s%s── NEEDS REVIEW (%d) ──%s\n", colorBold, colorYellow, len(result.LowConfidence), colorReset)
	for _, lc := range result.LowConfidence {
		fmt.Fprintf(w, "    %s[%s]%s %s\n", colorYellow, lc.QuestionID, colorReset, lc.Question)
		fmt.Fprintf(w, "      %ssection: %s | confidence: %.0f%%%s\n", colorDim, lc.SectionTitle, lc.Confidence*100, colorReset)
		if lc.CurrentAnswer != "" {
			fmt.Fprintf(w, "      current answer: %s\n", lc.CurrentAnswer)
		}
		fmt.Fprintln(w)
	}
}

func (f *TerminalFormatter) writeFooter(w io.Writer, report *interfaces.Report) {
	fmt.Fprintf(w, "  %s%s──────────────────────────────────────────%s\n", colorDim, colorCyan, colorReset)
	fmt.Fprintf(w, "  %sEvidence: %d/%d analyzed | Run: %s | Report: %s%s\n",
		colorDim, report.EvidenceUsed, report.EvidenceTotal, report.RunID, report.ID, colorReset)
	fmt.Fprintf(w, "  %sGenerated: %s%s\n\n",
		colorDim, report.Timestamp.Format("2006-01-02 15:04:05"), colorReset)
}

// riskColor returns the ANSI color for a risk level.
func riskColor(r interfaces.RiskLevel) string {
	switch r {
	case interfaces.RiskLow:
		return colorGreen
	case interfaces.RiskMedium:
		return colorYellow
	case interfaces.RiskHigh, interfaces.RiskCritical:
		return colorRed
	default:
		return colorReset
	}
}

// severityColor returns the ANSI color for a severity level.
func severityColor(s interfaces.Severity) string {
	switch s {
	case interfaces.SeverityCritical, interfaces.SeverityHigh:
		return colorRed
	case interfaces.SeverityMedium:
		return colorYellow
	case interfaces.SeverityLow:
		return colorDim
	default:
		return colorReset
	}
}
