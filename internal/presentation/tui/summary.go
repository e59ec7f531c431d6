package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/loopbuild/pkg/domain"
)

// SummaryMarkdown renders a build report as a markdown document.
func SummaryMarkdown(r *domain.BuildReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Build %s\n\n", r.RunID)
	fmt.Fprintf(&b, "- **Structure:** `%s`\n", r.StructureFile)
	fmt.Fprintf(&b, "- **Output:** `%s`\n", r.OutputDirectory)
	fmt.Fprintf(&b, "- **Requested:** %d model(s) per segment, at most %d tries\n", r.N, r.MaxTries)
	if !r.FinishedAt.IsZero() && !r.StartedAt.IsZero() {
		fmt.Fprintf(&b, "- **Duration:** %s\n", r.FinishedAt.Sub(r.StartedAt).Round(1e6))
	}
	b.WriteString("\n")

	if len(r.Segments) == 0 {
		b.WriteString("_No segments were built._\n")
		return b.String()
	}

	b.WriteString("| Segment | Chain | Residues | Accepted | Attempts | Rate | Status | File |\n")
	b.WriteString("|---|---|---|---|---|---|---|---|\n")
	for _, s := range r.Segments {
		fmt.Fprintf(&b, "| %s | %s | %d-%d | %d | %d | %.0f%% | %s | %s |\n",
			s.Identifier, s.ChainName, s.FirstSeqID, s.LastSeqID,
			s.Accepted, s.Attempts, s.SuccessRate()*100, s.Status, fileCell(s.ConsolidatedFile))
	}
	fmt.Fprintf(&b, "\n**Total accepted:** %d\n", r.TotalAccepted())
	return b.String()
}

func fileCell(path string) string {
	if path == "" {
		return "-"
	}
	return "`" + path + "`"
}
