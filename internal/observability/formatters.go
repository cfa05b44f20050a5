// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/avisanghavi/clout/internal/approval"
	"github.com/avisanghavi/clout/internal/ranking"
	"github.com/avisanghavi/clout/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// PrintICP outputs the target customer profile and personas.
func (p *Printer) PrintICP(bundle *types.ICPPersonaBundle) {
	if bundle == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Industry:   %s\n", bundle.ICP.Industry))
	sb.WriteString(fmt.Sprintf("Size:       %s\n", bundle.ICP.CompanySize))
	sb.WriteString(fmt.Sprintf("Geography:  %s\n", bundle.ICP.Geography))
	for _, c := range bundle.ICP.OtherCriteria {
		sb.WriteString(fmt.Sprintf("  • %s\n", c))
	}
	sb.WriteString("\n")

	writePersona(&sb, "Buyer", bundle.BuyerPersona)
	sb.WriteString("\n")
	writePersona(&sb, "User", bundle.UserPersona)

	p.printBox("IDEAL CUSTOMER PROFILE", strings.TrimSuffix(sb.String(), "\n"))
}

func writePersona(sb *strings.Builder, label string, persona types.Persona) {
	sb.WriteString(fmt.Sprintf("%s: %s (%s)\n", label, persona.Title, persona.Role))
	count := min(len(persona.PainPoints), 3)
	for i := 0; i < count; i++ {
		sb.WriteString(fmt.Sprintf("  • %s\n", persona.PainPoints[i]))
	}
	if persona.SearchTerms != "" {
		sb.WriteString(fmt.Sprintf("  Search: %s\n", persona.SearchTerms))
	}
}

// PrintTrustedNetwork outputs a summary of the imported trusted contacts.
func (p *Printer) PrintTrustedNetwork(contacts []types.TrustedContact) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Trusted contacts: %d\n", len(contacts)))

	count := min(len(contacts), maxItemsToShow)
	for i := 0; i < count; i++ {
		sb.WriteString(fmt.Sprintf("\n• %s (trust %d/10)", contacts[i].Name, contacts[i].TrustScore))
	}
	if len(contacts) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n\n... and %d more contacts", len(contacts)-maxItemsToShow))
	}

	p.printBox("TRUSTED NETWORK", sb.String())
}

// PrintRankedLeads outputs the top ranked leads with their connection notes.
func (p *Printer) PrintRankedLeads(profiles []types.CandidateProfile) {
	if len(profiles) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Total leads ranked: %d\n\n", len(profiles)))

	count := min(len(profiles), maxItemsToShow)
	for i := 0; i < count; i++ {
		profile := profiles[i]
		marker := ""
		if profile.TNLConnection {
			marker = " ★"
		}
		sb.WriteString(fmt.Sprintf("#%d  %s%s\n", i+1, profile.Name, marker))
		if profile.Headline != "" {
			sb.WriteString(fmt.Sprintf("    %s\n", profile.Headline))
		}
		sb.WriteString(fmt.Sprintf("    %s\n", ranking.Notes(&profile)))
		if i < count-1 {
			sb.WriteString("\n")
		}
	}

	if len(profiles) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more leads", len(profiles)-maxItemsToShow))
	}

	p.printBox("TOP RANKED LEADS", sb.String())
}

// PrintMessages outputs drafted messages with their type and source.
func (p *Printer) PrintMessages(messages []types.OutreachMessage) {
	if len(messages) == 0 {
		return
	}

	counts := map[types.MessageType]int{}
	fallbacks := 0
	for _, m := range messages {
		counts[m.MessageType]++
		if m.GeneratedBy == types.GeneratedByFallback {
			fallbacks++
		}
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Drafted %d messages (%d direct, %d intro, %d cold; %d fallback)\n\n",
		len(messages), counts[types.MessageDirectExisting], counts[types.MessageIntroRequest],
		counts[types.MessageColdOutreach], fallbacks))

	count := min(len(messages), maxItemsToShow)
	for i := 0; i < count; i++ {
		m := messages[i]
		sb.WriteString(fmt.Sprintf("→ %s [%s, %s]\n", m.Recipient, m.MessageType, m.GeneratedBy))
		sb.WriteString(fmt.Sprintf("  %s\n", strings.ReplaceAll(m.Text, "\n", " ")))
		if i < count-1 {
			sb.WriteString("\n")
		}
	}

	if len(messages) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more messages", len(messages)-maxItemsToShow))
	}

	p.printBox("DRAFTED MESSAGES", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintHistory outputs the approval log, newest last.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintHistory(entries []approval.HistoryEntry) {
	if len(entries) == 0 {
		fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, "No approval decisions recorded")
		fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d decisions:\n\n", len(entries)))

	for i, e := range entries {
		name := e.Profile.Name
		if e.Stale {
			name += " (not in latest snapshot)"
		}
		sb.WriteString(fmt.Sprintf("%s  %s\n", strings.ToUpper(string(e.Record.Status)), name))
		sb.WriteString(fmt.Sprintf("  %s\n", e.Record.Timestamp.Format("2006-01-02 15:04:05")))
		if e.Record.MessageText != "" {
			sb.WriteString(fmt.Sprintf("  %s\n", strings.ReplaceAll(e.Record.MessageText, "\n", " ")))
		}
		if i < len(entries)-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox("APPROVAL HISTORY", strings.TrimSuffix(sb.String(), "\n"))
}
