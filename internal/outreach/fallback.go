package outreach

import (
	"fmt"
	"hash/fnv"
	"strings"
	"unicode/utf8"

	"github.com/avisanghavi/clout/internal/types"
)

const (
	// ColdOutreachLimit is the connection request character limit.
	ColdOutreachLimit = 300
	// GuidedLimit is the length the prompt asks for on direct and intro messages. It is not enforced.
	GuidedLimit = 2000

	ellipsis = "..."
)

// templateIndex picks one of n templates from a stable hash of the normalized key.
func templateIndex(key string, n int) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(normalizeKey(key)))
	return int(h.Sum32() % uint32(n))
}

func normalizeKey(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// truncateCold enforces ColdOutreachLimit in code points, ending with an ellipsis when cut.
func truncateCold(text string) string {
	if utf8.RuneCountInString(text) <= ColdOutreachLimit {
		return text
	}
	runes := []rune(text)
	return string(runes[:ColdOutreachLimit-len(ellipsis)]) + ellipsis
}

func companyOr(company, fallback string) string {
	if company == "" {
		return fallback
	}
	return company
}

func atCompany(company string) string {
	if company == "" {
		return ""
	}
	return " at " + company
}

// fallbackMessage fills one of the fixed templates for the message type. recipient is the
// selector key; introducer is only used for intro requests and cold outreach.
func fallbackMessage(msgType types.MessageType, id Identity, profileName, recipient string, introducer *types.MutualConnectionEvidence) string {
	role := id.Role
	lowerRole := strings.ToLower(role)

	switch msgType {
	case types.MessageDirectExisting:
		templates := []string{
			fmt.Sprintf("Hi %s, I've been following your work in %s%s and would love to explore potential collaboration opportunities. Would you be open to a quick chat about how we might work together?",
				id.FirstName, role, atCompany(id.Company)),
			fmt.Sprintf("Hi %s, your experience in %s caught my attention, particularly your focus on %s. I'd love to connect and share ideas about %s best practices.",
				id.FirstName, role, companyOr(id.Company, "industry innovation"), lowerRole),
			fmt.Sprintf("Hi %s, I noticed your impressive work in %s%s and would value the opportunity to learn more about your approach to %s. Would you have time for a brief discussion?",
				id.FirstName, role, atCompany(id.Company), lowerRole),
		}
		return templates[templateIndex(recipient, len(templates))]

	case types.MessageIntroRequest:
		greeting := "there"
		if introducer != nil {
			if fields := strings.Fields(introducer.Name); len(fields) > 0 {
				greeting = fields[0]
			}
		}
		target := profileName
		if strings.TrimSpace(target) == "" {
			target = "your connection"
		}
		templates := []string{
			fmt.Sprintf("Hi %s, I noticed you're connected with %s and their work in %s aligns perfectly with some initiatives I'm working on. Would you be comfortable making an introduction?",
				greeting, target, role),
			fmt.Sprintf("Hi %s, would you be willing to introduce me to %s? Their expertise in %s is impressive, and I'd love to explore potential collaboration opportunities.",
				greeting, target, role),
			fmt.Sprintf("Hi %s, I see you know %s who's doing great work in %s. If you think it would be valuable, would you mind connecting us?",
				greeting, target, role),
		}
		return templates[templateIndex(recipient, len(templates))]

	default:
		connectionText := ""
		if introducer != nil {
			name := introducer.Name
			if strings.TrimSpace(name) == "" {
				name = "our mutual connection"
			}
			connectionText = fmt.Sprintf("I noticed we're both connected with %s. ", name)
		}
		templates := []string{
			fmt.Sprintf("Hi %s, %sYour work in %s caught my attention, particularly your focus on %s. I'd love to connect and share insights.",
				id.FirstName, connectionText, role, companyOr(id.Company, "industry innovation")),
			fmt.Sprintf("Hi %s, %sI was impressed by your experience in %s%s and would value connecting to share ideas and best practices.",
				id.FirstName, connectionText, role, atCompany(id.Company)),
			fmt.Sprintf("Hi %s, %sYour approach to %s stands out, and I'd love to learn more about your professional journey.",
				id.FirstName, connectionText, lowerRole),
		}
		return truncateCold(templates[templateIndex(recipient, len(templates))])
	}
}
