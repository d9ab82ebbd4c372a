package notifier

import (
	"fmt"
	"html"
	"strings"

	"LCInvestor/internal/model"
	"LCInvestor/internal/session"
)

// FormatSessionReport formats a finished session into a Telegram message.
func FormatSessionReport(s *session.Summary) string {
	var b strings.Builder

	icon := "✅"
	if s.State == session.StateFailed {
		icon = "❌"
	}
	b.WriteString(fmt.Sprintf("%s <b>LCInvestor</b> | %s\n\n", icon, s.FinishedAt.Format("2006-01-02 15:04")))

	b.WriteString(fmt.Sprintf("Starting cash: %s\n", model.USD(s.StartingCash)))
	b.WriteString(fmt.Sprintf("Invested: %s in %d note(s)\n", model.USD(s.Invested()), len(s.Confirmations)))
	b.WriteString(fmt.Sprintf("Remaining cash: %s\n", model.USD(s.FinalCash)))
	b.WriteString(fmt.Sprintf("Matching loans: %d (%d left)\n", s.Matched, s.CandidatesLeft))

	if len(s.Confirmations) > 0 {
		b.WriteString("\n<b>Orders:</b>\n")
		for _, c := range s.Confirmations {
			line := fmt.Sprintf("  #%d loan %d: %s", c.OrderID, c.LoanID, model.USD(c.InvestedAmount))
			if c.PartialFill() {
				line += fmt.Sprintf(" (requested %s)", model.USD(c.RequestedAmount))
			}
			b.WriteString(line + "\n")
		}
	}

	if s.Err != nil {
		b.WriteString(fmt.Sprintf("\n⚠️ %s\n", html.EscapeString(s.Err.Error())))
	}
	return b.String()
}
