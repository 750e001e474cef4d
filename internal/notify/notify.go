// Package notify formats calculated bills as Telegram-style messages
// and defines the outbound delivery port.
package notify

import (
	"context"
	"fmt"
	"strings"

	"komunalka/internal/core"
)

// Notifier delivers a calculated bill to the household chat. Send
// returns a delivery id callers can correlate with later confirmations.
type Notifier interface {
	Send(ctx context.Context, result core.CalculationResult) (deliveryID string, err error)
}

var monthNames = [...]string{
	"січень", "лютий", "березень", "квітень", "травень", "червень",
	"липень", "серпень", "вересень", "жовтень", "листопад", "грудень",
}

// FormatMessage renders the bill as Markdown for a Telegram chat:
// header with apartment and period, one bullet per billed service,
// then a confirmation prompt.
func FormatMessage(result core.CalculationResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "🏠 *%s*\n", result.ApartmentName)
	fmt.Fprintf(&b, "📅 Період: %s\n", periodLabel(result.Period))
	fmt.Fprintf(&b, "💰 Загальна сума: *%.2f грн*\n\n", result.TotalAmount)

	b.WriteString("📋 *Деталі розрахунку:*\n")
	for _, line := range result.Lines {
		fmt.Fprintf(&b, "• %s: %.2f грн", line.Name, line.Amount)
		if line.Consumption != nil {
			fmt.Fprintf(&b, " (%.2f %s)", *line.Consumption, line.Unit)
		}
		b.WriteByte('\n')
	}

	fmt.Fprintf(&b, "\n📊 Розраховано: %s", result.CalculatedAt.Format("02.01.2006"))
	b.WriteString("\n\n❓ Підтвердіть надсилання (+) або скасуйте (-)")

	return b.String()
}

// periodLabel renders "2025-03" as "березень 2025". Falls back to the
// raw value when the period does not parse.
func periodLabel(p core.Period) string {
	t := p.Time()
	if t.IsZero() {
		return string(p)
	}
	return fmt.Sprintf("%s %d", monthNames[t.Month()-1], t.Year())
}
