// Package export flattens stored history into tabular rows for
// spreadsheet tools.
package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"komunalka/internal/core"
)

// Row is one exported service line. Optional numeric fields are nil
// when not applicable, which renders as an empty cell rather than 0.
type Row struct {
	Apartment        string
	Address          string
	Period           core.Period
	ServiceName      string
	ServiceKind      core.ServiceKind
	PreviousReading  *float64
	CurrentReading   *float64
	Consumption      *float64
	UnitPrice        *float64
	FixedAmount      *float64
	CalculatedAmount float64
	Unit             string
	EntryDate        string
	CalculationDate  string
}

// Headers is the CSV header row, in the domain's language.
var Headers = []string{
	"Квартира",
	"Адреса",
	"Період",
	"Назва послуги",
	"Тип послуги",
	"Попередній показник",
	"Поточний показник",
	"Споживання",
	"Тариф",
	"Фіксована сума",
	"Розрахована сума",
	"Одиниця виміру",
	"Дата внесення",
	"Дата розрахунку",
}

const dateLayout = "02.01.2006"

// BuildRows flattens each summary's records for the period, then adds
// any fixed or seasonal catalog service not already represented by a
// record, so a fixed service recorded as a reading is never counted
// twice.
func BuildRows(apartments []core.Apartment, summaries []core.PeriodSummary, period core.Period) []Row {
	byID := make(map[string]core.Apartment, len(apartments))
	for _, apt := range apartments {
		byID[apt.ID] = apt
	}

	var rows []Row
	for _, summary := range summaries {
		if summary.Period != period {
			continue
		}
		apt, ok := byID[summary.ApartmentID]
		if !ok {
			continue
		}

		recorded := make(map[string]struct{}, len(summary.Readings))
		for _, rec := range summary.Readings {
			recorded[rec.ServiceName] = struct{}{}
			svc, ok := apt.Service(rec.ServiceName)
			if !ok {
				continue
			}
			row := Row{
				Apartment:        apt.Name,
				Address:          apt.Address,
				Period:           rec.Period,
				ServiceName:      rec.ServiceName,
				ServiceKind:      svc.Kind,
				PreviousReading:  rec.PreviousReading,
				Consumption:      rec.Consumption,
				UnitPrice:        rec.UnitPrice,
				CalculatedAmount: rec.Amount,
				Unit:             svc.Unit,
				EntryDate:        rec.EntryDate.Format(dateLayout),
				CalculationDate:  summary.CalculatedAt.Format(dateLayout),
			}
			if svc.IsMetered() {
				current := rec.CurrentReading
				row.CurrentReading = &current
			}
			if svc.FixedAmount > 0 {
				fixed := svc.FixedAmount
				row.FixedAmount = &fixed
			}
			rows = append(rows, row)
		}

		for _, svc := range apt.Services {
			if svc.Kind != core.Fixed && svc.Kind != core.Seasonal {
				continue
			}
			if _, done := recorded[svc.Name]; done {
				continue
			}
			if svc.FixedAmount <= 0 {
				continue
			}
			fixed := svc.FixedAmount
			rows = append(rows, Row{
				Apartment:        apt.Name,
				Address:          apt.Address,
				Period:           period,
				ServiceName:      svc.Name,
				ServiceKind:      svc.Kind,
				FixedAmount:      &fixed,
				CalculatedAmount: fixed,
				Unit:             svc.Unit,
				EntryDate:        summary.CalculatedAt.Format(dateLayout),
				CalculationDate:  summary.CalculatedAt.Format(dateLayout),
			})
		}
	}
	return rows
}

// WriteCSV renders rows as UTF-8 CSV with a byte-order mark, a header
// row, quoted text fields, and empty cells for absent numerics.
func WriteCSV(w io.Writer, rows []Row) error {
	var b strings.Builder
	b.WriteString("\uFEFF")
	b.WriteString(strings.Join(Headers, ","))
	b.WriteByte('\n')

	for _, row := range rows {
		fields := []string{
			quote(row.Apartment),
			quote(row.Address),
			row.Period.String(),
			quote(row.ServiceName),
			quote(string(row.ServiceKind)),
			number(row.PreviousReading),
			number(row.CurrentReading),
			number(row.Consumption),
			number(row.UnitPrice),
			number(row.FixedAmount),
			formatAmount(row.CalculatedAmount),
			quote(row.Unit),
			row.EntryDate,
			row.CalculationDate,
		}
		b.WriteString(strings.Join(fields, ","))
		b.WriteByte('\n')
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func number(v *float64) string {
	if v == nil {
		return ""
	}
	return formatAmount(*v)
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Strings renders rows as plain string cells (header excluded), for
// adapters that push into a spreadsheet instead of a CSV file.
func Strings(rows []Row) [][]string {
	out := make([][]string, 0, len(rows))
	for _, row := range rows {
		out = append(out, []string{
			row.Apartment,
			row.Address,
			row.Period.String(),
			row.ServiceName,
			string(row.ServiceKind),
			number(row.PreviousReading),
			number(row.CurrentReading),
			number(row.Consumption),
			number(row.UnitPrice),
			number(row.FixedAmount),
			formatAmount(row.CalculatedAmount),
			row.Unit,
			row.EntryDate,
			row.CalculationDate,
		})
	}
	return out
}
