package sheets

import "context"

// Ports for outbound spreadsheet adapters.
type (
	// RowAppender pushes exported billing rows to a spreadsheet and
	// returns a reference to the appended range.
	RowAppender interface {
		AppendRows(ctx context.Context, rows [][]string) (rangeRef string, err error)
	}
)
