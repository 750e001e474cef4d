// Package memory provides an in-memory spreadsheet adapter for tests
// and local runs without Google credentials.
package memory

import (
	"context"
	"fmt"
	"sync"
)

type Appender struct {
	mu   sync.Mutex
	Rows [][]string
}

func NewAppender() *Appender {
	return &Appender{}
}

func (a *Appender) AppendRows(_ context.Context, rows [][]string) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	start := len(a.Rows) + 1
	a.Rows = append(a.Rows, rows...)
	return fmt.Sprintf("A%d:N%d", start, len(a.Rows)), nil
}
