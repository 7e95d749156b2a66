package rejects

import (
	"context"
	"sync"
)

var _ Log = (*MemoryLog)(nil)

type MemoryLog struct {
	mu      sync.Mutex
	records []Record
}

func NewMemoryLog() *MemoryLog {
	return &MemoryLog{}
}

func (l *MemoryLog) Append(ctx context.Context, record Record) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = append(l.records, record)
	return nil
}

func (l *MemoryLog) List(ctx context.Context, limit int) ([]Record, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return tail(append([]Record(nil), l.records...), limit), nil
}
