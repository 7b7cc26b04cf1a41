package expectation

import (
	"github.com/leapstack-labs/leapdq/pkg/frame"
)

// Batch is the handle expectations run against: a read-only view over one frame.
type Batch struct {
	frame *frame.Frame
}

// NewBatch wraps a frame for validation.
func NewBatch(f *frame.Frame) *Batch {
	if f == nil {
		f = frame.New()
	}
	return &Batch{frame: f}
}

// RowCount returns the number of rows in the batch.
func (b *Batch) RowCount() int {
	return b.frame.Len()
}

// Column returns the values of a column or a *ColumnNotFoundError.
func (b *Batch) Column(name string) ([]any, error) {
	vals, ok := b.frame.Column(name)
	if !ok {
		return nil, &ColumnNotFoundError{Column: name, Available: b.frame.Columns()}
	}
	return vals, nil
}
