// Package bloom remembers which message IDs have already been processed,
// so repeated mailbox polls skip them without a detail request.
package bloom

import (
	"io"
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
)

// Filter is a Bloom filter over IDs. It is safe for concurrent use.
type Filter struct {
	mu sync.Mutex
	f  *bloom.BloomFilter
}

// NewFilter creates a new Bloom filter sized for n expected IDs
// with the given false positive rate.
func NewFilter(n uint, fpRate float64) *Filter {
	return &Filter{
		f: bloom.NewWithEstimates(n, fpRate),
	}
}

// Add records an ID.
func (f *Filter) Add(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.f.AddString(id)
}

// Test returns true if the ID might have been added.
// False positives are possible; false negatives are not.
func (f *Filter) Test(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.f.TestString(id)
}

// TestAndAdd records the ID and reports whether it might have been added
// before.
func (f *Filter) TestAndAdd(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.f.TestAndAddString(id)
}

// EstimatedCount returns the approximate number of IDs in the filter.
func (f *Filter) EstimatedCount() uint {
	f.mu.Lock()
	defer f.mu.Unlock()
	return uint(f.f.ApproximatedSize())
}

// WriteTo serializes the filter.
func (f *Filter) WriteTo(w io.Writer) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.f.WriteTo(w)
}

// ReadFrom replaces the filter with one serialized by WriteTo.
func (f *Filter) ReadFrom(r io.Reader) (int64, error) {
	loaded := &bloom.BloomFilter{}
	n, err := loaded.ReadFrom(r)
	if err != nil {
		return n, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.f = loaded
	return n, nil
}
