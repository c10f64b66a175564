package mock

import "github.com/fwojciec/logiris"

var _ logiris.Converter = (*Converter)(nil)

// Converter is a mock implementation of logiris.Converter.
type Converter struct {
	ConvertFn func(html string) (string, error)
}

func (c *Converter) Convert(html string) (string, error) {
	return c.ConvertFn(html)
}
