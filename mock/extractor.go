package mock

import "github.com/fwojciec/logiris"

var _ logiris.BodyExtractor = (*BodyExtractor)(nil)

// BodyExtractor is a mock implementation of logiris.BodyExtractor.
type BodyExtractor struct {
	ExtractBodyFn func(html string) string
}

func (e *BodyExtractor) ExtractBody(html string) string {
	return e.ExtractBodyFn(html)
}

var _ logiris.TitleExtractor = (*TitleExtractor)(nil)

// TitleExtractor is a mock implementation of logiris.TitleExtractor.
type TitleExtractor struct {
	ExtractTitleFn func(html string) string
}

func (e *TitleExtractor) ExtractTitle(html string) string {
	return e.ExtractTitleFn(html)
}

var _ logiris.PageExtractor = (*PageExtractor)(nil)

// PageExtractor is a mock implementation of logiris.PageExtractor.
type PageExtractor struct {
	PageFn func(html string) (string, string)
}

func (e *PageExtractor) Page(html string) (string, string) {
	return e.PageFn(html)
}
