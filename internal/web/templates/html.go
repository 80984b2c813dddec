// Package templates renders the dashboard's HTML as templ components.
//
// Components are built with templ.ComponentFunc over a small writer that
// escapes every dynamic value, so they compose with generated templ code
// and render through templ.Handler.
package templates

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
)

// htmlWriter writes markup and remembers the first error.
type htmlWriter struct {
	ctx context.Context
	w   io.Writer
	err error
}

func newWriter(ctx context.Context, w io.Writer) *htmlWriter {
	return &htmlWriter{ctx: ctx, w: w}
}

// raw writes trusted markup.
func (h *htmlWriter) raw(s string) {
	if h.err == nil {
		_, h.err = io.WriteString(h.w, s)
	}
}

// rawf formats trusted markup. Dynamic arguments must go through esc,
// attrURL or similar first.
func (h *htmlWriter) rawf(format string, args ...any) {
	if h.err == nil {
		_, h.err = fmt.Fprintf(h.w, format, args...)
	}
}

// text writes escaped text.
func (h *htmlWriter) text(s string) {
	h.raw(esc(s))
}

func (h *htmlWriter) render(c templ.Component) {
	if h.err == nil && c != nil {
		h.err = c.Render(h.ctx, h.w)
	}
}

func esc(s string) string {
	return templ.EscapeString(s)
}

// attrURL sanitises a URL and escapes it for an attribute value.
func attrURL(s string) string {
	return esc(string(templ.URL(s)))
}

// component adapts a writer callback to templ.Component.
func component(fn func(h *htmlWriter)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newWriter(ctx, w)
		fn(h)
		return h.err
	})
}
