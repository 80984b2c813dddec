package table

import "strings"

// Align is a column's horizontal alignment.
type Align string

const (
	AlignLeft   Align = "left"
	AlignRight  Align = "right"
	AlignCenter Align = "center"
)

// Renderer selects how a column's value is displayed.
type Renderer int

const (
	RenderText Renderer = iota
	RenderCurrency
	RenderStatus
	RenderLink
	RenderDate
	RenderBoolean
)

var rendererNames = [...]string{
	RenderText:     "text",
	RenderCurrency: "currency",
	RenderStatus:   "status",
	RenderLink:     "link",
	RenderDate:     "date",
	RenderBoolean:  "boolean",
}

func (r Renderer) String() string {
	if r < 0 || int(r) >= len(rendererNames) {
		return "text"
	}
	return rendererNames[r]
}

// ParseRenderer maps a renderer name to its value. Unknown names are text.
func ParseRenderer(name string) Renderer {
	for i, n := range rendererNames {
		if strings.EqualFold(n, name) {
			return Renderer(i)
		}
	}
	return RenderText
}

// Column describes one table column.
type Column struct {
	Key      string // dotted path into the record
	Label    string
	Sortable bool
	Align    Align
	Width    string // CSS width hint, e.g. "12rem"
	Renderer Renderer

	// LinkPattern is used by RenderLink. Placeholders such as {id} are
	// replaced with the record's value at that path.
	LinkPattern string
}

func (c Column) align() Align {
	if c.Align != "" {
		return c.Align
	}
	switch c.Renderer {
	case RenderCurrency:
		return AlignRight
	case RenderBoolean:
		return AlignCenter
	default:
		return AlignLeft
	}
}

func (c Column) label() string {
	if c.Label != "" {
		return c.Label
	}
	return c.Key
}
