package inspector

import (
	"fmt"
	"io"
	"math"
	"strings"
)

// BarWidth is the number of cells in a rendered bar.
const BarWidth = 20

// printer writes lines and keeps the first error.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

// Label renders "name: value".
func Label(name string, value any, options map[string]string) string {
	return fmt.Sprintf("%s: %s", name, FormatValue(value, options["fmt"]))
}

// Bar renders a fixed-width bar scaled to the max option:
//
//	Score [#####---------------] 12.50
func Bar(name string, value float64, options map[string]string) string {
	ratio := value / GetMax(options)
	if math.IsNaN(ratio) || ratio < 0 {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}
	filled := int(math.Round(ratio * BarWidth))
	return fmt.Sprintf("%s [%s%s] %.2f", name,
		strings.Repeat("#", filled), strings.Repeat("-", BarWidth-filled), value)
}

// Bool renders "[x] name" or "[ ] name".
func Bool(name string, value bool) string {
	if value {
		return "[x] " + name
	}
	return "[ ] " + name
}

// RenderField dispatches on the field's widget. Bars over non-numeric
// values fall back to labels.
func RenderField(f Field) string {
	switch f.Widget {
	case WidgetBar:
		if v, ok := GetFloatValue(f.Value); ok {
			return Bar(f.Name, v, f.Options)
		}
	case WidgetBool:
		if v, ok := f.Value.(bool); ok {
			return Bool(f.Name, v)
		}
	}
	return Label(f.Name, f.Value, f.Options)
}
