package scalar

import (
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

var formatLayouts = map[Type]string{
	Date:        "2006-01-02",
	Time:        "15:04:05.999999999",
	Timestamp:   "2006-01-02T15:04:05.999999999",
	TimestampTZ: time.RFC3339Nano,
}

// Format renders a decoded value of type t as text. Temporal values use the
// XSD lexical layout of t; nil renders as "null".
func Format(t Type, v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case decimal.Decimal:
		return x.String()
	case time.Time:
		layout, ok := formatLayouts[t]
		if !ok {
			layout = time.RFC3339Nano
		}
		return x.Format(layout)
	default:
		return fmt.Sprint(x)
	}
}
