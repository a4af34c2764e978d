package utils

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// MaxNumber bounds the magnitude of any parsed Number. It is larger than
// every decimal column and small enough that Float is always finite.
var MaxNumber = decimal.New(1, 15)

var maxID = decimal.NewFromInt(math.MaxUint32)

// Number is a request field that accepts a JSON number or a numeric string
// ("10.5"). Null and the empty string leave it unset.
type Number struct {
	Value decimal.Decimal
	Set   bool
}

func NewNumber(f float64) Number {
	return Number{Value: decimal.NewFromFloat(f), Set: true}
}

func (n *Number) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	if raw == "null" {
		*n = Number{}
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		s, err := strconv.Unquote(raw)
		if err != nil {
			return fmt.Errorf("invalid number %s", raw)
		}
		raw = s
	}
	parsed, err := ParseNumber(raw)
	if err != nil {
		return err
	}
	*n = parsed
	return nil
}

// ParseNumber reads a number from text such as a form value or spreadsheet
// cell. Blank text gives an unset Number.
func ParseNumber(s string) (Number, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Number{}, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Number{}, fmt.Errorf("invalid number %q", s)
	}
	if d.Abs().GreaterThanOrEqual(MaxNumber) {
		return Number{}, fmt.Errorf("number %q is out of range", s)
	}
	return Number{Value: d, Set: true}, nil
}

func (n Number) MarshalJSON() ([]byte, error) {
	if !n.Set {
		return []byte("null"), nil
	}
	return []byte(n.Value.String()), nil
}

// Float returns the value, or 0 when unset.
func (n Number) Float() float64 {
	if !n.Set {
		return 0
	}
	return n.Value.InexactFloat64()
}

// FloatOr returns the value, or def when unset.
func (n Number) FloatOr(def float64) float64 {
	if !n.Set {
		return def
	}
	return n.Value.InexactFloat64()
}

// Round returns n rounded half away from zero to places decimals.
func (n Number) Round(places int32) Number {
	if !n.Set {
		return n
	}
	return Number{Value: n.Value.Round(places), Set: true}
}

// Uint returns the value as an identifier. ok is false when the number is
// unset, fractional, not positive or above math.MaxUint32.
func (n Number) Uint() (uint, bool) {
	if !n.Set || !n.Value.IsInteger() || !n.Value.IsPositive() || n.Value.GreaterThan(maxID) {
		return 0, false
	}
	return uint(n.Value.IntPart()), true
}
