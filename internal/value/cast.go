package value

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	taxerrors "github.com/regkit/taxform/errors"
)

// maxNumericLen bounds the accepted length of numeric input. Longer strings
// are treated as absent rather than parsed.
const maxNumericLen = 32

var integerPattern = regexp.MustCompile(`^-?[0-9]+$`)

// Cast converts raw external input into a canonical scalar value for the
// given kind. Malformed input yields Absent; casting never fails on data
// quality. A nil raw value is Absent.
func Cast(kind Kind, raw any) Value {
	s, ok := CastScalar(kind, raw)
	if !ok {
		return Absent
	}
	return FromScalar(s)
}

// CastScalar converts raw input to a single typed scalar. The second return
// is false when the input is nil, empty, or malformed for the kind.
func CastScalar(kind Kind, raw any) (Scalar, bool) {
	text, ok := stringify(raw)
	if !ok {
		return Scalar{}, false
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return Scalar{}, false
	}

	switch kind {
	case KindInteger:
		if len(text) > maxNumericLen || !integerPattern.MatchString(text) {
			return Scalar{}, false
		}
		n, err := decimal.NewFromString(text)
		if err != nil {
			return Scalar{}, false
		}
		return NewNumber(kind, n), true
	case KindMonetary, KindDecimal, KindPercentage:
		if len(text) > maxNumericLen {
			return Scalar{}, false
		}
		n, err := decimal.NewFromString(text)
		if err != nil {
			return Scalar{}, false
		}
		return NewNumber(kind, n), true
	default:
		return NewText(kind, text), true
	}
}

// CastBreakdown converts a raw category map into a dimensional value. Keys
// are normalized to upper case; values are cast with the scalar caster for
// the field's kind, dropping per-category entries that fail to cast. Two
// input keys normalizing to the same category code is a structural contract
// violation and returns an error, unlike ordinary data-quality failures.
func CastBreakdown(kind Kind, raw map[string]any) (Value, error) {
	out := make(map[string]Scalar, len(raw))
	seen := make(map[string]string, len(raw))
	for key, rawValue := range raw {
		code := strings.ToUpper(strings.TrimSpace(key))
		if first, exists := seen[code]; exists {
			return Absent, taxerrors.Newf(taxerrors.ErrCategoryCollision, "",
				"category keys %q and %q both normalize to %q", first, key, code)
		}
		seen[code] = key
		s, ok := CastScalar(kind, rawValue)
		if !ok {
			continue
		}
		out[code] = s
	}
	return FromCategories(out), nil
}

func stringify(raw any) (string, bool) {
	switch v := raw.(type) {
	case nil:
		return "", false
	case string:
		return v, true
	case bool:
		return strconv.FormatBool(v), true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32), true
	case decimal.Decimal:
		return v.String(), true
	case Scalar:
		return v.Format(), true
	case fmt.Stringer:
		return v.String(), true
	default:
		return "", false
	}
}
