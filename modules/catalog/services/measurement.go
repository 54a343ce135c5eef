package services

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/iota-uz/semi-catalog/modules/catalog/domain/entities/part"
)

// NotApplicable marks a measurement that does not apply to a part.
const NotApplicable = "-"

var numericPrefix = regexp.MustCompile(`^[+-]?(?:Infinity|(?:\d+\.?\d*|\.\d+)(?:[eE][+-]?\d+)?)`)

// ParseMeasurement turns a raw cell into a measurement:
//   - "-" gives a null value with Has set,
//   - "" gives a null value,
//   - anything else is parsed with ParseLeadingFloat, so junk becomes NaN.
func ParseMeasurement(raw string) part.Measurement {
	switch raw {
	case NotApplicable:
		return part.Measurement{Has: true}
	case "":
		return part.Measurement{}
	}
	v := ParseLeadingFloat(raw)
	return part.Measurement{Value: &v}
}

// ParseLeadingFloat parses the longest decimal prefix of s after leading
// whitespace, ignoring whatever follows ("4.5mΩ" is 4.5). It returns NaN when s
// has no numeric prefix.
func ParseLeadingFloat(s string) float64 {
	s = strings.TrimLeftFunc(s, isLeadingSpace)
	m := numericPrefix.FindString(s)
	if m == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return math.NaN()
	}
	return v
}

func isLeadingSpace(r rune) bool {
	return r == '\uFEFF' || (r != '\u0085' && unicode.IsSpace(r))
}

// BuildSpecification parses raw cells given in SpecHeaders order.
func BuildSpecification(raw []string) *part.Specification {
	spec := &part.Specification{}
	for i, m := range spec.Fields() {
		if i < len(raw) {
			*m = ParseMeasurement(raw[i])
		}
	}
	return spec
}
