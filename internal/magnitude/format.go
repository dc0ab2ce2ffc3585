package magnitude

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

var ErrSyntax = errors.New("invalid magnitude")

// String renders the display form: "0", "12.5", "340", "1.25A", "7B", "3AA".
func (a Magnitude) String() string {
	if a.mantissa == 0 {
		return "0"
	}
	d := decimal.NewFromFloat(a.mantissa)
	if a.tier == 0 {
		switch {
		case a.mantissa >= 100:
			return d.RoundBank(0).String()
		case a.mantissa >= 10:
			s := d.Round(3).String()
			if !strings.Contains(s, ".") {
				s += ".0"
			}
			return s
		}
		return d.Round(3).String()
	}
	return d.Round(3).String() + Suffix(a.tier)
}

// Suffix maps a tier to its letter code: 1->A, 26->Z, 27->AA, ...
func Suffix(t int) string {
	if t <= 0 {
		return ""
	}
	t--
	var b []byte
	for t >= 0 {
		b = append([]byte{byte('A' + t%26)}, b...)
		t = t/26 - 1
	}
	return string(b)
}

// TierFromSuffix is the inverse of Suffix. Empty input is tier 0.
func TierFromSuffix(s string) (int, error) {
	t := 0
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return 0, fmt.Errorf("%w: bad suffix %q", ErrSyntax, s)
		}
		t = t*26 + int(r-'A') + 1
	}
	return t, nil
}

// Parse reads the display form back ("1.5C", "250", "0.75").
func Parse(s string) (Magnitude, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Zero, fmt.Errorf("%w: empty", ErrSyntax)
	}
	i := len(s)
	for i > 0 && s[i-1] >= 'A' && s[i-1] <= 'Z' {
		i--
	}
	tier, err := TierFromSuffix(s[i:])
	if err != nil {
		return Zero, err
	}
	m, err := strconv.ParseFloat(s[:i], 64)
	if err != nil {
		return Zero, fmt.Errorf("%w: %q", ErrSyntax, s)
	}
	if m < 0 {
		return Zero, fmt.Errorf("%w: negative %q", ErrSyntax, s)
	}
	return New(m, tier), nil
}

// UnmarshalYAML accepts plain numbers (100, 2.5e6) or suffix strings ("1C").
func (a *Magnitude) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("%w: line %d: expected scalar", ErrSyntax, node.Line)
	}
	if f, err := strconv.ParseFloat(node.Value, 64); err == nil {
		if f < 0 {
			return fmt.Errorf("%w: line %d: negative value", ErrSyntax, node.Line)
		}
		*a = FromFloat(f)
		return nil
	}
	m, err := Parse(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*a = m
	return nil
}

// MarshalYAML emits the exact mantissa with a suffix so values round-trip.
func (a Magnitude) MarshalYAML() (any, error) {
	return strconv.FormatFloat(a.mantissa, 'g', -1, 64) + Suffix(a.tier), nil
}
