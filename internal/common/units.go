package common

import (
	"math"
)

// Fixed rounding precisions for the display view.
const (
	PlacesDisplay  = 2 // prices, market value, valuation multiples
	PlacesRatio    = 4 // canonical fractions
	PlacesPerShare = 3 // per-share currency values
)

// Scale divisors for provider units.
const (
	// TenThousandToHundredMillion converts 万元 to 亿元.
	TenThousandToHundredMillion = 10000
	// PercentDivisor converts a percent value to a fraction.
	PercentDivisor = 100
)

// NormalizeMode selects how absent provider values are treated.
type NormalizeMode int

const (
	// DisplayMode zero-fills absent values. A missing indicator is then
	// indistinguishable from a real zero; kept for dashboard compatibility.
	DisplayMode NormalizeMode = iota
	// AnalysisMode propagates absence as nil so prompts can say the indicator is unavailable.
	AnalysisMode
)

func (m NormalizeMode) String() string {
	if m == AnalysisMode {
		return "analysis"
	}
	return "display"
}

// ToFraction converts a rate to a canonical fraction (1.0 == 100%).
// When alreadyPercent is true the value is always divided by 100. Otherwise
// values with |v| <= 1 are taken as fractions and larger magnitudes as percents.
// Nil, NaN and Inf yield nil.
func ToFraction(raw *float64, alreadyPercent bool) *float64 {
	if !isNumber(raw) {
		return nil
	}
	v := *raw
	if alreadyPercent || math.Abs(v) > 1 {
		v = v / PercentDivisor
	}
	return &v
}

// ToDecimal divides a magnitude-scaled value by scaleDivisor.
// Nil, NaN, Inf or a zero divisor yield nil.
func ToDecimal(raw *float64, scaleDivisor float64) *float64 {
	if !isNumber(raw) || scaleDivisor == 0 {
		return nil
	}
	v := *raw / scaleDivisor
	return &v
}

// Fraction applies ToFraction and the mode's absence rule.
func (m NormalizeMode) Fraction(raw *float64, alreadyPercent bool) *float64 {
	return m.resolve(ToFraction(raw, alreadyPercent))
}

// Decimal applies ToDecimal and the mode's absence rule.
func (m NormalizeMode) Decimal(raw *float64, scaleDivisor float64) *float64 {
	return m.resolve(ToDecimal(raw, scaleDivisor))
}

// Plain passes a value through unchanged apart from the mode's absence rule.
func (m NormalizeMode) Plain(raw *float64) *float64 {
	if !isNumber(raw) {
		return m.resolve(nil)
	}
	v := *raw
	return &v
}

func (m NormalizeMode) resolve(v *float64) *float64 {
	if v == nil && m == DisplayMode {
		zero := 0.0
		return &zero
	}
	return v
}

// Round rounds half away from zero to the given number of decimal places.
func Round(v float64, places int) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// RoundPtr rounds a nullable value, preserving nil.
func RoundPtr(v *float64, places int) *float64 {
	if v == nil {
		return nil
	}
	r := Round(*v, places)
	return &r
}

// ValueOrZero dereferences v, returning 0 for nil.
func ValueOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

// Float64 returns a pointer to v.
func Float64(v float64) *float64 {
	return &v
}

func isNumber(v *float64) bool {
	return v != nil && !math.IsNaN(*v) && !math.IsInf(*v, 0)
}
