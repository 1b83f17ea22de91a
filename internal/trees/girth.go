package trees

import (
	"math"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultGirth is used when a feature carries no usable girth.
const DefaultGirth = 0.5

var (
	// trailing decimal token, optionally followed by a single unit character
	girthToken  = regexp.MustCompile(`[\d.]+[^\d.]?$`)
	numberStart = regexp.MustCompile(`^\d*(\.\d*)?`)
)

// ParseGirth extracts the trailing decimal value from a raw girth string
// such as "0.5", "1.2m" or "0.8-1.1". Empty input is read as "0.5". When no
// decimal can be extracted, or it overflows a float64, DefaultGirth is
// returned with defaulted set.
func ParseGirth(raw string) (g float64, defaulted bool) {
	if raw == "" {
		return DefaultGirth, false
	}
	tok := girthToken.FindString(raw)
	if tok == "" {
		return DefaultGirth, true
	}
	num := numberStart.FindString(tok)
	num = strings.TrimSuffix(num, ".")
	if strings.HasPrefix(num, ".") {
		num = "0" + num
	}
	if num == "" {
		return DefaultGirth, true
	}
	d, err := decimal.NewFromString(num)
	if err != nil {
		return DefaultGirth, true
	}
	g, _ = d.Float64()
	if math.IsInf(g, 0) || math.IsNaN(g) {
		return DefaultGirth, true
	}
	return g, false
}

// Steps is the number of trunk polygon sides for girth g. Thicker trunks get
// smoother circles; girth 0.5 gives a hexagon.
func Steps(g float64) float64 {
	return 6 + (g-0.5)*2
}

// TrunkRadius is the trunk radius in metres for girth g. The factor of two
// is a visual exaggeration.
func TrunkRadius(g float64) float64 {
	return (g / math.Pi) * 2
}
