package cargo

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrUnknownUnit is returned by FromWei for a unit it has no scale for.
var ErrUnknownUnit = errors.New("unknown unit")

var unitDecimals = map[string]int32{
	"wei":    0,
	"kwei":   3,
	"mwei":   6,
	"gwei":   9,
	"szabo":  12,
	"finney": 15,
	"ether":  18,
}

// FromWei converts a base-unit amount to the given display unit, web3 style:
// FromWei("1000000000000000000", "ether") == "1".
func FromWei(amount Wei, unit string) (string, error) {
	places, ok := unitDecimals[strings.ToLower(unit)]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownUnit, unit)
	}
	d, err := decimal.NewFromString(string(amount))
	if err != nil {
		return "", fmt.Errorf("parse wei amount %q: %w", amount, err)
	}
	return d.Shift(-places).String(), nil
}
