package num

import (
	"bytes"
	"database/sql/driver"
	"fmt"

	"github.com/shopspring/decimal"
)

// BNToString renders v with exactly decimals fractional digits, truncating
// any further digits.
func BNToString(v Value, decimals uint8) string {
	if !v.known {
		return "NaN"
	}
	places := int32(decimals)
	return v.d.Truncate(places).StringFixed(places)
}

// FormatUnits converts a raw integer-scaled amount into token units,
// truncated to the token's decimals and printed without trailing zeros.
func FormatUnits(raw Value, decimals uint8) string {
	if !raw.known {
		return "NaN"
	}
	places := int32(decimals)
	return raw.d.Shift(-places).Truncate(places).String()
}

// ToUnits converts a raw amount into token units without formatting.
func ToUnits(raw Value, decimals uint8) Value {
	return raw.Shift(-int32(decimals))
}

func (v Value) MarshalJSON() ([]byte, error) {
	if !v.known {
		return []byte("null"), nil
	}
	return v.d.MarshalJSON()
}

func (v *Value) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) || bytes.Equal(trimmed, []byte(`"NaN"`)) {
		*v = Unknown()
		return nil
	}
	var d decimal.Decimal
	if err := d.UnmarshalJSON(trimmed); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidNumber, string(trimmed))
	}
	*v = Value{d: d, known: true}
	return nil
}

// Value implements driver.Valuer; unknown is stored as NULL.
func (v Value) Value() (driver.Value, error) {
	if !v.known {
		return nil, nil
	}
	return v.d.String(), nil
}
