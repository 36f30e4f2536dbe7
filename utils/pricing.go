package utils

import "github.com/shopspring/decimal"

var (
	// VATRate is the flat value-added tax applied to bill subtotals.
	VATRate = decimal.NewFromFloat(0.10)

	hundred = decimal.NewFromInt(100)
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// EffectivePrice returns price * (1 - discountPercent/100), never negative.
func EffectivePrice(price, discountPercent decimal.Decimal) decimal.Decimal {
	if discountPercent.IsZero() {
		return price
	}
	p := price.Mul(hundred.Sub(discountPercent)).Div(hundred)
	if p.IsNegative() {
		return decimal.Zero
	}
	return p
}

// SnapshotPrice is the effective price stored on an order line.
func SnapshotPrice(price, discountPercent decimal.Decimal) decimal.Decimal {
	return EffectivePrice(price, discountPercent).Round(2)
}

func LineSubtotal(price decimal.Decimal, quantity int) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(int64(quantity)))
}

func VAT(subtotal decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(VATRate).Round(2)
}

// WithVAT returns subtotal plus VAT.
func WithVAT(subtotal decimal.Decimal) decimal.Decimal {
	return subtotal.Add(VAT(subtotal))
}

// PointsFor computes loyalty points for a bill total at the given cashback percent.
func PointsFor(total, cashbackPercent decimal.Decimal) decimal.Decimal {
	return total.Mul(cashbackPercent).Div(hundred).Round(2)
}

// ValidatePercent rejects values outside [0,100].
func ValidatePercent(field string, v decimal.Decimal) error {
	if v.IsNegative() || v.GreaterThan(hundred) {
		return NewValidation("%s must be between 0 and 100", field)
	}
	return nil
}

// ValidatePrice rejects negative prices.
func ValidatePrice(v decimal.Decimal) error {
	if v.IsNegative() {
		return NewValidation("price must not be negative")
	}
	return nil
}
