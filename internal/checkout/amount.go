package checkout

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// maxAmount keeps minor unit conversion far away from int64 overflow.
const maxAmount = 1e12

// MinorUnits converts an amount in major units (rupees) to the gateway's
// smallest unit (paise), rounding half away from zero.
func MinorUnits(amount float64) (int64, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount < 0 || amount > maxAmount {
		return 0, fmt.Errorf("%w: %v", ErrInvalidAmount, amount)
	}
	return decimal.NewFromFloat(amount).Shift(2).Round(0).IntPart(), nil
}

// checkTotals enforces total_amount == subtotal + shipping_fee. The sum is
// taken before rounding to paise so exact totals of sub-paisa parts pass.
func checkTotals(subtotal, shippingFee, total float64) error {
	if _, err := MinorUnits(subtotal); err != nil {
		return invalid("subtotal", err)
	}
	if _, err := MinorUnits(shippingFee); err != nil {
		return invalid("shipping_fee", err)
	}
	if _, err := MinorUnits(total); err != nil {
		return err
	}
	sum := decimal.NewFromFloat(subtotal).Add(decimal.NewFromFloat(shippingFee)).Round(2)
	if !sum.Equal(decimal.NewFromFloat(total).Round(2)) {
		return invalid("total_amount", ErrAmountMismatch)
	}
	return nil
}
