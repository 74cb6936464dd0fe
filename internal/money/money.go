// Package money holds the fixed-point arithmetic used on every monetary
// value: two-decimal rounding and the tax-inclusive GST split.
package money

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Round2 rounds half away from zero to two decimal places.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// SplitInclusiveTax decomposes a tax-inclusive gross amount into taxable
// value and CGST/SGST components such that sub + cgst + sgst == gross
// exactly. The taxable value is rounded to two decimals, the tax total is
// the exact remainder, CGST takes its rounded proportional share and SGST
// absorbs whatever is left.
func SplitInclusiveTax(gross, cgstPct, sgstPct decimal.Decimal) (sub, cgst, sgst decimal.Decimal) {
	totalPct := cgstPct.Add(sgstPct)
	if totalPct.Sign() <= 0 {
		return Round2(gross), decimal.Zero, decimal.Zero
	}

	divisor := decimal.NewFromInt(1).Add(totalPct.Div(hundred))
	sub = Round2(gross.Div(divisor))
	taxTotal := gross.Sub(sub)

	cgst = Round2(taxTotal.Mul(cgstPct).Div(totalPct))
	sgst = taxTotal.Sub(cgst)
	return sub, cgst, sgst
}

// LineTotal is qty * unit price, rounded to two decimals.
func LineTotal(qty int, unit decimal.Decimal) decimal.Decimal {
	return Round2(unit.Mul(decimal.NewFromInt(int64(qty))))
}
