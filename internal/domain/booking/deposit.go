package booking

import "github.com/shopspring/decimal"

const (
	balanceStepCents = 500
	minDepositCents  = 50
)

var hundred = decimal.NewFromInt(100)

// CalculateDeposit splits price into the amount charged up front and the
// balance paid at the chair. The balance is rounded up to a multiple of
// 5.00 and the deposit never drops below 0.50. All arithmetic after the
// percentage is done in integer cents so deposit+balance == price exactly.
//
// price > 0 and 0 <= depositPercent <= 100 are the caller's responsibility.
func CalculateDeposit(price, depositPercent decimal.Decimal) (deposit, balance decimal.Decimal) {
	priceCents := price.Mul(hundred).Round(0).IntPart()

	rawDeposit := price.Mul(depositPercent).Div(hundred).Round(2)
	rawCents := rawDeposit.Mul(hundred).IntPart()

	balanceCents := ceilToStep(priceCents-rawCents, balanceStepCents)
	depositCents := priceCents - balanceCents

	if depositCents < minDepositCents {
		depositCents = minDepositCents
		balanceCents = priceCents - minDepositCents
	}

	return decimal.New(depositCents, -2), decimal.New(balanceCents, -2)
}

func ceilToStep(cents, step int64) int64 {
	q := cents / step
	if cents%step > 0 {
		q++
	}
	return q * step
}
