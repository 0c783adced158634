package simulation

import "math"

// RequiredMonthly solves the future-value-of-annuity equation for the level
// monthly payment needed to reach target from current over the horizon:
//
//	FV = P*(1+r)^n + PMT * ((1+r)^n - 1) / r
//
// where r is the monthly rate and n the month count. When the compounded
// principal alone already covers the target the required payment is 0,
// never negative.
func RequiredMonthly(target, current, years, annualRate float64) float64 {
	months := years * 12
	monthlyRate := annualRate / 12

	futureValuePrincipal := current * math.Pow(1+monthlyRate, months)
	shortfall := target - futureValuePrincipal
	if shortfall <= 0 {
		return 0
	}

	if monthlyRate == 0 {
		// zero-rate limit of the annuity factor
		return shortfall / months
	}

	denominator := (math.Pow(1+monthlyRate, months) - 1) / monthlyRate
	return shortfall / denominator
}
