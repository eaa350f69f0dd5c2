// Package money derives document totals. Deterministic, no side
// effects: the same lines and rate always produce the same totals.
package money

import (
	"math"

	"facturation-backend/apperrors"
)

// Round2 rounds x to 2 decimal places (banking-style simple round).
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// Line is the minimal shape the calculator needs.
type Line struct {
	Quantity  int
	UnitPrice float64
}

// Compute returns the net and gross totals. When lines are present the
// net is the rounded sum of quantity times unit price; otherwise it is
// the caller-supplied fallback. Gross applies the tax rate on top.
func Compute(lines []Line, taxRatePercent, fallbackNet float64) (net, gross float64, err error) {
	if taxRatePercent < 0 || taxRatePercent > 100 {
		return 0, 0, apperrors.Newf(apperrors.Validation, "taux de TVA invalide: %g", taxRatePercent)
	}
	if len(lines) == 0 {
		if fallbackNet <= 0 {
			return 0, 0, apperrors.New(apperrors.Validation, "montant HT requis et positif")
		}
		net = Round2(fallbackNet)
	} else {
		var sum float64
		for i, l := range lines {
			if l.Quantity <= 0 {
				return 0, 0, apperrors.Newf(apperrors.Validation, "quantite invalide a la ligne %d", i)
			}
			if l.UnitPrice <= 0 {
				return 0, 0, apperrors.Newf(apperrors.Validation, "prix unitaire invalide a la ligne %d", i)
			}
			sum += float64(l.Quantity) * l.UnitPrice
		}
		net = Round2(sum)
	}
	gross = Round2(net * (1 + taxRatePercent/100))
	return net, gross, nil
}

// LineTotal is the stored per-line total.
func LineTotal(quantity int, unitPrice float64) float64 {
	return Round2(float64(quantity) * unitPrice)
}
