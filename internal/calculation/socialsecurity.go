package calculation

import (
	"github.com/rpgo/household-planner/internal/domain"
	"github.com/rpgo/household-planner/pkg/money"
	"github.com/shopspring/decimal"
)

var (
	earlyReductionFirst36 = decimal.NewFromInt(5).Div(decimal.NewFromInt(900))  // 5/9 of 1% per month
	earlyReductionBeyond  = decimal.NewFromInt(5).Div(decimal.NewFromInt(1200)) // 5/12 of 1% per month
	delayedCreditPerMonth = decimal.NewFromInt(2).Div(decimal.NewFromInt(300))  // 2/3 of 1% per month
	spousalShare          = decimal.NewFromFloat(0.5)
	taxableBenefitShare   = decimal.NewFromFloat(0.85)
)

// ClaimingAdjustment is the multiplier applied to PIA for claiming before or after FRA
func ClaimingAdjustment(ss domain.SocialSecurity) decimal.Decimal {
	diff := ss.ClaimMonths() - ss.FRAMonths()
	one := decimal.NewFromInt(1)
	switch {
	case diff == 0:
		return one
	case diff < 0:
		early := -diff
		first := early
		if first > 36 {
			first = 36
		}
		reduction := earlyReductionFirst36.Mul(decimal.NewFromInt(int64(first))).
			Add(earlyReductionBeyond.Mul(decimal.NewFromInt(int64(early - first))))
		return money.NonNegative(one.Sub(reduction))
	default:
		return one.Add(delayedCreditPerMonth.Mul(decimal.NewFromInt(int64(diff))))
	}
}

// COLARate is the annual cost-of-living adjustment for a benefit
func COLARate(ss domain.SocialSecurity, inflation decimal.Decimal) decimal.Decimal {
	r := decimal.Zero
	if ss.COLARate != nil {
		r = *ss.COLARate
	}
	switch ss.COLAAssumption {
	case domain.COLAFixed:
		return r
	case domain.COLAMatchInflation:
		return inflation
	case domain.COLAInflationPlus:
		return inflation.Add(r)
	case domain.COLAInflationMinus:
		return inflation.Sub(r)
	default:
		return decimal.Zero
	}
}

// colaFactor compounds COLA over whole years since the claim month
func colaFactor(ss domain.SocialSecurity, ageMonths int, inflation decimal.Decimal) decimal.Decimal {
	return money.Compound(COLARate(ss, inflation), (ageMonths-ss.ClaimMonths())/12)
}

// OwnBenefit is the monthly benefit on an owner's own record; zero before the claim month
func OwnBenefit(ss domain.SocialSecurity, ageMonths int, inflation decimal.Decimal) decimal.Decimal {
	if ageMonths < ss.ClaimMonths() {
		return decimal.Zero
	}
	base := money.NonNegative(ss.PIAAtFRA.Mul(ClaimingAdjustment(ss)))
	return base.Mul(colaFactor(ss, ageMonths, inflation))
}

// SpousalBenefit is half the other owner's PIA scaled by this owner's own claiming adjustment
func SpousalBenefit(own, other domain.SocialSecurity, ageMonths int, inflation decimal.Decimal) decimal.Decimal {
	if ageMonths < own.ClaimMonths() {
		return decimal.Zero
	}
	base := spousalShare.Mul(money.NonNegative(other.PIAAtFRA)).Mul(ClaimingAdjustment(own))
	return base.Mul(colaFactor(own, ageMonths, inflation))
}

// SocialSecurityBenefits is one month of household benefits
type SocialSecurityBenefits struct {
	Total   decimal.Decimal
	ByOwner map[string]decimal.Decimal
}

// TaxablePortion is the share of benefits counted as ordinary income
func (b SocialSecurityBenefits) TaxablePortion() decimal.Decimal {
	return b.Total.Mul(taxableBenefitShare)
}

// MonthlySocialSecurity computes every owner's benefit for the month, applying the spousal
// top-up when one owner's PIA is below half of the other's
func MonthlySocialSecurity(entries []domain.SocialSecurity, ages OwnerAges, inflation decimal.Decimal) SocialSecurityBenefits {
	out := SocialSecurityBenefits{Total: decimal.Zero, ByOwner: make(map[string]decimal.Decimal, len(entries))}

	var primary, spouse *domain.SocialSecurity
	for i := range entries {
		ss := entries[i]
		switch ss.Owner {
		case domain.OwnerPrimary:
			primary = &entries[i]
		case domain.OwnerSpouse:
			if !ages.HasSpouse {
				continue
			}
			spouse = &entries[i]
		}
		out.ByOwner[ss.Owner] = OwnBenefit(ss, ages.Months(ss.Owner), inflation)
	}

	if primary != nil && spouse != nil {
		topUp := func(own, other *domain.SocialSecurity) {
			if own.PIAAtFRA.GreaterThanOrEqual(other.PIAAtFRA.Mul(spousalShare)) {
				return
			}
			spousal := SpousalBenefit(*own, *other, ages.Months(own.Owner), inflation)
			out.ByOwner[own.Owner] = money.Max(out.ByOwner[own.Owner], spousal)
		}
		topUp(primary, spouse)
		topUp(spouse, primary)
	}

	for owner, v := range out.ByOwner {
		v = money.Cents(v)
		out.ByOwner[owner] = v
		out.Total = out.Total.Add(v)
	}
	return out
}
