package calculation

import (
	"testing"

	"github.com/rpgo/household-planner/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func ssEntry(owner string, pia float64, claimYears, claimMonths int) domain.SocialSecurity {
	return domain.SocialSecurity{
		Owner:             owner,
		PIAAtFRA:          dec(pia),
		FRAAgeYears:       67,
		ClaimingAgeYears:  claimYears,
		ClaimingAgeMonths: claimMonths,
		COLAAssumption:    domain.COLAFixed,
		COLARate:          decPtr(0),
	}
}

func TestClaimingAdjustment(t *testing.T) {
	tests := []struct {
		name     string
		years    int
		months   int
		expected float64
	}{
		{"at full retirement age", 67, 0, 1.0},
		{"12 months early", 66, 0, 1 - 12*5.0/900},
		{"36 months early", 64, 0, 0.80},
		{"60 months early", 62, 0, 0.70},
		{"36 months delayed", 70, 0, 1.24},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adj := ClaimingAdjustment(ssEntry(domain.OwnerPrimary, 2000, tt.years, tt.months))
			assert.InDelta(t, tt.expected, adj.InexactFloat64(), 1e-9)
		})
	}
}

func TestOwnBenefitClaimBoundary(t *testing.T) {
	ss := ssEntry(domain.OwnerPrimary, 2000, 67, 0)
	claim := ss.ClaimMonths()

	assert.True(t, OwnBenefit(ss, claim-1, decimal.Zero).IsZero(), "no benefit the month before claiming")
	assertMoney(t, 2000, OwnBenefit(ss, claim, decimal.Zero))

	ss.COLAAssumption = domain.COLAMatchInflation
	assertMoney(t, 2000, OwnBenefit(ss, claim+11, dec(0.03)), "COLA applies after a full year")
	assertMoney(t, 2060, OwnBenefit(ss, claim+12, dec(0.03)))
}

func TestMonthlySocialSecuritySpousalTopUp(t *testing.T) {
	high := ssEntry(domain.OwnerPrimary, 3000, 67, 0)
	low := ssEntry(domain.OwnerSpouse, 1000, 64, 0)
	ages := OwnerAges{PrimaryMonths: 70 * 12, SpouseMonths: 66 * 12, HasSpouse: true}

	b := MonthlySocialSecurity([]domain.SocialSecurity{high, low}, ages, decimal.Zero)

	expectedSpousal := 0.5 * 3000 * 0.80
	assertMoney(t, 3000, b.ByOwner[domain.OwnerPrimary])
	assertMoney(t, expectedSpousal, b.ByOwner[domain.OwnerSpouse])
	assertMoney(t, 3000+expectedSpousal, b.Total)
	assertMoney(t, (3000+expectedSpousal)*0.85, b.TaxablePortion())
}

func TestMonthlySocialSecurityNoTopUpWhenPIAHighEnough(t *testing.T) {
	a := ssEntry(domain.OwnerPrimary, 3000, 67, 0)
	b := ssEntry(domain.OwnerSpouse, 1600, 67, 0)
	ages := OwnerAges{PrimaryMonths: 68 * 12, SpouseMonths: 68 * 12, HasSpouse: true}

	res := MonthlySocialSecurity([]domain.SocialSecurity{a, b}, ages, decimal.Zero)
	assertMoney(t, 1600, res.ByOwner[domain.OwnerSpouse])
}

func TestMonthlySocialSecurityBeforeClaim(t *testing.T) {
	entry := ssEntry(domain.OwnerPrimary, 2500, 70, 0)
	res := MonthlySocialSecurity([]domain.SocialSecurity{entry}, OwnerAges{PrimaryMonths: 69*12 + 11}, decimal.Zero)
	assert.True(t, res.Total.IsZero())
}
