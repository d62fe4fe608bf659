package calculation

import (
	"github.com/rpgo/household-planner/internal/domain"
	"github.com/shopspring/decimal"
)

// TAX TABLE ASSUMPTIONS:
//
// 1. Every table is anchored at BaseTaxYear and scaled by (1+inflation)^(year-BaseTaxYear).
//    Years before the base year use the base-year values unchanged.
// 2. Flat state rates are effective rates and are not indexed. CA, NY, NJ and OR use
//    progressive schedules whose thresholds double for joint filers.
// 3. IRMAA surcharges are monthly per-person amounts for Part B and Part D.

// BaseTaxYear is the year every reference table is expressed in
const BaseTaxYear = 2026

// TaxBracket represents one marginal-rate slice of a schedule
type TaxBracket struct {
	Min       decimal.Decimal
	Max       decimal.Decimal
	Rate      decimal.Decimal
	Unbounded bool
}

// IRMAATier is one MAGI tier of the Medicare surcharge schedule
type IRMAATier struct {
	MaxMAGI   decimal.Decimal
	Unbounded bool
	PartB     decimal.Decimal
	PartD     decimal.Decimal
}

type ceilingRate struct {
	ceiling float64 // 0 marks the open top bracket
	rate    float64
}

func buildBrackets(specs []ceilingRate) []TaxBracket {
	out := make([]TaxBracket, 0, len(specs))
	lower := decimal.Zero
	for _, s := range specs {
		b := TaxBracket{Min: lower, Rate: decimal.NewFromFloat(s.rate)}
		if s.ceiling == 0 {
			b.Unbounded = true
		} else {
			b.Max = decimal.NewFromFloat(s.ceiling)
			lower = b.Max
		}
		out = append(out, b)
	}
	return out
}

func scaleBrackets(brackets []TaxBracket, factor decimal.Decimal) []TaxBracket {
	out := make([]TaxBracket, len(brackets))
	for i, b := range brackets {
		out[i] = TaxBracket{Min: b.Min.Mul(factor), Max: b.Max.Mul(factor), Rate: b.Rate, Unbounded: b.Unbounded}
	}
	return out
}

// progressiveTax evaluates amount against a marginal schedule
func progressiveTax(amount decimal.Decimal, brackets []TaxBracket) decimal.Decimal {
	if amount.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	tax := decimal.Zero
	for _, b := range brackets {
		if amount.LessThanOrEqual(b.Min) {
			break
		}
		upper := amount
		if !b.Unbounded && b.Max.LessThan(amount) {
			upper = b.Max
		}
		tax = tax.Add(upper.Sub(b.Min).Mul(b.Rate))
	}
	return tax
}

var (
	singleFederal = []ceilingRate{
		{11925, 0.10}, {48475, 0.12}, {103350, 0.22}, {197300, 0.24},
		{250525, 0.32}, {626350, 0.35}, {0, 0.37},
	}
	jointFederal = []ceilingRate{
		{23850, 0.10}, {96950, 0.12}, {206700, 0.22}, {394600, 0.24},
		{501050, 0.32}, {751600, 0.35}, {0, 0.37},
	}

	federalBrackets = map[domain.FilingStatus][]TaxBracket{
		domain.FilingSingle:         buildBrackets(singleFederal),
		domain.FilingMarriedJointly: buildBrackets(jointFederal),
		domain.FilingMarriedSeparately: buildBrackets([]ceilingRate{
			{11925, 0.10}, {48475, 0.12}, {103350, 0.22}, {197300, 0.24},
			{250525, 0.32}, {375800, 0.35}, {0, 0.37},
		}),
		domain.FilingHeadOfHousehold: buildBrackets([]ceilingRate{
			{17000, 0.10}, {64850, 0.12}, {103350, 0.22}, {197300, 0.24},
			{250500, 0.32}, {626350, 0.35}, {0, 0.37},
		}),
		domain.FilingQualifyingSurvivingSpouse: buildBrackets(jointFederal),
	}

	// capital gains schedules: 0% band, 15% band, 20% above
	capitalGainsBrackets = map[domain.FilingStatus][]TaxBracket{
		domain.FilingSingle:                    buildBrackets([]ceilingRate{{48350, 0}, {533400, 0.15}, {0, 0.20}}),
		domain.FilingMarriedJointly:            buildBrackets([]ceilingRate{{96700, 0}, {600050, 0.15}, {0, 0.20}}),
		domain.FilingMarriedSeparately:         buildBrackets([]ceilingRate{{48350, 0}, {300000, 0.15}, {0, 0.20}}),
		domain.FilingHeadOfHousehold:           buildBrackets([]ceilingRate{{64750, 0}, {566700, 0.15}, {0, 0.20}}),
		domain.FilingQualifyingSurvivingSpouse: buildBrackets([]ceilingRate{{96700, 0}, {600050, 0.15}, {0, 0.20}}),
	}

	standardDeductions = map[domain.FilingStatus]decimal.Decimal{
		domain.FilingSingle:                    decimal.NewFromInt(15000),
		domain.FilingMarriedJointly:            decimal.NewFromInt(30000),
		domain.FilingMarriedSeparately:         decimal.NewFromInt(15000),
		domain.FilingHeadOfHousehold:           decimal.NewFromInt(22500),
		domain.FilingQualifyingSurvivingSpouse: decimal.NewFromInt(30000),
	}

	niitThresholds = map[domain.FilingStatus]decimal.Decimal{
		domain.FilingSingle:                    decimal.NewFromInt(200000),
		domain.FilingMarriedJointly:            decimal.NewFromInt(250000),
		domain.FilingMarriedSeparately:         decimal.NewFromInt(125000),
		domain.FilingHeadOfHousehold:           decimal.NewFromInt(200000),
		domain.FilingQualifyingSurvivingSpouse: decimal.NewFromInt(250000),
	}

	niitRate = decimal.NewFromFloat(0.038)
)

// amtExemption is the exemption and the income at which it begins to phase out
type amtExemption struct {
	Exemption     decimal.Decimal
	PhaseOutStart decimal.Decimal
}

var (
	amtExemptions = map[domain.FilingStatus]amtExemption{
		domain.FilingSingle:                    {decimal.NewFromInt(88100), decimal.NewFromInt(626350)},
		domain.FilingMarriedJointly:            {decimal.NewFromInt(137000), decimal.NewFromInt(1252700)},
		domain.FilingMarriedSeparately:         {decimal.NewFromInt(68500), decimal.NewFromInt(626350)},
		domain.FilingHeadOfHousehold:           {decimal.NewFromInt(88100), decimal.NewFromInt(626350)},
		domain.FilingQualifyingSurvivingSpouse: {decimal.NewFromInt(137000), decimal.NewFromInt(1252700)},
	}

	amtBrackets      = buildBrackets([]ceilingRate{{220700, 0.26}, {0, 0.28}})
	amtPhaseOutRate  = decimal.NewFromFloat(0.25)
	earlyPenaltyRate = decimal.NewFromFloat(0.10)
)

// FICA reference values
var (
	ficaSocialSecurityRate    = decimal.NewFromFloat(0.062)
	ficaSocialSecurityWageMax = decimal.NewFromInt(180000)
	ficaMedicareRate          = decimal.NewFromFloat(0.0145)
	ficaAdditionalRate        = decimal.NewFromFloat(0.009)

	additionalMedicareThresholds = map[domain.FilingStatus]decimal.Decimal{
		domain.FilingSingle:                    decimal.NewFromInt(200000),
		domain.FilingMarriedJointly:            decimal.NewFromInt(250000),
		domain.FilingMarriedSeparately:         decimal.NewFromInt(125000),
		domain.FilingHeadOfHousehold:           decimal.NewFromInt(200000),
		domain.FilingQualifyingSurvivingSpouse: decimal.NewFromInt(250000),
	}
)

func irmaaTiers(specs ...[3]float64) []IRMAATier {
	out := make([]IRMAATier, 0, len(specs))
	for _, s := range specs {
		t := IRMAATier{PartB: decimal.NewFromFloat(s[1]), PartD: decimal.NewFromFloat(s[2])}
		if s[0] == 0 {
			t.Unbounded = true
		} else {
			t.MaxMAGI = decimal.NewFromFloat(s[0])
		}
		out = append(out, t)
	}
	return out
}

var (
	singleIRMAA = irmaaTiers(
		[3]float64{106000, 0, 0},
		[3]float64{133000, 74, 13},
		[3]float64{167000, 185, 33},
		[3]float64{200000, 296, 52},
		[3]float64{500000, 407, 71},
		[3]float64{0, 444, 82},
	)
	jointIRMAA = irmaaTiers(
		[3]float64{212000, 0, 0},
		[3]float64{266000, 74, 13},
		[3]float64{334000, 185, 33},
		[3]float64{400000, 296, 52},
		[3]float64{750000, 407, 71},
		[3]float64{0, 444, 82},
	)

	irmaaSchedules = map[domain.FilingStatus][]IRMAATier{
		domain.FilingSingle:         singleIRMAA,
		domain.FilingMarriedJointly: jointIRMAA,
		domain.FilingMarriedSeparately: irmaaTiers(
			[3]float64{106000, 0, 0},
			[3]float64{133000, 407, 71},
			[3]float64{0, 444, 82},
		),
		domain.FilingHeadOfHousehold:           singleIRMAA,
		domain.FilingQualifyingSurvivingSpouse: jointIRMAA,
	}
)

// flatStateRates are effective rates by postal code
var flatStateRates = map[string]float64{
	"AL": 0.0500, "AK": 0.0000, "AZ": 0.0250, "AR": 0.0390, "CA": 0.0930,
	"CO": 0.0440, "CT": 0.0500, "DE": 0.0520, "FL": 0.0000, "GA": 0.0530,
	"HI": 0.0800, "ID": 0.0580, "IL": 0.0495, "IN": 0.0300, "IA": 0.0570,
	"KS": 0.0520, "KY": 0.0450, "LA": 0.0300, "ME": 0.0710, "MD": 0.0575,
	"MA": 0.0500, "MI": 0.0425, "MN": 0.0680, "MS": 0.0470, "MO": 0.0470,
	"MT": 0.0590, "NE": 0.0560, "NV": 0.0000, "NH": 0.0000, "NJ": 0.0630,
	"NM": 0.0490, "NY": 0.0650, "NC": 0.0475, "ND": 0.0250, "OH": 0.0350,
	"OK": 0.0475, "OR": 0.0870, "PA": 0.0307, "RI": 0.0550, "SC": 0.0640,
	"SD": 0.0000, "TN": 0.0000, "TX": 0.0000, "UT": 0.0480, "VT": 0.0660,
	"VA": 0.0575, "WA": 0.0000, "WV": 0.0510, "WI": 0.0530, "WY": 0.0000,
	"DC": 0.0850,
}

// progressiveStateBrackets are single-filer schedules; joint filers double the thresholds
var progressiveStateBrackets = map[string][]TaxBracket{
	"CA": buildBrackets([]ceilingRate{
		{10756, 0.01}, {25499, 0.02}, {40245, 0.04}, {55866, 0.06}, {70606, 0.08},
		{360659, 0.093}, {432787, 0.103}, {721314, 0.113}, {0, 0.123},
	}),
	"NY": buildBrackets([]ceilingRate{
		{8500, 0.04}, {11700, 0.045}, {13900, 0.0525}, {80650, 0.055}, {215400, 0.06},
		{1077550, 0.0685}, {5000000, 0.0965}, {25000000, 0.103}, {0, 0.109},
	}),
	"NJ": buildBrackets([]ceilingRate{
		{20000, 0.014}, {35000, 0.0175}, {40000, 0.035}, {75000, 0.05525},
		{500000, 0.0637}, {1000000, 0.0897}, {0, 0.1075},
	}),
	"OR": buildBrackets([]ceilingRate{
		{4400, 0.0475}, {11050, 0.0675}, {125000, 0.0875}, {0, 0.099},
	}),
}

// RMD Uniform Lifetime Table divisors, ages 73 through 120
var uniformLifetimeDivisors = []float64{
	26.5, 25.5, 24.6, 23.7, 22.9, 22.0, 21.1, 20.2, 19.4, 18.5,
	17.7, 16.8, 16.0, 15.2, 14.4, 13.7, 12.9, 12.2, 11.5, 10.8,
	10.1, 9.5, 8.9, 8.4, 7.8, 7.3, 6.8, 6.4, 6.0, 5.6,
	5.2, 4.9, 4.6, 4.3, 4.1, 3.9, 3.7, 3.5, 3.4, 3.3,
	3.1, 3.0, 2.9, 2.8, 2.7, 2.5, 2.3, 2.0,
}

const uniformLifetimeMinAge = 73
