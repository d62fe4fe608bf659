package calculation

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/rpgo/household-planner/internal/domain"
	"github.com/shopspring/decimal"
)

// MonteCarloGenerator draws correlated annual (stock, bond) returns
type MonteCarloGenerator struct {
	settings domain.MonteCarloSettings
	baseSeed int64
	// Cholesky factor of the 2x2 correlation matrix
	l21, l22 float64
}

// NewMonteCarloGenerator validates the distribution parameters. A zero seed draws one from seedFunc.
func NewMonteCarloGenerator(settings domain.MonteCarloSettings, seed int64) (*MonteCarloGenerator, error) {
	if settings.StockStdDev < 0 || settings.BondStdDev < 0 {
		return nil, fmt.Errorf("standard deviations must be non-negative")
	}
	if settings.Correlation < -1 || settings.Correlation > 1 {
		return nil, fmt.Errorf("correlation %.4f outside [-1, 1]", settings.Correlation)
	}
	if seed == 0 {
		seed = seedFunc()
	}
	rho := settings.Correlation
	return &MonteCarloGenerator{
		settings: settings,
		baseSeed: seed,
		l21:      rho,
		l22:      math.Sqrt(1 - rho*rho),
	}, nil
}

// Seed is the base seed; scenario i uses Seed()+i
func (g *MonteCarloGenerator) Seed() int64 { return g.baseSeed }

// ReturnPath draws one return per plan year for scenario index. The same index always yields the
// same path regardless of which goroutine asks for it.
func (g *MonteCarloGenerator) ReturnPath(index, planStartYear, planEndYear int) domain.ReturnPath {
	rng := rand.New(rand.NewSource(g.baseSeed + int64(index)))
	path := make(domain.ReturnPath, planEndYear-planStartYear+1)
	for year := planStartYear; year <= planEndYear; year++ {
		z1 := boxMullerTransform(rng.Float64(), rng.Float64())
		z2 := boxMullerTransform(rng.Float64(), rng.Float64())
		stockZ := z1
		bondZ := g.l21*z1 + g.l22*z2

		stock := g.settings.StockMeanReturn + g.settings.StockStdDev*stockZ
		bond := g.settings.BondMeanReturn + g.settings.BondStdDev*bondZ
		path[year] = domain.YearReturns{
			Stock: decimal.NewFromFloat(math.Max(stock, -1)).Round(6),
			Bond:  decimal.NewFromFloat(math.Max(bond, -1)).Round(6),
		}
	}
	return path
}

// boxMullerTransform converts two uniform draws into a standard normal
func boxMullerTransform(u1, u2 float64) float64 {
	// guard log(0)
	if u1 <= 0 {
		u1 = math.SmallestNonzeroFloat64
	}
	return math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
}
