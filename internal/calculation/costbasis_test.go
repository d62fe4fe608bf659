package calculation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCostBasisTracker(t *testing.T) {
	t.Run("proportional gain", func(t *testing.T) {
		c := NewCostBasisTracker(dec(60000))
		gain := c.Withdraw(dec(10000), dec(100000))
		assertMoney(t, 4000, gain)
		assertMoney(t, 54000, c.TotalBasis)
	})

	t.Run("basis above balance realizes no gain", func(t *testing.T) {
		c := NewCostBasisTracker(dec(120000))
		gain := c.Withdraw(dec(10000), dec(100000))
		assert.True(t, gain.IsZero())
		assertMoney(t, 110000, c.TotalBasis)
	})

	t.Run("non-positive inputs are ignored", func(t *testing.T) {
		c := NewCostBasisTracker(dec(5000))
		assert.True(t, c.Withdraw(dec(-1), dec(100)).IsZero())
		assert.True(t, c.Withdraw(dec(100), dec(0)).IsZero())
		c.AddBasis(dec(-50))
		assertMoney(t, 5000, c.TotalBasis)
		c.AddBasis(dec(250))
		assertMoney(t, 5250, c.TotalBasis)
	})

	t.Run("contributions come out first", func(t *testing.T) {
		c := NewCostBasisTracker(dec(8000))
		assert.True(t, c.WithdrawBasisFirst(dec(5000)).IsZero())
		assertMoney(t, 2000, c.WithdrawBasisFirst(dec(5000)))
		assert.True(t, c.TotalBasis.IsZero())
	})
}
