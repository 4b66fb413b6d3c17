package domain

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTier_Valid(t *testing.T) {
	for _, tier := range Tiers() {
		assert.True(t, tier.Valid(), "tier %d", tier)
	}
	for _, tier := range []Tier{0, 1, 3, 4, 6, 10, 12, -2} {
		assert.False(t, tier.Valid(), "tier %d", tier)
	}
}

func TestTier_String(t *testing.T) {
	assert.Equal(t, "glaze", TierGlaze.String())
	assert.Equal(t, "buttercream", TierButtercream.String())
	assert.Equal(t, "fondant", TierFondant.String())
	assert.Equal(t, "tier(3)", Tier(3).String())
}

func TestSlot_SettlementEpoch(t *testing.T) {
	s := Slot{ID: "slot-A", Tier: TierButtercream, RegisteredAt: 1000}
	assert.Equal(t, int64(284719385291), s.SettlementEpoch())
}

func TestIsInvalidArgument(t *testing.T) {
	assert.True(t, IsInvalidArgument(fmt.Errorf("%w: 3", ErrInvalidTier)))
	assert.True(t, IsInvalidArgument(ErrInvalidSlotID))
	assert.False(t, IsInvalidArgument(ErrAlreadyExists))
	assert.False(t, IsInvalidArgument(nil))
}
