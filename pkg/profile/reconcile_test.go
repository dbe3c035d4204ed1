package profile

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanReconciliation(t *testing.T) {
	t.Run("should delete missing, keep existing and assign ids to new entries", func(t *testing.T) {
		// given
		a, b := uuid.New(), uuid.New()
		desired := []Goal{
			{Id: b, Name: "B updated", TargetAmount: decimal.NewFromInt(2000)},
			{Name: "C new", TargetAmount: decimal.NewFromInt(500)},
		}

		// when
		plan := PlanReconciliation([]uuid.UUID{a, b}, desired)

		// then
		assert.Equal(t, []uuid.UUID{a}, plan.DeleteIds)
		require.Len(t, plan.Upserts, 2)
		assert.Equal(t, b, plan.Upserts[0].Id)
		assert.Equal(t, "B updated", plan.Upserts[0].Name)
		assert.NotEqual(t, uuid.Nil, plan.Upserts[1].Id)
		assert.NotEqual(t, a, plan.Upserts[1].Id)
		assert.NotEqual(t, b, plan.Upserts[1].Id)
		assert.Equal(t, uuid.Nil, desired[1].Id, "input must not be modified")
	})

	t.Run("should delete everything for empty desired collection", func(t *testing.T) {
		// given
		a, b := uuid.New(), uuid.New()

		// when
		plan := PlanReconciliation[Debt]([]uuid.UUID{a, b}, nil)

		// then
		assert.ElementsMatch(t, []uuid.UUID{a, b}, plan.DeleteIds)
		assert.Empty(t, plan.Upserts)
	})

	t.Run("should only insert when nothing is stored", func(t *testing.T) {
		// when
		plan := PlanReconciliation(nil, []Investment{{Symbol: "VTI"}, {Symbol: "BND"}})

		// then
		assert.Empty(t, plan.DeleteIds)
		require.Len(t, plan.Upserts, 2)
		assert.NotEqual(t, plan.Upserts[0].Id, plan.Upserts[1].Id)
	})
}
