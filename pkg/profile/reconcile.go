package profile

import (
	"github.com/google/uuid"
)

type entity[T any] interface {
	*T
	identity() uuid.UUID
	assignId(uuid.UUID)
}

// ReconciliationPlan turns a stored collection into the desired one: delete
// DeleteIds, then upsert every entry of Upserts by id.
type ReconciliationPlan[T any] struct {
	DeleteIds []uuid.UUID
	Upserts   []T
}

// PlanReconciliation compares stored ids with the desired collection. Stored
// ids missing from desired are deleted; desired entries without an id get a
// fresh one.
func PlanReconciliation[T any, P entity[T]](existingIds []uuid.UUID, desired []T) ReconciliationPlan[T] {
	plan := ReconciliationPlan[T]{
		DeleteIds: make([]uuid.UUID, 0),
		Upserts:   make([]T, 0, len(desired)),
	}

	keep := make(map[uuid.UUID]struct{}, len(desired))
	for _, d := range desired {
		if id := P(&d).identity(); id != uuid.Nil {
			keep[id] = struct{}{}
		} else {
			P(&d).assignId(uuid.New())
		}
		plan.Upserts = append(plan.Upserts, d)
	}

	for _, id := range existingIds {
		if _, ok := keep[id]; !ok {
			plan.DeleteIds = append(plan.DeleteIds, id)
		}
	}
	return plan
}
