package ordering

import (
	"github.com/Parsa-Nasirikhah/SE-Lab-ResturantManagement/internal/apperr"
	"github.com/Parsa-Nasirikhah/SE-Lab-ResturantManagement/internal/models"
)

// stage orders the forward lifecycle. Cancelled is not a stage; it is
// reachable from any non-terminal status.
var stage = map[models.OrderStatus]int{
	models.OrderPending:   0,
	models.OrderPreparing: 1,
	models.OrderReady:     2,
	models.OrderServed:    3,
	models.OrderPaid:      4,
}

// StaffTargets are the statuses staff may request through UpdateStatus.
var StaffTargets = map[models.OrderStatus]bool{
	models.OrderPreparing: true,
	models.OrderReady:     true,
	models.OrderServed:    true,
	models.OrderPaid:      true,
	models.OrderCancelled: true,
}

// CanTransition checks that from -> to moves strictly forward, or cancels a
// live order. Skipping stages is allowed.
func CanTransition(from, to models.OrderStatus) error {
	if from.IsTerminal() {
		return apperr.Validation("order is already %s", from)
	}
	if to == models.OrderCancelled {
		return nil
	}
	next, ok := stage[to]
	if !ok {
		return apperr.Validation("invalid status %q", to)
	}
	if next <= stage[from] {
		return apperr.Validation("cannot move order from %s to %s", from, to)
	}
	return nil
}
