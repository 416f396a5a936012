package installment

import "time"

// EvaluateItem derives a line item's status from the current date and its
// payment record. A recorded payment wins over everything; an unpaid item
// whose due date has passed is overdue. Day granularity: an item is overdue
// only once its due date is strictly before the current date.
func EvaluateItem(now time.Time, item Item) string {
	if item.PaidDate != nil {
		return ItemStatusApproved
	}
	if truncateDay(item.DueDate).Before(truncateDay(now)) {
		return ItemStatusOverdue
	}
	return ItemStatusPending
}

// EvaluatePlan folds item statuses into the plan's overall status.
// A single overdue item marks the whole plan overdue even if all others
// are approved.
func EvaluatePlan(items []Item) string {
	allApproved := len(items) > 0
	for _, item := range items {
		switch item.Status {
		case ItemStatusOverdue:
			return PlanStatusOverdue
		case ItemStatusApproved:
		default:
			allApproved = false
		}
	}
	if allApproved {
		return PlanStatusCompleted
	}
	return PlanStatusActive
}

// Refresh re-runs the evaluator over the plan in place, as of now.
// Called on every read and before every mutation response; there is no
// background sweep.
func (p *Plan) Refresh(now time.Time) (changed bool) {
	for i, item := range p.Schedule {
		if status := EvaluateItem(now, item); status != item.Status {
			p.Schedule[i].Status = status
			changed = true
		}
	}
	if status := EvaluatePlan(p.Schedule); status != p.Status {
		p.Status = status
		changed = true
	}
	return changed
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
