package installment

import (
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// ErrInvalidPlan is returned when plan terms cannot produce a schedule.
var ErrInvalidPlan = errors.New("invalid plan terms")

// GenerateSchedule produces the ordered installment line items for the given
// plan terms. The remaining amount (total - down) is split evenly across
// count items truncated to 2 decimals; the final item absorbs the rounding
// remainder so that sum(amounts) + down == total exactly. Due dates advance
// by calendar months: item N is due N months after start.
func GenerateSchedule(total, down decimal.Decimal, count int, start time.Time) ([]Item, error) {
	if count < 1 {
		return nil, errors.Wrap(ErrInvalidPlan, "installment count must be at least 1")
	}
	if total.LessThanOrEqual(decimal.Zero) {
		return nil, errors.Wrap(ErrInvalidPlan, "total amount must be positive")
	}
	if down.IsNegative() {
		return nil, errors.Wrap(ErrInvalidPlan, "down payment cannot be negative")
	}
	if down.GreaterThanOrEqual(total) {
		return nil, errors.Wrap(ErrInvalidPlan, "down payment must be less than total amount")
	}

	// truncate so the last item absorbs the positive rounding remainder
	remaining := total.Sub(down)
	base := remaining.Div(decimal.NewFromInt(int64(count))).Truncate(2)
	last := remaining.Sub(base.Mul(decimal.NewFromInt(int64(count - 1))))
	if base.LessThanOrEqual(decimal.Zero) || last.LessThanOrEqual(decimal.Zero) {
		return nil, errors.Wrap(ErrInvalidPlan, "installment amounts must be positive")
	}

	items := make([]Item, 0, count)
	for i := 1; i <= count; i++ {
		amount := base
		if i == count {
			amount = last
		}
		items = append(items, Item{
			InstallmentNumber: i,
			Amount:            amount,
			DueDate:           start.AddDate(0, i, 0),
			Status:            ItemStatusPending,
		})
	}
	return items, nil
}
