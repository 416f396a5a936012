package installment

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestGenerateSchedule(t *testing.T) {
	start := date(2024, time.November, 1)

	tests := []struct {
		name        string
		total       string
		down        string
		count       int
		wantAmounts []string
		wantErr     bool
	}{
		{
			name:        "even split",
			total:       "50000",
			down:        "10000",
			count:       4,
			wantAmounts: []string{"10000", "10000", "10000", "10000"},
		},
		{
			name:        "remainder on last item",
			total:       "75000.01",
			down:        "25000",
			count:       2,
			wantAmounts: []string{"25000", "25000.01"},
		},
		{
			name:        "single installment",
			total:       "1200.50",
			down:        "200.50",
			count:       1,
			wantAmounts: []string{"1000"},
		},
		{
			name:        "uneven cents",
			total:       "100",
			down:        "0",
			count:       3,
			wantAmounts: []string{"33.33", "33.33", "33.34"},
		},
		{name: "zero count", total: "100", down: "0", count: 0, wantErr: true},
		{name: "negative count", total: "100", down: "0", count: -1, wantErr: true},
		{name: "zero total", total: "0", down: "0", count: 1, wantErr: true},
		{name: "negative down payment", total: "100", down: "-1", count: 1, wantErr: true},
		{name: "down payment equals total", total: "100", down: "100", count: 1, wantErr: true},
		{name: "down payment exceeds total", total: "100", down: "150", count: 1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, err := GenerateSchedule(dec(tt.total), dec(tt.down), tt.count, start)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, ErrInvalidPlan, errors.Cause(err))
				return
			}
			require.NoError(t, err)
			require.Len(t, items, len(tt.wantAmounts))

			sum := dec(tt.down)
			for i, item := range items {
				assert.Equal(t, i+1, item.InstallmentNumber)
				assert.Truef(t, item.Amount.Equal(dec(tt.wantAmounts[i])),
					"item %d: amount = %s, want %s", i+1, item.Amount, tt.wantAmounts[i])
				assert.True(t, item.Amount.IsPositive())
				assert.Equal(t, ItemStatusPending, item.Status)
				assert.Nil(t, item.PaidDate)
				sum = sum.Add(item.Amount)
			}
			assert.Truef(t, sum.Equal(dec(tt.total)), "sum + down = %s, want %s", sum, tt.total)
		})
	}
}

func TestGenerateSchedule_dueDates(t *testing.T) {
	items, err := GenerateSchedule(dec("50000"), dec("10000"), 4, date(2024, time.November, 1))
	require.NoError(t, err)

	want := []time.Time{
		date(2024, time.December, 1),
		date(2025, time.January, 1),
		date(2025, time.February, 1),
		date(2025, time.March, 1),
	}
	require.Len(t, items, len(want))
	for i, item := range items {
		assert.Truef(t, item.DueDate.Equal(want[i]), "item %d: due %s, want %s", i+1, item.DueDate, want[i])
		if i > 0 {
			assert.True(t, item.DueDate.After(items[i-1].DueDate), "due dates must be strictly increasing")
		}
	}
}
