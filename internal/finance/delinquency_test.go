package finance

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/savings-group-ledger/internal/domain/shared"
)

func TestEvaluateDelinquency(t *testing.T) {
	asOf := time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)

	tests := []struct {
		name        string
		due         time.Time
		outstanding decimal.Decimal
		wantOverdue bool
		wantDays    int
		wantSev     shared.AlertSeverity
	}{
		{
			name:        "due yesterday is medium",
			due:         asOf.AddDate(0, 0, -1),
			outstanding: d("500"),
			wantOverdue: true,
			wantDays:    1,
			wantSev:     shared.AlertSeverityMedium,
		},
		{
			name:        "thirty days over is still medium",
			due:         asOf.AddDate(0, 0, -30),
			outstanding: d("500"),
			wantOverdue: true,
			wantDays:    30,
			wantSev:     shared.AlertSeverityMedium,
		},
		{
			name:        "thirty one days over is high",
			due:         asOf.AddDate(0, 0, -31),
			outstanding: d("500"),
			wantOverdue: true,
			wantDays:    31,
			wantSev:     shared.AlertSeverityHigh,
		},
		{
			name:        "due today is not overdue",
			due:         time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC),
			outstanding: d("500"),
			wantOverdue: false,
		},
		{
			name:        "due later today with different clock time",
			due:         time.Date(2025, 6, 15, 23, 59, 0, 0, time.UTC),
			outstanding: d("500"),
			wantOverdue: false,
		},
		{
			name:        "settled loan is never overdue",
			due:         asOf.AddDate(0, 0, -60),
			outstanding: decimal.Zero,
			wantOverdue: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EvaluateDelinquency(tt.due, tt.outstanding, asOf, 30)
			assert.Equal(t, tt.wantOverdue, got.Overdue)
			if tt.wantOverdue {
				assert.Equal(t, tt.wantDays, got.DaysOverdue)
				assert.Equal(t, tt.wantSev, got.Severity)
			}
		})
	}
}
