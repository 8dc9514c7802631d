package domain_test

import (
	"testing"
	"time"

	"github.com/SscSPs/finance_ledger/internal/apperrors"
	"github.com/SscSPs/finance_ledger/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAdvance(t *testing.T) {
	tests := []struct {
		name string
		freq domain.Frequency
		from time.Time
		want time.Time
	}{
		{"daily", domain.Daily, date(2024, 2, 28), date(2024, 2, 29)},
		{"weekly", domain.Weekly, date(2024, 12, 28), date(2025, 1, 4)},
		{"bi-weekly", domain.BiWeekly, date(2024, 1, 1), date(2024, 1, 15)},
		{"monthly leap clamp", domain.Monthly, date(2024, 1, 31), date(2024, 2, 29)},
		{"monthly non-leap clamp", domain.Monthly, date(2023, 1, 31), date(2023, 2, 28)},
		{"monthly 30 day clamp", domain.Monthly, date(2024, 3, 31), date(2024, 4, 30)},
		{"monthly year wrap", domain.Monthly, date(2024, 12, 15), date(2025, 1, 15)},
		{"quarterly clamp", domain.Quarterly, date(2024, 11, 30), date(2025, 2, 28)},
		{"annually leap day", domain.Annually, date(2024, 2, 29), date(2025, 2, 28)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := domain.Advance(tt.freq, tt.from)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAdvance_UnknownFrequency(t *testing.T) {
	_, err := domain.Advance(domain.Frequency("FORTNIGHTLY"), date(2024, 1, 1))
	assert.ErrorIs(t, err, apperrors.ErrConfiguration)
	assert.False(t, domain.Frequency("").Valid())
	assert.True(t, domain.Quarterly.Valid())
}
