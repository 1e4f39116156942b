package pdf

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "0", FormatAmount(0))
	assert.Equal(t, "999", FormatAmount(999))
	assert.Equal(t, "1,000", FormatAmount(1000))
	assert.Equal(t, "1,500,000", FormatAmount(1_500_000))
	assert.Equal(t, "-25,000", FormatAmount(-25_000))
}

func TestGenerateDebtStatement(t *testing.T) {
	issued := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	reader, err := New().GenerateDebtStatement(context.Background(), StatementData{
		CustomerName: "Ali",
		TankNo:       "T-1",
		IssuedAt:     issued,
		Lines: []StatementLine{
			{Date: issued.AddDate(0, 0, -10), Notes: "Generated from request #T-1", Amount: 15000, Remaining: 5000},
		},
		Total: 5000,
	})
	require.NoError(t, err)

	body, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.True(t, len(body) > 4 && string(body[:4]) == "%PDF")
}
