package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDefaultDebtPolicyBuckets(t *testing.T) {
	policy := DefaultDebtPolicy()

	assert.Equal(t, "0-30", policy.BucketFor(0))
	assert.Equal(t, "0-30", policy.BucketFor(30))
	assert.Equal(t, "31-60", policy.BucketFor(31))
	assert.Equal(t, "31-60", policy.BucketFor(60))
	assert.Equal(t, "61+", policy.BucketFor(61))
	assert.Equal(t, "61+", policy.BucketFor(400))
	assert.Equal(t, "0-30", policy.BucketFor(-3))
}

func TestDefaultDebtPolicyRisk(t *testing.T) {
	policy := DefaultDebtPolicy()

	assert.Equal(t, "high", policy.RiskFor(500_000, 1))
	assert.Equal(t, "high", policy.RiskFor(10, 60))
	assert.Equal(t, "medium", policy.RiskFor(100_000, 0))
	assert.Equal(t, "medium", policy.RiskFor(5_000, 45))
	assert.Equal(t, "low", policy.RiskFor(5_000, 3))
}

func TestLoadDebtPolicyHolderFallsBackToDefaults(t *testing.T) {
	holder, err := LoadDebtPolicyHolder(zap.NewNop(), t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, DefaultDebtPolicy().AgingBuckets[0].Label, holder.Get().AgingBuckets[0].Label)
	assert.Len(t, holder.Get().RiskLevels, 3)
}

func TestLoadDebtPolicyHolderReadsFile(t *testing.T) {
	dir := t.TempDir()
	content := []byte(`debt:
  agingBuckets:
    - label: fresh
      minDays: 0
      maxDays: 7
    - label: stale
      minDays: 8
  riskLevels:
    - level: watch
      minOutstanding: 50000
      minDays: 14
    - level: ok
      minOutstanding: 0
      minDays: 0
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "debt.yml"), content, 0o600))

	holder, err := LoadDebtPolicyHolder(zap.NewNop(), dir)
	require.NoError(t, err)

	policy := holder.Get()
	assert.Equal(t, "fresh", policy.BucketFor(3))
	assert.Equal(t, "stale", policy.BucketFor(30))
	assert.Equal(t, "watch", policy.RiskFor(60_000, 0))
	assert.Equal(t, "ok", policy.RiskFor(1_000, 2))
}

func TestLoadDebtPolicyHolderRejectsEmptyBuckets(t *testing.T) {
	dir := t.TempDir()
	content := []byte("debt:\n  agingBuckets: []\n  riskLevels:\n    - level: low\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "debt.yml"), content, 0o600))

	_, err := LoadDebtPolicyHolder(zap.NewNop(), dir)
	assert.Error(t, err)
}

func TestNilHolderReturnsDefaults(t *testing.T) {
	var holder *DebtPolicyHolder
	assert.Equal(t, "61+", holder.Get().BucketFor(90))
}
