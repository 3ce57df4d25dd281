package entitlement

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filemart-io/filemart/internal/domain/subscription"
	"github.com/filemart-io/filemart/internal/domain/usage"
)

func TestEvaluateQuota_ZeroCapsNeverDeny(t *testing.T) {
	caps := subscription.Caps{} // every dimension unlimited

	agg := usage.Aggregates{
		TotalBytes: 1 << 50,
		TotalFiles: 1_000_000,
		DailyBytes: 1 << 40,
		DailyFiles: 100_000,
	}

	assert.Nil(t, EvaluateQuota(caps, agg, 1<<30), "cap 0 means unlimited regardless of usage volume")
}

func TestEvaluateQuota_LifetimeBandwidthPreChecksCandidate(t *testing.T) {
	caps := subscription.Caps{LifetimeBandwidth: 1_000_000}

	// Zero prior usage, but the candidate alone would blow the cap.
	denial := EvaluateQuota(caps, usage.Aggregates{}, 1_500_000)
	require.NotNil(t, denial)
	assert.Equal(t, DenialLifetimeBandwidth, denial.Reason)

	// A file that fits is admitted.
	assert.Nil(t, EvaluateQuota(caps, usage.Aggregates{}, 900_000))

	// Exactly reaching the cap is allowed; only exceeding it denies.
	assert.Nil(t, EvaluateQuota(caps, usage.Aggregates{TotalBytes: 400_000}, 600_000))
	require.NotNil(t, EvaluateQuota(caps, usage.Aggregates{TotalBytes: 400_001}, 600_000))
}

func TestEvaluateQuota_LifetimeFileCount(t *testing.T) {
	caps := subscription.Caps{LifetimeFiles: 10}

	assert.Nil(t, EvaluateQuota(caps, usage.Aggregates{TotalFiles: 9}, 100))

	denial := EvaluateQuota(caps, usage.Aggregates{TotalFiles: 10}, 100)
	require.NotNil(t, denial)
	assert.Equal(t, DenialLifetimeFileCount, denial.Reason)
}

func TestEvaluateQuota_DailyBandwidth(t *testing.T) {
	caps := subscription.Caps{DailyBandwidth: 5_000}

	assert.Nil(t, EvaluateQuota(caps, usage.Aggregates{DailyBytes: 4_999}, 100))

	denial := EvaluateQuota(caps, usage.Aggregates{DailyBytes: 5_000}, 100)
	require.NotNil(t, denial)
	assert.Equal(t, DenialDailyBandwidth, denial.Reason)
}

func TestEvaluateQuota_DailyFileCount(t *testing.T) {
	caps := subscription.Caps{DailyFiles: 5}

	// Four downloaded today: the fifth is admitted.
	assert.Nil(t, EvaluateQuota(caps, usage.Aggregates{DailyFiles: 4}, 100))

	// Five downloaded today: the sixth is denied.
	denial := EvaluateQuota(caps, usage.Aggregates{DailyFiles: 5}, 100)
	require.NotNil(t, denial)
	assert.Equal(t, DenialDailyFileCount, denial.Reason)
}

func TestEvaluateQuota_FirstFailureWins(t *testing.T) {
	caps := subscription.Caps{
		LifetimeBandwidth: 100,
		LifetimeFiles:     1,
		DailyBandwidth:    1,
		DailyFiles:        1,
	}
	agg := usage.Aggregates{
		TotalBytes: 200,
		TotalFiles: 5,
		DailyBytes: 5,
		DailyFiles: 5,
	}

	denial := EvaluateQuota(caps, agg, 10)
	require.NotNil(t, denial)
	assert.Equal(t, DenialLifetimeBandwidth, denial.Reason, "checks run in a fixed order; the first failing cap names the denial")
}

func TestEvaluateQuota_MessagesNameTheLimit(t *testing.T) {
	denial := EvaluateQuota(subscription.Caps{DailyFiles: 3}, usage.Aggregates{DailyFiles: 3}, 10)
	require.NotNil(t, denial)
	assert.Contains(t, denial.Message, "3")
}
