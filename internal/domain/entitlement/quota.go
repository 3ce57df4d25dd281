package entitlement

import (
	"fmt"

	"github.com/filemart-io/filemart/internal/domain/subscription"
	"github.com/filemart-io/filemart/internal/domain/usage"
)

// DenialReason identifies which cap a quota denial hit.
type DenialReason string

const (
	DenialLifetimeBandwidth DenialReason = "lifetime_bandwidth_exceeded"
	DenialLifetimeFileCount DenialReason = "lifetime_file_count_exceeded"
	DenialDailyBandwidth    DenialReason = "daily_bandwidth_exceeded"
	DenialDailyFileCount    DenialReason = "daily_file_count_exceeded"
)

// Denial is a quota check failure with its caller-facing explanation.
type Denial struct {
	Reason  DenialReason
	Message string
}

// EvaluateQuota combines subscription caps with ledger aggregates into an
// admit/deny decision. A nil return admits the download.
//
// Checks run in a fixed order and the first failure wins, because the
// messages differ per cap. A cap of 0 means unlimited and skips its check.
// The lifetime bandwidth check pre-admits the candidate file: a request is
// denied when admitting it would push total bytes over the cap, not only
// when the cap is already breached.
func EvaluateQuota(caps subscription.Caps, agg usage.Aggregates, candidateBytes uint64) *Denial {
	if caps.LifetimeBandwidth > 0 && agg.TotalBytes+candidateBytes > caps.LifetimeBandwidth {
		return &Denial{
			Reason: DenialLifetimeBandwidth,
			Message: fmt.Sprintf("downloading this file would exceed the subscription's total bandwidth limit of %d bytes",
				caps.LifetimeBandwidth),
		}
	}

	if caps.LifetimeFiles > 0 && agg.TotalFiles >= caps.LifetimeFiles {
		return &Denial{
			Reason: DenialLifetimeFileCount,
			Message: fmt.Sprintf("the subscription's total limit of %d file downloads has been reached",
				caps.LifetimeFiles),
		}
	}

	if caps.DailyBandwidth > 0 && agg.DailyBytes >= caps.DailyBandwidth {
		return &Denial{
			Reason: DenialDailyBandwidth,
			Message: fmt.Sprintf("the daily fair-use bandwidth limit of %d bytes has been reached; it resets at the next day boundary",
				caps.DailyBandwidth),
		}
	}

	if caps.DailyFiles > 0 && agg.DailyFiles >= caps.DailyFiles {
		return &Denial{
			Reason: DenialDailyFileCount,
			Message: fmt.Sprintf("the daily fair-use limit of %d file downloads has been reached; it resets at the next day boundary",
				caps.DailyFiles),
		}
	}

	return nil
}
