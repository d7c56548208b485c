package usage

import (
	"context"
	"fmt"

	"github.com/MACM18/NNS-sub002/internal/core/types"
)

// Config holds wastage validation settings. It is passed explicitly into
// validation calls; the persisted copy lives behind ConfigRepository, not in
// a process-wide singleton.
type Config struct {
	// AdvisoryThresholdPercent is the share of drum capacity above which a
	// manual wastage figure triggers a non-blocking advisory.
	AdvisoryThresholdPercent int64 `db:"advisory_threshold_percent" json:"advisoryThresholdPercent"`
}

// DefaultConfig returns the stock settings.
func DefaultConfig() Config {
	return Config{AdvisoryThresholdPercent: 20}
}

// ConfigRepository loads persisted wastage settings.
type ConfigRepository interface {
	Get(ctx context.Context) (Config, error)
}

// ValidationResult is the outcome of a manual wastage check.
//
// Advisory is informational only: the caller must display it but must not
// block the save on it.
type ValidationResult struct {
	Valid         bool          `json:"isValid"`
	Message       string        `json:"error,omitempty"`
	AdjustedValue *types.Length `json:"adjustedValue,omitempty"`
	Advisory      string        `json:"warning,omitempty"`
}

// ValidateManualWastage checks a proposed manual wastage override against the
// drum's used length and capacity.
func ValidateManualWastage(value, totalUsed, capacity types.Length, cfg Config) ValidationResult {
	if value.IsNegative() {
		return ValidationResult{
			Valid:   false,
			Message: "wastage cannot be negative",
		}
	}

	if value+totalUsed > capacity {
		adjusted := (capacity - totalUsed).ClampNonNegative()
		return ValidationResult{
			Valid:         false,
			Message:       fmt.Sprintf("wastage exceeds drum capacity; maximum allowed is %s", adjusted),
			AdjustedValue: &adjusted,
		}
	}

	threshold := cfg.AdvisoryThresholdPercent
	if threshold <= 0 {
		threshold = DefaultConfig().AdvisoryThresholdPercent
	}

	// Scale cancels on both sides, so raw int64 comparison is exact.
	if capacity.IsPositive() && value.Int64Scaled()*100 > capacity.Int64Scaled()*threshold {
		return ValidationResult{
			Valid:    true,
			Advisory: fmt.Sprintf("wastage of %s is above %d%% of drum capacity; double-check before saving", value, threshold),
		}
	}

	return ValidationResult{Valid: true}
}
