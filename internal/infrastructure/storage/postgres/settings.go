package postgres

import (
	"context"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/MACM18/NNS-sub002/internal/domain/usage"
)

// SettingsRepo loads wastage validation settings. A missing row falls back
// to the built-in defaults so a fresh database works without seeding.
type SettingsRepo struct {
	txManager *TxManager
}

// NewSettingsRepo creates a new settings repository.
func NewSettingsRepo(txManager *TxManager) *SettingsRepo {
	return &SettingsRepo{txManager: txManager}
}

// Get implements usage.ConfigRepository.
func (r *SettingsRepo) Get(ctx context.Context) (usage.Config, error) {
	sql := `
		SELECT advisory_threshold_percent
		FROM cfg_wastage_settings
		ORDER BY updated_at DESC
		LIMIT 1
	`

	var row struct {
		AdvisoryThresholdPercent int64 `db:"advisory_threshold_percent"`
	}

	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &row, sql); err != nil {
		if pgxscan.NotFound(err) {
			return usage.DefaultConfig(), nil
		}
		return usage.Config{}, fmt.Errorf("get wastage settings: %w", err)
	}

	cfg := usage.DefaultConfig()
	if row.AdvisoryThresholdPercent > 0 {
		cfg.AdvisoryThresholdPercent = row.AdvisoryThresholdPercent
	}
	return cfg, nil
}

var _ usage.ConfigRepository = (*SettingsRepo)(nil)
