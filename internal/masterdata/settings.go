package masterdata

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Simplici0/exportquote/internal/pricing"
)

// GetSettings returns the stored global rates. A missing singleton yields empty settings,
// which resolve to the pricing defaults.
func (s *Store) GetSettings(ctx context.Context) (pricing.Settings, error) {
	if v, ok := s.cached(cacheKeySettings); ok {
		return v.(pricing.Settings), nil
	}

	var st pricing.Settings
	err := s.db.QueryRowContext(ctx, `
		SELECT
			exchange_rate, bank_margin, marine_insurance_rate, ecgc_rate, bank_charge_rate,
			profit_rate, gst_percent, local_freight_per_km, minimum_local_freight,
			local_freight_per_container, container_stuffing_rate, export_packing_rate
		FROM settings
		WHERE id = 1
	`).Scan(
		&st.ExchangeRate, &st.BankMargin, &st.MarineInsuranceRate, &st.ECGCRate, &st.BankChargeRate,
		&st.ProfitRate, &st.GSTPercent, &st.LocalFreightPerKm, &st.MinimumLocalFreight,
		&st.LocalFreightPerContainer, &st.ContainerStuffingRate, &st.ExportPackingRate,
	)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return pricing.Settings{}, fmt.Errorf("query settings: %w", err)
	}

	s.remember(cacheKeySettings, st)
	return st, nil
}

// SaveSettings replaces the singleton. Unset fields are stored as NULL.
func (s *Store) SaveSettings(ctx context.Context, st pricing.Settings) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO settings (
			id, exchange_rate, bank_margin, marine_insurance_rate, ecgc_rate, bank_charge_rate,
			profit_rate, gst_percent, local_freight_per_km, minimum_local_freight,
			local_freight_per_container, container_stuffing_rate, export_packing_rate, updated_at
		) VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			exchange_rate = excluded.exchange_rate,
			bank_margin = excluded.bank_margin,
			marine_insurance_rate = excluded.marine_insurance_rate,
			ecgc_rate = excluded.ecgc_rate,
			bank_charge_rate = excluded.bank_charge_rate,
			profit_rate = excluded.profit_rate,
			gst_percent = excluded.gst_percent,
			local_freight_per_km = excluded.local_freight_per_km,
			minimum_local_freight = excluded.minimum_local_freight,
			local_freight_per_container = excluded.local_freight_per_container,
			container_stuffing_rate = excluded.container_stuffing_rate,
			export_packing_rate = excluded.export_packing_rate,
			updated_at = CURRENT_TIMESTAMP
	`,
		st.ExchangeRate, st.BankMargin, st.MarineInsuranceRate, st.ECGCRate, st.BankChargeRate,
		st.ProfitRate, st.GSTPercent, st.LocalFreightPerKm, st.MinimumLocalFreight,
		st.LocalFreightPerContainer, st.ContainerStuffingRate, st.ExportPackingRate,
	)
	if err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	s.forget(cacheKeySettings)
	return nil
}
