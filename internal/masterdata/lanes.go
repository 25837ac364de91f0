package masterdata

import (
	"context"
	"fmt"
	"strings"

	"github.com/Simplici0/exportquote/internal/pricing"
)

const laneColumns = `id, country_id, container_code, rate_per_container, currency`

func scanLane(row scanner) (pricing.FreightLane, error) {
	var l pricing.FreightLane
	err := row.Scan(&l.ID, &l.CountryID, &l.ContainerCode, &l.RatePerContainer, &l.Currency)
	return l, err
}

// ListFreightLanes returns the lanes of one country, or of all countries when countryID is zero.
func (s *Store) ListFreightLanes(ctx context.Context, countryID int64) ([]pricing.FreightLane, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+laneColumns+`
		FROM freight_lanes
		WHERE (? = 0 OR country_id = ?)
		ORDER BY country_id, container_code
	`, countryID, countryID)
	if err != nil {
		return nil, fmt.Errorf("query freight lanes: %w", err)
	}
	defer rows.Close()

	lanes := make([]pricing.FreightLane, 0)
	for rows.Next() {
		l, err := scanLane(rows)
		if err != nil {
			return nil, fmt.Errorf("scan freight lane: %w", err)
		}
		lanes = append(lanes, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate freight lanes: %w", err)
	}
	return lanes, nil
}

// GetFreightLane finds the lane for a country and container code.
func (s *Store) GetFreightLane(ctx context.Context, countryID int64, containerCode string) (pricing.FreightLane, error) {
	code := strings.ToUpper(strings.TrimSpace(containerCode))
	l, err := scanLane(s.db.QueryRowContext(ctx, `
		SELECT `+laneColumns+` FROM freight_lanes WHERE country_id = ? AND container_code = ?
	`, countryID, code))
	if err != nil {
		return pricing.FreightLane{}, notFound("freight lane", fmt.Sprintf("%d/%s", countryID, code), err)
	}
	return l, nil
}

// SaveFreightLane inserts when ID is zero, otherwise updates. The currency defaults to USD.
func (s *Store) SaveFreightLane(ctx context.Context, l pricing.FreightLane) (pricing.FreightLane, error) {
	l.ContainerCode = strings.ToUpper(strings.TrimSpace(l.ContainerCode))
	l.Currency = strings.ToUpper(strings.TrimSpace(l.Currency))
	if l.Currency == "" {
		l.Currency = "USD"
	}
	if l.CountryID == 0 || l.ContainerCode == "" {
		return l, invalid("freight lane needs a country and a container code")
	}
	if !l.RatePerContainer.IsPositive() {
		return l, invalid("freight lane %s needs a positive rate", l.ContainerCode)
	}
	if _, err := s.GetCountry(ctx, l.CountryID); err != nil {
		return l, err
	}

	if l.ID == 0 {
		res, err := s.db.ExecContext(ctx, `
			INSERT INTO freight_lanes (country_id, container_code, rate_per_container, currency)
			VALUES (?, ?, ?, ?)
		`, l.CountryID, l.ContainerCode, l.RatePerContainer, l.Currency)
		if err != nil {
			return l, fmt.Errorf("insert freight lane: %w", err)
		}
		l.ID, err = res.LastInsertId()
		return l, err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE freight_lanes
		SET country_id = ?, container_code = ?, rate_per_container = ?, currency = ?
		WHERE id = ?
	`, l.CountryID, l.ContainerCode, l.RatePerContainer, l.Currency, l.ID)
	if err != nil {
		return l, fmt.Errorf("update freight lane: %w", err)
	}
	return l, checkAffected(res, "freight lane", l.ID)
}
