package masterdata

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/samber/lo"

	"github.com/Simplici0/exportquote/internal/pricing"
)

// ListContainerTypes returns every container type ordered by code.
func (s *Store) ListContainerTypes(ctx context.Context) ([]pricing.ContainerType, error) {
	if v, ok := s.cached(cacheKeyContainers); ok {
		return slices.Clone(v.([]pricing.ContainerType)), nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, code, length_cm, width_cm, height_cm, max_weight_kg
		FROM container_types
		ORDER BY code
	`)
	if err != nil {
		return nil, fmt.Errorf("query container types: %w", err)
	}
	defer rows.Close()

	containers := make([]pricing.ContainerType, 0)
	for rows.Next() {
		var c pricing.ContainerType
		if err := rows.Scan(&c.ID, &c.Code, &c.Length, &c.Width, &c.Height, &c.MaxWeightKg); err != nil {
			return nil, fmt.Errorf("scan container type: %w", err)
		}
		containers = append(containers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate container types: %w", err)
	}

	s.remember(cacheKeyContainers, slices.Clone(containers))
	return containers, nil
}

// GetContainerTypeByCode looks a container type up by its code, case-insensitively.
func (s *Store) GetContainerTypeByCode(ctx context.Context, code string) (pricing.ContainerType, error) {
	containers, err := s.ListContainerTypes(ctx)
	if err != nil {
		return pricing.ContainerType{}, err
	}
	c, ok := lo.Find(containers, func(c pricing.ContainerType) bool {
		return strings.EqualFold(c.Code, strings.TrimSpace(code))
	})
	if !ok {
		return pricing.ContainerType{}, fmt.Errorf("container type %q: %w", code, ErrNotFound)
	}
	return c, nil
}

// SaveContainerType inserts when ID is zero, otherwise updates.
func (s *Store) SaveContainerType(ctx context.Context, c pricing.ContainerType) (pricing.ContainerType, error) {
	c.Code = strings.ToUpper(strings.TrimSpace(c.Code))
	if c.Code == "" {
		return c, invalid("container code is required")
	}
	if c.Length <= 0 || c.Width <= 0 || c.Height <= 0 || c.MaxWeightKg <= 0 {
		return c, invalid("container %s needs positive dimensions and payload", c.Code)
	}

	defer s.forget(cacheKeyContainers)
	if c.ID == 0 {
		res, err := s.db.ExecContext(ctx, `
			INSERT INTO container_types (code, length_cm, width_cm, height_cm, max_weight_kg)
			VALUES (?, ?, ?, ?, ?)
		`, c.Code, c.Length, c.Width, c.Height, c.MaxWeightKg)
		if err != nil {
			return c, fmt.Errorf("insert container type: %w", err)
		}
		c.ID, err = res.LastInsertId()
		return c, err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE container_types
		SET code = ?, length_cm = ?, width_cm = ?, height_cm = ?, max_weight_kg = ?
		WHERE id = ?
	`, c.Code, c.Length, c.Width, c.Height, c.MaxWeightKg, c.ID)
	if err != nil {
		return c, fmt.Errorf("update container type: %w", err)
	}
	return c, checkAffected(res, "container type", c.ID)
}

const locationColumns = `id, name, postal_code, fixed_transport_rate, rate_per_km`

type scanner interface {
	Scan(dest ...any) error
}

func scanLocation(row scanner) (pricing.Location, error) {
	var l pricing.Location
	err := row.Scan(&l.ID, &l.Name, &l.PostalCode, &l.FixedTransportRate, &l.RatePerKm)
	return l, err
}

// ListLocations returns every origin location ordered by name.
func (s *Store) ListLocations(ctx context.Context) ([]pricing.Location, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+locationColumns+` FROM locations ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query locations: %w", err)
	}
	defer rows.Close()

	locations := make([]pricing.Location, 0)
	for rows.Next() {
		l, err := scanLocation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan location: %w", err)
		}
		locations = append(locations, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate locations: %w", err)
	}
	return locations, nil
}

func (s *Store) GetLocation(ctx context.Context, id int64) (pricing.Location, error) {
	l, err := scanLocation(s.db.QueryRowContext(ctx, `SELECT `+locationColumns+` FROM locations WHERE id = ?`, id))
	if err != nil {
		return pricing.Location{}, notFound("location", id, err)
	}
	return l, nil
}

func (s *Store) SaveLocation(ctx context.Context, l pricing.Location) (pricing.Location, error) {
	l.Name = strings.TrimSpace(l.Name)
	l.PostalCode = strings.TrimSpace(l.PostalCode)
	if l.Name == "" {
		return l, invalid("location name is required")
	}

	if l.ID == 0 {
		res, err := s.db.ExecContext(ctx, `
			INSERT INTO locations (name, postal_code, fixed_transport_rate, rate_per_km)
			VALUES (?, ?, ?, ?)
		`, l.Name, l.PostalCode, l.FixedTransportRate, l.RatePerKm)
		if err != nil {
			return l, fmt.Errorf("insert location: %w", err)
		}
		l.ID, err = res.LastInsertId()
		return l, err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE locations
		SET name = ?, postal_code = ?, fixed_transport_rate = ?, rate_per_km = ?
		WHERE id = ?
	`, l.Name, l.PostalCode, l.FixedTransportRate, l.RatePerKm, l.ID)
	if err != nil {
		return l, fmt.Errorf("update location: %w", err)
	}
	return l, checkAffected(res, "location", l.ID)
}

const portColumns = `id, code, name, postal_code, handling_per_container, cha_charge, customs_clearance`

func scanPort(row scanner) (pricing.Port, error) {
	var p pricing.Port
	err := row.Scan(&p.ID, &p.Code, &p.Name, &p.PostalCode, &p.HandlingPerContainer, &p.CHACharge, &p.CustomsClearance)
	return p, err
}

// ListPorts returns every origin port ordered by code.
func (s *Store) ListPorts(ctx context.Context) ([]pricing.Port, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+portColumns+` FROM ports ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("query ports: %w", err)
	}
	defer rows.Close()

	ports := make([]pricing.Port, 0)
	for rows.Next() {
		p, err := scanPort(rows)
		if err != nil {
			return nil, fmt.Errorf("scan port: %w", err)
		}
		ports = append(ports, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ports: %w", err)
	}
	return ports, nil
}

// GetPort looks a port up by its UN/LOCODE.
func (s *Store) GetPort(ctx context.Context, code string) (pricing.Port, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	p, err := scanPort(s.db.QueryRowContext(ctx, `SELECT `+portColumns+` FROM ports WHERE code = ?`, code))
	if err != nil {
		return pricing.Port{}, notFound("port", code, err)
	}
	return p, nil
}

func (s *Store) SavePort(ctx context.Context, p pricing.Port) (pricing.Port, error) {
	p.Code = strings.ToUpper(strings.TrimSpace(p.Code))
	p.Name = strings.TrimSpace(p.Name)
	if p.Code == "" || p.Name == "" {
		return p, invalid("port code and name are required")
	}

	if p.ID == 0 {
		res, err := s.db.ExecContext(ctx, `
			INSERT INTO ports (code, name, postal_code, handling_per_container, cha_charge, customs_clearance)
			VALUES (?, ?, ?, ?, ?, ?)
		`, p.Code, p.Name, p.PostalCode, p.HandlingPerContainer, p.CHACharge, p.CustomsClearance)
		if err != nil {
			return p, fmt.Errorf("insert port: %w", err)
		}
		p.ID, err = res.LastInsertId()
		return p, err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE ports
		SET code = ?, name = ?, postal_code = ?, handling_per_container = ?, cha_charge = ?, customs_clearance = ?
		WHERE id = ?
	`, p.Code, p.Name, p.PostalCode, p.HandlingPerContainer, p.CHACharge, p.CustomsClearance, p.ID)
	if err != nil {
		return p, fmt.Errorf("update port: %w", err)
	}
	return p, checkAffected(res, "port", p.ID)
}

const countryColumns = `id, code, name, ecgc_rate, sea_freight_per_container`

func scanCountry(row scanner) (pricing.Country, error) {
	var c pricing.Country
	err := row.Scan(&c.ID, &c.Code, &c.Name, &c.ECGCRate, &c.SeaFreightPerContainer)
	return c, err
}

func (s *Store) ListCountries(ctx context.Context) ([]pricing.Country, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+countryColumns+` FROM countries ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query countries: %w", err)
	}
	defer rows.Close()

	countries := make([]pricing.Country, 0)
	for rows.Next() {
		c, err := scanCountry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan country: %w", err)
		}
		countries = append(countries, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate countries: %w", err)
	}
	return countries, nil
}

func (s *Store) GetCountry(ctx context.Context, id int64) (pricing.Country, error) {
	c, err := scanCountry(s.db.QueryRowContext(ctx, `SELECT `+countryColumns+` FROM countries WHERE id = ?`, id))
	if err != nil {
		return pricing.Country{}, notFound("country", id, err)
	}
	return c, nil
}

func (s *Store) SaveCountry(ctx context.Context, c pricing.Country) (pricing.Country, error) {
	c.Code = strings.ToUpper(strings.TrimSpace(c.Code))
	c.Name = strings.TrimSpace(c.Name)
	if c.Code == "" || c.Name == "" {
		return c, invalid("country code and name are required")
	}

	if c.ID == 0 {
		res, err := s.db.ExecContext(ctx, `
			INSERT INTO countries (code, name, ecgc_rate, sea_freight_per_container)
			VALUES (?, ?, ?, ?)
		`, c.Code, c.Name, c.ECGCRate, c.SeaFreightPerContainer)
		if err != nil {
			return c, fmt.Errorf("insert country: %w", err)
		}
		c.ID, err = res.LastInsertId()
		return c, err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE countries
		SET code = ?, name = ?, ecgc_rate = ?, sea_freight_per_container = ?
		WHERE id = ?
	`, c.Code, c.Name, c.ECGCRate, c.SeaFreightPerContainer, c.ID)
	if err != nil {
		return c, fmt.Errorf("update country: %w", err)
	}
	return c, checkAffected(res, "country", c.ID)
}

// ListDestinationPorts returns the ports of one country, or of all countries when countryID is zero.
func (s *Store) ListDestinationPorts(ctx context.Context, countryID int64) ([]pricing.DestinationPort, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, country_id, code, name
		FROM destination_ports
		WHERE (? = 0 OR country_id = ?)
		ORDER BY name
	`, countryID, countryID)
	if err != nil {
		return nil, fmt.Errorf("query destination ports: %w", err)
	}
	defer rows.Close()

	ports := make([]pricing.DestinationPort, 0)
	for rows.Next() {
		var p pricing.DestinationPort
		if err := rows.Scan(&p.ID, &p.CountryID, &p.Code, &p.Name); err != nil {
			return nil, fmt.Errorf("scan destination port: %w", err)
		}
		ports = append(ports, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate destination ports: %w", err)
	}
	return ports, nil
}

func (s *Store) GetDestinationPort(ctx context.Context, id int64) (pricing.DestinationPort, error) {
	var p pricing.DestinationPort
	err := s.db.QueryRowContext(ctx, `
		SELECT id, country_id, code, name FROM destination_ports WHERE id = ?
	`, id).Scan(&p.ID, &p.CountryID, &p.Code, &p.Name)
	if err != nil {
		return pricing.DestinationPort{}, notFound("destination port", id, err)
	}
	return p, nil
}

func (s *Store) SaveDestinationPort(ctx context.Context, p pricing.DestinationPort) (pricing.DestinationPort, error) {
	p.Code = strings.ToUpper(strings.TrimSpace(p.Code))
	p.Name = strings.TrimSpace(p.Name)
	if p.CountryID == 0 || p.Name == "" {
		return p, invalid("destination port needs a country and a name")
	}
	if _, err := s.GetCountry(ctx, p.CountryID); err != nil {
		return p, err
	}

	if p.ID == 0 {
		res, err := s.db.ExecContext(ctx, `
			INSERT INTO destination_ports (country_id, code, name) VALUES (?, ?, ?)
		`, p.CountryID, p.Code, p.Name)
		if err != nil {
			return p, fmt.Errorf("insert destination port: %w", err)
		}
		p.ID, err = res.LastInsertId()
		return p, err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE destination_ports SET country_id = ?, code = ?, name = ? WHERE id = ?
	`, p.CountryID, p.Code, p.Name, p.ID)
	if err != nil {
		return p, fmt.Errorf("update destination port: %w", err)
	}
	return p, checkAffected(res, "destination port", p.ID)
}

// ListCertifications returns mandatory certifications first, then by name.
func (s *Store) ListCertifications(ctx context.Context) ([]pricing.Certification, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, cost_type, flat_cost, percent, mandatory
		FROM certifications
		ORDER BY mandatory DESC, name
	`)
	if err != nil {
		return nil, fmt.Errorf("query certifications: %w", err)
	}
	defer rows.Close()

	certs := make([]pricing.Certification, 0)
	for rows.Next() {
		var c pricing.Certification
		if err := rows.Scan(&c.ID, &c.Name, &c.CostType, &c.FlatCost, &c.Percent, &c.Mandatory); err != nil {
			return nil, fmt.Errorf("scan certification: %w", err)
		}
		certs = append(certs, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate certifications: %w", err)
	}
	return certs, nil
}

func (s *Store) SaveCertification(ctx context.Context, c pricing.Certification) (pricing.Certification, error) {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return c, invalid("certification name is required")
	}
	switch c.CostType {
	case pricing.CostFlat, pricing.CostPercentage:
	case "":
		c.CostType = pricing.CostFlat
	default:
		return c, invalid("certification cost type %q", c.CostType)
	}

	if c.ID == 0 {
		res, err := s.db.ExecContext(ctx, `
			INSERT INTO certifications (name, cost_type, flat_cost, percent, mandatory)
			VALUES (?, ?, ?, ?, ?)
		`, c.Name, c.CostType, c.FlatCost, c.Percent, c.Mandatory)
		if err != nil {
			return c, fmt.Errorf("insert certification: %w", err)
		}
		c.ID, err = res.LastInsertId()
		return c, err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE certifications
		SET name = ?, cost_type = ?, flat_cost = ?, percent = ?, mandatory = ?
		WHERE id = ?
	`, c.Name, c.CostType, c.FlatCost, c.Percent, c.Mandatory, c.ID)
	if err != nil {
		return c, fmt.Errorf("update certification: %w", err)
	}
	return c, checkAffected(res, "certification", c.ID)
}
