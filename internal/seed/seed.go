package seed

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var catalogYAML []byte

// Config contains the values required by startup seed.
type Config struct {
	AdminEmail    string
	AdminPassword string
}

// Stats contains seed operation counters.
type Stats struct {
	Inserts int
	// Updates counts admin password rotations.
	Updates int
}

type catalog struct {
	Settings       map[string]string `yaml:"settings"`
	ContainerTypes []struct {
		Code        string  `yaml:"code"`
		LengthCm    float64 `yaml:"length_cm"`
		WidthCm     float64 `yaml:"width_cm"`
		HeightCm    float64 `yaml:"height_cm"`
		MaxWeightKg float64 `yaml:"max_weight_kg"`
	} `yaml:"container_types"`
	Ports []struct {
		Code                 string `yaml:"code"`
		Name                 string `yaml:"name"`
		PostalCode           string `yaml:"postal_code"`
		HandlingPerContainer string `yaml:"handling_per_container"`
		CHACharge            string `yaml:"cha_charge"`
		CustomsClearance     string `yaml:"customs_clearance"`
	} `yaml:"ports"`
	Locations []struct {
		Name               string `yaml:"name"`
		PostalCode         string `yaml:"postal_code"`
		FixedTransportRate string `yaml:"fixed_transport_rate"`
		RatePerKm          string `yaml:"rate_per_km"`
	} `yaml:"locations"`
	Countries []struct {
		Code                   string `yaml:"code"`
		Name                   string `yaml:"name"`
		ECGCRate               string `yaml:"ecgc_rate"`
		SeaFreightPerContainer string `yaml:"sea_freight_per_container"`
		DestinationPorts       []struct {
			Code string `yaml:"code"`
			Name string `yaml:"name"`
		} `yaml:"destination_ports"`
		FreightLanes []struct {
			ContainerCode    string `yaml:"container_code"`
			RatePerContainer string `yaml:"rate_per_container"`
			Currency         string `yaml:"currency"`
		} `yaml:"freight_lanes"`
	} `yaml:"countries"`
	Certifications []struct {
		Name      string `yaml:"name"`
		CostType  string `yaml:"cost_type"`
		FlatCost  string `yaml:"flat_cost"`
		Percent   string `yaml:"percent"`
		Mandatory bool   `yaml:"mandatory"`
	} `yaml:"certifications"`
}

var settingsColumns = []string{
	"exchange_rate", "bank_margin", "marine_insurance_rate", "ecgc_rate", "bank_charge_rate",
	"profit_rate", "gst_percent", "local_freight_per_km", "minimum_local_freight",
	"local_freight_per_container", "container_stuffing_rate", "export_packing_rate",
}

func loadCatalog() (catalog, error) {
	var c catalog
	if err := yaml.Unmarshal(catalogYAML, &c); err != nil {
		return catalog{}, fmt.Errorf("parse seed catalog: %w", err)
	}
	return c, nil
}

// Run executes the startup seed in an idempotent way.
func Run(ctx context.Context, db *sql.DB, cfg Config) (Stats, error) {
	c, err := loadCatalog()
	if err != nil {
		return Stats{}, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return Stats{}, fmt.Errorf("begin seed transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	s := &seeder{ctx: ctx, tx: tx}
	steps := []func() error{
		func() error { return s.admin(cfg.AdminEmail, cfg.AdminPassword) },
		func() error { return s.settings(c.Settings) },
		func() error { return s.containerTypes(c) },
		func() error { return s.ports(c) },
		func() error { return s.locations(c) },
		func() error { return s.countries(c) },
		func() error { return s.certifications(c) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return Stats{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return Stats{}, fmt.Errorf("commit seed transaction: %w", err)
	}
	return s.stats, nil
}

type seeder struct {
	ctx   context.Context
	tx    *sql.Tx
	stats Stats
}

func (s *seeder) exists(query string, args ...any) (bool, error) {
	var ok bool
	err := s.tx.QueryRowContext(s.ctx, query, args...).Scan(&ok)
	return ok, err
}

func (s *seeder) insert(what, query string, args ...any) (int64, error) {
	res, err := s.tx.ExecContext(s.ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("insert %s: %w", what, err)
	}
	s.stats.Inserts++
	return res.LastInsertId()
}

func (s *seeder) admin(email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil
	}

	var current string
	err := s.tx.QueryRowContext(s.ctx, `SELECT password_hash FROM users WHERE email = ?`, email).Scan(&current)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return fmt.Errorf("check admin user existence: %w", err)
	case bcrypt.CompareHashAndPassword([]byte(current), []byte(password)) == nil:
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	if current == "" {
		_, err = s.insert("admin user", `INSERT INTO users (email, password_hash) VALUES (?, ?)`, email, string(hash))
		return err
	}
	if _, err := s.tx.ExecContext(s.ctx, `UPDATE users SET password_hash = ? WHERE email = ?`, string(hash), email); err != nil {
		return fmt.Errorf("update admin password: %w", err)
	}
	s.stats.Updates++
	return nil
}

func (s *seeder) settings(values map[string]string) error {
	ok, err := s.exists(`SELECT EXISTS(SELECT 1 FROM settings WHERE id = 1)`)
	if err != nil {
		return fmt.Errorf("check settings existence: %w", err)
	}
	if ok {
		return nil
	}

	args := make([]any, 0, len(settingsColumns))
	for _, col := range settingsColumns {
		v, err := amount(values[col])
		if err != nil {
			return fmt.Errorf("settings %s: %w", col, err)
		}
		args = append(args, v)
	}
	query := fmt.Sprintf(`INSERT INTO settings (id, %s) VALUES (1%s)`,
		strings.Join(settingsColumns, ", "), strings.Repeat(", ?", len(settingsColumns)))
	_, err = s.insert("settings singleton", query, args...)
	return err
}

func (s *seeder) containerTypes(c catalog) error {
	for _, ct := range c.ContainerTypes {
		ok, err := s.exists(`SELECT EXISTS(SELECT 1 FROM container_types WHERE code = ?)`, ct.Code)
		if err != nil {
			return fmt.Errorf("check container type %s: %w", ct.Code, err)
		}
		if ok {
			continue
		}
		if _, err := s.insert("container type "+ct.Code, `
			INSERT INTO container_types (code, length_cm, width_cm, height_cm, max_weight_kg)
			VALUES (?, ?, ?, ?, ?)
		`, ct.Code, ct.LengthCm, ct.WidthCm, ct.HeightCm, ct.MaxWeightKg); err != nil {
			return err
		}
	}
	return nil
}

func (s *seeder) ports(c catalog) error {
	for _, p := range c.Ports {
		ok, err := s.exists(`SELECT EXISTS(SELECT 1 FROM ports WHERE code = ?)`, p.Code)
		if err != nil {
			return fmt.Errorf("check port %s: %w", p.Code, err)
		}
		if ok {
			continue
		}
		args, err := amounts(p.HandlingPerContainer, p.CHACharge, p.CustomsClearance)
		if err != nil {
			return fmt.Errorf("port %s: %w", p.Code, err)
		}
		if _, err := s.insert("port "+p.Code, `
			INSERT INTO ports (code, name, postal_code, handling_per_container, cha_charge, customs_clearance)
			VALUES (?, ?, ?, ?, ?, ?)
		`, append([]any{p.Code, p.Name, p.PostalCode}, zeroIfNil(args)...)...); err != nil {
			return err
		}
	}
	return nil
}

func (s *seeder) locations(c catalog) error {
	for _, l := range c.Locations {
		ok, err := s.exists(`SELECT EXISTS(SELECT 1 FROM locations WHERE name = ?)`, l.Name)
		if err != nil {
			return fmt.Errorf("check location %s: %w", l.Name, err)
		}
		if ok {
			continue
		}
		args, err := amounts(l.FixedTransportRate, l.RatePerKm)
		if err != nil {
			return fmt.Errorf("location %s: %w", l.Name, err)
		}
		if _, err := s.insert("location "+l.Name, `
			INSERT INTO locations (name, postal_code, fixed_transport_rate, rate_per_km)
			VALUES (?, ?, ?, ?)
		`, append([]any{l.Name, l.PostalCode}, args...)...); err != nil {
			return err
		}
	}
	return nil
}

func (s *seeder) countries(c catalog) error {
	for _, country := range c.Countries {
		var id int64
		err := s.tx.QueryRowContext(s.ctx, `SELECT id FROM countries WHERE code = ?`, country.Code).Scan(&id)
		if errors.Is(err, sql.ErrNoRows) {
			args, aerr := amounts(country.ECGCRate, country.SeaFreightPerContainer)
			if aerr != nil {
				return fmt.Errorf("country %s: %w", country.Code, aerr)
			}
			id, err = s.insert("country "+country.Code, `
				INSERT INTO countries (code, name, ecgc_rate, sea_freight_per_container)
				VALUES (?, ?, ?, ?)
			`, append([]any{country.Code, country.Name}, args...)...)
		}
		if err != nil {
			return fmt.Errorf("seed country %s: %w", country.Code, err)
		}

		for _, dp := range country.DestinationPorts {
			ok, err := s.exists(`SELECT EXISTS(SELECT 1 FROM destination_ports WHERE country_id = ? AND code = ?)`, id, dp.Code)
			if err != nil {
				return fmt.Errorf("check destination port %s: %w", dp.Code, err)
			}
			if ok {
				continue
			}
			if _, err := s.insert("destination port "+dp.Code, `
				INSERT INTO destination_ports (country_id, code, name) VALUES (?, ?, ?)
			`, id, dp.Code, dp.Name); err != nil {
				return err
			}
		}

		for _, lane := range country.FreightLanes {
			ok, err := s.exists(`SELECT EXISTS(SELECT 1 FROM freight_lanes WHERE country_id = ? AND container_code = ?)`, id, lane.ContainerCode)
			if err != nil {
				return fmt.Errorf("check freight lane %s/%s: %w", country.Code, lane.ContainerCode, err)
			}
			if ok {
				continue
			}
			rate, err := amount(lane.RatePerContainer)
			if err != nil || rate == nil {
				return fmt.Errorf("freight lane %s/%s: rate %q", country.Code, lane.ContainerCode, lane.RatePerContainer)
			}
			currency := lane.Currency
			if currency == "" {
				currency = "USD"
			}
			if _, err := s.insert("freight lane "+country.Code+"/"+lane.ContainerCode, `
				INSERT INTO freight_lanes (country_id, container_code, rate_per_container, currency) VALUES (?, ?, ?, ?)
			`, id, lane.ContainerCode, rate, currency); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *seeder) certifications(c catalog) error {
	for _, cert := range c.Certifications {
		ok, err := s.exists(`SELECT EXISTS(SELECT 1 FROM certifications WHERE name = ?)`, cert.Name)
		if err != nil {
			return fmt.Errorf("check certification %s: %w", cert.Name, err)
		}
		if ok {
			continue
		}
		costType := cert.CostType
		if costType == "" {
			costType = "flat"
		}
		args, err := amounts(cert.FlatCost, cert.Percent)
		if err != nil {
			return fmt.Errorf("certification %s: %w", cert.Name, err)
		}
		if _, err := s.insert("certification "+cert.Name, `
			INSERT INTO certifications (name, cost_type, flat_cost, percent, mandatory)
			VALUES (?, ?, ?, ?, ?)
		`, append(append([]any{cert.Name, costType}, zeroIfNil(args)...), cert.Mandatory)...); err != nil {
			return err
		}
	}
	return nil
}

// amount validates a decimal catalog value. Blank values are stored as NULL.
func amount(raw string) (any, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", raw, err)
	}
	return d.String(), nil
}

func amounts(raws ...string) ([]any, error) {
	out := make([]any, 0, len(raws))
	for _, raw := range raws {
		v, err := amount(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// zeroIfNil fills NOT NULL amount columns.
func zeroIfNil(args []any) []any {
	for i, v := range args {
		if v == nil {
			args[i] = "0"
		}
	}
	return args
}
