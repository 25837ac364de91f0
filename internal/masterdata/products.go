package masterdata

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/Simplici0/exportquote/internal/pricing"
)

// ListProducts returns every product with its location prices and container defaults.
func (s *Store) ListProducts(ctx context.Context) ([]pricing.Product, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, hsn_code, unit, base_price_usd
		FROM products
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	products := make([]pricing.Product, 0)
	for rows.Next() {
		var p pricing.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.HSNCode, &p.Unit, &p.BasePriceUSD); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}

	prices, defaults, err := s.productDetails(ctx, 0)
	if err != nil {
		return nil, err
	}
	for i := range products {
		products[i].LocationPrices = prices[products[i].ID]
		products[i].BoxesPerContainer = defaults[products[i].ID]
	}
	return products, nil
}

func (s *Store) GetProduct(ctx context.Context, id int64) (pricing.Product, error) {
	var p pricing.Product
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, hsn_code, unit, base_price_usd FROM products WHERE id = ?
	`, id).Scan(&p.ID, &p.Name, &p.HSNCode, &p.Unit, &p.BasePriceUSD)
	if err != nil {
		return pricing.Product{}, notFound("product", id, err)
	}

	prices, defaults, err := s.productDetails(ctx, id)
	if err != nil {
		return pricing.Product{}, err
	}
	p.LocationPrices = prices[id]
	p.BoxesPerContainer = defaults[id]
	return p, nil
}

// productDetails loads overrides for one product, or all products when id is zero.
func (s *Store) productDetails(ctx context.Context, id int64) (map[int64]map[int64]decimal.Decimal, map[int64]map[string]int, error) {
	type priceRow struct {
		productID, locationID int64
		price                 decimal.Decimal
	}
	type defaultRow struct {
		productID int64
		code      string
		boxes     int
	}

	var priceRows []priceRow
	rows, err := s.db.QueryContext(ctx, `
		SELECT product_id, location_id, price_usd
		FROM product_location_prices
		WHERE (? = 0 OR product_id = ?)
	`, id, id)
	if err != nil {
		return nil, nil, fmt.Errorf("query product location prices: %w", err)
	}
	for rows.Next() {
		var r priceRow
		if err := rows.Scan(&r.productID, &r.locationID, &r.price); err != nil {
			rows.Close()
			return nil, nil, fmt.Errorf("scan product location price: %w", err)
		}
		priceRows = append(priceRows, r)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterate product location prices: %w", err)
	}

	var defaultRows []defaultRow
	rows, err = s.db.QueryContext(ctx, `
		SELECT product_id, container_code, boxes_per_container
		FROM product_container_defaults
		WHERE (? = 0 OR product_id = ?)
	`, id, id)
	if err != nil {
		return nil, nil, fmt.Errorf("query product container defaults: %w", err)
	}
	for rows.Next() {
		var r defaultRow
		if err := rows.Scan(&r.productID, &r.code, &r.boxes); err != nil {
			rows.Close()
			return nil, nil, fmt.Errorf("scan product container default: %w", err)
		}
		defaultRows = append(defaultRows, r)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterate product container defaults: %w", err)
	}

	prices := lo.MapValues(lo.GroupBy(priceRows, func(r priceRow) int64 { return r.productID }),
		func(rs []priceRow, _ int64) map[int64]decimal.Decimal {
			return lo.SliceToMap(rs, func(r priceRow) (int64, decimal.Decimal) { return r.locationID, r.price })
		})
	defaults := lo.MapValues(lo.GroupBy(defaultRows, func(r defaultRow) int64 { return r.productID }),
		func(rs []defaultRow, _ int64) map[string]int {
			return lo.SliceToMap(rs, func(r defaultRow) (string, int) { return r.code, r.boxes })
		})
	return prices, defaults, nil
}

// SaveProduct inserts when ID is zero, otherwise updates. Location prices and container
// defaults are replaced by the ones on p.
func (s *Store) SaveProduct(ctx context.Context, p pricing.Product) (pricing.Product, error) {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return p, invalid("product name is required")
	}
	if p.BasePriceUSD.IsNegative() {
		return p, invalid("product %s has a negative base price", p.Name)
	}
	if p.Unit == "" {
		p.Unit = "unit"
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return p, fmt.Errorf("begin product transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if p.ID == 0 {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO products (name, hsn_code, unit, base_price_usd) VALUES (?, ?, ?, ?)
		`, p.Name, p.HSNCode, p.Unit, p.BasePriceUSD)
		if err != nil {
			return p, fmt.Errorf("insert product: %w", err)
		}
		if p.ID, err = res.LastInsertId(); err != nil {
			return p, fmt.Errorf("read product id: %w", err)
		}
	} else {
		res, err := tx.ExecContext(ctx, `
			UPDATE products
			SET name = ?, hsn_code = ?, unit = ?, base_price_usd = ?, updated_at = CURRENT_TIMESTAMP
			WHERE id = ?
		`, p.Name, p.HSNCode, p.Unit, p.BasePriceUSD, p.ID)
		if err != nil {
			return p, fmt.Errorf("update product: %w", err)
		}
		if err := checkAffected(res, "product", p.ID); err != nil {
			return p, err
		}
	}

	if err := replaceProductDetails(ctx, tx, p); err != nil {
		return p, err
	}
	if err := tx.Commit(); err != nil {
		return p, fmt.Errorf("commit product: %w", err)
	}
	return p, nil
}

func replaceProductDetails(ctx context.Context, tx *sql.Tx, p pricing.Product) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM product_location_prices WHERE product_id = ?`, p.ID); err != nil {
		return fmt.Errorf("clear product location prices: %w", err)
	}
	for locationID, price := range p.LocationPrices {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO product_location_prices (product_id, location_id, price_usd) VALUES (?, ?, ?)
		`, p.ID, locationID, price); err != nil {
			return fmt.Errorf("insert product location price: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM product_container_defaults WHERE product_id = ?`, p.ID); err != nil {
		return fmt.Errorf("clear product container defaults: %w", err)
	}
	for code, boxes := range p.BoxesPerContainer {
		if boxes <= 0 {
			continue
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO product_container_defaults (product_id, container_code, boxes_per_container) VALUES (?, ?, ?)
		`, p.ID, strings.ToUpper(code), boxes); err != nil {
			return fmt.Errorf("insert product container default: %w", err)
		}
	}
	return nil
}
