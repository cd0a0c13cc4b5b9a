package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"kapebot/internal/domain"
)

// PropertyRepo implements repository.PropertyRepository over PostgreSQL.
// The bot only reads listings; ingestion happens elsewhere.
type PropertyRepo struct {
	db *sql.DB
}

// NewPropertyRepo creates a new property repository
func NewPropertyRepo(db *sql.DB) *PropertyRepo {
	return &PropertyRepo{db: db}
}

// All returns every listing ordered by id
func (r *PropertyRepo) All(ctx context.Context) ([]domain.Property, error) {
	query := `
		SELECT id, title, description, price_usd, operation, property_kind,
			neighborhood, city, bedrooms, bathrooms, area_m2, amenities,
			contact_name, contact_phone, contact_whatsapp
		FROM properties
		ORDER BY id
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query properties: %w", err)
	}
	defer rows.Close()

	var properties []domain.Property
	for rows.Next() {
		var p domain.Property
		if err := rows.Scan(
			&p.ID, &p.Title, &p.Description, &p.PriceUSD, &p.Operation, &p.PropertyKind,
			&p.Neighborhood, &p.City, &p.Bedrooms, &p.Bathrooms, &p.AreaM2,
			pq.Array(&p.Amenities),
			&p.Contact.Name, &p.Contact.Phone, &p.Contact.WhatsApp,
		); err != nil {
			return nil, fmt.Errorf("scan property: %w", err)
		}
		properties = append(properties, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate properties: %w", err)
	}

	return properties, nil
}
