package memory

import (
	"context"

	"kapebot/internal/domain"
)

// PropertyRepo serves a fixed in-memory catalog. Used when no database
// is configured and as the seed fixture in tests.
type PropertyRepo struct {
	properties []domain.Property
}

// NewPropertyRepo creates a repository over the given catalog
func NewPropertyRepo(properties []domain.Property) *PropertyRepo {
	return &PropertyRepo{properties: properties}
}

// NewSeededPropertyRepo creates a repository with the demo catalog
func NewSeededPropertyRepo() *PropertyRepo {
	return NewPropertyRepo(SeedProperties())
}

// All returns the catalog in insertion order
func (r *PropertyRepo) All(_ context.Context) ([]domain.Property, error) {
	out := make([]domain.Property, len(r.properties))
	copy(out, r.properties)
	return out, nil
}

// SeedProperties returns the built-in demo catalog
func SeedProperties() []domain.Property {
	return []domain.Property{
		{
			ID:           "1",
			Title:        "Dúplex moderno en Villa Morra",
			Description:  "Hermoso dúplex de 3 dormitorios en zona exclusiva",
			PriceUSD:     750,
			Operation:    domain.OperationRent,
			PropertyKind: domain.KindDuplex,
			Neighborhood: "Villa Morra",
			City:         "Asunción",
			Bedrooms:     3,
			Bathrooms:    2,
			AreaM2:       180,
			Amenities:    []string{"Jardín privado", "Cochera", "Seguridad 24h"},
			Contact:      domain.Contact{Name: "María González", Phone: "+595 981 234 567", WhatsApp: "+595 981 234 567"},
		},
		{
			ID:           "2",
			Title:        "Departamento céntrico",
			Description:  "Moderno departamento de 2 dormitorios en el centro",
			PriceUSD:     450,
			Operation:    domain.OperationRent,
			PropertyKind: domain.KindApartment,
			Neighborhood: "Centro",
			City:         "Asunción",
			Bedrooms:     2,
			Bathrooms:    1,
			AreaM2:       85,
			Amenities:    []string{"Ascensor", "Balcón"},
			Contact:      domain.Contact{Name: "Carlos Rodríguez", Phone: "+595 982 345 678", WhatsApp: "+595 982 345 678"},
		},
		{
			ID:           "3",
			Title:        "Casa familiar en Luque",
			Description:  "Espaciosa casa de 4 dormitorios con piscina",
			PriceUSD:     950,
			Operation:    domain.OperationRent,
			PropertyKind: domain.KindHouse,
			Neighborhood: "Residencial",
			City:         "Luque",
			Bedrooms:     4,
			Bathrooms:    3,
			AreaM2:       320,
			Amenities:    []string{"Piscina", "Patio amplio", "Cochera doble"},
			Contact:      domain.Contact{Name: "Ana Martínez", Phone: "+595 983 456 789", WhatsApp: "+595 983 456 789"},
		},
		{
			ID:           "4",
			Title:        "Oficina en World Trade Center",
			Description:  "Moderna oficina amueblada con vista panorámica",
			PriceUSD:     600,
			Operation:    domain.OperationRent,
			PropertyKind: domain.KindOffice,
			Neighborhood: "World Trade Center",
			City:         "Asunción",
			Bedrooms:     0,
			Bathrooms:    1,
			AreaM2:       50,
			Amenities:    []string{"Amueblado", "Sala de reuniones"},
			Contact:      domain.Contact{Name: "Pedro Benítez", Phone: "+595 984 567 890", WhatsApp: "+595 984 567 890"},
		},
		{
			ID:           "5",
			Title:        "Terreno en San Bernardino",
			Description:  "Excelente terreno de 1000m2 cerca del lago",
			PriceUSD:     85000,
			Operation:    domain.OperationSale,
			PropertyKind: domain.KindLand,
			Neighborhood: "San Bernardino",
			City:         "San Bernardino",
			Bedrooms:     0,
			Bathrooms:    0,
			AreaM2:       1000,
			Amenities:    []string{"Escritura", "Acceso pavimentado"},
			Contact:      domain.Contact{Name: "Luisa Fernández", Phone: "+595 985 678 901", WhatsApp: "+595 985 678 901"},
		},
	}
}
