package testutil

import (
	"go.uber.org/zap"

	"kapebot/internal/domain"
)

// NewTestLogger creates a no-op logger for tests
func NewTestLogger() *zap.Logger {
	return zap.NewNop()
}

// TestProperties returns a small fixed catalog for tests
func TestProperties() []domain.Property {
	return []domain.Property{
		{
			ID:           "1",
			Title:        "Dúplex moderno en Villa Morra",
			PriceUSD:     750,
			Operation:    domain.OperationRent,
			PropertyKind: domain.KindDuplex,
			Neighborhood: "Villa Morra",
			City:         "Asunción",
			Bedrooms:     3,
			Bathrooms:    2,
			AreaM2:       180,
		},
		{
			ID:           "2",
			Title:        "Departamento céntrico",
			PriceUSD:     450,
			Operation:    domain.OperationRent,
			PropertyKind: domain.KindApartment,
			Neighborhood: "Centro",
			City:         "Asunción",
			Bedrooms:     2,
			Bathrooms:    1,
			AreaM2:       85,
		},
		{
			ID:           "3",
			Title:        "Casa familiar en Luque",
			PriceUSD:     950,
			Operation:    domain.OperationRent,
			PropertyKind: domain.KindHouse,
			Neighborhood: "Residencial",
			City:         "Luque",
			Bedrooms:     4,
			Bathrooms:    3,
			AreaM2:       320,
		},
		{
			ID:           "4",
			Title:        "Terreno en San Bernardino",
			PriceUSD:     85000,
			Operation:    domain.OperationSale,
			PropertyKind: domain.KindLand,
			Neighborhood: "San Bernardino",
			City:         "San Bernardino",
			Bedrooms:     0,
			Bathrooms:    0,
			AreaM2:       1000,
		},
	}
}
