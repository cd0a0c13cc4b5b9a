package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"kapebot/internal/domain"
	"kapebot/internal/testutil"
)

func TestMatch(t *testing.T) {
	listings := testutil.TestProperties()

	tests := []struct {
		name        string
		criteria    domain.Criteria
		expectedIDs []string
	}{
		{
			name:        "empty criteria matches everything",
			criteria:    domain.Criteria{},
			expectedIDs: []string{"1", "2", "3", "4"},
		},
		{
			name:        "operation filter",
			criteria:    domain.Criteria{Operation: domain.OperationSale},
			expectedIDs: []string{"4"},
		},
		{
			name:        "property kind filter",
			criteria:    domain.Criteria{PropertyKind: domain.KindApartment},
			expectedIDs: []string{"2"},
		},
		{
			name:        "min bedrooms",
			criteria:    domain.Criteria{MinBedrooms: domain.IntPtr(3)},
			expectedIDs: []string{"1", "3"},
		},
		{
			name:        "max price",
			criteria:    domain.Criteria{MaxPriceUSD: domain.FloatPtr(500)},
			expectedIDs: []string{"2"},
		},
		{
			name:        "zero max price excludes everything",
			criteria:    domain.Criteria{MaxPriceUSD: domain.FloatPtr(0)},
			expectedIDs: nil,
		},
		{
			name:        "neighborhood substring is case-insensitive",
			criteria:    domain.Criteria{Neighborhood: "villa morra"},
			expectedIDs: []string{"1"},
		},
		{
			name:        "city substring",
			criteria:    domain.Criteria{City: "luque"},
			expectedIDs: []string{"3"},
		},
		{
			name: "all fields combined",
			criteria: domain.Criteria{
				Operation:   domain.OperationRent,
				MinBedrooms: domain.IntPtr(2),
				MaxPriceUSD: domain.FloatPtr(800),
				City:        "asunción",
			},
			expectedIDs: []string{"1", "2"},
		},
		{
			name:        "no match",
			criteria:    domain.Criteria{Neighborhood: "Sajonia"},
			expectedIDs: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Match(listings, tt.criteria)

			var ids []string
			for _, p := range got {
				ids = append(ids, p.ID)
			}
			assert.Equal(t, tt.expectedIDs, ids)
		})
	}
}

func TestMatch_PreservesOrder(t *testing.T) {
	listings := testutil.TestProperties()

	got := Match(listings, domain.Criteria{Operation: domain.OperationRent})

	prev := -1
	for _, p := range got {
		pos := indexOf(listings, p.ID)
		assert.Greater(t, pos, prev, "result order must follow source order")
		prev = pos
	}
}

func TestMatch_Composable(t *testing.T) {
	// filtering twice on disjoint fields equals filtering once on both
	listings := testutil.TestProperties()

	byOp := domain.Criteria{Operation: domain.OperationRent}
	byPrice := domain.Criteria{MaxPriceUSD: domain.FloatPtr(800)}
	combined := domain.Criteria{
		Operation:   domain.OperationRent,
		MaxPriceUSD: domain.FloatPtr(800),
	}

	assert.Equal(t, Match(listings, combined), Match(Match(listings, byOp), byPrice))
}

func TestPropertyService_Search(t *testing.T) {
	ctx := context.Background()

	t.Run("filters catalog", func(t *testing.T) {
		repo := new(testutil.MockPropertyRepository)
		repo.On("All", ctx).Return(testutil.TestProperties(), nil)

		svc := NewPropertyService(repo)
		got, err := svc.Search(ctx, domain.Criteria{City: "Luque"})

		assert.NoError(t, err)
		assert.Len(t, got, 1)
		assert.Equal(t, "3", got[0].ID)
		repo.AssertExpectations(t)
	})

	t.Run("repository error propagates", func(t *testing.T) {
		repo := new(testutil.MockPropertyRepository)
		repo.On("All", ctx).Return(nil, fmt.Errorf("db down"))

		svc := NewPropertyService(repo)
		_, err := svc.Search(ctx, domain.Criteria{})

		assert.Error(t, err)
	})
}

func indexOf(listings []domain.Property, id string) int {
	for i, p := range listings {
		if p.ID == id {
			return i
		}
	}
	return -1
}
