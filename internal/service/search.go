package service

import (
	"context"
	"strings"

	"kapebot/internal/domain"
	"kapebot/internal/repository"
)

// Match filters listings against the criteria. The result is a stable
// subsequence of the input: a listing is kept iff every present field
// of the criteria is satisfied. Absent fields impose no constraint.
func Match(listings []domain.Property, c domain.Criteria) []domain.Property {
	var out []domain.Property
	for _, p := range listings {
		if c.Operation != "" && p.Operation != c.Operation {
			continue
		}
		if c.PropertyKind != "" && p.PropertyKind != c.PropertyKind {
			continue
		}
		if c.MinBedrooms != nil && p.Bedrooms < *c.MinBedrooms {
			continue
		}
		if c.MaxPriceUSD != nil && p.PriceUSD > *c.MaxPriceUSD {
			continue
		}
		if c.Neighborhood != "" && !containsFold(p.Neighborhood, c.Neighborhood) {
			continue
		}
		if c.City != "" && !containsFold(p.City, c.City) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

// PropertyService answers searches against the listing catalog
type PropertyService struct {
	repo repository.PropertyRepository
}

// NewPropertyService creates a new property service
func NewPropertyService(repo repository.PropertyRepository) *PropertyService {
	return &PropertyService{repo: repo}
}

// All returns the full catalog
func (s *PropertyService) All(ctx context.Context) ([]domain.Property, error) {
	return s.repo.All(ctx)
}

// Search returns catalog listings matching the criteria, in catalog order
func (s *PropertyService) Search(ctx context.Context, c domain.Criteria) ([]domain.Property, error) {
	listings, err := s.repo.All(ctx)
	if err != nil {
		return nil, err
	}
	return Match(listings, c), nil
}
