package location

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/jwalitptl/health-navigator/internal/model"
	"github.com/jwalitptl/health-navigator/internal/repository"
	apperrors "github.com/jwalitptl/health-navigator/pkg/errors"
)

const listKey = "locations:all"

// Service serves the seeded location reference data. Locations never change
// at runtime, so reads are cached for the configured TTL.
type Service struct {
	repo  repository.LocationRepository
	cache *cache.Cache
}

func NewService(repo repository.LocationRepository, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Service{
		repo:  repo,
		cache: cache.New(ttl, 2*ttl),
	}
}

// List returns all locations ordered by name.
func (s *Service) List(ctx context.Context) ([]*model.Location, error) {
	if cached, ok := s.cache.Get(listKey); ok {
		return cached.([]*model.Location), nil
	}

	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list locations: %w", err)
	}
	s.cache.SetDefault(listKey, list)
	for _, l := range list {
		s.cache.SetDefault(l.ID.String(), l)
	}
	return list, nil
}

func (s *Service) Get(ctx context.Context, id string) (*model.Location, error) {
	locationID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperrors.BadRequest("invalid location id", err)
	}
	if cached, ok := s.cache.Get(locationID.String()); ok {
		return cached.(*model.Location), nil
	}

	l, err := s.repo.GetByID(ctx, locationID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("location", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get location: %w", err)
	}
	s.cache.SetDefault(locationID.String(), l)
	return l, nil
}
