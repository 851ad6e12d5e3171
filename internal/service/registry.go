package service

import (
	"context"
	"fmt"
	"log/slog"

	"alertline/internal/domain"
	"alertline/pkg/e"
	"alertline/pkg/geo"
)

// FacilityRegistry is the read-only view the selector iterates. Lists must
// come back in a stable order (storage orders by id ascending) so that
// distance ties always resolve to the same facility.
type FacilityRegistry interface {
	All(ctx context.Context, kind domain.FacilityKind) ([]*domain.Facility, error)
}

// FacilityCache is the optional hot copy in front of the registry.
type FacilityCache interface {
	Get(ctx context.Context, kind domain.FacilityKind) ([]*domain.Facility, error)
	Set(ctx context.Context, kind domain.FacilityKind, facilities []*domain.Facility) error
	Invalidate(ctx context.Context, kind domain.FacilityKind) error
}

// CachedRegistry reads through the cache and falls back to storage. Cache
// errors are logged and ignored; storage stays the source of truth.
type CachedRegistry struct {
	repo   FacilityRegistry
	cache  FacilityCache
	logger *slog.Logger
}

func NewCachedRegistry(repo FacilityRegistry, cache FacilityCache, logger *slog.Logger) *CachedRegistry {
	return &CachedRegistry{repo: repo, cache: cache, logger: logger}
}

func (r *CachedRegistry) All(ctx context.Context, kind domain.FacilityKind) ([]*domain.Facility, error) {
	if r.cache != nil {
		cached, err := r.cache.Get(ctx, kind)
		if err != nil {
			r.logger.Warn("facility cache get failed", slog.Any("error", err))
		} else if len(cached) > 0 {
			return cached, nil
		}
	}

	facilities, err := r.repo.All(ctx, kind)
	if err != nil {
		return nil, err
	}

	if r.cache != nil && len(facilities) > 0 {
		if err := r.cache.Set(ctx, kind, facilities); err != nil {
			r.logger.Warn("facility cache set failed", slog.Any("error", err))
		}
	}

	return facilities, nil
}

// Nearest returns the facility of the given kind closest to origin by
// great-circle distance. Ties keep the first facility in registry order,
// i.e. the lowest id. An empty registry is a precondition failure, not a
// degenerate distance computation.
func Nearest(ctx context.Context, registry FacilityRegistry, origin geo.Coordinate, kind domain.FacilityKind) (*domain.Facility, error) {
	const op = "service.Nearest"

	facilities, err := registry.All(ctx, kind)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	if len(facilities) == 0 {
		return nil, fmt.Errorf("%s: %s: %w", op, kind, e.ErrNoFacilityAvailable)
	}

	best := facilities[0]
	bestDist := geo.Distance(origin, best.Coordinate())
	for _, f := range facilities[1:] {
		if d := geo.Distance(origin, f.Coordinate()); d < bestDist {
			best = f
			bestDist = d
		}
	}

	return best, nil
}
