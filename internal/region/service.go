package region

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/arsipak/admin-bff-go/internal/domain"
	"github.com/arsipak/admin-bff-go/internal/infra/cache"
	"github.com/arsipak/admin-bff-go/internal/infra/observability"
	"github.com/arsipak/admin-bff-go/internal/port"
)

// Service serves region data with a TTL cache in front of the upstream
// API. Concurrent fetches of the same level are coalesced with
// singleflight so a burst of pickers opening the same province triggers
// one upstream exhaustion, not dozens.
//
// The hierarchy is the same for every user, so cache keys ignore the
// caller's token.
type Service struct {
	api     port.RegionAPI
	levels  *cache.InMemory[[]domain.Region]
	paths   *cache.InMemory[domain.RegionPath]
	group   singleflight.Group
	logger  *zap.Logger
	metrics *observability.Metrics
}

// NewService wires the region service.
func NewService(api port.RegionAPI, levels *cache.InMemory[[]domain.Region], paths *cache.InMemory[domain.RegionPath], logger *zap.Logger, metrics *observability.Metrics) *Service {
	return &Service{
		api:     api,
		levels:  levels,
		paths:   paths,
		logger:  logger,
		metrics: metrics,
	}
}

// Children returns every region under (level, parentCode), fetched to
// exhaustion and cached.
func (s *Service) Children(ctx context.Context, token string, level int, parentCode string) ([]domain.Region, error) {
	if level < domain.LevelProvince || level > domain.LevelVillage {
		return nil, &domain.ErrValidation{Field: "level", Message: "level must be between 1 and 4"}
	}
	if level > domain.LevelProvince && parentCode == "" {
		return nil, &domain.ErrValidation{Field: "parent_code", Message: "parent_code is required below level 1"}
	}

	key := fmt.Sprintf("%d:%s", level, parentCode)
	if regions, ok := s.levels.Get(key); ok {
		s.metrics.IncrCacheHit("regions")
		return regions, nil
	}
	s.metrics.IncrCacheMiss("regions")

	result, err, _ := s.group.Do(key, func() (any, error) {
		regions, err := s.api.FetchRegionLevel(ctx, token, level, parentCode)
		if err != nil {
			return nil, err
		}
		s.levels.Set(key, regions)
		return regions, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Region), nil
}

// Path resolves the full province→village chain for a village id.
func (s *Service) Path(ctx context.Context, token string, id int64) (domain.RegionPath, error) {
	key := strconv.FormatInt(id, 10)
	if path, ok := s.paths.Get(key); ok {
		s.metrics.IncrCacheHit("regions")
		return path, nil
	}
	s.metrics.IncrCacheMiss("regions")

	result, err, _ := s.group.Do("path:"+key, func() (any, error) {
		path, err := s.api.ResolveRegionPath(ctx, token, id)
		if err != nil {
			return nil, err
		}
		s.paths.Set(key, path)
		return path, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(domain.RegionPath), nil
}

// Fetcher adapts the service into the picker's FetchFunc, binding the
// caller's token.
func (s *Service) Fetcher(token string) FetchFunc {
	return func(ctx context.Context, level int, parentCode string) ([]domain.Region, error) {
		return s.Children(ctx, token, level, parentCode)
	}
}
