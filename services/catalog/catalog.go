package catalog

import (
	"context"
	"encoding/json"
	"time"

	"bookly/database"
	"bookly/database/repository"
	"bookly/models"
	"bookly/utils"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// CatalogService resolves services, specialists and users for the booking engine.
type CatalogService interface {
	GetActiveService(ctx context.Context, serviceID string) (*models.Service, error)
	GetUser(ctx context.Context, userID string) (*models.User, error)
	GetSpecialist(ctx context.Context, specialistID string) (*models.Specialist, error)
	GetSpecialistByUserID(ctx context.Context, userID string) (*models.Specialist, error)
}

// DefaultCatalogService reads through an optional Redis cache. Users are
// never cached because their balances must be current.
type DefaultCatalogService struct {
	Repo   repository.CatalogRepository
	Users  repository.UserRepository
	Cache  *redis.Client
	TTL    time.Duration
	Logger *zap.Logger
}

func NewCatalogService(repo repository.CatalogRepository, users repository.UserRepository, cache *redis.Client, logger *zap.Logger) *DefaultCatalogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DefaultCatalogService{
		Repo:   repo,
		Users:  users,
		Cache:  cache,
		TTL:    utils.CatalogCacheTTL,
		Logger: logger,
	}
}

// GetActiveService returns database.ErrNotFound for missing, inactive or deleted services.
func (s *DefaultCatalogService) GetActiveService(ctx context.Context, serviceID string) (*models.Service, error) {
	var svc models.Service
	err := s.readThrough(ctx, utils.ServiceCachePrefix+serviceID, &svc, func() (any, error) {
		return s.Repo.GetService(ctx, serviceID)
	})
	if err != nil {
		return nil, err
	}
	if !svc.Bookable() {
		return nil, database.ErrNotFound
	}
	return &svc, nil
}

func (s *DefaultCatalogService) GetUser(ctx context.Context, userID string) (*models.User, error) {
	return s.Users.GetByID(ctx, userID)
}

func (s *DefaultCatalogService) GetSpecialist(ctx context.Context, specialistID string) (*models.Specialist, error) {
	var sp models.Specialist
	err := s.readThrough(ctx, utils.SpecialistCachePrefix+specialistID, &sp, func() (any, error) {
		return s.Repo.GetSpecialist(ctx, specialistID)
	})
	if err != nil {
		return nil, err
	}
	return &sp, nil
}

func (s *DefaultCatalogService) GetSpecialistByUserID(ctx context.Context, userID string) (*models.Specialist, error) {
	var sp models.Specialist
	err := s.readThrough(ctx, utils.SpecialistCachePrefix+"user:"+userID, &sp, func() (any, error) {
		return s.Repo.GetSpecialistByUserID(ctx, userID)
	})
	if err != nil {
		return nil, err
	}
	return &sp, nil
}

// readThrough decodes key into out, loading and caching it on a miss.
// Cache failures degrade to a direct load.
func (s *DefaultCatalogService) readThrough(ctx context.Context, key string, out any, load func() (any, error)) error {
	if s.Cache != nil {
		raw, err := s.Cache.Get(ctx, key).Bytes()
		if err == nil && json.Unmarshal(raw, out) == nil {
			return nil
		}
		if err != nil && err != redis.Nil {
			s.Logger.Warn("catalog cache read failed", zap.String("key", key), zap.Error(err))
		}
	}

	v, err := load()
	if err != nil {
		return err
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return err
	}
	if s.Cache != nil {
		if err := s.Cache.Set(ctx, key, raw, s.TTL).Err(); err != nil {
			s.Logger.Warn("catalog cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return nil
}
