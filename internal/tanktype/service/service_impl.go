package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/aquaflow/internal/changefeed"
	"github.com/smallbiznis/aquaflow/internal/clock"
	"github.com/smallbiznis/aquaflow/internal/tanktype/domain"
	"github.com/smallbiznis/aquaflow/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository
	Feed  *changefeed.Hub `optional:"true"`
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository
	feed  *changefeed.Hub
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("tanktype.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
		feed:  p.Feed,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateTankTypeRequest) (domain.TankType, error) {
	tankType := domain.TankType{
		Name:           strings.TrimSpace(req.Name),
		CapacityLiters: req.CapacityLiters,
		Price:          req.Price,
		IsActive:       true,
	}
	if req.IsActive != nil {
		tankType.IsActive = *req.IsActive
	}
	if err := validate(tankType); err != nil {
		return domain.TankType{}, err
	}

	now := s.clock.Now()
	tankType.ID = s.genID.Generate()
	tankType.CreatedAt = now
	tankType.UpdatedAt = now
	if err := s.repo.Insert(ctx, s.db, &tankType); err != nil {
		return domain.TankType{}, err
	}

	s.feed.Publish(changefeed.Event{Table: changefeed.TableTankTypes, Op: changefeed.OpInsert})
	return tankType, nil
}

func (s *Service) Update(ctx context.Context, id snowflake.ID, req domain.UpdateTankTypeRequest) (domain.TankType, error) {
	tankType, err := s.Get(ctx, id)
	if err != nil {
		return domain.TankType{}, err
	}

	if req.Name != nil {
		tankType.Name = strings.TrimSpace(*req.Name)
	}
	if req.CapacityLiters != nil {
		tankType.CapacityLiters = *req.CapacityLiters
	}
	if req.Price != nil {
		tankType.Price = *req.Price
	}
	if req.IsActive != nil {
		tankType.IsActive = *req.IsActive
	}
	if err := validate(tankType); err != nil {
		return domain.TankType{}, err
	}

	tankType.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, s.db, &tankType); err != nil {
		return domain.TankType{}, err
	}

	s.feed.Publish(changefeed.Event{Table: changefeed.TableTankTypes, Op: changefeed.OpUpdate})
	return tankType, nil
}

func (s *Service) Delete(ctx context.Context, id snowflake.ID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	count, err := s.repo.CountCustomers(ctx, s.db, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return domain.ErrInUse
	}

	if err := s.repo.Delete(ctx, s.db, id); err != nil {
		if db.IsForeignKeyErr(err) {
			return domain.ErrInUse
		}
		return err
	}

	s.feed.Publish(changefeed.Event{Table: changefeed.TableTankTypes, Op: changefeed.OpDelete})
	return nil
}

func (s *Service) Get(ctx context.Context, id snowflake.ID) (domain.TankType, error) {
	if id == 0 {
		return domain.TankType{}, domain.ErrInvalidID
	}
	tankType, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.TankType{}, err
	}
	if tankType == nil {
		return domain.TankType{}, domain.ErrNotFound
	}
	return *tankType, nil
}

func (s *Service) List(ctx context.Context) ([]domain.TankType, error) {
	return s.list(ctx, false)
}

func (s *Service) ListActive(ctx context.Context) ([]domain.TankType, error) {
	return s.list(ctx, true)
}

func (s *Service) list(ctx context.Context, activeOnly bool) ([]domain.TankType, error) {
	items, err := s.repo.List(ctx, s.db, activeOnly)
	if err != nil {
		return nil, err
	}
	out := make([]domain.TankType, 0, len(items))
	for _, item := range items {
		if item != nil {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (s *Service) CustomerCounts(ctx context.Context) ([]domain.CustomerCount, error) {
	return s.repo.CustomerCounts(ctx, s.db)
}

func validate(tankType domain.TankType) error {
	switch {
	case tankType.Name == "":
		return domain.ErrInvalidName
	case tankType.Price < 0:
		return domain.ErrInvalidPrice
	case tankType.CapacityLiters < 0:
		return domain.ErrInvalidCapacity
	}
	return nil
}
