package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/aquaflow/internal/area/domain"
	"github.com/smallbiznis/aquaflow/internal/changefeed"
	"github.com/smallbiznis/aquaflow/internal/clock"
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
		log:   p.Log.Named("area.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
		feed:  p.Feed,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateAreaRequest) (domain.Area, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Area{}, domain.ErrInvalidName
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	now := s.clock.Now()
	area := domain.Area{
		ID:        s.genID.Generate(),
		Name:      name,
		IsActive:  active,
		Notes:     strings.TrimSpace(req.Notes),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Insert(ctx, s.db, &area); err != nil {
		return domain.Area{}, err
	}

	s.feed.Publish(changefeed.Event{Table: changefeed.TableAreas, Op: changefeed.OpInsert})
	return area, nil
}

func (s *Service) Update(ctx context.Context, id snowflake.ID, req domain.UpdateAreaRequest) (domain.Area, error) {
	area, err := s.Get(ctx, id)
	if err != nil {
		return domain.Area{}, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.Area{}, domain.ErrInvalidName
		}
		area.Name = name
	}
	if req.IsActive != nil {
		area.IsActive = *req.IsActive
	}
	if req.Notes != nil {
		area.Notes = strings.TrimSpace(*req.Notes)
	}
	area.UpdatedAt = s.clock.Now()

	if err := s.repo.Update(ctx, s.db, &area); err != nil {
		return domain.Area{}, err
	}

	s.feed.Publish(changefeed.Event{Table: changefeed.TableAreas, Op: changefeed.OpUpdate})
	return area, nil
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

	s.log.Info("area deleted", zap.String("area_id", id.String()))
	s.feed.Publish(changefeed.Event{Table: changefeed.TableAreas, Op: changefeed.OpDelete})
	return nil
}

func (s *Service) Get(ctx context.Context, id snowflake.ID) (domain.Area, error) {
	if id == 0 {
		return domain.Area{}, domain.ErrInvalidID
	}
	area, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Area{}, err
	}
	if area == nil {
		return domain.Area{}, domain.ErrNotFound
	}
	return *area, nil
}

func (s *Service) List(ctx context.Context) ([]domain.Area, error) {
	return s.list(ctx, false)
}

func (s *Service) ListActive(ctx context.Context) ([]domain.Area, error) {
	return s.list(ctx, true)
}

func (s *Service) list(ctx context.Context, activeOnly bool) ([]domain.Area, error) {
	items, err := s.repo.List(ctx, s.db, activeOnly)
	if err != nil {
		return nil, err
	}
	areas := make([]domain.Area, 0, len(items))
	for _, item := range items {
		if item != nil {
			areas = append(areas, *item)
		}
	}
	return areas, nil
}

func (s *Service) CustomerCounts(ctx context.Context) ([]domain.CustomerCount, error) {
	return s.repo.CustomerCounts(ctx, s.db)
}
