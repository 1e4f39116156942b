package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	archivedomain "github.com/smallbiznis/aquaflow/internal/archive/domain"
	"github.com/smallbiznis/aquaflow/internal/changefeed"
	"github.com/smallbiznis/aquaflow/internal/clock"
	"github.com/smallbiznis/aquaflow/internal/filling/domain"
	"github.com/smallbiznis/aquaflow/internal/operatorcontext"
	"github.com/smallbiznis/aquaflow/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Clock   clock.Clock
	Repo    domain.Repository
	Archive archivedomain.Service
	Feed    *changefeed.Hub `optional:"true"`
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	clock   clock.Clock
	repo    domain.Repository
	archive archivedomain.Service
	feed    *changefeed.Hub
}

func New(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("filling.service"),
		genID:   p.GenID,
		clock:   p.Clock,
		repo:    p.Repo,
		archive: p.Archive,
		feed:    p.Feed,
	}
}

func (s *Service) RecordExternalSale(ctx context.Context, req domain.ExternalSaleRequest) (domain.Filling, error) {
	if req.Price <= 0 {
		return domain.Filling{}, domain.ErrInvalidAmount
	}

	now := s.clock.Now()
	createdAt := now
	if req.Date != nil && !req.Date.IsZero() {
		createdAt = req.Date.UTC()
	}

	filling, err := domain.NewFilling(domain.Filling{
		ID:           s.genID.Generate(),
		FillingType:  domain.TypeExternalSale,
		Amount:       req.Price,
		IsDebt:       false,
		CustomerName: domain.ExternalSaleCustomer,
		TankNo:       domain.ExternalSaleTankNo,
		Notes:        domain.ExternalSaleNotesPrefix + strings.TrimSpace(req.Notes),
		CreatedBy:    operatorcontext.UsernameFromContext(ctx, "system"),
		CreatedAt:    createdAt,
		FinishedAt:   now,
	})
	if err != nil {
		return domain.Filling{}, err
	}

	if err := s.repo.Insert(ctx, s.db, &filling); err != nil {
		return domain.Filling{}, err
	}

	s.log.Info("external sale recorded",
		zap.String("filling_id", filling.ID.String()),
		zap.Int64("amount", filling.Amount),
	)
	s.feed.Publish(changefeed.Event{Table: changefeed.TableFillings, Op: changefeed.OpInsert})
	return filling, nil
}

func (s *Service) Delete(ctx context.Context, id snowflake.ID) error {
	filling, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	createdAt := filling.CreatedAt
	snapshot := archivedomain.DeletedRecord{
		Source:            archivedomain.SourceFilling,
		OriginalID:        filling.ID,
		CustomerID:        filling.CustomerID,
		CustomerName:      filling.CustomerName,
		TankNo:            filling.TankNo,
		RequestType:       filling.FillingType,
		StatusAtDeletion:  archivedomain.StatusFinished,
		Amount:            filling.Amount,
		DeletedBy:         operatorcontext.UsernameFromContext(ctx, ""),
		OriginalCreatedAt: &createdAt,
		Notes:             filling.Notes,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, err := s.archive.ArchiveThenDelete(ctx, tx, snapshot, func(tx *gorm.DB) error {
			if err := s.repo.DetachDebts(ctx, tx, id); err != nil {
				return err
			}
			return s.repo.Delete(ctx, tx, id)
		})
		return err
	})
	if err != nil {
		return err
	}

	s.feed.Touch(changefeed.OpDelete, changefeed.TableFillings, changefeed.TableDebts)
	return nil
}

func (s *Service) Get(ctx context.Context, id snowflake.ID) (domain.Filling, error) {
	if id == 0 {
		return domain.Filling{}, domain.ErrInvalidID
	}
	filling, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Filling{}, err
	}
	if filling == nil {
		return domain.Filling{}, domain.ErrNotFound
	}
	return *filling, nil
}

func (s *Service) List(ctx context.Context, req domain.ListFillingRequest) (domain.ListFillingResponse, error) {
	if req.CreatedFrom != nil && req.CreatedTo != nil && req.CreatedFrom.After(*req.CreatedTo) {
		return domain.ListFillingResponse{}, domain.ErrInvalidTimeRange
	}

	var cursor *domain.Cursor
	if strings.TrimSpace(req.PageToken) != "" {
		decoded, err := pagination.DecodeCursor(req.PageToken)
		if err != nil {
			return domain.ListFillingResponse{}, domain.ErrInvalidPageToken
		}
		createdAt, err := decoded.CreatedAtTime()
		if err != nil {
			return domain.ListFillingResponse{}, domain.ErrInvalidPageToken
		}
		id, err := snowflake.ParseString(decoded.ID)
		if err != nil {
			return domain.ListFillingResponse{}, domain.ErrInvalidPageToken
		}
		cursor = &domain.Cursor{ID: id, CreatedAt: createdAt}
	}

	limit := req.Limit()
	items, err := s.repo.List(ctx, s.db, domain.ListFilter{
		FillingType: strings.TrimSpace(req.FillingType),
		CustomerID:  req.CustomerID,
		DriverID:    req.DriverID,
		IsDebt:      req.IsDebt,
		Search:      req.Search,
		CreatedFrom: req.CreatedFrom,
		CreatedTo:   req.CreatedTo,
		Cursor:      cursor,
		Limit:       limit,
	})
	if err != nil {
		return domain.ListFillingResponse{}, err
	}

	items, pageInfo := pagination.Trim(items, limit, func(item *domain.Filling) pagination.Cursor {
		return pagination.Cursor{
			ID:        item.ID.String(),
			CreatedAt: item.CreatedAt.UTC().Format(time.RFC3339Nano),
		}
	})

	fillings := make([]domain.Filling, 0, len(items))
	for _, item := range items {
		if item != nil {
			fillings = append(fillings, *item)
		}
	}
	return domain.ListFillingResponse{PageInfo: pageInfo, Fillings: fillings}, nil
}
