package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/aquaflow/internal/archive/domain"
	"github.com/smallbiznis/aquaflow/internal/clock"
	obsmetrics "github.com/smallbiznis/aquaflow/internal/observability/metrics"
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
	Metrics *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	clock   clock.Clock
	repo    domain.Repository
	metrics *obsmetrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("archive.service"),
		genID:   p.GenID,
		clock:   p.Clock,
		repo:    p.Repo,
		metrics: p.Metrics,
	}
}

func (s *Service) ArchiveThenDelete(ctx context.Context, db *gorm.DB, record domain.DeletedRecord, deleteFn func(tx *gorm.DB) error) (domain.DeletedRecord, error) {
	if record.Source != domain.SourceRequest && record.Source != domain.SourceFilling {
		return domain.DeletedRecord{}, domain.ErrInvalidSource
	}
	if record.OriginalID == 0 || deleteFn == nil {
		return domain.DeletedRecord{}, domain.ErrInvalidRecord
	}
	if db == nil {
		db = s.db
	}

	record.ID = s.genID.Generate()
	record.DeletedAt = s.clock.Now()
	if record.DeletedBy == "" {
		record.DeletedBy = "system"
	}

	if err := s.repo.Insert(ctx, db, &record); err != nil {
		s.log.Error("archive snapshot failed, delete not attempted",
			zap.String("source", string(record.Source)),
			zap.String("original_id", record.OriginalID.String()),
			zap.Error(err),
		)
		return domain.DeletedRecord{}, fmt.Errorf("archive snapshot: %w", err)
	}

	if err := deleteFn(db); err != nil {
		return domain.DeletedRecord{}, err
	}

	s.metrics.RecordArchived(ctx, string(record.Source))
	return record, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) (domain.ListResponse, error) {
	source := domain.Source(strings.ToLower(strings.TrimSpace(req.Source)))
	if source != "" && source != domain.SourceRequest && source != domain.SourceFilling {
		return domain.ListResponse{}, domain.ErrInvalidSource
	}
	if req.DeletedFrom != nil && req.DeletedTo != nil && req.DeletedFrom.After(*req.DeletedTo) {
		return domain.ListResponse{}, domain.ErrInvalidTimeRange
	}

	var cursor *domain.Cursor
	if strings.TrimSpace(req.PageToken) != "" {
		decoded, err := pagination.DecodeCursor(req.PageToken)
		if err != nil {
			return domain.ListResponse{}, domain.ErrInvalidPageToken
		}
		deletedAt, err := decoded.CreatedAtTime()
		if err != nil {
			return domain.ListResponse{}, domain.ErrInvalidPageToken
		}
		id, err := snowflake.ParseString(decoded.ID)
		if err != nil {
			return domain.ListResponse{}, domain.ErrInvalidPageToken
		}
		cursor = &domain.Cursor{ID: id, DeletedAt: deletedAt}
	}

	limit := req.Limit()
	items, err := s.repo.List(ctx, s.db, domain.ListFilter{
		Source:      source,
		CustomerID:  req.CustomerID,
		Search:      req.Search,
		DeletedFrom: req.DeletedFrom,
		DeletedTo:   req.DeletedTo,
		Cursor:      cursor,
		Limit:       limit,
	})
	if err != nil {
		return domain.ListResponse{}, err
	}

	items, pageInfo := pagination.Trim(items, limit, func(item *domain.DeletedRecord) pagination.Cursor {
		return pagination.Cursor{
			ID:        item.ID.String(),
			CreatedAt: item.DeletedAt.UTC().Format(time.RFC3339Nano),
		}
	})

	records := make([]domain.DeletedRecord, 0, len(items))
	for _, item := range items {
		if item != nil {
			records = append(records, *item)
		}
	}
	return domain.ListResponse{PageInfo: pageInfo, Records: records}, nil
}
