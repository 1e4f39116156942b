package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	archivedomain "github.com/smallbiznis/aquaflow/internal/archive/domain"
	"github.com/smallbiznis/aquaflow/internal/changefeed"
	"github.com/smallbiznis/aquaflow/internal/clock"
	debtdomain "github.com/smallbiznis/aquaflow/internal/debt/domain"
	fillingdomain "github.com/smallbiznis/aquaflow/internal/filling/domain"
	obsmetrics "github.com/smallbiznis/aquaflow/internal/observability/metrics"
	"github.com/smallbiznis/aquaflow/internal/operatorcontext"
	"github.com/smallbiznis/aquaflow/internal/ratelimit"
	"github.com/smallbiznis/aquaflow/internal/request/domain"
	"github.com/smallbiznis/aquaflow/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	transitionCreated   = "created"
	transitionDirect    = "created_direct"
	transitionDelivered = "delivered"
	transitionFinished  = "finished"
	transitionDeleted   = "deleted"

	driverRole = "driver"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Clock       clock.Clock
	Repo        domain.Repository
	FillingRepo fillingdomain.Repository
	DebtRepo    debtdomain.Repository
	Archive     archivedomain.Service
	Limiter     *ratelimit.Limiter  `optional:"true"`
	Metrics     *obsmetrics.Metrics `optional:"true"`
	Feed        *changefeed.Hub     `optional:"true"`
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	clock       clock.Clock
	repo        domain.Repository
	fillingRepo fillingdomain.Repository
	debtRepo    debtdomain.Repository
	archive     archivedomain.Service
	limiter     *ratelimit.Limiter
	metrics     *obsmetrics.Metrics
	feed        *changefeed.Hub
}

func New(p Params) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("request.service"),
		genID:       p.GenID,
		clock:       p.Clock,
		repo:        p.Repo,
		fillingRepo: p.FillingRepo,
		debtRepo:    p.DebtRepo,
		archive:     p.Archive,
		limiter:     p.Limiter,
		metrics:     p.Metrics,
		feed:        p.Feed,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (domain.Request, error) {
	if !req.RequestType.Valid() {
		return domain.Request{}, domain.ErrInvalidType
	}
	if err := s.checkReferences(ctx, req.CustomerID, req.DriverID); err != nil {
		return domain.Request{}, err
	}

	if req.RequestType.Guarded() {
		release, err := s.lockCustomer(ctx, req.CustomerID)
		if err != nil {
			return domain.Request{}, err
		}
		defer release()

		pending, err := s.repo.CountPending(ctx, s.db, req.CustomerID)
		if err != nil {
			return domain.Request{}, err
		}
		if pending > 0 {
			return domain.Request{}, domain.ErrPendingRequestExists
		}
	}

	created, err := s.insert(ctx, req, domain.StatusPending)
	if err != nil {
		return domain.Request{}, err
	}
	s.metrics.RecordRequestTransition(ctx, string(created.RequestType), transitionCreated)
	return created, nil
}

func (s *Service) CreateDirect(ctx context.Context, req domain.CreateRequest) (domain.Request, error) {
	if !req.RequestType.Direct() {
		return domain.Request{}, domain.ErrInvalidType
	}
	if err := s.checkReferences(ctx, req.CustomerID, req.DriverID); err != nil {
		return domain.Request{}, err
	}

	created, err := s.insert(ctx, req, domain.StatusDelivered)
	if err != nil {
		return domain.Request{}, err
	}
	s.metrics.RecordRequestTransition(ctx, string(created.RequestType), transitionDirect)
	return created, nil
}

func (s *Service) insert(ctx context.Context, req domain.CreateRequest, status domain.Status) (domain.Request, error) {
	now := s.clock.Now()
	createdAt := now
	if req.CreatedAt != nil && !req.CreatedAt.IsZero() {
		createdAt = req.CreatedAt.UTC()
	}

	request, err := domain.NewRequest(
		s.genID.Generate(),
		req.CustomerID,
		req.RequestType,
		status,
		req.DriverID,
		req.Notes,
		operatorcontext.UsernameFromContext(ctx, "system"),
		createdAt,
	)
	if err != nil {
		return domain.Request{}, err
	}
	request.UpdatedAt = now

	if err := s.repo.Insert(ctx, s.db, &request); err != nil {
		return domain.Request{}, err
	}

	s.feed.Publish(changefeed.Event{Table: changefeed.TableRequests, Op: changefeed.OpInsert})
	return s.Get(ctx, request.ID)
}

func (s *Service) MarkDelivered(ctx context.Context, id snowflake.ID, isDebt bool) (domain.Request, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return domain.Request{}, err
	}
	if current.Status != domain.StatusPending {
		return domain.Request{}, domain.ErrInvalidTransition
	}

	moved, err := s.repo.MarkDelivered(ctx, s.db, id, isDebt, s.clock.Now())
	if err != nil {
		return domain.Request{}, err
	}
	if !moved {
		return domain.Request{}, domain.ErrInvalidTransition
	}

	s.metrics.RecordRequestTransition(ctx, string(current.RequestType), transitionDelivered)
	s.feed.Publish(changefeed.Event{Table: changefeed.TableRequests, Op: changefeed.OpUpdate})
	return s.Get(ctx, id)
}

func (s *Service) Finish(ctx context.Context, id snowflake.ID, isDebt bool) (domain.FinishResult, error) {
	if id == 0 {
		return domain.FinishResult{}, domain.ErrInvalidID
	}

	var (
		result      domain.FinishResult
		requestType domain.Type
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		req, err := s.repo.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if req == nil {
			return domain.ErrNotFound
		}
		if req.Status != domain.StatusDelivered {
			return domain.ErrInvalidTransition
		}
		requestType = req.RequestType

		claimed, err := s.repo.DeleteDelivered(ctx, tx, id)
		if err != nil {
			return err
		}
		if !claimed {
			return domain.ErrInvalidTransition
		}

		now := s.clock.Now()
		amount := req.Amount()
		customerID := req.CustomerID
		createdBy := req.CreatedBy
		if createdBy == "" {
			createdBy = operatorcontext.UsernameFromContext(ctx, "system")
		}

		filling, err := fillingdomain.NewFilling(fillingdomain.Filling{
			ID:           s.genID.Generate(),
			CustomerID:   &customerID,
			DriverID:     req.DriverID,
			FillingType:  string(req.RequestType),
			Amount:       amount,
			IsDebt:       isDebt,
			CustomerName: req.CustomerName,
			TankNo:       req.TankNo,
			Notes:        req.Notes,
			CreatedBy:    createdBy,
			CreatedAt:    req.CreatedAt,
			FinishedAt:   now,
		})
		if err != nil {
			return err
		}
		if err := s.fillingRepo.Insert(ctx, tx, &filling); err != nil {
			return err
		}
		result.Filling = filling

		if isDebt && amount > 0 {
			debt, err := debtdomain.NewDebt(
				s.genID.Generate(),
				customerID,
				&filling.ID,
				amount,
				"Generated from request #"+req.TankNo,
				now,
			)
			if err != nil {
				return err
			}
			if err := s.debtRepo.Insert(ctx, tx, &debt); err != nil {
				return err
			}
			result.Debt = &debt
		}
		return nil
	})
	if err != nil {
		return domain.FinishResult{}, err
	}

	s.metrics.RecordRequestTransition(ctx, string(requestType), transitionFinished)
	tables := []string{changefeed.TableRequests, changefeed.TableFillings}
	if result.Debt != nil {
		s.metrics.RecordDebtCreated(ctx)
		tables = append(tables, changefeed.TableDebts)
	}
	s.feed.Touch(changefeed.OpUpdate, tables...)

	s.log.Info("request finished",
		zap.String("request_id", id.String()),
		zap.String("filling_id", result.Filling.ID.String()),
		zap.Int64("amount", result.Filling.Amount),
		zap.Bool("debt_created", result.Debt != nil),
	)
	return result, nil
}

func (s *Service) UpdateDriver(ctx context.Context, id snowflake.ID, driverID *snowflake.ID) (domain.Request, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return domain.Request{}, err
	}
	if err := s.checkDriver(ctx, driverID); err != nil {
		return domain.Request{}, err
	}

	if err := s.repo.UpdateDriver(ctx, s.db, id, driverID, s.clock.Now()); err != nil {
		return domain.Request{}, err
	}

	s.feed.Publish(changefeed.Event{Table: changefeed.TableRequests, Op: changefeed.OpUpdate})
	return s.Get(ctx, id)
}

func (s *Service) UpdateDate(ctx context.Context, id snowflake.ID, createdAt time.Time) (domain.Request, error) {
	if createdAt.IsZero() {
		return domain.Request{}, domain.ErrInvalidDate
	}
	if _, err := s.Get(ctx, id); err != nil {
		return domain.Request{}, err
	}

	if err := s.repo.UpdateCreatedAt(ctx, s.db, id, createdAt.UTC(), s.clock.Now()); err != nil {
		return domain.Request{}, err
	}

	s.feed.Publish(changefeed.Event{Table: changefeed.TableRequests, Op: changefeed.OpUpdate})
	return s.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id snowflake.ID) error {
	if id == 0 {
		return domain.ErrInvalidID
	}

	var requestType domain.Type
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		req, err := s.repo.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if req == nil {
			return domain.ErrNotFound
		}
		requestType = req.RequestType

		customerID := req.CustomerID
		createdAt := req.CreatedAt
		snapshot := archivedomain.DeletedRecord{
			Source:            archivedomain.SourceRequest,
			OriginalID:        req.ID,
			CustomerID:        &customerID,
			CustomerName:      orUnknown(req.CustomerName),
			TankNo:            orUnknown(req.TankNo),
			RequestType:       string(req.RequestType),
			StatusAtDeletion:  string(req.Status),
			DeletedBy:         operatorcontext.UsernameFromContext(ctx, ""),
			OriginalCreatedAt: &createdAt,
			Notes:             req.Notes,
		}
		_, err = s.archive.ArchiveThenDelete(ctx, tx, snapshot, func(tx *gorm.DB) error {
			return s.repo.Delete(ctx, tx, id)
		})
		return err
	})
	if err != nil {
		return err
	}

	s.metrics.RecordRequestTransition(ctx, string(requestType), transitionDeleted)
	s.feed.Publish(changefeed.Event{Table: changefeed.TableRequests, Op: changefeed.OpDelete})
	return nil
}

func (s *Service) Get(ctx context.Context, id snowflake.ID) (domain.Request, error) {
	if id == 0 {
		return domain.Request{}, domain.ErrInvalidID
	}
	req, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Request{}, err
	}
	if req == nil {
		return domain.Request{}, domain.ErrNotFound
	}
	return *req, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequestsRequest) (domain.ListRequestsResponse, error) {
	status := domain.Status(strings.ToLower(strings.TrimSpace(req.Status)))
	if status != "" && !status.Valid() {
		return domain.ListRequestsResponse{}, domain.ErrInvalidStatus
	}
	requestType := domain.Type(strings.ToLower(strings.TrimSpace(req.RequestType)))
	if requestType != "" && !requestType.Valid() {
		return domain.ListRequestsResponse{}, domain.ErrInvalidType
	}
	if req.CreatedFrom != nil && req.CreatedTo != nil && req.CreatedFrom.After(*req.CreatedTo) {
		return domain.ListRequestsResponse{}, domain.ErrInvalidTimeRange
	}

	var cursor *domain.Cursor
	if strings.TrimSpace(req.PageToken) != "" {
		decoded, err := pagination.DecodeCursor(req.PageToken)
		if err != nil {
			return domain.ListRequestsResponse{}, domain.ErrInvalidPageToken
		}
		createdAt, err := decoded.CreatedAtTime()
		if err != nil {
			return domain.ListRequestsResponse{}, domain.ErrInvalidPageToken
		}
		id, err := snowflake.ParseString(decoded.ID)
		if err != nil {
			return domain.ListRequestsResponse{}, domain.ErrInvalidPageToken
		}
		cursor = &domain.Cursor{ID: id, CreatedAt: createdAt}
	}

	limit := req.Limit()
	items, err := s.repo.List(ctx, s.db, domain.ListFilter{
		Status:      status,
		RequestType: requestType,
		CustomerID:  req.CustomerID,
		DriverID:    req.DriverID,
		AreaID:      req.AreaID,
		Search:      req.Search,
		CreatedFrom: req.CreatedFrom,
		CreatedTo:   req.CreatedTo,
		Cursor:      cursor,
		Limit:       limit,
	})
	if err != nil {
		return domain.ListRequestsResponse{}, err
	}

	items, pageInfo := pagination.Trim(items, limit, func(item *domain.Request) pagination.Cursor {
		return pagination.Cursor{
			ID:        item.ID.String(),
			CreatedAt: item.CreatedAt.UTC().Format(time.RFC3339Nano),
		}
	})

	requests := make([]domain.Request, 0, len(items))
	for _, item := range items {
		if item != nil {
			requests = append(requests, *item)
		}
	}
	return domain.ListRequestsResponse{PageInfo: pageInfo, Requests: requests}, nil
}

func (s *Service) checkReferences(ctx context.Context, customerID snowflake.ID, driverID *snowflake.ID) error {
	if customerID == 0 {
		return domain.ErrInvalidCustomer
	}
	ok, err := s.repo.CustomerExists(ctx, s.db, customerID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrInvalidCustomer
	}
	return s.checkDriver(ctx, driverID)
}

// checkDriver accepts nil (unassigned) or an existing staff member with the driver role.
func (s *Service) checkDriver(ctx context.Context, driverID *snowflake.ID) error {
	if driverID == nil {
		return nil
	}
	if *driverID == 0 {
		return domain.ErrInvalidDriver
	}
	role, err := s.repo.DriverRole(ctx, s.db, *driverID)
	if err != nil {
		return err
	}
	if role != driverRole {
		return domain.ErrInvalidDriver
	}
	return nil
}

// lockCustomer serializes guarded creation per customer when redis is configured.
// A redis failure degrades to the unguarded check.
func (s *Service) lockCustomer(ctx context.Context, customerID snowflake.ID) (func(), error) {
	key := customerID.String()
	token, ok, err := s.limiter.LockCustomer(ctx, key)
	if err != nil {
		s.log.Warn("customer lock unavailable", zap.String("customer_id", key), zap.Error(err))
		return func() {}, nil
	}
	if !ok {
		return nil, domain.ErrRequestInProgress
	}
	return func() {
		if err := s.limiter.UnlockCustomer(context.WithoutCancel(ctx), key, token); err != nil {
			s.log.Warn("customer lock release failed", zap.String("customer_id", key), zap.Error(err))
		}
	}, nil
}

func orUnknown(value string) string {
	if strings.TrimSpace(value) == "" {
		return fillingdomain.UnknownSnapshot
	}
	return value
}
