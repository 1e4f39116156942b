package service

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/aquaflow/internal/changefeed"
	"github.com/smallbiznis/aquaflow/internal/clock"
	"github.com/smallbiznis/aquaflow/internal/driver/domain"
	"github.com/smallbiznis/aquaflow/internal/storage"
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
	Storage storage.Provider
	Feed    *changefeed.Hub `optional:"true"`
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	clock   clock.Clock
	repo    domain.Repository
	storage storage.Provider
	feed    *changefeed.Hub
}

func New(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("driver.service"),
		genID:   p.GenID,
		clock:   p.Clock,
		repo:    p.Repo,
		storage: p.Storage,
		feed:    p.Feed,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateDriverRequest) (domain.Driver, error) {
	role := req.Role
	if role == "" {
		role = domain.RoleDriver
	}
	driver := domain.Driver{
		Name:     strings.TrimSpace(req.Name),
		Phone:    strings.TrimSpace(req.Phone),
		Role:     role,
		JobTitle: strings.TrimSpace(req.JobTitle),
		IsActive: req.IsActive == nil || *req.IsActive,
	}
	if err := validate(driver); err != nil {
		return domain.Driver{}, err
	}

	now := s.clock.Now()
	driver.ID = s.genID.Generate()
	driver.CreatedAt = now
	driver.UpdatedAt = now
	if err := s.repo.Insert(ctx, s.db, &driver); err != nil {
		return domain.Driver{}, err
	}

	s.feed.Publish(changefeed.Event{Table: changefeed.TableDrivers, Op: changefeed.OpInsert})
	return driver, nil
}

func (s *Service) Update(ctx context.Context, id snowflake.ID, req domain.UpdateDriverRequest) (domain.Driver, error) {
	driver, err := s.Get(ctx, id)
	if err != nil {
		return domain.Driver{}, err
	}

	if req.Name != nil {
		driver.Name = strings.TrimSpace(*req.Name)
	}
	if req.Phone != nil {
		driver.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.Role != nil {
		driver.Role = *req.Role
	}
	if req.JobTitle != nil {
		driver.JobTitle = strings.TrimSpace(*req.JobTitle)
	}
	if req.IsActive != nil {
		driver.IsActive = *req.IsActive
	}
	if err := validate(driver); err != nil {
		return domain.Driver{}, err
	}

	driver.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, s.db, &driver); err != nil {
		return domain.Driver{}, err
	}

	s.feed.Publish(changefeed.Event{Table: changefeed.TableDrivers, Op: changefeed.OpUpdate})
	return driver, nil
}

func (s *Service) Delete(ctx context.Context, id snowflake.ID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.DetachReferences(ctx, tx, id); err != nil {
			return err
		}
		return s.repo.Delete(ctx, tx, id)
	})
	if err != nil {
		return err
	}

	s.feed.Touch(changefeed.OpDelete, changefeed.TableDrivers, changefeed.TableCustomers, changefeed.TableCars, changefeed.TableRequests)
	return nil
}

func (s *Service) Get(ctx context.Context, id snowflake.ID) (domain.Driver, error) {
	if id == 0 {
		return domain.Driver{}, domain.ErrInvalidID
	}
	driver, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Driver{}, err
	}
	if driver == nil {
		return domain.Driver{}, domain.ErrNotFound
	}
	return *driver, nil
}

func (s *Service) List(ctx context.Context, req domain.ListDriverRequest) ([]domain.Driver, error) {
	role := domain.Role(strings.ToLower(strings.TrimSpace(req.Role)))
	if role != "" && !role.Valid() {
		return nil, domain.ErrInvalidRole
	}
	return s.list(ctx, domain.ListFilter{Role: role, ActiveOnly: req.ActiveOnly})
}

func (s *Service) ListActiveDrivers(ctx context.Context) ([]domain.Driver, error) {
	return s.list(ctx, domain.ListFilter{Role: domain.RoleDriver, ActiveOnly: true})
}

func (s *Service) list(ctx context.Context, filter domain.ListFilter) ([]domain.Driver, error) {
	items, err := s.repo.List(ctx, s.db, filter)
	if err != nil {
		return nil, err
	}
	drivers := make([]domain.Driver, 0, len(items))
	for _, item := range items {
		if item != nil {
			drivers = append(drivers, *item)
		}
	}
	return drivers, nil
}

func (s *Service) UploadPhoto(ctx context.Context, id snowflake.ID, req domain.UploadPhotoRequest) (domain.Driver, error) {
	if req.Body == nil || strings.TrimSpace(req.FileName) == "" {
		return domain.Driver{}, domain.ErrInvalidFile
	}
	driver, err := s.Get(ctx, id)
	if err != nil {
		return domain.Driver{}, err
	}

	name := storage.ObjectName("staff-"+id.String(), req.FileName, s.clock.Now())
	url, err := s.storage.Upload(ctx, storage.BucketDriverPhotos, name, req.ContentType, req.Body)
	if err != nil {
		if errors.Is(err, storage.ErrEmptyObject) {
			return domain.Driver{}, domain.ErrInvalidFile
		}
		return domain.Driver{}, err
	}

	driver.PhotoURL = url
	driver.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, s.db, &driver); err != nil {
		return domain.Driver{}, err
	}

	s.feed.Publish(changefeed.Event{Table: changefeed.TableDrivers, Op: changefeed.OpUpdate})
	return driver, nil
}

func validate(driver domain.Driver) error {
	if driver.Name == "" {
		return domain.ErrInvalidName
	}
	if !driver.Role.Valid() {
		return domain.ErrInvalidRole
	}
	return nil
}
