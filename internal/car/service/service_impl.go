package service

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/aquaflow/internal/car/domain"
	"github.com/smallbiznis/aquaflow/internal/changefeed"
	"github.com/smallbiznis/aquaflow/internal/clock"
	"github.com/smallbiznis/aquaflow/internal/storage"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
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
		log:     p.Log.Named("car.service"),
		genID:   p.GenID,
		clock:   p.Clock,
		repo:    p.Repo,
		storage: p.Storage,
		feed:    p.Feed,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateCarRequest) (domain.Car, error) {
	car := domain.Car{
		DriverID: req.DriverID,
		Name:     strings.TrimSpace(req.Name),
		Color:    strings.TrimSpace(req.Color),
		Note:     strings.TrimSpace(req.Note),
		Photos:   datatypes.JSONSlice[string]{},
	}
	if err := s.validate(ctx, car); err != nil {
		return domain.Car{}, err
	}

	now := s.clock.Now()
	car.ID = s.genID.Generate()
	car.CreatedAt = now
	car.UpdatedAt = now
	if err := s.repo.Insert(ctx, s.db, &car); err != nil {
		return domain.Car{}, err
	}

	s.feed.Publish(changefeed.Event{Table: changefeed.TableCars, Op: changefeed.OpInsert})
	return s.Get(ctx, car.ID)
}

func (s *Service) Update(ctx context.Context, id snowflake.ID, req domain.UpdateCarRequest) (domain.Car, error) {
	car, err := s.Get(ctx, id)
	if err != nil {
		return domain.Car{}, err
	}

	switch {
	case req.ClearDriver:
		car.DriverID = nil
	case req.DriverID != nil:
		car.DriverID = req.DriverID
	}
	if req.Name != nil {
		car.Name = strings.TrimSpace(*req.Name)
	}
	if req.Color != nil {
		car.Color = strings.TrimSpace(*req.Color)
	}
	if req.Note != nil {
		car.Note = strings.TrimSpace(*req.Note)
	}
	if err := s.validate(ctx, car); err != nil {
		return domain.Car{}, err
	}

	car.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, s.db, &car); err != nil {
		return domain.Car{}, err
	}

	s.feed.Publish(changefeed.Event{Table: changefeed.TableCars, Op: changefeed.OpUpdate})
	return s.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id snowflake.ID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, s.db, id); err != nil {
		return err
	}
	s.feed.Publish(changefeed.Event{Table: changefeed.TableCars, Op: changefeed.OpDelete})
	return nil
}

func (s *Service) Get(ctx context.Context, id snowflake.ID) (domain.Car, error) {
	if id == 0 {
		return domain.Car{}, domain.ErrInvalidID
	}
	car, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Car{}, err
	}
	if car == nil {
		return domain.Car{}, domain.ErrNotFound
	}
	return *car, nil
}

func (s *Service) List(ctx context.Context) ([]domain.Car, error) {
	items, err := s.repo.List(ctx, s.db)
	if err != nil {
		return nil, err
	}
	cars := make([]domain.Car, 0, len(items))
	for _, item := range items {
		if item != nil {
			cars = append(cars, *item)
		}
	}
	return cars, nil
}

func (s *Service) AddPhotos(ctx context.Context, id snowflake.ID, photos []domain.Photo) (domain.Car, error) {
	if len(photos) == 0 {
		return domain.Car{}, domain.ErrInvalidFile
	}
	for _, photo := range photos {
		if photo.Body == nil || strings.TrimSpace(photo.FileName) == "" {
			return domain.Car{}, domain.ErrInvalidFile
		}
	}
	car, err := s.Get(ctx, id)
	if err != nil {
		return domain.Car{}, err
	}

	urls := make([]string, 0, len(photos))
	for _, photo := range photos {
		name := storage.ObjectName("car-"+id.String(), photo.FileName, s.clock.Now())
		url, err := s.storage.Upload(ctx, storage.BucketCarPhotos, name, photo.ContentType, photo.Body)
		if err != nil {
			if errors.Is(err, storage.ErrEmptyObject) {
				return domain.Car{}, domain.ErrInvalidFile
			}
			s.log.Error("upload car photo", zap.String("car_id", id.String()), zap.Error(err))
			return domain.Car{}, err
		}
		urls = append(urls, url)
	}

	car.Photos = append(car.Photos, urls...)
	car.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, s.db, &car); err != nil {
		return domain.Car{}, err
	}

	s.feed.Publish(changefeed.Event{Table: changefeed.TableCars, Op: changefeed.OpUpdate})
	return car, nil
}

func (s *Service) validate(ctx context.Context, car domain.Car) error {
	if car.Name == "" {
		return domain.ErrInvalidName
	}
	if car.DriverID != nil {
		if *car.DriverID == 0 {
			return domain.ErrDriverMissing
		}
		ok, err := s.repo.DriverExists(ctx, s.db, *car.DriverID)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrDriverMissing
		}
	}
	return nil
}
