package service

import (
	"context"
	"errors"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/geojson"
	archivedomain "github.com/smallbiznis/aquaflow/internal/archive/domain"
	"github.com/smallbiznis/aquaflow/internal/changefeed"
	"github.com/smallbiznis/aquaflow/internal/clock"
	"github.com/smallbiznis/aquaflow/internal/customer/domain"
	fillingdomain "github.com/smallbiznis/aquaflow/internal/filling/domain"
	"github.com/smallbiznis/aquaflow/internal/operatorcontext"
	"github.com/smallbiznis/aquaflow/internal/storage"
	"github.com/smallbiznis/aquaflow/pkg/db"
	"github.com/smallbiznis/aquaflow/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// worldBound is the valid WGS84 range in (lng, lat) order.
var worldBound = orb.Bound{Min: orb.Point{-180, -90}, Max: orb.Point{180, 90}}

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Clock   clock.Clock
	Repo    domain.Repository
	Archive archivedomain.Service
	Storage storage.Provider
	Feed    *changefeed.Hub `optional:"true"`
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	clock   clock.Clock
	repo    domain.Repository
	archive archivedomain.Service
	storage storage.Provider
	feed    *changefeed.Hub
}

func New(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("customer.service"),
		genID:   p.GenID,
		clock:   p.Clock,
		repo:    p.Repo,
		archive: p.Archive,
		storage: p.Storage,
		feed:    p.Feed,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateCustomerRequest) (domain.Customer, error) {
	customer := domain.Customer{
		Name:       strings.TrimSpace(req.Name),
		Phone:      strings.TrimSpace(req.Phone),
		TankNo:     strings.TrimSpace(req.TankNo),
		AreaID:     req.AreaID,
		DriverID:   req.DriverID,
		TankTypeID: req.TankTypeID,
		Documents:  datatypes.JSONSlice[string]{},
		Notes:      strings.TrimSpace(req.Notes),
	}
	if (req.Latitude == nil) != (req.Longitude == nil) {
		return domain.Customer{}, domain.ErrInvalidLocation
	}
	if req.Latitude != nil {
		if err := validateLocation(*req.Latitude, *req.Longitude); err != nil {
			return domain.Customer{}, err
		}
		customer.Latitude = req.Latitude
		customer.Longitude = req.Longitude
	}
	if err := s.validate(ctx, customer); err != nil {
		return domain.Customer{}, err
	}

	now := s.clock.Now()
	customer.ID = s.genID.Generate()
	customer.CreatedAt = now
	customer.UpdatedAt = now
	if err := s.repo.Insert(ctx, s.db, &customer); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.Customer{}, domain.ErrTankNumberExists
		}
		return domain.Customer{}, err
	}

	s.feed.Publish(changefeed.Event{Table: changefeed.TableCustomers, Op: changefeed.OpInsert})
	return s.Get(ctx, customer.ID)
}

func (s *Service) Update(ctx context.Context, id snowflake.ID, req domain.UpdateCustomerRequest) (domain.Customer, error) {
	customer, err := s.Get(ctx, id)
	if err != nil {
		return domain.Customer{}, err
	}

	if req.Name != nil {
		customer.Name = strings.TrimSpace(*req.Name)
	}
	if req.Phone != nil {
		customer.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.TankNo != nil {
		customer.TankNo = strings.TrimSpace(*req.TankNo)
	}
	if req.Notes != nil {
		customer.Notes = strings.TrimSpace(*req.Notes)
	}
	customer.AreaID = pick(customer.AreaID, req.AreaID, req.ClearArea)
	customer.DriverID = pick(customer.DriverID, req.DriverID, req.ClearDriver)
	customer.TankTypeID = pick(customer.TankTypeID, req.TankTypeID, req.ClearTankType)
	if err := s.validate(ctx, customer); err != nil {
		return domain.Customer{}, err
	}

	customer.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, s.db, &customer); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.Customer{}, domain.ErrTankNumberExists
		}
		return domain.Customer{}, err
	}

	s.feed.Publish(changefeed.Event{Table: changefeed.TableCustomers, Op: changefeed.OpUpdate})
	return s.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id snowflake.ID) error {
	customer, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	unpaid, err := s.repo.CountUnpaidDebts(ctx, s.db, id)
	if err != nil {
		return err
	}
	if unpaid > 0 {
		return domain.ErrHasOutstandingDebt
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.archiveRequests(ctx, tx, customer); err != nil {
			return err
		}
		if err := s.repo.ReleaseHistory(ctx, tx, id); err != nil {
			return err
		}
		return s.repo.Delete(ctx, tx, id)
	})
	if err != nil {
		if db.IsForeignKeyErr(err) {
			return domain.ErrHasOutstandingDebt
		}
		return err
	}

	s.log.Info("customer deleted", zap.String("customer_id", id.String()))
	s.feed.Touch(changefeed.OpDelete,
		changefeed.TableCustomers,
		changefeed.TableRequests,
		changefeed.TableFillings,
		changefeed.TableDebts,
	)
	return nil
}

// archiveRequests snapshots each of the customer's requests into deleted_records before removing it.
func (s *Service) archiveRequests(ctx context.Context, tx *gorm.DB, customer domain.Customer) error {
	requests, err := s.repo.ListRequests(ctx, tx, customer.ID)
	if err != nil {
		return err
	}

	deletedBy := operatorcontext.UsernameFromContext(ctx, "")
	for _, req := range requests {
		customerID := customer.ID
		createdAt := req.CreatedAt
		snapshot := archivedomain.DeletedRecord{
			Source:            archivedomain.SourceRequest,
			OriginalID:        req.ID,
			CustomerID:        &customerID,
			CustomerName:      orUnknown(customer.Name),
			TankNo:            orUnknown(customer.TankNo),
			RequestType:       req.RequestType,
			StatusAtDeletion:  req.Status,
			DeletedBy:         deletedBy,
			OriginalCreatedAt: &createdAt,
			Notes:             req.Notes,
		}
		requestID := req.ID
		_, err := s.archive.ArchiveThenDelete(ctx, tx, snapshot, func(tx *gorm.DB) error {
			return s.repo.DeleteRequest(ctx, tx, requestID)
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func orUnknown(value string) string {
	if strings.TrimSpace(value) == "" {
		return fillingdomain.UnknownSnapshot
	}
	return value
}

func (s *Service) Get(ctx context.Context, id snowflake.ID) (domain.Customer, error) {
	if id == 0 {
		return domain.Customer{}, domain.ErrInvalidID
	}
	customer, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Customer{}, err
	}
	if customer == nil {
		return domain.Customer{}, domain.ErrNotFound
	}
	return *customer, nil
}

func (s *Service) List(ctx context.Context, req domain.ListCustomerRequest) (domain.ListCustomerResponse, error) {
	var cursor *domain.Cursor
	if strings.TrimSpace(req.PageToken) != "" {
		decoded, err := pagination.DecodeCursor(req.PageToken)
		if err != nil {
			return domain.ListCustomerResponse{}, domain.ErrInvalidPageToken
		}
		createdAt, err := decoded.CreatedAtTime()
		if err != nil {
			return domain.ListCustomerResponse{}, domain.ErrInvalidPageToken
		}
		id, err := snowflake.ParseString(decoded.ID)
		if err != nil {
			return domain.ListCustomerResponse{}, domain.ErrInvalidPageToken
		}
		cursor = &domain.Cursor{ID: id, CreatedAt: createdAt}
	}

	limit := req.Limit()
	items, err := s.repo.List(ctx, s.db, domain.ListFilter{
		Search:     req.Search,
		AreaID:     req.AreaID,
		DriverID:   req.DriverID,
		TankTypeID: req.TankTypeID,
		Cursor:     cursor,
		Limit:      limit,
	})
	if err != nil {
		return domain.ListCustomerResponse{}, err
	}

	items, pageInfo := pagination.Trim(items, limit, func(item *domain.Customer) pagination.Cursor {
		return pagination.Cursor{
			ID:        item.ID.String(),
			CreatedAt: item.CreatedAt.UTC().Format(time.RFC3339Nano),
		}
	})

	customers := make([]domain.Customer, 0, len(items))
	for _, item := range items {
		if item != nil {
			customers = append(customers, *item)
		}
	}
	return domain.ListCustomerResponse{PageInfo: pageInfo, Customers: customers}, nil
}

func (s *Service) UpdateLocation(ctx context.Context, id snowflake.ID, lat, lng float64) (domain.Customer, error) {
	if err := validateLocation(lat, lng); err != nil {
		return domain.Customer{}, err
	}
	if _, err := s.Get(ctx, id); err != nil {
		return domain.Customer{}, err
	}

	if err := s.repo.UpdateLocation(ctx, s.db, id, lat, lng, s.clock.Now()); err != nil {
		return domain.Customer{}, err
	}

	s.feed.Publish(changefeed.Event{Table: changefeed.TableCustomers, Op: changefeed.OpUpdate})
	return s.Get(ctx, id)
}

func (s *Service) UploadDocument(ctx context.Context, id snowflake.ID, doc domain.Document) (domain.Customer, error) {
	if doc.Body == nil || strings.TrimSpace(doc.FileName) == "" {
		return domain.Customer{}, domain.ErrInvalidFile
	}
	customer, err := s.Get(ctx, id)
	if err != nil {
		return domain.Customer{}, err
	}

	name := storage.ObjectName("doc", doc.FileName, s.clock.Now())
	url, err := s.storage.Upload(ctx, storage.BucketCustomerDocs, name, doc.ContentType, doc.Body)
	if err != nil {
		if errors.Is(err, storage.ErrEmptyObject) {
			return domain.Customer{}, domain.ErrInvalidFile
		}
		s.log.Error("upload customer document", zap.String("customer_id", id.String()), zap.Error(err))
		return domain.Customer{}, err
	}

	customer.Documents = append(customer.Documents, url)
	customer.UpdatedAt = s.clock.Now()
	if err := s.repo.UpdateDocuments(ctx, s.db, &customer); err != nil {
		return domain.Customer{}, err
	}

	s.feed.Publish(changefeed.Event{Table: changefeed.TableCustomers, Op: changefeed.OpUpdate})
	return customer, nil
}

func (s *Service) Map(ctx context.Context, req domain.MapRequest) (*geojson.FeatureCollection, error) {
	if req.Near != nil && !worldBound.Contains(*req.Near) {
		return nil, domain.ErrInvalidLocation
	}

	items, err := s.repo.List(ctx, s.db, domain.ListFilter{
		AreaID:      req.AreaID,
		DriverID:    req.DriverID,
		LocatedOnly: true,
	})
	if err != nil {
		return nil, err
	}

	features := make([]*geojson.Feature, 0, len(items))
	for _, item := range items {
		point, ok := item.Location()
		if !ok {
			continue
		}
		feature := geojson.NewFeature(point)
		feature.ID = item.ID.String()
		feature.Properties["name"] = item.Name
		feature.Properties["tank_no"] = item.TankNo
		feature.Properties["phone"] = item.Phone
		feature.Properties["area_name"] = item.AreaName
		feature.Properties["driver_name"] = item.DriverName
		feature.Properties["tank_type_name"] = item.TankTypeName
		if req.Near != nil {
			feature.Properties["distance_m"] = math.Round(geo.Distance(*req.Near, point))
		}
		features = append(features, feature)
	}
	if req.Near != nil {
		sort.SliceStable(features, func(i, j int) bool {
			return features[i].Properties.MustFloat64("distance_m") < features[j].Properties.MustFloat64("distance_m")
		})
	}

	collection := geojson.NewFeatureCollection()
	collection.Features = features
	return collection, nil
}

func (s *Service) validate(ctx context.Context, customer domain.Customer) error {
	if customer.Name == "" {
		return domain.ErrInvalidName
	}
	if customer.TankNo == "" {
		return domain.ErrInvalidTankNo
	}

	count, err := s.repo.CountTankNo(ctx, s.db, customer.TankNo, customer.ID)
	if err != nil {
		return err
	}
	if count > 0 {
		return domain.ErrTankNumberExists
	}

	refs := []struct {
		table string
		id    *snowflake.ID
	}{
		{"areas", customer.AreaID},
		{"drivers", customer.DriverID},
		{"tank_types", customer.TankTypeID},
	}
	for _, ref := range refs {
		if ref.id == nil {
			continue
		}
		found, err := s.repo.CountReference(ctx, s.db, ref.table, *ref.id)
		if err != nil {
			return err
		}
		if found == 0 {
			return domain.ErrInvalidReference
		}
	}
	return nil
}

func validateLocation(lat, lng float64) error {
	if math.IsNaN(lat) || math.IsNaN(lng) {
		return domain.ErrInvalidLocation
	}
	if !worldBound.Contains(orb.Point{lng, lat}) {
		return domain.ErrInvalidLocation
	}
	return nil
}

func pick(current, next *snowflake.ID, unset bool) *snowflake.ID {
	switch {
	case unset:
		return nil
	case next != nil:
		return next
	default:
		return current
	}
}
