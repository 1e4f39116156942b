package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/paulmach/orb"
	archiverepository "github.com/smallbiznis/aquaflow/internal/archive/repository"
	archiveservice "github.com/smallbiznis/aquaflow/internal/archive/service"
	"github.com/smallbiznis/aquaflow/internal/clock"
	"github.com/smallbiznis/aquaflow/internal/customer/domain"
	"github.com/smallbiznis/aquaflow/internal/customer/repository"
	"github.com/smallbiznis/aquaflow/internal/operatorcontext"
	"github.com/smallbiznis/aquaflow/internal/storage"
	"github.com/smallbiznis/aquaflow/internal/testutil"
	"github.com/smallbiznis/aquaflow/pkg/db/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T, repo domain.Repository) (domain.Service, *gorm.DB, *clock.FakeClock) {
	t.Helper()
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	if repo == nil {
		repo = repository.Provide()
	}

	db := testutil.NewDB(t)
	clk := clock.NewFakeClock(time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC))
	return New(Params{
		DB:      db,
		Log:     zap.NewNop(),
		GenID:   node,
		Clock:   clk,
		Repo:    repo,
		Archive: archiveservice.New(archiveservice.Params{
			DB:    db,
			Log:   zap.NewNop(),
			GenID: node,
			Clock: clk,
			Repo:  archiverepository.Provide(),
		}),
		Storage: storage.NewLocalProvider(t.TempDir(), "/uploads"),
	}), db, clk
}

// skipPrecheck hides existing tank numbers so the unique index has to catch the duplicate.
type skipPrecheck struct {
	domain.Repository
}

func (skipPrecheck) CountTankNo(context.Context, *gorm.DB, string, snowflake.ID) (int64, error) {
	return 0, nil
}

func TestCreateRejectsDuplicateTankNumber(t *testing.T) {
	svc, _, _ := newTestService(t, nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.CreateCustomerRequest{Name: "Ali", TankNo: "T-100"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, domain.CreateCustomerRequest{Name: "Sara", TankNo: " T-100 "})
	assert.ErrorIs(t, err, domain.ErrTankNumberExists)
}

func TestUniqueIndexBacksTankNumberCheck(t *testing.T) {
	svc, _, _ := newTestService(t, skipPrecheck{repository.Provide()})
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.CreateCustomerRequest{Name: "Ali", TankNo: "T-100"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, domain.CreateCustomerRequest{Name: "Sara", TankNo: "T-100"})
	assert.ErrorIs(t, err, domain.ErrTankNumberExists)
}

func TestUpdateKeepsOwnTankNumber(t *testing.T) {
	svc, _, _ := newTestService(t, nil)
	ctx := context.Background()

	first, err := svc.Create(ctx, domain.CreateCustomerRequest{Name: "Ali", TankNo: "T-1"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, domain.CreateCustomerRequest{Name: "Sara", TankNo: "T-2"})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, first.ID, domain.UpdateCustomerRequest{Name: testutil.Ptr("Ali Hassan"), TankNo: testutil.Ptr("T-1")})
	require.NoError(t, err)
	assert.Equal(t, "Ali Hassan", updated.Name)

	_, err = svc.Update(ctx, first.ID, domain.UpdateCustomerRequest{TankNo: testutil.Ptr("T-2")})
	assert.ErrorIs(t, err, domain.ErrTankNumberExists)
}

func TestCreateResolvesReferenceNames(t *testing.T) {
	svc, db, _ := newTestService(t, nil)
	ctx := context.Background()
	areaID := testutil.InsertArea(t, db, "Karrada", true)
	tankID := testutil.InsertTankType(t, db, "1000L", 15000)

	customer, err := svc.Create(ctx, domain.CreateCustomerRequest{Name: "Ali", TankNo: "T-1", AreaID: &areaID, TankTypeID: &tankID})
	require.NoError(t, err)
	assert.Equal(t, "Karrada", customer.AreaName)
	assert.Equal(t, "1000L", customer.TankTypeName)
	assert.Empty(t, customer.DriverName)

	missing := snowflake.ID(5)
	_, err = svc.Create(ctx, domain.CreateCustomerRequest{Name: "Sara", TankNo: "T-2", DriverID: &missing})
	assert.ErrorIs(t, err, domain.ErrInvalidReference)
}

func TestListFiltersAndPages(t *testing.T) {
	svc, db, clk := newTestService(t, nil)
	ctx := context.Background()
	areaID := testutil.InsertArea(t, db, "Karrada", true)

	for _, tank := range []string{"A-1", "A-2", "A-3"} {
		_, err := svc.Create(ctx, domain.CreateCustomerRequest{Name: "Customer " + tank, TankNo: tank, AreaID: &areaID})
		require.NoError(t, err)
		clk.Advance(time.Minute)
	}
	_, err := svc.Create(ctx, domain.CreateCustomerRequest{Name: "Elsewhere", TankNo: "B-1"})
	require.NoError(t, err)

	page, err := svc.List(ctx, domain.ListCustomerRequest{AreaID: &areaID, Pagination: pagination.Pagination{PageSize: 2}})
	require.NoError(t, err)
	require.Len(t, page.Customers, 2)
	assert.True(t, page.HasMore)
	assert.Equal(t, "A-3", page.Customers[0].TankNo)

	next, err := svc.List(ctx, domain.ListCustomerRequest{AreaID: &areaID, Pagination: pagination.Pagination{PageSize: 2, PageToken: page.NextPageToken}})
	require.NoError(t, err)
	require.Len(t, next.Customers, 1)
	assert.Equal(t, "A-1", next.Customers[0].TankNo)
	assert.False(t, next.HasMore)

	search, err := svc.List(ctx, domain.ListCustomerRequest{Search: "B-"})
	require.NoError(t, err)
	require.Len(t, search.Customers, 1)
	assert.Equal(t, "Elsewhere", search.Customers[0].Name)

	_, err = svc.List(ctx, domain.ListCustomerRequest{Pagination: pagination.Pagination{PageToken: "garbage"}})
	assert.ErrorIs(t, err, domain.ErrInvalidPageToken)
}

func TestUpdateLocationValidatesBounds(t *testing.T) {
	svc, _, _ := newTestService(t, nil)
	ctx := context.Background()

	customer, err := svc.Create(ctx, domain.CreateCustomerRequest{Name: "Ali", TankNo: "T-1"})
	require.NoError(t, err)

	_, err = svc.UpdateLocation(ctx, customer.ID, 95, 44)
	assert.ErrorIs(t, err, domain.ErrInvalidLocation)

	updated, err := svc.UpdateLocation(ctx, customer.ID, 33.3152, 44.3661)
	require.NoError(t, err)
	point, ok := updated.Location()
	require.True(t, ok)
	assert.Equal(t, orb.Point{44.3661, 33.3152}, point)
}

func TestMapSortsByDistance(t *testing.T) {
	svc, _, _ := newTestService(t, nil)
	ctx := context.Background()

	far, err := svc.Create(ctx, domain.CreateCustomerRequest{Name: "Basra", TankNo: "T-1", Latitude: testutil.Ptr(30.5085), Longitude: testutil.Ptr(47.7804)})
	require.NoError(t, err)
	near, err := svc.Create(ctx, domain.CreateCustomerRequest{Name: "Karrada", TankNo: "T-2", Latitude: testutil.Ptr(33.3050), Longitude: testutil.Ptr(44.4250)})
	require.NoError(t, err)
	_, err = svc.Create(ctx, domain.CreateCustomerRequest{Name: "Unlocated", TankNo: "T-3"})
	require.NoError(t, err)

	baghdad := orb.Point{44.3661, 33.3152}
	collection, err := svc.Map(ctx, domain.MapRequest{Near: &baghdad})
	require.NoError(t, err)
	require.Len(t, collection.Features, 2)
	assert.Equal(t, near.ID.String(), collection.Features[0].ID)
	assert.Equal(t, far.ID.String(), collection.Features[1].ID)
	assert.Less(t, collection.Features[0].Properties.MustFloat64("distance_m"), 10_000.0)
	assert.Equal(t, "T-2", collection.Features[0].Properties["tank_no"])
}

func TestUploadDocumentAppendsURL(t *testing.T) {
	svc, _, _ := newTestService(t, nil)
	ctx := context.Background()

	customer, err := svc.Create(ctx, domain.CreateCustomerRequest{Name: "Ali", TankNo: "T-1"})
	require.NoError(t, err)

	updated, err := svc.UploadDocument(ctx, customer.ID, domain.Document{FileName: "ID Card.pdf", ContentType: "application/pdf", Body: strings.NewReader("%PDF")})
	require.NoError(t, err)
	require.Len(t, updated.Documents, 1)
	assert.True(t, strings.HasPrefix(updated.Documents[0], "/uploads/customer-docs/doc-"))
	assert.True(t, strings.HasSuffix(updated.Documents[0], "-id-card.pdf"))
}

func TestDeleteRefusesOutstandingDebt(t *testing.T) {
	svc, db, _ := newTestService(t, nil)
	ctx := context.Background()

	customer, err := svc.Create(ctx, domain.CreateCustomerRequest{Name: "Ali", TankNo: "T-1"})
	require.NoError(t, err)
	fillingID := testutil.InsertFilling(t, db, &customer.ID, 15000, true, testutil.Base)
	debtID := testutil.InsertDebt(t, db, customer.ID, &fillingID, 15000, 15000, testutil.Base)

	assert.ErrorIs(t, svc.Delete(ctx, customer.ID), domain.ErrHasOutstandingDebt)

	require.NoError(t, db.Exec(`UPDATE debts SET remaining_amount = 0, is_paid = ? WHERE id = ?`, true, debtID).Error)
	require.NoError(t, svc.Delete(ctx, customer.ID))

	var detached int64
	require.NoError(t, db.Raw(`SELECT COUNT(1) FROM fillings WHERE id = ? AND customer_id IS NULL`, fillingID).Scan(&detached).Error)
	assert.Equal(t, int64(1), detached)

	var settled int64
	require.NoError(t, db.Raw(`SELECT COUNT(1) FROM debts WHERE id = ? AND customer_id IS NULL AND is_paid = ?`, debtID, true).Scan(&settled).Error)
	assert.Equal(t, int64(1), settled)

	_, err = svc.Get(ctx, customer.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteArchivesEveryRequest(t *testing.T) {
	svc, db, _ := newTestService(t, nil)
	ctx := operatorcontext.WithOperator(context.Background(), operatorcontext.Operator{ID: 7, Username: "admin", Role: "admin"})

	customer, err := svc.Create(ctx, domain.CreateCustomerRequest{Name: "Ali", TankNo: "T-1"})
	require.NoError(t, err)
	pending := testutil.InsertRequest(t, db, customer.ID, "new_filling", "pending", testutil.Base)
	delivered := testutil.InsertRequest(t, db, customer.ID, "change_water", "delivered", testutil.Base.Add(time.Hour))

	require.NoError(t, svc.Delete(ctx, customer.ID))

	var remaining int64
	require.NoError(t, db.Raw(`SELECT COUNT(1) FROM requests WHERE customer_id = ?`, customer.ID).Scan(&remaining).Error)
	assert.Zero(t, remaining)

	type archived struct {
		OriginalID       snowflake.ID
		Source           string
		CustomerName     string
		TankNo           string
		RequestType      string
		StatusAtDeletion string
		DeletedBy        string
	}
	var rows []archived
	require.NoError(t, db.Raw(
		`SELECT original_id, source, customer_name, tank_no, request_type, status_at_deletion, deleted_by
		 FROM deleted_records WHERE customer_id = ? ORDER BY original_created_at`,
		customer.ID,
	).Scan(&rows).Error)
	require.Len(t, rows, 2)

	assert.Equal(t, pending, rows[0].OriginalID)
	assert.Equal(t, "pending", rows[0].StatusAtDeletion)
	assert.Equal(t, "new_filling", rows[0].RequestType)
	assert.Equal(t, delivered, rows[1].OriginalID)
	assert.Equal(t, "delivered", rows[1].StatusAtDeletion)
	for _, row := range rows {
		assert.Equal(t, "request", row.Source)
		assert.Equal(t, "Ali", row.CustomerName)
		assert.Equal(t, "T-1", row.TankNo)
		assert.Equal(t, "admin", row.DeletedBy)
	}
}
