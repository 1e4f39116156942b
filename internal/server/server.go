package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/aquaflow/internal/archive"
	archivedomain "github.com/smallbiznis/aquaflow/internal/archive/domain"
	"github.com/smallbiznis/aquaflow/internal/area"
	areadomain "github.com/smallbiznis/aquaflow/internal/area/domain"
	"github.com/smallbiznis/aquaflow/internal/audit"
	auditdomain "github.com/smallbiznis/aquaflow/internal/audit/domain"
	"github.com/smallbiznis/aquaflow/internal/authorization"
	"github.com/smallbiznis/aquaflow/internal/car"
	cardomain "github.com/smallbiznis/aquaflow/internal/car/domain"
	"github.com/smallbiznis/aquaflow/internal/changefeed"
	"github.com/smallbiznis/aquaflow/internal/config"
	"github.com/smallbiznis/aquaflow/internal/customer"
	customerdomain "github.com/smallbiznis/aquaflow/internal/customer/domain"
	"github.com/smallbiznis/aquaflow/internal/debt"
	debtdomain "github.com/smallbiznis/aquaflow/internal/debt/domain"
	"github.com/smallbiznis/aquaflow/internal/driver"
	driverdomain "github.com/smallbiznis/aquaflow/internal/driver/domain"
	"github.com/smallbiznis/aquaflow/internal/filling"
	fillingdomain "github.com/smallbiznis/aquaflow/internal/filling/domain"
	"github.com/smallbiznis/aquaflow/internal/lookup"
	lookupdomain "github.com/smallbiznis/aquaflow/internal/lookup/domain"
	"github.com/smallbiznis/aquaflow/internal/observability"
	obsmiddleware "github.com/smallbiznis/aquaflow/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/aquaflow/internal/observability/metrics"
	obstracing "github.com/smallbiznis/aquaflow/internal/observability/tracing"
	"github.com/smallbiznis/aquaflow/internal/operator"
	operatordomain "github.com/smallbiznis/aquaflow/internal/operator/domain"
	"github.com/smallbiznis/aquaflow/internal/overview"
	overviewdomain "github.com/smallbiznis/aquaflow/internal/overview/domain"
	"github.com/smallbiznis/aquaflow/internal/providers"
	"github.com/smallbiznis/aquaflow/internal/ratelimit"
	"github.com/smallbiznis/aquaflow/internal/request"
	requestdomain "github.com/smallbiznis/aquaflow/internal/request/domain"
	"github.com/smallbiznis/aquaflow/internal/storage"
	"github.com/smallbiznis/aquaflow/internal/tanktype"
	tanktypedomain "github.com/smallbiznis/aquaflow/internal/tanktype/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// maxUploadBytes caps multipart bodies for photos and documents.
const maxUploadBytes = 20 << 20

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	authorization.Module,
	audit.Module,
	operator.Module,
	ratelimit.Module,
	storage.Module,
	providers.Module,
	changefeed.Module,
	archive.Module,
	area.Module,
	tanktype.Module,
	driver.Module,
	car.Module,
	customer.Module,
	filling.Module,
	debt.Module,
	request.Module,
	lookup.Module,
	overview.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", srv.Addr))
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine      *gin.Engine
	cfg         config.Config
	db          *gorm.DB
	genID       *snowflake.Node
	log         *zap.Logger
	operatorSvc operatordomain.Service
	authzSvc    authorization.Service
	auditSvc    auditdomain.Service
	limiter     *ratelimit.Limiter
	feed        *changefeed.Hub
	areaSvc     areadomain.Service
	tankTypeSvc tanktypedomain.Service
	driverSvc   driverdomain.Service
	carSvc      cardomain.Service
	customerSvc customerdomain.Service
	requestSvc  requestdomain.Service
	fillingSvc  fillingdomain.Service
	debtSvc     debtdomain.Service
	archiveSvc  archivedomain.Service
	lookupSvc   lookupdomain.Service
	overviewSvc overviewdomain.Service
}

type ServerParams struct {
	fx.In

	Gin         *gin.Engine
	Cfg         config.Config
	DB          *gorm.DB
	GenID       *snowflake.Node
	Log         *zap.Logger
	OperatorSvc operatordomain.Service
	AuthzSvc    authorization.Service
	AuditSvc    auditdomain.Service `optional:"true"`
	Limiter     *ratelimit.Limiter  `optional:"true"`
	Feed        *changefeed.Hub     `optional:"true"`
	AreaSvc     areadomain.Service
	TankTypeSvc tanktypedomain.Service
	DriverSvc   driverdomain.Service
	CarSvc      cardomain.Service
	CustomerSvc customerdomain.Service
	RequestSvc  requestdomain.Service
	FillingSvc  fillingdomain.Service
	DebtSvc     debtdomain.Service
	ArchiveSvc  archivedomain.Service
	LookupSvc   lookupdomain.Service
	OverviewSvc overviewdomain.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:      p.Gin,
		cfg:         p.Cfg,
		db:          p.DB,
		genID:       p.GenID,
		log:         p.Log.Named("http.server"),
		operatorSvc: p.OperatorSvc,
		authzSvc:    p.AuthzSvc,
		auditSvc:    p.AuditSvc,
		limiter:     p.Limiter,
		feed:        p.Feed,
		areaSvc:     p.AreaSvc,
		tankTypeSvc: p.TankTypeSvc,
		driverSvc:   p.DriverSvc,
		carSvc:      p.CarSvc,
		customerSvc: p.CustomerSvc,
		requestSvc:  p.RequestSvc,
		fillingSvc:  p.FillingSvc,
		debtSvc:     p.DebtSvc,
		archiveSvc:  p.ArchiveSvc,
		lookupSvc:   p.LookupSvc,
		overviewSvc: p.OverviewSvc,
	}

	svc.registerAuthRoutes()
	svc.registerAPIRoutes()
	svc.registerUploads()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAuthRoutes() {
	auth := s.engine.Group("/auth")
	auth.Use(ClientContext())

	auth.POST("/login", s.Login)
	auth.GET("/me", s.AuthRequired(), s.Me)
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")
	api.Use(ClientContext())
	api.Use(s.AuthRequired())

	// -------- Areas --------
	api.GET("/areas", s.authorize(authorization.ObjectArea, authorization.ActionView), s.ListAreas)
	api.GET("/areas/active", s.authorize(authorization.ObjectArea, authorization.ActionView), s.ListActiveAreas)
	api.GET("/areas/customer-counts", s.authorize(authorization.ObjectArea, authorization.ActionView), s.AreaCustomerCounts)
	api.POST("/areas", s.authorize(authorization.ObjectArea, authorization.ActionCreate), s.CreateArea)
	api.PATCH("/areas/:id", s.authorize(authorization.ObjectArea, authorization.ActionUpdate), s.UpdateArea)
	api.DELETE("/areas/:id", s.authorize(authorization.ObjectArea, authorization.ActionDelete), s.DeleteArea)

	// -------- Tank types --------
	api.GET("/tank-types", s.authorize(authorization.ObjectTankType, authorization.ActionView), s.ListTankTypes)
	api.GET("/tank-types/active", s.authorize(authorization.ObjectTankType, authorization.ActionView), s.ListActiveTankTypes)
	api.GET("/tank-types/customer-counts", s.authorize(authorization.ObjectTankType, authorization.ActionView), s.TankTypeCustomerCounts)
	api.POST("/tank-types", s.authorize(authorization.ObjectTankType, authorization.ActionCreate), s.CreateTankType)
	api.PATCH("/tank-types/:id", s.authorize(authorization.ObjectTankType, authorization.ActionUpdate), s.UpdateTankType)
	api.DELETE("/tank-types/:id", s.authorize(authorization.ObjectTankType, authorization.ActionDelete), s.DeleteTankType)

	// -------- Drivers and staff --------
	api.GET("/drivers", s.authorize(authorization.ObjectDriver, authorization.ActionView), s.ListDrivers)
	api.GET("/drivers/active", s.authorize(authorization.ObjectDriver, authorization.ActionView), s.ListActiveDrivers)
	api.POST("/drivers", s.authorize(authorization.ObjectDriver, authorization.ActionCreate), s.CreateDriver)
	api.PATCH("/drivers/:id", s.authorize(authorization.ObjectDriver, authorization.ActionUpdate), s.UpdateDriver)
	api.DELETE("/drivers/:id", s.authorize(authorization.ObjectDriver, authorization.ActionDelete), s.DeleteDriver)
	api.POST("/drivers/:id/photo", s.authorize(authorization.ObjectDriver, authorization.ActionUpdate), s.UploadDriverPhoto)

	// -------- Cars --------
	api.GET("/cars", s.authorize(authorization.ObjectCar, authorization.ActionView), s.ListCars)
	api.POST("/cars", s.authorize(authorization.ObjectCar, authorization.ActionCreate), s.CreateCar)
	api.PATCH("/cars/:id", s.authorize(authorization.ObjectCar, authorization.ActionUpdate), s.UpdateCar)
	api.DELETE("/cars/:id", s.authorize(authorization.ObjectCar, authorization.ActionDelete), s.DeleteCar)
	api.POST("/cars/:id/photos", s.authorize(authorization.ObjectCar, authorization.ActionUpdate), s.AddCarPhotos)

	// -------- Customers --------
	api.GET("/customers", s.authorize(authorization.ObjectCustomer, authorization.ActionView), s.ListCustomers)
	api.GET("/customers/map.geojson", s.authorize(authorization.ObjectCustomer, authorization.ActionView), s.CustomerMap)
	api.GET("/customers/:id", s.authorize(authorization.ObjectCustomer, authorization.ActionView), s.GetCustomerByID)
	api.POST("/customers", s.authorize(authorization.ObjectCustomer, authorization.ActionCreate), s.CreateCustomer)
	api.PATCH("/customers/:id", s.authorize(authorization.ObjectCustomer, authorization.ActionUpdate), s.UpdateCustomer)
	api.DELETE("/customers/:id", s.authorize(authorization.ObjectCustomer, authorization.ActionDelete), s.DeleteCustomer)
	api.PUT("/customers/:id/location", s.authorize(authorization.ObjectCustomer, authorization.ActionUpdate), s.UpdateCustomerLocation)
	api.POST("/customers/:id/documents", s.authorize(authorization.ObjectCustomer, authorization.ActionUpdate), s.UploadCustomerDocument)
	api.GET("/customers/:id/debts", s.authorize(authorization.ObjectDebt, authorization.ActionView), s.ListCustomerDebts)
	api.GET("/customers/:id/debt-statement.pdf", s.authorize(authorization.ObjectDebt, authorization.ActionView), s.CustomerDebtStatement)

	// -------- Requests --------
	api.GET("/requests", s.authorize(authorization.ObjectRequest, authorization.ActionView), s.ListRequests)
	api.GET("/requests/:id", s.authorize(authorization.ObjectRequest, authorization.ActionView), s.GetRequestByID)
	api.POST("/requests", s.authorize(authorization.ObjectRequest, authorization.ActionCreate), s.CreateRequest)
	api.POST("/requests/direct", s.authorize(authorization.ObjectRequest, authorization.ActionCreate), s.CreateDirectRequest)
	api.POST("/requests/:id/deliver", s.authorize(authorization.ObjectRequest, authorization.ActionRequestDeliver), s.DeliverRequest)
	api.POST("/requests/:id/finish", s.authorize(authorization.ObjectRequest, authorization.ActionRequestFinish), s.FinishRequest)
	api.PATCH("/requests/:id/driver", s.authorize(authorization.ObjectRequest, authorization.ActionUpdate), s.UpdateRequestDriver)
	api.PATCH("/requests/:id/date", s.authorize(authorization.ObjectRequest, authorization.ActionUpdate), s.UpdateRequestDate)
	api.DELETE("/requests/:id", s.authorize(authorization.ObjectRequest, authorization.ActionDelete), s.DeleteRequest)

	// -------- Fillings --------
	api.GET("/fillings", s.authorize(authorization.ObjectFilling, authorization.ActionView), s.ListFillings)
	api.GET("/fillings/:id", s.authorize(authorization.ObjectFilling, authorization.ActionView), s.GetFillingByID)
	api.POST("/fillings/external-sale", s.authorize(authorization.ObjectFilling, authorization.ActionExternalSale), s.RecordExternalSale)
	api.DELETE("/fillings/:id", s.authorize(authorization.ObjectFilling, authorization.ActionDelete), s.DeleteFilling)

	// -------- Debts --------
	api.GET("/debts", s.authorize(authorization.ObjectDebt, authorization.ActionView), s.ListOutstandingDebts)
	api.POST("/debts/payments", s.authorize(authorization.ObjectDebt, authorization.ActionDebtPay), s.RecordPayment)

	// -------- Archive, lookups, overview --------
	api.GET("/archive", s.authorize(authorization.ObjectArchive, authorization.ActionView), s.ListArchive)
	api.GET("/lookups", s.authorize(authorization.ObjectLookup, authorization.ActionView), s.GetLookups)
	api.GET("/overview", s.authorize(authorization.ObjectOverview, authorization.ActionView), s.GetOverview)

	// -------- Change feed --------
	api.GET("/changes", s.authorize(authorization.ObjectChanges, authorization.ActionView), s.StreamChanges)

	// -------- Operators and audit --------
	api.GET("/operators", s.authorize(authorization.ObjectOperator, authorization.ActionView), s.ListOperators)
	api.POST("/operators", s.authorize(authorization.ObjectOperator, authorization.ActionCreate), s.CreateOperator)
	api.GET("/audit-logs", s.authorize(authorization.ObjectAuditLog, authorization.ActionView), s.ListAuditLogs)
}

// registerUploads serves blobs written by the local storage driver.
func (s *Server) registerUploads() {
	if s.cfg.Storage.Driver == config.StorageDriverGCS {
		return
	}
	s.engine.Static("/uploads", s.cfg.Storage.LocalDir)
}
