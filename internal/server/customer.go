package server

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/paulmach/orb"
	auditdomain "github.com/smallbiznis/aquaflow/internal/audit/domain"
	customerdomain "github.com/smallbiznis/aquaflow/internal/customer/domain"
	"github.com/smallbiznis/aquaflow/pkg/db/pagination"
)

type createCustomerRequest struct {
	Name       string     `json:"name"`
	Phone      string     `json:"phone"`
	TankNo     string     `json:"tank_no"`
	AreaID     optionalID `json:"area_id"`
	DriverID   optionalID `json:"driver_id"`
	TankTypeID optionalID `json:"tank_type_id"`
	Latitude   *float64   `json:"latitude"`
	Longitude  *float64   `json:"longitude"`
	Notes      string     `json:"notes"`
}

type updateCustomerRequest struct {
	Name       *string    `json:"name"`
	Phone      *string    `json:"phone"`
	TankNo     *string    `json:"tank_no"`
	AreaID     optionalID `json:"area_id"`
	DriverID   optionalID `json:"driver_id"`
	TankTypeID optionalID `json:"tank_type_id"`
	Notes      *string    `json:"notes"`
}

type updateLocationRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

type listCustomersQuery struct {
	pagination.Pagination
	Search string `form:"search"`
}

func (s *Server) ListCustomers(c *gin.Context) {
	var query listCustomersQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	areaID, ok := idFilter(c, "area_id")
	if !ok {
		return
	}
	driverID, ok := idFilter(c, "driver_id")
	if !ok {
		return
	}
	tankTypeID, ok := idFilter(c, "tank_type_id")
	if !ok {
		return
	}

	resp, err := s.customerSvc.List(c.Request.Context(), customerdomain.ListCustomerRequest{
		Pagination: pagination.Pagination{
			PageToken: strings.TrimSpace(query.PageToken),
			PageSize:  query.PageSize,
		},
		Search:     strings.TrimSpace(query.Search),
		AreaID:     areaID,
		DriverID:   driverID,
		TankTypeID: tankTypeID,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CustomerMap(c *gin.Context) {
	areaID, ok := idFilter(c, "area_id")
	if !ok {
		return
	}
	driverID, ok := idFilter(c, "driver_id")
	if !ok {
		return
	}

	nearLat, err := parseOptionalFloat(c.Query("near_lat"))
	if err != nil {
		AbortWithError(c, newValidationError("near_lat", "invalid_location", "invalid near_lat"))
		return
	}
	nearLng, err := parseOptionalFloat(c.Query("near_lng"))
	if err != nil {
		AbortWithError(c, newValidationError("near_lng", "invalid_location", "invalid near_lng"))
		return
	}
	if (nearLat == nil) != (nearLng == nil) {
		AbortWithError(c, newValidationError("near_lat", "invalid_location", "near_lat and near_lng must be sent together"))
		return
	}

	req := customerdomain.MapRequest{AreaID: areaID, DriverID: driverID}
	if nearLat != nil {
		req.Near = &orb.Point{*nearLng, *nearLat}
	}

	fc, err := s.customerSvc.Map(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	body, err := fc.MarshalJSON()
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Data(http.StatusOK, "application/geo+json", body)
}

func (s *Server) GetCustomerByID(c *gin.Context) {
	customer, err := s.customerSvc.Get(c.Request.Context(), pathID(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": customer})
}

func (s *Server) CreateCustomer(c *gin.Context) {
	var req createCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	areaID, driverID, tankTypeID, ok := customerReferences(c, req.AreaID, req.DriverID, req.TankTypeID)
	if !ok {
		return
	}

	customer, err := s.customerSvc.Create(c.Request.Context(), customerdomain.CreateCustomerRequest{
		Name:       req.Name,
		Phone:      req.Phone,
		TankNo:     req.TankNo,
		AreaID:     areaID,
		DriverID:   driverID,
		TankTypeID: tankTypeID,
		Latitude:   req.Latitude,
		Longitude:  req.Longitude,
		Notes:      req.Notes,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.audit(c, auditdomain.ActionRegistryCreate, "customer", customer.ID.String(), map[string]any{
		"name":    customer.Name,
		"tank_no": customer.TankNo,
	})

	c.JSON(http.StatusCreated, gin.H{"data": customer})
}

func (s *Server) UpdateCustomer(c *gin.Context) {
	var req updateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	areaID, driverID, tankTypeID, ok := customerReferences(c, req.AreaID, req.DriverID, req.TankTypeID)
	if !ok {
		return
	}

	customer, err := s.customerSvc.Update(c.Request.Context(), pathID(c), customerdomain.UpdateCustomerRequest{
		Name:          req.Name,
		Phone:         req.Phone,
		TankNo:        req.TankNo,
		AreaID:        areaID,
		ClearArea:     req.AreaID.Clear(),
		DriverID:      driverID,
		ClearDriver:   req.DriverID.Clear(),
		TankTypeID:    tankTypeID,
		ClearTankType: req.TankTypeID.Clear(),
		Notes:         req.Notes,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.audit(c, auditdomain.ActionRegistryUpdate, "customer", customer.ID.String(), nil)

	c.JSON(http.StatusOK, gin.H{"data": customer})
}

func (s *Server) DeleteCustomer(c *gin.Context) {
	id := pathID(c)
	if err := s.customerSvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	s.audit(c, auditdomain.ActionRegistryDelete, "customer", id.String(), nil)

	c.Status(http.StatusNoContent)
}

func (s *Server) UpdateCustomerLocation(c *gin.Context) {
	var req updateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if req.Latitude == nil || req.Longitude == nil {
		AbortWithError(c, newValidationError("latitude", "invalid_location", "latitude and longitude are required"))
		return
	}

	customer, err := s.customerSvc.UpdateLocation(c.Request.Context(), pathID(c), *req.Latitude, *req.Longitude)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.audit(c, auditdomain.ActionRegistryUpdate, "customer", customer.ID.String(), map[string]any{
		"latitude":  *req.Latitude,
		"longitude": *req.Longitude,
	})

	c.JSON(http.StatusOK, gin.H{"data": customer})
}

func (s *Server) UploadCustomerDocument(c *gin.Context) {
	limitUpload(c)
	fh, err := c.FormFile("file")
	if err != nil {
		AbortWithError(c, uploadError("file", err))
		return
	}
	file, err := fh.Open()
	if err != nil {
		AbortWithError(c, uploadError("file", err))
		return
	}
	defer file.Close()

	customer, err := s.customerSvc.UploadDocument(c.Request.Context(), pathID(c), customerdomain.Document{
		FileName:    fh.Filename,
		ContentType: uploadContentType(fh),
		Body:        file,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.audit(c, auditdomain.ActionCustomerDocUpload, "customer", customer.ID.String(), map[string]any{"file_name": fh.Filename})

	c.JSON(http.StatusOK, gin.H{"data": customer})
}

func (s *Server) ListCustomerDebts(c *gin.Context) {
	includePaid, err := parseOptionalBool(c.Query("include_paid"))
	if err != nil {
		AbortWithError(c, newValidationError("include_paid", "invalid_include_paid", "invalid include_paid"))
		return
	}

	debts, err := s.debtSvc.CustomerDebts(c.Request.Context(), pathID(c), includePaid != nil && *includePaid)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": debts})
}

func (s *Server) CustomerDebtStatement(c *gin.Context) {
	id := pathID(c)
	reader, err := s.debtSvc.Statement(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=\"debt-statement-%s.pdf\"", id.String()))
	c.Data(http.StatusOK, "application/pdf", body)
}

func customerReferences(c *gin.Context, area, driver, tankType optionalID) (areaID, driverID, tankTypeID *snowflake.ID, ok bool) {
	var err error
	if areaID, err = area.ID(); err != nil {
		AbortWithError(c, newValidationError("area_id", "invalid_area_id", "invalid area_id"))
		return nil, nil, nil, false
	}
	if driverID, err = driver.ID(); err != nil {
		AbortWithError(c, newValidationError("driver_id", "invalid_driver_id", "invalid driver_id"))
		return nil, nil, nil, false
	}
	if tankTypeID, err = tankType.ID(); err != nil {
		AbortWithError(c, newValidationError("tank_type_id", "invalid_tank_type_id", "invalid tank_type_id"))
		return nil, nil, nil, false
	}
	return areaID, driverID, tankTypeID, true
}
