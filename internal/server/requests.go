package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	auditdomain "github.com/smallbiznis/aquaflow/internal/audit/domain"
	obstracing "github.com/smallbiznis/aquaflow/internal/observability/tracing"
	requestdomain "github.com/smallbiznis/aquaflow/internal/request/domain"
	"github.com/smallbiznis/aquaflow/pkg/db/pagination"
)

type createRequestRequest struct {
	CustomerID  optionalID `json:"customer_id"`
	RequestType string     `json:"request_type"`
	DriverID    optionalID `json:"driver_id"`
	Notes       string     `json:"notes"`
	CreatedAt   *time.Time `json:"created_at"`
}

type requestDebtFlag struct {
	IsDebt bool `json:"is_debt"`
}

type updateRequestDriverRequest struct {
	DriverID optionalID `json:"driver_id"`
}

type updateRequestDateRequest struct {
	CreatedAt *time.Time `json:"created_at"`
}

type listRequestsQuery struct {
	pagination.Pagination
	Status      string `form:"status"`
	RequestType string `form:"request_type"`
	Search      string `form:"search"`
}

func (s *Server) ListRequests(c *gin.Context) {
	var query listRequestsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	customerID, ok := idFilter(c, "customer_id")
	if !ok {
		return
	}
	driverID, ok := idFilter(c, "driver_id")
	if !ok {
		return
	}
	areaID, ok := idFilter(c, "area_id")
	if !ok {
		return
	}
	createdFrom, createdTo, ok := timeRange(c, "created_from", "created_to")
	if !ok {
		return
	}

	resp, err := s.requestSvc.List(c.Request.Context(), requestdomain.ListRequestsRequest{
		Pagination: pagination.Pagination{
			PageToken: strings.TrimSpace(query.PageToken),
			PageSize:  query.PageSize,
		},
		Status:      strings.TrimSpace(query.Status),
		RequestType: strings.TrimSpace(query.RequestType),
		CustomerID:  customerID,
		DriverID:    driverID,
		AreaID:      areaID,
		Search:      strings.TrimSpace(query.Search),
		CreatedFrom: createdFrom,
		CreatedTo:   createdTo,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetRequestByID(c *gin.Context) {
	req, err := s.requestSvc.Get(c.Request.Context(), pathID(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": req})
}

func (s *Server) CreateRequest(c *gin.Context) {
	s.createRequest(c, false)
}

func (s *Server) CreateDirectRequest(c *gin.Context) {
	s.createRequest(c, true)
}

func (s *Server) createRequest(c *gin.Context, direct bool) {
	var body createRequestRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	customerID, err := body.CustomerID.ID()
	if err != nil || customerID == nil {
		AbortWithError(c, newValidationError("customer_id", "invalid_customer", "customer_id is required"))
		return
	}
	driverID, err := body.DriverID.ID()
	if err != nil {
		AbortWithError(c, newValidationError("driver_id", "invalid_driver", "invalid driver_id"))
		return
	}

	req := requestdomain.CreateRequest{
		CustomerID:  *customerID,
		RequestType: requestdomain.Type(strings.ToLower(strings.TrimSpace(body.RequestType))),
		DriverID:    driverID,
		Notes:       body.Notes,
		CreatedAt:   body.CreatedAt,
	}

	obstracing.Annotate(c.Request.Context(),
		obstracing.KeyRequestType.String(string(req.RequestType)),
		obstracing.KeyCustomerID.String(req.CustomerID.String()),
	)

	var created requestdomain.Request
	if direct {
		created, err = s.requestSvc.CreateDirect(c.Request.Context(), req)
	} else {
		created, err = s.requestSvc.Create(c.Request.Context(), req)
	}
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.audit(c, auditdomain.ActionRequestCreate, "request", created.ID.String(), map[string]any{
		"customer_id":  created.CustomerID.String(),
		"request_type": string(created.RequestType),
		"status":       string(created.Status),
	})

	c.JSON(http.StatusCreated, gin.H{"data": created})
}

func (s *Server) DeliverRequest(c *gin.Context) {
	var body requestDebtFlag
	if err := bindOptionalJSON(c, &body); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	req, err := s.requestSvc.MarkDelivered(c.Request.Context(), pathID(c), body.IsDebt)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": req})
}

func (s *Server) FinishRequest(c *gin.Context) {
	var body requestDebtFlag
	if err := bindOptionalJSON(c, &body); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	id := pathID(c)
	result, err := s.requestSvc.Finish(c.Request.Context(), id, body.IsDebt)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	obstracing.Annotate(c.Request.Context(),
		obstracing.KeyRequestType.String(result.Filling.FillingType),
		obstracing.KeyDebtCreated.Bool(result.Debt != nil),
	)

	metadata := map[string]any{
		"filling_id": result.Filling.ID.String(),
		"amount":     result.Filling.Amount,
		"is_debt":    body.IsDebt,
	}
	if result.Debt != nil {
		metadata["debt_id"] = result.Debt.ID.String()
	}
	s.audit(c, auditdomain.ActionRequestFinish, "request", id.String(), metadata)

	c.JSON(http.StatusOK, gin.H{"data": result})
}

func (s *Server) UpdateRequestDriver(c *gin.Context) {
	var body updateRequestDriverRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	driverID, err := body.DriverID.ID()
	if err != nil {
		AbortWithError(c, newValidationError("driver_id", "invalid_driver", "invalid driver_id"))
		return
	}

	req, err := s.requestSvc.UpdateDriver(c.Request.Context(), pathID(c), driverID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": req})
}

func (s *Server) UpdateRequestDate(c *gin.Context) {
	var body updateRequestDateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if body.CreatedAt == nil {
		AbortWithError(c, newValidationError("created_at", "invalid_date", "created_at is required"))
		return
	}

	req, err := s.requestSvc.UpdateDate(c.Request.Context(), pathID(c), *body.CreatedAt)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": req})
}

func (s *Server) DeleteRequest(c *gin.Context) {
	id := pathID(c)
	if err := s.requestSvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	s.audit(c, auditdomain.ActionRequestDelete, "request", id.String(), nil)

	c.Status(http.StatusNoContent)
}

// bindOptionalJSON accepts an empty body as the zero value.
func bindOptionalJSON(c *gin.Context, out any) error {
	if c.Request.ContentLength == 0 {
		return nil
	}
	return c.ShouldBindJSON(out)
}
