package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	auditdomain "github.com/smallbiznis/aquaflow/internal/audit/domain"
	driverdomain "github.com/smallbiznis/aquaflow/internal/driver/domain"
)

type createDriverRequest struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Role     string `json:"role"`
	JobTitle string `json:"job_title"`
	IsActive *bool  `json:"is_active"`
}

type updateDriverRequest struct {
	Name     *string `json:"name"`
	Phone    *string `json:"phone"`
	Role     *string `json:"role"`
	JobTitle *string `json:"job_title"`
	IsActive *bool   `json:"is_active"`
}

func (s *Server) ListDrivers(c *gin.Context) {
	activeOnly, err := parseOptionalBool(c.Query("active"))
	if err != nil {
		AbortWithError(c, newValidationError("active", "invalid_active", "invalid active"))
		return
	}

	req := driverdomain.ListDriverRequest{Role: strings.TrimSpace(c.Query("role"))}
	if activeOnly != nil {
		req.ActiveOnly = *activeOnly
	}

	drivers, err := s.driverSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": drivers})
}

func (s *Server) ListActiveDrivers(c *gin.Context) {
	drivers, err := s.driverSvc.ListActiveDrivers(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": drivers})
}

func (s *Server) CreateDriver(c *gin.Context) {
	var req createDriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	driver, err := s.driverSvc.Create(c.Request.Context(), driverdomain.CreateDriverRequest{
		Name:     req.Name,
		Phone:    req.Phone,
		Role:     driverdomain.Role(strings.ToLower(strings.TrimSpace(req.Role))),
		JobTitle: req.JobTitle,
		IsActive: req.IsActive,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.audit(c, auditdomain.ActionRegistryCreate, "driver", driver.ID.String(), map[string]any{
		"name": driver.Name,
		"role": string(driver.Role),
	})

	c.JSON(http.StatusCreated, gin.H{"data": driver})
}

func (s *Server) UpdateDriver(c *gin.Context) {
	var req updateDriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	update := driverdomain.UpdateDriverRequest{
		Name:     req.Name,
		Phone:    req.Phone,
		JobTitle: req.JobTitle,
		IsActive: req.IsActive,
	}
	if req.Role != nil {
		role := driverdomain.Role(strings.ToLower(strings.TrimSpace(*req.Role)))
		update.Role = &role
	}

	driver, err := s.driverSvc.Update(c.Request.Context(), pathID(c), update)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.audit(c, auditdomain.ActionRegistryUpdate, "driver", driver.ID.String(), nil)

	c.JSON(http.StatusOK, gin.H{"data": driver})
}

func (s *Server) DeleteDriver(c *gin.Context) {
	id := pathID(c)
	if err := s.driverSvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	s.audit(c, auditdomain.ActionRegistryDelete, "driver", id.String(), nil)

	c.Status(http.StatusNoContent)
}

func (s *Server) UploadDriverPhoto(c *gin.Context) {
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

	driver, err := s.driverSvc.UploadPhoto(c.Request.Context(), pathID(c), driverdomain.UploadPhotoRequest{
		FileName:    fh.Filename,
		ContentType: uploadContentType(fh),
		Body:        file,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.audit(c, auditdomain.ActionRegistryUpdate, "driver", driver.ID.String(), map[string]any{"photo": fh.Filename})

	c.JSON(http.StatusOK, gin.H{"data": driver})
}
