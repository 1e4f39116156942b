package server

import (
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	auditdomain "github.com/smallbiznis/aquaflow/internal/audit/domain"
	cardomain "github.com/smallbiznis/aquaflow/internal/car/domain"
)

type createCarRequest struct {
	DriverID optionalID `json:"driver_id"`
	Name     string     `json:"name"`
	Color    string     `json:"color"`
	Note     string     `json:"note"`
}

type updateCarRequest struct {
	DriverID optionalID `json:"driver_id"`
	Name     *string    `json:"name"`
	Color    *string    `json:"color"`
	Note     *string    `json:"note"`
}

func (s *Server) ListCars(c *gin.Context) {
	cars, err := s.carSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": cars})
}

func (s *Server) CreateCar(c *gin.Context) {
	var req createCarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	driverID, err := req.DriverID.ID()
	if err != nil {
		AbortWithError(c, newValidationError("driver_id", "invalid_driver_id", "invalid driver_id"))
		return
	}

	car, err := s.carSvc.Create(c.Request.Context(), cardomain.CreateCarRequest{
		DriverID: driverID,
		Name:     req.Name,
		Color:    req.Color,
		Note:     req.Note,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.audit(c, auditdomain.ActionRegistryCreate, "car", car.ID.String(), map[string]any{"name": car.Name})

	c.JSON(http.StatusCreated, gin.H{"data": car})
}

func (s *Server) UpdateCar(c *gin.Context) {
	var req updateCarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	driverID, err := req.DriverID.ID()
	if err != nil {
		AbortWithError(c, newValidationError("driver_id", "invalid_driver_id", "invalid driver_id"))
		return
	}

	car, err := s.carSvc.Update(c.Request.Context(), pathID(c), cardomain.UpdateCarRequest{
		DriverID:    driverID,
		ClearDriver: req.DriverID.Clear(),
		Name:        req.Name,
		Color:       req.Color,
		Note:        req.Note,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.audit(c, auditdomain.ActionRegistryUpdate, "car", car.ID.String(), nil)

	c.JSON(http.StatusOK, gin.H{"data": car})
}

func (s *Server) DeleteCar(c *gin.Context) {
	id := pathID(c)
	if err := s.carSvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	s.audit(c, auditdomain.ActionRegistryDelete, "car", id.String(), nil)

	c.Status(http.StatusNoContent)
}

func (s *Server) AddCarPhotos(c *gin.Context) {
	limitUpload(c)
	form, err := c.MultipartForm()
	if err != nil {
		AbortWithError(c, uploadError("photos", err))
		return
	}
	headers := form.File["photos"]
	if len(headers) == 0 {
		AbortWithError(c, newValidationError("photos", "invalid_file", "at least one photo is required"))
		return
	}

	photos := make([]cardomain.Photo, 0, len(headers))
	files := make([]multipart.File, 0, len(headers))
	defer func() {
		for _, f := range files {
			_ = f.Close()
		}
	}()
	for _, fh := range headers {
		file, err := fh.Open()
		if err != nil {
			AbortWithError(c, uploadError("photos", err))
			return
		}
		files = append(files, file)
		photos = append(photos, cardomain.Photo{
			FileName:    fh.Filename,
			ContentType: uploadContentType(fh),
			Body:        file,
		})
	}

	car, err := s.carSvc.AddPhotos(c.Request.Context(), pathID(c), photos)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.audit(c, auditdomain.ActionRegistryUpdate, "car", car.ID.String(), map[string]any{"photos_added": len(photos)})

	c.JSON(http.StatusOK, gin.H{"data": car})
}
