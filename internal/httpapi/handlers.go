package httpapi

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ironsheep/ui-inventory-mcp/internal/detection"
	"github.com/ironsheep/ui-inventory-mcp/internal/imaging"
	"github.com/ironsheep/ui-inventory-mcp/internal/inventory"
	"github.com/ironsheep/ui-inventory-mcp/internal/logger"
	"github.com/ironsheep/ui-inventory-mcp/internal/validation"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// ImageRequest names a screenshot on the server's filesystem. The same
// fields are accepted as form values next to a multipart "image" upload.
type ImageRequest struct {
	Path     string `json:"path"`
	Strategy string `json:"strategy"`
	Color    string `json:"color"`
}

// ValidateRequest validates components against a catalog test case. When
// Path is set the components are detected from that screenshot instead.
type ValidateRequest struct {
	TestCaseID string                `json:"testCaseId" binding:"required"`
	Components []detection.Component `json:"components"`
	Path       string                `json:"path"`
	Strategy   string                `json:"strategy"`
}

// ValidateAllRequest maps test case ids to screenshot paths.
type ValidateAllRequest struct {
	Images   map[string]string `json:"images"`
	Strategy string            `json:"strategy"`
}

// BatchRequest lists screenshots to detect in parallel.
type BatchRequest struct {
	Paths    []string `json:"paths" binding:"required,min=1"`
	Strategy string   `json:"strategy"`
}

// HealthResponse is returned by GET /healthz.
type HealthResponse struct {
	Status    string      `json:"status"`
	Version   string      `json:"version"`
	TestCases int         `json:"testCases"`
	OCR       interface{} `json:"ocr"`
}

func writeError(c *gin.Context, err error) {
	status, code := http.StatusInternalServerError, "INTERNAL"

	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		status, code = http.StatusRequestEntityTooLarge, "TOO_LARGE"
	case errors.Is(err, validation.ErrUnknownTestCase):
		status, code = http.StatusBadRequest, "UNKNOWN_TEST_CASE"
	case inventory.IsInputError(err):
		status, code = http.StatusBadRequest, "INVALID_INPUT"
	}

	if status >= http.StatusInternalServerError {
		logger.L().Warn("request failed", zap.String("route", c.FullPath()), zap.Error(err))
	}
	c.AbortWithStatusJSON(status, ErrorResponse{Error: err.Error(), Code: code})
}

func bindJSON(c *gin.Context, v interface{}) error {
	if err := c.ShouldBindJSON(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return err
		}
		return fmt.Errorf("%w: %w", inventory.ErrInvalidInput, err)
	}
	return nil
}

// bindImage decodes either a multipart "image" upload or the JSON path.
func (s *Server) bindImage(c *gin.Context) (ImageRequest, *imaging.Buffer, error) {
	var req ImageRequest
	if c.ContentType() == gin.MIMEMultipartPOSTForm {
		req.Strategy = c.PostForm("strategy")
		req.Color = c.PostForm("color")

		fh, err := c.FormFile("image")
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				return req, nil, err
			}
			return req, nil, fmt.Errorf("%w: image upload: %w", inventory.ErrInvalidInput, err)
		}
		f, err := fh.Open()
		if err != nil {
			return req, nil, fmt.Errorf("open upload: %w", err)
		}
		defer f.Close()

		buf, err := imaging.Decode(f)
		if err != nil {
			return req, nil, fmt.Errorf("%w: %w", inventory.ErrInvalidInput, err)
		}
		return req, buf, nil
	}

	if err := bindJSON(c, &req); err != nil {
		return req, nil, err
	}
	buf, err := s.svc.Load(req.Path)
	return req, buf, err
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:    "ok",
		Version:   s.version,
		TestCases: s.svc.Engine().Catalog().Len(),
		OCR:       s.svc.OCRInfo(),
	})
}

// handleDetect handles POST /v1/detect.
func (s *Server) handleDetect(c *gin.Context) {
	req, buf, err := s.bindImage(c)
	if err != nil {
		writeError(c, err)
		return
	}
	res, err := s.svc.DetectBuffer(c.Request.Context(), buf, req.Strategy)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// handleAnnotate handles POST /v1/annotate.
func (s *Server) handleAnnotate(c *gin.Context) {
	req, buf, err := s.bindImage(c)
	if err != nil {
		writeError(c, err)
		return
	}
	if req.Color == "" {
		req.Color = "#FF0000"
	}
	res, err := s.svc.AnnotateBuffer(c.Request.Context(), buf, req.Strategy, req.Color)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// handleStyle handles POST /v1/style.
func (s *Server) handleStyle(c *gin.Context) {
	_, buf, err := s.bindImage(c)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.svc.StyleBuffer(c.Request.Context(), buf))
}

// handleBatch handles POST /v1/batch.
func (s *Server) handleBatch(c *gin.Context) {
	var req BatchRequest
	if err := bindJSON(c, &req); err != nil {
		writeError(c, err)
		return
	}
	items, err := s.svc.Batch(c.Request.Context(), req.Paths, req.Strategy)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (s *Server) handleListTestCases(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"testCases": s.svc.TestCases()})
}

func (s *Server) handleGetTestCase(c *gin.Context) {
	tc, err := s.svc.Engine().Catalog().Get(c.Param("id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusNotFound, ErrorResponse{Error: err.Error(), Code: "UNKNOWN_TEST_CASE"})
		return
	}
	c.JSON(http.StatusOK, tc)
}

// handleValidate handles POST /v1/validate.
func (s *Server) handleValidate(c *gin.Context) {
	var req ValidateRequest
	if err := bindJSON(c, &req); err != nil {
		writeError(c, err)
		return
	}

	var (
		res validation.Result
		err error
	)
	if req.Path != "" {
		res, err = s.svc.Validate(c.Request.Context(), req.Path, req.TestCaseID, req.Strategy)
	} else {
		res, err = s.svc.ValidateComponents(req.TestCaseID, req.Components)
	}
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// handleValidateAll handles POST /v1/validate/all.
func (s *Server) handleValidateAll(c *gin.Context) {
	var req ValidateAllRequest
	if err := bindJSON(c, &req); err != nil {
		writeError(c, err)
		return
	}
	sum, err := s.svc.ValidateAll(c.Request.Context(), req.Images, req.Strategy)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sum)
}
