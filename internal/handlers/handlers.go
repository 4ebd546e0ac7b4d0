package handlers

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"

	"github.com/Brownie44l1/nail-disease-api/internal/predict"
)

type Handler struct {
	service   *predict.Service
	baseDir   string
	maxUpload int64
}

// NewHandler serves pages from baseDir and predictions from service.
// maxUpload caps the request body in bytes; <= 0 means no limit.
func NewHandler(service *predict.Service, baseDir string, maxUpload int64) *Handler {
	return &Handler{
		service:   service,
		baseDir:   baseDir,
		maxUpload: maxUpload,
	}
}

func jsonError(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

// Predict handles a multipart upload in the "file" field.
func (h *Handler) Predict(c *gin.Context) {
	if h.maxUpload > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload)
	}

	upload, file, err := h.readUpload(c)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			log.FromContext(c.Request.Context()).WithField("limit", tooLarge.Limit).Warn("Upload too large")
			jsonError(c, http.StatusRequestEntityTooLarge, "File too large")
			return
		}
		if !errors.Is(err, http.ErrMissingFile) {
			log.FromContext(c.Request.Context()).WithError(err).Warn("Failed reading upload")
		}
	}
	if file != nil {
		defer file.Close()
	}

	pred, err := h.service.Predict(c.Request.Context(), upload)
	if err != nil {
		var perr *predict.Error
		if errors.As(err, &perr) {
			jsonError(c, perr.Status(), perr.Message)
			return
		}
		jsonError(c, http.StatusInternalServerError, "Prediction failed")
		return
	}

	c.JSON(http.StatusOK, pred)
}

// readUpload returns the "file" part, or a nil Upload when the request has
// none. A part sent with an empty filename is reported with Filename "".
func (h *Handler) readUpload(c *gin.Context) (*predict.Upload, multipart.File, error) {
	header, err := c.FormFile("file")
	if err != nil {
		if form := c.Request.MultipartForm; form != nil {
			if _, ok := form.Value["file"]; ok {
				return &predict.Upload{}, nil, nil
			}
		}
		return nil, nil, err
	}

	if header.Filename == "" {
		return &predict.Upload{}, nil, nil
	}

	file, err := header.Open()
	if err != nil {
		return nil, nil, err
	}
	return &predict.Upload{Filename: header.Filename, Body: file}, file, nil
}
