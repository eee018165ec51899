package handlers

import (
	"context"
	"errors"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/profilekit/profilekit/internal/users"
	"github.com/profilekit/profilekit/pkg/logger"
	"github.com/profilekit/profilekit/pkg/middleware"
)

// Storage is the object-storage collaborator for profile attachments.
type Storage interface {
	UploadFile(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
	DownloadFile(ctx context.Context, key string) (io.ReadCloser, error)
}

// ProfileHandler serves the protected profile routes. Storage may be
// nil when no object store is configured; upload/download then fail
// with a configuration error.
type ProfileHandler struct {
	users   *users.Service
	storage Storage
}

func NewProfileHandler(u *users.Service, st Storage) *ProfileHandler {
	return &ProfileHandler{users: u, storage: st}
}

// Register mounts the routes under /profile behind the auth middleware.
func (h *ProfileHandler) Register(rg *gin.RouterGroup, auth gin.HandlerFunc) {
	p := rg.Group("/profile", auth)
	p.GET("", h.List)
	p.POST("/upload", h.Upload)
	p.GET("/download", h.Download)
	p.GET("/:id", h.Get)
	p.PATCH("/:id", h.Update)
}

// List returns the role-scoped, filtered, paginated user listing.
// Non-admin requesters only ever see public profiles.
func (h *ProfileHandler) List(c *gin.Context) {
	q := users.ParseListQuery(c.Request.URL.Query())
	claims := middleware.ClaimsFromContext(c)
	list, err := h.users.List(c.Request.Context(), q, claims)
	if err != nil {
		logger.Errorf("profile listing failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Something went wrong!"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": list})
}

// Get returns a single profile by id. The id format is checked before
// the store is consulted.
func (h *ProfileHandler) Get(c *gin.Context) {
	u, err := h.users.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, users.ErrInvalidID) || errors.Is(err, users.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Something went wrong"})
			return
		}
		logger.Errorf("profile lookup failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Something went wrong!"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": u})
}

// Update applies an allow-listed partial patch to the profile.
func (h *ProfileHandler) Update(c *gin.Context) {
	var patch map[string]interface{}
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusForbidden, gin.H{"message": "Please check the id"})
		return
	}
	if err := h.users.Update(c.Request.Context(), c.Param("id"), patch); err != nil {
		if errors.Is(err, users.ErrInvalidID) || errors.Is(err, users.ErrNotFound) {
			c.JSON(http.StatusForbidden, gin.H{"message": "Please check the id"})
			return
		}
		logger.Errorf("profile update failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Something went wrong!"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Updated User"})
}

// Upload stores a multipart file attachment and returns its object key.
func (h *ProfileHandler) Upload(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Please upload a file"})
		return
	}
	if h.storage == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "File storage not configured"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "File Not uploaded please try again"})
		return
	}
	defer f.Close()

	key := uuid.NewString() + "_" + filepath.Base(fh.Filename)
	contentType := fh.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	if err := h.storage.UploadFile(c.Request.Context(), key, f, fh.Size, contentType); err != nil {
		logger.Errorf("file upload failed: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"message": "File Not uploaded please try again"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": key})
}

// Download streams a stored attachment. The filename is the part after
// the last underscore of the object key; the content type derives from
// the file extension.
func (h *ProfileHandler) Download(c *gin.Context) {
	fileLocation := c.Query("fileLocation")
	if fileLocation == "" {
		c.JSON(http.StatusForbidden, gin.H{"message": "Please provide details!"})
		return
	}
	if h.storage == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "File storage not configured"})
		return
	}
	obj, err := h.storage.DownloadFile(c.Request.Context(), fileLocation)
	if err != nil {
		logger.Errorf("file download failed: %v", err)
		c.JSON(http.StatusNotFound, gin.H{"message": "File can not be downloaded!"})
		return
	}
	defer obj.Close()

	parts := strings.Split(fileLocation, "_")
	filename := parts[len(parts)-1]
	contentType := mime.TypeByExtension(filepath.Ext(fileLocation))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Header("Content-Type", contentType)
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, obj); err != nil {
		logger.Warnf("streaming download interrupted: %v", err)
	}
}
