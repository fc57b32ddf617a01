package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/WordPress-Satkhira-Community/easy-svg-upload/internal/pipeline"
	"github.com/WordPress-Satkhira-Community/easy-svg-upload/internal/sanitizer"
	"github.com/WordPress-Satkhira-Community/easy-svg-upload/internal/storage"
)

// svgContentSecurityPolicy keeps a served SVG from running anything even if
// a browser renders it as a document.
const svgContentSecurityPolicy = "default-src 'none'; style-src 'unsafe-inline'; img-src data:; sandbox"

// UploadResponse describes a stored upload.
type UploadResponse struct {
	ID        string          `json:"id"`
	Status    string          `json:"status"`
	Key       string          `json:"key"`
	MediaType string          `json:"mediaType"`
	Bytes     int64           `json:"bytes"`
	Digest    string          `json:"digest"`
	Policy    string          `json:"policy"`
	Stats     sanitizer.Stats `json:"stats"`
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true, "svgEnabled": s.deps.Gate.Enabled()})
}

func (s *Server) mimes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"mimes": s.deps.Gate.MimeTypes()})
}

// upload runs a multipart "file" part through the upload pipeline.
func (s *Server) upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.deps.Size.Limit()+multipartOverhead)

	fh, err := c.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respondRejection(c, "", sanitizer.Reject(sanitizer.ReasonTooLarge, "", err))
			return
		}
		respondError(c, http.StatusBadRequest, "validation_error", "multipart field \"file\" is required")
		return
	}
	f, err := fh.Open()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "internal", "failed to read upload")
		return
	}
	defer f.Close()

	principal, _ := PrincipalFromContext(c)
	job := pipeline.NewJob(fh.Filename)
	job.Principal = principal
	job.DeclaredSize = fh.Size
	job.Body = f

	if err := s.uploadPipeline().Execute(c.Request.Context(), job); err != nil {
		s.logger.Error("upload failed", "request_id", RequestIDFromContext(c), "filename", fh.Filename, "error", err)
	}
	if rej := job.Rejection(); rej != nil {
		respondRejection(c, job.ID, rej)
		return
	}

	o := job.Outcome
	c.JSON(http.StatusCreated, UploadResponse{
		ID:        o.ID,
		Status:    string(o.Status),
		Key:       o.Destination,
		MediaType: sanitizer.MediaType,
		Bytes:     o.OutputBytes,
		Digest:    o.OutputDigest,
		Policy:    o.Policy,
		Stats:     o.Stats,
	})
}

// sanitize returns the clean form of the request body without storing it.
func (s *Server) sanitize(c *gin.Context) {
	if reason := s.deps.Gate.Status(); reason != "" {
		respondRejection(c, "", sanitizer.Reject(reason, "", nil))
		return
	}
	principal, _ := PrincipalFromContext(c)
	if s.deps.Authorizer == nil || !s.deps.Authorizer.CanUploadSVG(c.Request.Context(), principal) {
		respondRejection(c, "", sanitizer.Reject(sanitizer.ReasonUnauthorized, "", nil))
		return
	}

	limit := s.deps.Size.Limit()
	data, err := io.ReadAll(io.LimitReader(c.Request.Body, limit+1))
	if err != nil {
		respondRejection(c, "", sanitizer.Reject(sanitizer.ReasonIOFailure, "", err))
		return
	}
	if !s.deps.Size.Allows(int64(len(data))) {
		respondRejection(c, "", sanitizer.Reject(sanitizer.ReasonTooLarge, "", nil))
		return
	}

	ctx := c.Request.Context()
	if s.deps.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.deps.Timeout)
		defer cancel()
	}
	res := s.deps.Engine.Sanitize(ctx, data)
	if res.Rejection != nil {
		respondRejection(c, "", res.Rejection)
		return
	}
	setSVGHeaders(c)
	c.Data(http.StatusOK, sanitizer.MediaType, res.Output)
}

// object serves a committed file.
func (s *Server) object(c *gin.Context) {
	key := strings.TrimPrefix(c.Param("key"), "/")
	rc, err := s.deps.Sink.Open(c.Request.Context(), key)
	switch {
	case errors.Is(err, storage.ErrInvalidKey):
		respondError(c, http.StatusBadRequest, "invalid_key", "invalid object key")
		return
	case errors.Is(err, os.ErrNotExist):
		respondError(c, http.StatusNotFound, "not_found", "object not found")
		return
	case err != nil:
		respondError(c, http.StatusInternalServerError, "internal", "failed to open object")
		return
	}
	defer rc.Close()

	setSVGHeaders(c)
	c.DataFromReader(http.StatusOK, -1, sanitizer.MediaType, rc, nil)
}

func setSVGHeaders(c *gin.Context) {
	c.Header("Content-Security-Policy", svgContentSecurityPolicy)
	c.Header("X-Content-Type-Options", "nosniff")
}
