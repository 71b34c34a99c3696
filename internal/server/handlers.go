package server

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/inodb/vibe-risk/internal/analyze"
	"github.com/inodb/vibe-risk/internal/output"
	"github.com/inodb/vibe-risk/internal/risk"
)

// formFileField is the multipart field carrying the upload.
const formFileField = "file"

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":            "healthy",
		"timestamp":         time.Now(),
		"uptime":            time.Since(s.started).Round(time.Second).String(),
		"catalog_size":      s.deps.Catalog.Len(),
		"external_analyzer": s.deps.ExternalEnabled,
	})
}

func (s *Server) handleCatalog(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"signatures": s.deps.Catalog.Signatures(),
		"conditions": s.deps.Catalog.Conditions(),
		"count":      s.deps.Catalog.Len(),
	})
}

func (s *Server) handleAnalyze(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.cfg.MaxUploadBytes)

	in, err := readUpload(c)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{
				"error": fmt.Sprintf("File exceeds %d bytes", tooLarge.Limit),
			})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file provided"})
		return
	}

	out, err := s.deps.Orchestrator.Run(c.Request.Context(), in)
	if err != nil {
		if errors.Is(err, analyze.ErrNoInput) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "No file provided"})
			return
		}
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Analysis failed",
			"details": err.Error(),
		})
		return
	}

	res := out.Result
	classified := s.deps.Classifier.ClassifyAll(res.Variants)
	s.logger.Info("analysis served",
		zap.String("request_id", c.GetString(requestIDKey)),
		zap.String("file", in.Name),
		zap.String("method", string(res.Method)),
		zap.Int("variants", len(classified)))

	if c.Query("format") == "pdf" {
		s.sendReport(c, classified)
		return
	}
	c.JSON(http.StatusOK, output.NewResponse("", res, classified))
}

// reportRequest is the body of POST /api/v1/report.
type reportRequest struct {
	Variants []risk.Classified `json:"variants"`
}

func (s *Server) handleReport(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.cfg.MaxUploadBytes)

	var req reportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid report request", "details": err.Error()})
		return
	}

	// Clients may send bare detection records; tiers are never taken on trust.
	for i, v := range req.Variants {
		req.Variants[i] = s.deps.Classifier.Normalize(v)
	}
	s.sendReport(c, req.Variants)
}

func (s *Server) sendReport(c *gin.Context, classified []risk.Classified) {
	doc, err := s.deps.Assembler.Assemble(classified)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Report generation failed", "details": err.Error()})
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", doc.Filename()))
	c.Data(http.StatusOK, "application/pdf", doc.Bytes())
}

// readUpload reads the multipart file field. The file name is a hint only.
func readUpload(c *gin.Context) (*analyze.Input, error) {
	fh, err := c.FormFile(formFileField)
	if err != nil {
		return nil, err
	}
	data, err := readFileHeader(fh)
	if err != nil {
		return nil, err
	}
	return analyze.NewInput(fh.Filename, data), nil
}

func readFileHeader(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("opening upload: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("reading upload: %w", err)
	}
	return data, nil
}
