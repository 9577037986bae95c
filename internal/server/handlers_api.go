package server

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/RavinduThilinaka/pdf-conventor/internal/domain"
	apperrors "github.com/RavinduThilinaka/pdf-conventor/internal/errors"
)

// listResponse is the JSON shape every collection-mutating endpoint returns.
type listResponse struct {
	Images         []domain.EntryInfo `json:"images"`
	TotalSizeBytes int64              `json:"total_size_bytes"`
}

func (s *Server) handleListImages(c echo.Context) error {
	id, err := s.resolveWorkspace(c)
	if err != nil {
		return err
	}

	infos, total, err := s.app.ListImages(c.Request().Context(), id)
	if err != nil {
		return apperrors.InternalError("failed to list images", err)
	}
	return c.JSON(200, listResponse{Images: infos, TotalSizeBytes: total})
}

func (s *Server) handleAddImages(c echo.Context) error {
	id, err := s.resolveWorkspace(c)
	if err != nil {
		return err
	}

	// Cap the multipart body before parsing it.
	c.Request().Body = http.MaxBytesReader(c.Response(), c.Request().Body, s.config.MaxUploadBytes)

	form, err := c.MultipartForm()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apperrors.ValidationError("upload too large").
				WithField("limit_bytes", s.config.MaxUploadBytes)
		}
		return apperrors.ValidationError("invalid multipart form")
	}

	files := form.File["images"]
	if len(files) == 0 {
		return apperrors.ValidationError("no files in upload")
	}

	uploads := make([]domain.Upload, 0, len(files))
	for _, fh := range files {
		src, err := fh.Open()
		if err != nil {
			return apperrors.InternalError("failed to open uploaded file", err).
				WithField("file", fh.Filename)
		}
		data, err := io.ReadAll(src)
		_ = src.Close()
		if err != nil {
			return apperrors.InternalError("failed to read uploaded file", err).
				WithField("file", fh.Filename)
		}

		contentType := fh.Header.Get("Content-Type")
		if contentType == "" {
			contentType = mime.TypeByExtension(filepath.Ext(fh.Filename))
		}

		uploads = append(uploads, domain.Upload{
			Name:        fh.Filename,
			ContentType: contentType,
			Data:        data,
		})
	}

	infos, err := s.app.AddImages(c.Request().Context(), id, uploads)
	if err != nil {
		return apperrors.InternalError("failed to add images", err)
	}

	if err := c.JSON(200, listResponse{Images: infos, TotalSizeBytes: totalSize(infos)}); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleRemoveImage(c echo.Context) error {
	id, err := s.resolveWorkspace(c)
	if err != nil {
		return err
	}

	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		return apperrors.ValidationError("index must be an integer").
			WithField("index", c.Param("index"))
	}

	infos, err := s.app.RemoveImage(c.Request().Context(), id, index)
	if err != nil {
		return apperrors.InternalError("failed to remove image", err)
	}
	return c.JSON(200, listResponse{Images: infos, TotalSizeBytes: totalSize(infos)})
}

type reorderRequest struct {
	From int `json:"from"`
	To   int `json:"to"`
}

func (s *Server) handleReorderImages(c echo.Context) error {
	id, err := s.resolveWorkspace(c)
	if err != nil {
		return err
	}

	var req reorderRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid reorder request body")
	}

	infos, err := s.app.ReorderImages(c.Request().Context(), id, req.From, req.To)
	if err != nil {
		return apperrors.InternalError("failed to reorder images", err)
	}
	return c.JSON(200, listResponse{Images: infos, TotalSizeBytes: totalSize(infos)})
}

func (s *Server) handleSortImages(c echo.Context) error {
	id, err := s.resolveWorkspace(c)
	if err != nil {
		return err
	}

	infos, err := s.app.SortImages(c.Request().Context(), id)
	if err != nil {
		return apperrors.InternalError("failed to sort images", err)
	}
	return c.JSON(200, listResponse{Images: infos, TotalSizeBytes: totalSize(infos)})
}

func (s *Server) handleClearImages(c echo.Context) error {
	id, err := s.resolveWorkspace(c)
	if err != nil {
		return err
	}

	if err := s.app.ClearImages(c.Request().Context(), id); err != nil {
		return apperrors.InternalError("failed to clear images", err)
	}
	return c.JSON(200, listResponse{Images: []domain.EntryInfo{}})
}

func (s *Server) handleGetLayout(c echo.Context) error {
	id, err := s.resolveWorkspace(c)
	if err != nil {
		return err
	}

	cfg, err := s.app.Layout(c.Request().Context(), id)
	if err != nil {
		return apperrors.InternalError("failed to load layout", err)
	}
	return c.JSON(200, cfg)
}

func (s *Server) handleSetLayout(c echo.Context) error {
	id, err := s.resolveWorkspace(c)
	if err != nil {
		return err
	}

	var cfg domain.LayoutConfig
	if err := c.Bind(&cfg); err != nil {
		return apperrors.ValidationError("invalid layout request body")
	}
	if err := cfg.Validate(); err != nil {
		return apperrors.ValidationError(err.Error())
	}

	if err := s.app.SetLayout(c.Request().Context(), id, cfg); err != nil {
		return apperrors.InternalError("failed to save layout", err)
	}
	return c.JSON(200, cfg)
}

func totalSize(infos []domain.EntryInfo) int64 {
	var total int64
	for _, info := range infos {
		total += info.SizeBytes
	}
	return total
}
