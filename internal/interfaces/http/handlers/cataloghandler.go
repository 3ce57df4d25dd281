package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/filemart-io/filemart/internal/infrastructure/cache"
	"github.com/filemart-io/filemart/internal/shared/errors"
	"github.com/filemart-io/filemart/internal/shared/id"
	"github.com/filemart-io/filemart/internal/shared/logger"
	"github.com/filemart-io/filemart/internal/shared/utils"
)

// CatalogHandler serves file metadata through a Redis read-through cache.
// Inactive files are not exposed.
type CatalogHandler struct {
	files  fileFinder
	cache  catalogCache
	logger logger.Interface
}

func NewCatalogHandler(files fileFinder, cache catalogCache, log logger.Interface) *CatalogHandler {
	return &CatalogHandler{
		files:  files,
		cache:  cache,
		logger: log,
	}
}

type FileResponse struct {
	SID           string `json:"sid"`
	Title         string `json:"title"`
	ByteSize      uint64 `json:"byte_size"`
	Eligibility   string `json:"eligibility"`
	DownloadCount uint64 `json:"download_count"`
}

// GetFile returns the metadata of a single catalog file by SID.
func (h *CatalogHandler) GetFile(c *gin.Context) {
	sid, err := utils.ParseSIDParam(c, "sid", id.PrefixFile, "file")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	cached, err := h.cache.Get(c.Request.Context(), sid)
	if err != nil {
		// Cache trouble degrades to a repository read.
		h.logger.Warnw("catalog cache read failed", "file_sid", sid, "error", err)
	}
	if cached != nil {
		if !cached.Active {
			utils.ErrorResponseWithError(c, errors.NewNotFoundError("file not found"))
			return
		}
		utils.SuccessResponse(c, http.StatusOK, "", FileResponse{
			SID:           cached.SID,
			Title:         cached.Title,
			ByteSize:      cached.ByteSize,
			Eligibility:   cached.Eligibility,
			DownloadCount: cached.DownloadCount,
		})
		return
	}

	file, err := h.files.GetBySID(c.Request.Context(), sid)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	if file == nil {
		utils.ErrorResponseWithError(c, errors.NewNotFoundError("file not found"))
		return
	}

	entry := &cache.CachedFile{
		SID:           file.SID(),
		Title:         file.Title(),
		ByteSize:      file.ByteSize(),
		Eligibility:   string(file.Eligibility()),
		Active:        file.IsActive(),
		DownloadCount: file.DownloadCount(),
	}
	if err := h.cache.Set(c.Request.Context(), entry); err != nil {
		h.logger.Warnw("catalog cache write failed", "file_sid", sid, "error", err)
	}

	if !file.IsActive() {
		utils.ErrorResponseWithError(c, errors.NewNotFoundError("file not found"))
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", FileResponse{
		SID:           file.SID(),
		Title:         file.Title(),
		ByteSize:      file.ByteSize(),
		Eligibility:   string(file.Eligibility()),
		DownloadCount: file.DownloadCount(),
	})
}
