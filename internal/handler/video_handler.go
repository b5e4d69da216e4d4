package handler

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"vtube-api/internal/domain"
	"vtube-api/internal/service"
	"vtube-api/pkg/errors"
	"vtube-api/pkg/logger"
	"vtube-api/pkg/response"
)

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100

	// multipart form memory ceiling; larger parts spill to disk
	maxUploadMemory = 32 << 20
)

// VideoHandler handles video related requests
type VideoHandler struct {
	videos service.VideoService
	logger *logger.Logger
}

// NewVideoHandler creates a new video handler
func NewVideoHandler(videos service.VideoService, log *logger.Logger) *VideoHandler {
	return &VideoHandler{
		videos: videos,
		logger: log,
	}
}

// List handles GET /api/videos
func (h *VideoHandler) List(w http.ResponseWriter, r *http.Request) error {
	caller, err := callerFromContext(r)
	if err != nil {
		return err
	}

	params, err := parseListParams(r)
	if err != nil {
		return err
	}

	items, err := h.videos.List(r.Context(), params, caller.ID)
	if err != nil {
		return err
	}

	return response.WriteJSON(w, h.logger, http.StatusOK, items, "Videos fetched successfully")
}

// Get handles GET /api/videos/{videoId}
func (h *VideoHandler) Get(w http.ResponseWriter, r *http.Request) error {
	caller, err := callerFromContext(r)
	if err != nil {
		return err
	}

	videoID, err := parsePathID(r, "videoId", "Invalid video id")
	if err != nil {
		return err
	}

	video, err := h.videos.Get(r.Context(), videoID, caller.ID)
	if err != nil {
		return err
	}

	return response.WriteJSON(w, h.logger, http.StatusOK, video, "Video fetched successfully")
}

// Publish handles POST /api/videos
func (h *VideoHandler) Publish(w http.ResponseWriter, r *http.Request) error {
	caller, err := callerFromContext(r)
	if err != nil {
		return err
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		return errors.NewValidationError("Invalid multipart form")
	}

	title := strings.TrimSpace(r.FormValue("title"))
	description := strings.TrimSpace(r.FormValue("description"))
	if title == "" || description == "" {
		return errors.NewValidationError("Title and description are required")
	}

	videoPath, err := stageUpload(r, "videoFile")
	if err != nil {
		return err
	}

	thumbnailPath, err := stageUpload(r, "thumbnail")
	if err != nil {
		removeStaged(h.logger, videoPath)
		return err
	}

	video, err := h.videos.Publish(r.Context(), caller.ID, title, description, videoPath, thumbnailPath)
	if err != nil {
		return err
	}

	return response.WriteJSON(w, h.logger, http.StatusCreated, video, "Video uploaded successfully")
}

// Update handles PATCH /api/videos/{videoId}
func (h *VideoHandler) Update(w http.ResponseWriter, r *http.Request) error {
	caller, err := callerFromContext(r)
	if err != nil {
		return err
	}

	videoID, err := parsePathID(r, "videoId", "Invalid video id")
	if err != nil {
		return err
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		return errors.NewValidationError("Invalid multipart form")
	}

	title := strings.TrimSpace(r.FormValue("title"))
	description := strings.TrimSpace(r.FormValue("description"))
	if title == "" || description == "" {
		return errors.NewValidationError("Title and description are required")
	}

	thumbnailPath, err := stageUpload(r, "thumbnail")
	if err != nil {
		return err
	}

	video, err := h.videos.Update(r.Context(), caller.ID, videoID, title, description, thumbnailPath)
	if err != nil {
		return err
	}

	return response.WriteJSON(w, h.logger, http.StatusOK, video, "Video updated successfully")
}

// Delete handles DELETE /api/videos/{videoId}
func (h *VideoHandler) Delete(w http.ResponseWriter, r *http.Request) error {
	caller, err := callerFromContext(r)
	if err != nil {
		return err
	}

	videoID, err := parsePathID(r, "videoId", "Invalid video id")
	if err != nil {
		return err
	}

	if err := h.videos.Delete(r.Context(), caller.ID, videoID); err != nil {
		return err
	}

	return response.WriteJSON(w, h.logger, http.StatusOK, struct{}{}, "Video deleted successfully")
}

// TogglePublish handles PATCH /api/videos/{videoId}/publish
func (h *VideoHandler) TogglePublish(w http.ResponseWriter, r *http.Request) error {
	caller, err := callerFromContext(r)
	if err != nil {
		return err
	}

	videoID, err := parsePathID(r, "videoId", "Invalid video id")
	if err != nil {
		return err
	}

	status, err := h.videos.TogglePublish(r.Context(), caller.ID, videoID)
	if err != nil {
		return err
	}

	return response.WriteJSON(w, h.logger, http.StatusOK, status, "Publish status toggled successfully")
}

// parseListParams parses pagination, filter and sort parameters with
// defaults and bounds
func parseListParams(r *http.Request) (domain.VideoListParams, error) {
	q := r.URL.Query()

	params := domain.VideoListParams{
		Page:     defaultPage,
		Limit:    defaultLimit,
		Query:    strings.TrimSpace(q.Get("query")),
		SortBy:   q.Get("sortBy"),
		SortType: q.Get("sortType"),
	}

	if raw := q.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			return params, errors.NewValidationError("Page must be a positive integer")
		}
		params.Page = page
	}

	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return params, errors.NewValidationError("Limit must be a positive integer")
		}
		if limit > maxLimit {
			limit = maxLimit
		}
		params.Limit = limit
	}

	if raw := q.Get("userId"); raw != "" {
		ownerID, err := uuid.Parse(raw)
		if err != nil {
			return params, errors.NewValidationError("Invalid user id")
		}
		params.OwnerID = &ownerID
	}

	return params, nil
}

// stageUpload copies one multipart file to a local temp file and returns its
// path. The storage gateway removes the file after the upload attempt.
func stageUpload(r *http.Request, field string) (string, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return "", errors.NewValidationError(fmt.Sprintf("File %q is required", field))
	}
	defer file.Close()

	path, err := copyToTemp(file, header)
	if err != nil {
		return "", errors.NewInternalError("Failed to stage uploaded file", err)
	}
	return path, nil
}

func copyToTemp(file multipart.File, header *multipart.FileHeader) (string, error) {
	tmp, err := os.CreateTemp("", "upload-*"+filepath.Ext(header.Filename))
	if err != nil {
		return "", err
	}
	defer tmp.Close()

	if _, err := io.Copy(tmp, file); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	return tmp.Name(), nil
}

func removeStaged(log *logger.Logger, path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.WithError(err).WithField("path", path).Warn("Failed to remove staged upload file")
	}
}
