package handlers

import (
	"errors"

	"renderbox/internal/media/app"
	"renderbox/internal/media/domain"

	"github.com/gofiber/fiber/v2"
)

// MediaHandler upload and listing routes
type MediaHandler struct {
	uc app.MediaUseCase
}

// NewMediaHandler create media handler
func NewMediaHandler(uc app.MediaUseCase) *MediaHandler {
	return &MediaHandler{uc: uc}
}

// ErrorStatus 錯誤對應的 HTTP 狀態碼
func ErrorStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrMissingFile),
		errors.Is(err, domain.ErrTitleRequired),
		errors.Is(err, domain.ErrTitleTooLong),
		errors.Is(err, domain.ErrDescriptionTooLong):
		return fiber.StatusBadRequest
	case errors.Is(err, domain.ErrFileTooLarge):
		return fiber.StatusRequestEntityTooLarge
	case errors.Is(err, domain.ErrUnsupportedType):
		return fiber.StatusUnsupportedMediaType
	case errors.Is(err, domain.ErrVideoNotFound):
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

func writeError(c *fiber.Ctx, err error, uploadMsg string) error {
	msg := domain.PublicMessage(err)
	if uploadMsg != "" && errors.Is(err, domain.ErrUploadFailed) {
		msg = uploadMsg
	}
	return c.Status(ErrorStatus(err)).JSON(fiber.Map{"error": msg})
}

// UploadImage godoc
// @Summary Upload an image
// @Description Forwards the image to the media service; nothing is stored locally
// @Tags Media
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Image file"
// @Success 200 {object} domain.UploadImageRes
// @Failure 400 {object} map[string]string
// @Failure 413 {object} map[string]string
// @Failure 415 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /api/image-upload [post]
func (h *MediaHandler) UploadImage(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return writeError(c, domain.ErrMissingFile, "")
	}
	if fh.Size > h.uc.Limits().MaxImageBytes {
		return writeError(c, domain.ErrFileTooLarge, "")
	}

	file, err := fh.Open()
	if err != nil {
		return writeError(c, domain.ErrUploadFailed, "Failed to upload image")
	}
	defer file.Close()

	res, err := h.uc.UploadImage(c.UserContext(), domain.UploadImageReq{
		FileName: fh.Filename,
		Size:     fh.Size,
		File:     file,
	})
	if err != nil {
		return writeError(c, err, "Failed to upload image")
	}
	return c.JSON(res)
}

// UploadVideo godoc
// @Summary Upload a video
// @Description Forwards the video to the media service (q_auto, mp4) and stores one metadata row
// @Tags Media
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Video file"
// @Param title formData string true "Title, at most 100 characters"
// @Param description formData string false "Description, at most 500 characters"
// @Param originalSize formData string false "Size in bytes reported by the client"
// @Success 200 {object} domain.VideoView
// @Failure 400 {object} map[string]string
// @Failure 413 {object} map[string]string
// @Failure 415 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /api/video-upload [post]
func (h *MediaHandler) UploadVideo(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return writeError(c, domain.ErrMissingFile, "")
	}
	if fh.Size > h.uc.Limits().MaxVideoBytes {
		return writeError(c, domain.ErrFileTooLarge, "")
	}

	file, err := fh.Open()
	if err != nil {
		return writeError(c, domain.ErrUploadFailed, "Failed to upload video")
	}
	defer file.Close()

	video, err := h.uc.UploadVideo(c.UserContext(), domain.UploadVideoReq{
		Title:        c.FormValue("title"),
		Description:  c.FormValue("description"),
		FileName:     fh.Filename,
		Size:         fh.Size,
		DeclaredSize: c.FormValue("originalSize"),
		File:         file,
	})
	if err != nil {
		return writeError(c, err, "Failed to upload video")
	}
	return c.JSON(video.ToView())
}

// ListVideos godoc
// @Summary List videos
// @Description All videos, newest first
// @Tags Media
// @Produce json
// @Success 200 {array} domain.VideoView
// @Failure 500 {object} map[string]string
// @Router /api/videos [get]
func (h *MediaHandler) ListVideos(c *fiber.Ctx) error {
	videos, err := h.uc.ListVideos(c.UserContext())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": domain.ErrListFailed.Error()})
	}
	return c.JSON(domain.ToViews(videos))
}

// GetVideo godoc
// @Summary Get one video
// @Tags Media
// @Produce json
// @Param id path string true "Video ID"
// @Success 200 {object} domain.VideoView
// @Failure 404 {object} map[string]string
// @Router /api/videos/{id} [get]
func (h *MediaHandler) GetVideo(c *fiber.Ctx) error {
	video, err := h.uc.GetVideo(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err, "")
	}
	return c.JSON(video.ToView())
}
