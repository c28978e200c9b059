package web

import (
	"errors"
	"strings"

	"renderbox/internal/api/handlers"
	"renderbox/internal/media/app"
	"renderbox/internal/media/delivery"
	"renderbox/internal/media/domain"
	"renderbox/pkg/flow"
	"renderbox/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Home GET /home，影片 gallery
func (p *Pages) Home(c *fiber.Ctx) error {
	d := p.data(c, "Home")

	videos, err := p.media.ListVideos(c.UserContext())
	if err != nil {
		logger.Log.Error("list videos for gallery failed", zap.Error(err))
		d.Error = domain.ErrListFailed.Error()
		return p.render(c, fiber.StatusInternalServerError, "home.html", d)
	}

	d.Cards = app.BuildCards(videos, p.builder, p.now())
	return p.render(c, fiber.StatusOK, "home.html", d)
}

type videoForm struct {
	Title       string
	Description string
}

// VideoUploadForm GET /video-upload
func (p *Pages) VideoUploadForm(c *fiber.Ctx) error {
	return p.render(c, fiber.StatusOK, "video_upload.html", p.data(c, "Upload video"))
}

// VideoUpload POST /video-upload，成功後回到 /home
func (p *Pages) VideoUpload(c *fiber.Ctx) error {
	d := p.data(c, "Upload video")
	d.Form = videoForm{Title: c.FormValue("title"), Description: c.FormValue("description")}

	fh, err := c.FormFile("file")
	if err != nil {
		return p.videoFailed(c, d, domain.ErrMissingFile)
	}
	if fh.Size > d.Limits.MaxVideoBytes {
		return p.videoFailed(c, d, domain.ErrFileTooLarge)
	}

	title := d.Form.Title
	if strings.TrimSpace(title) == "" {
		title = domain.DefaultTitle(fh.Filename)
	}

	file, err := fh.Open()
	if err != nil {
		return p.videoFailed(c, d, domain.ErrUploadFailed)
	}
	defer file.Close()

	_, err = p.media.UploadVideo(c.UserContext(), domain.UploadVideoReq{
		Title:       title,
		Description: d.Form.Description,
		FileName:    fh.Filename,
		Size:        fh.Size,
		File:        file,
	})
	if err != nil {
		return p.videoFailed(c, d, err)
	}
	return c.Redirect("/home", fiber.StatusSeeOther)
}

func (p *Pages) videoFailed(c *fiber.Ctx, d pageData, err error) error {
	d.Error = domain.PublicMessage(err)
	if errors.Is(err, domain.ErrUploadFailed) {
		d.Error = "Failed to upload video"
	}
	return p.render(c, handlers.ErrorStatus(err), "video_upload.html", d)
}

// imageTool 圖片上傳後套用一種轉換
type imageTool struct {
	Path    string
	Heading string
	Action  string
	Kind    domain.Kind
}

var imageTools = []imageTool{
	{Path: "/ai-enhancer", Heading: "AI Image Enhancer", Action: "Enhance", Kind: domain.KindEnhance},
	{Path: "/background-removal", Heading: "Background Removal", Action: "Remove background", Kind: domain.KindBackgroundRemoval},
	{Path: "/social-share", Heading: "Social Media Image Creator", Action: "Transform", Kind: domain.KindSocialCrop},
}

func (p *Pages) toolData(c *fiber.Ctx, tool imageTool, snap flow.Snapshot) pageData {
	d := p.data(c, tool.Heading)
	d.Tool = tool
	d.Flow = snap
	if tool.Kind == domain.KindSocialCrop {
		d.Formats = domain.SocialFormats
		d.Format = domain.SocialFormats[0].Name
	}
	if snap.PublicID != "" {
		if u, err := p.builder.Build(snap.PublicID, domain.KindOriginal, delivery.Params{}); err == nil {
			d.OriginalURL = u
		}
	}
	return d
}

// ImageToolForm GET，idle 狀態
func (p *Pages) ImageToolForm(tool imageTool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return p.render(c, fiber.StatusOK, "image_tool.html", p.toolData(c, tool, flow.New().Snapshot()))
	}
}

// ImageToolUpload POST，上傳圖片並顯示原圖
func (p *Pages) ImageToolUpload(tool imageTool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		f := flow.New()
		if err := f.StartUpload(); err != nil {
			return err
		}

		status, err := p.uploadImage(c, f)
		if err != nil {
			if ferr := f.Fail(err); ferr != nil {
				return ferr
			}
			d := p.toolData(c, tool, f.Snapshot())
			d.Error = d.Flow.Err
			return p.render(c, status, "image_tool.html", d)
		}
		return p.render(c, fiber.StatusOK, "image_tool.html", p.toolData(c, tool, f.Snapshot()))
	}
}

func (p *Pages) uploadImage(c *fiber.Ctx, f *flow.Flow) (int, error) {
	fh, err := c.FormFile("file")
	if err != nil {
		return fiber.StatusBadRequest, domain.ErrMissingFile
	}
	if fh.Size > p.media.Limits().MaxImageBytes {
		return fiber.StatusRequestEntityTooLarge, domain.ErrFileTooLarge
	}

	file, err := fh.Open()
	if err != nil {
		return fiber.StatusInternalServerError, errors.New("Failed to upload image")
	}
	defer file.Close()

	res, err := p.media.UploadImage(c.UserContext(), domain.UploadImageReq{
		FileName: fh.Filename,
		Size:     fh.Size,
		File:     file,
	})
	if err != nil {
		msg := domain.PublicMessage(err)
		if errors.Is(err, domain.ErrUploadFailed) {
			msg = "Failed to upload image"
		}
		return handlers.ErrorStatus(err), errors.New(msg)
	}

	if err := f.Progress(fh.Size, fh.Size); err != nil {
		return fiber.StatusInternalServerError, err
	}
	if err := f.UploadSucceeded(res.PublicID); err != nil {
		return fiber.StatusInternalServerError, err
	}
	return fiber.StatusOK, nil
}

// ImageToolProcess POST <path>/process，組出轉換後的網址與下載檔名
func (p *Pages) ImageToolProcess(tool imageTool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		f := flow.Resume(strings.TrimSpace(c.FormValue("publicId")))
		if err := f.StartProcessing(); err != nil {
			return err
		}

		params := delivery.Params{SocialFormat: c.FormValue("format")}
		u, err := p.builder.Build(f.Snapshot().PublicID, tool.Kind, params)
		if err != nil {
			if ferr := f.Fail(err); ferr != nil {
				return ferr
			}
			d := p.toolData(c, tool, f.Snapshot())
			d.Error = "Failed to process image"
			return p.render(c, fiber.StatusBadRequest, "image_tool.html", d)
		}
		if err := f.Complete(u); err != nil {
			return err
		}

		d := p.toolData(c, tool, f.Snapshot())
		d.DownloadName = delivery.DownloadName(tool.Kind, params)
		if params.SocialFormat != "" {
			d.Format = params.SocialFormat
		}
		return p.render(c, fiber.StatusOK, "image_tool.html", d)
	}
}
