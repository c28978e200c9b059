package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"renderbox/internal/media/app"
	"renderbox/internal/media/delivery"
	"renderbox/internal/media/domain"
	"renderbox/pkg/flow"
	"renderbox/pkg/logger"
	"renderbox/pkg/middlewares"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

// Options 頁面需要的依賴
type Options struct {
	Media       app.MediaUseCase
	Builder     *delivery.Builder
	Revocations middlewares.RevocationStore

	// SelfSignUp 允許在 /sign-up 直接簽發 token，只給非 production 使用
	SelfSignUp   bool
	SecureCookie bool
}

// Pages server-rendered pages
type Pages struct {
	media        app.MediaUseCase
	builder      *delivery.Builder
	revocations  middlewares.RevocationStore
	selfSignUp   bool
	secureCookie bool

	tmpl map[string]*template.Template
	now  func() time.Time
}

var pageFiles = []string{
	"landing.html",
	"about.html",
	"sign_in.html",
	"sign_up.html",
	"home.html",
	"video_upload.html",
	"image_tool.html",
}

// New parse embedded templates
func New(o Options) (*Pages, error) {
	if o.Media == nil {
		return nil, fmt.Errorf("web pages need a media usecase")
	}
	if o.Builder == nil {
		o.Builder = delivery.NewBuilder("", "")
	}
	if o.Revocations == nil {
		o.Revocations = middlewares.NewMemoryRevocationStore()
	}

	p := &Pages{
		media:        o.Media,
		builder:      o.Builder,
		revocations:  o.Revocations,
		selfSignUp:   o.SelfSignUp,
		secureCookie: o.SecureCookie,
		tmpl:         make(map[string]*template.Template, len(pageFiles)),
		now:          time.Now,
	}

	for _, name := range pageFiles {
		t, err := template.New(name).Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		p.tmpl[name] = t
	}
	return p, nil
}

var funcs = template.FuncMap{
	"mb": func(n int64) int64 { return n / (1024 * 1024) },
}

// Register 掛上全部頁面與 /static
func (p *Pages) Register(r fiber.Router) {
	static, err := fs.Sub(staticFS, "static")
	if err == nil {
		r.Use("/static", filesystem.New(filesystem.Config{
			Root:   http.FS(static),
			MaxAge: 3600,
		}))
	}

	r.Get("/", p.static("landing.html", "RenderBox"))
	r.Get("/about", p.static("about.html", "About"))

	r.Get("/sign-in", p.SignInForm)
	r.Post("/sign-in", p.SignIn)
	r.Get("/sign-up", p.SignUpForm)
	r.Post("/sign-up", p.SignUp)
	r.Post("/sign-out", p.SignOut)

	r.Get("/home", p.Home)
	r.Get("/video-upload", p.VideoUploadForm)
	r.Post("/video-upload", p.VideoUpload)

	for _, tool := range imageTools {
		r.Get(tool.Path, p.ImageToolForm(tool))
		r.Post(tool.Path, p.ImageToolUpload(tool))
		r.Post(tool.Path+"/process", p.ImageToolProcess(tool))
	}
}

// pageData 全部模板共用
type pageData struct {
	Title    string
	SignedIn bool
	Error    string

	// home
	Cards []app.VideoCard

	// video upload
	Limits         app.Options
	MaxTitle       int
	MaxDescription int
	Form           videoForm

	// image tools
	Tool         imageTool
	Flow         flow.Snapshot
	OriginalURL  string
	DownloadName string
	Formats      []domain.SocialFormat
	Format       string

	SelfSignUp bool
}

func (p *Pages) data(c *fiber.Ctx, title string) pageData {
	return pageData{
		Title:          title,
		SignedIn:       c.Locals(middlewares.TokenMemberID) != nil,
		Limits:         p.media.Limits(),
		MaxTitle:       domain.MaxTitleLength,
		MaxDescription: domain.MaxDescriptionLength,
		SelfSignUp:     p.selfSignUp,
	}
}

func (p *Pages) render(c *fiber.Ctx, status int, name string, d pageData) error {
	t, ok := p.tmpl[name]
	if !ok {
		return fiber.NewError(fiber.StatusInternalServerError, "template not found")
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", d); err != nil {
		logger.Log.Error("render page failed", zap.String("template", name), zap.Error(err))
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to render page")
	}

	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.Status(status).Send(buf.Bytes())
}

func (p *Pages) static(name, title string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return p.render(c, fiber.StatusOK, name, p.data(c, title))
	}
}
