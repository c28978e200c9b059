package router

import (
	"errors"
	"io"

	"renderbox/internal/api/handlers"
	"renderbox/pkg/logger"
	"renderbox/pkg/middlewares"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiber_log "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Registrar 額外的路由（頁面）
type Registrar interface {
	Register(r fiber.Router)
}

// Options router 組裝參數
type Options struct {
	Media     *handlers.MediaHandler
	Gate      middlewares.GateConfig
	BodyLimit int
	AccessLog io.Writer
	Pages     Registrar
}

// New 建立 fiber app 並註冊全部路由
// @title RenderBox API
// @version 1.0
// @description Upload proxy and metadata API for RenderBox
// @host localhost:3000
// @BasePath /
func New(o Options) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "RenderBox",
		BodyLimit:    o.BodyLimit,
		ErrorHandler: errorHandler,
	})

	app.Use(recover.New())
	if o.AccessLog != nil {
		app.Use(fiber_log.New(fiber_log.Config{Output: o.AccessLog}))
	}
	app.Use(middlewares.Metrics())
	app.Use("/api", cors.New())

	app.Get("/healthz", handlers.Healthz)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	app.Get("/swagger/*", swagger.HandlerDefault)

	app.Use(middlewares.AuthGate(o.Gate))
	app.Post("/debug", handlers.DebugLogFlag)

	api := app.Group("/api")
	api.Post("/image-upload", o.Media.UploadImage)
	api.Post("/video-upload", o.Media.UploadVideo)
	api.Get("/videos", o.Media.ListVideos)
	api.Get("/videos/:id", o.Media.GetVideo)

	if o.Pages != nil {
		o.Pages.Register(app)
	}
	return app
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := "Internal Server Error"

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code, msg = fe.Code, fe.Message
	}
	if code >= fiber.StatusInternalServerError {
		logger.Log.Error("request failed", zap.String("path", c.Path()), zap.Error(err))
	}
	return c.Status(code).JSON(fiber.Map{"error": msg})
}
