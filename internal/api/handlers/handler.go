package handlers

import (
	"strconv"

	"renderbox/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Healthz check service alive
// @Summary Health check
// @Description Returns ok when the process is serving requests
// @Tags Shared
// @Produce json
// @Success 200 {object} map[string]string
// @Router /healthz [get]
func Healthz(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// DebugLogFlag toggle debug log flag
// @Summary Toggle Debug Log Flag
// @Description Enable or disable debug logging at runtime
// @Tags Shared
// @Param status query bool true "Debug status"
// @Success 200 {object} map[string]bool
// @Failure 400 {object} map[string]string "Invalid status value"
// @Router /debug [post]
func DebugLogFlag(c *fiber.Ctx) error {
	status, err := strconv.ParseBool(c.Query("status"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid status value"})
	}

	logger.Log.SetDebugMode(status)
	logger.Log.Info("debug mode changed", zap.Bool("status", status))
	return c.JSON(fiber.Map{"debug": status})
}
