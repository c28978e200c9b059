package middlewares

import (
	"strconv"
	"time"

	"renderbox/pkg/metrics"

	"github.com/gofiber/fiber/v2"
)

// Metrics 記錄每個請求的次數與耗時，endpoint 取路由樣板避免高基數
func Metrics() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		endpoint := "unmatched"
		if r := c.Route(); r != nil && r.Path != "" && r.Path != "/*" {
			endpoint = r.Path
		}
		metrics.RecordRequest(c.Method(), endpoint, strconv.Itoa(status), time.Since(start).Seconds())
		return err
	}
}
