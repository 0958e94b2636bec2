package services

import (
	"strings"
	"time"

	"t2v/utils"

	"github.com/charmbracelet/log"
	"github.com/gofiber/fiber/v2"
)

const (
	reqIDKey    = "reqId"
	reqIDHeader = "X-Request-Id"
	maxReqIDLen = 64
)

// polled by probes and clients; logged at debug level
func isQuiet(path string) bool {
	return path == "/health" || path == "/video/stats" || strings.HasPrefix(path, "/video/status/")
}

// requestID reuses a caller supplied id when it is short and has no whitespace.
func requestID(c *fiber.Ctx) string {
	id := strings.TrimSpace(c.Get(reqIDHeader))
	if id == "" || len(id) > maxReqIDLen || strings.ContainsAny(id, " \t\r\n") {
		return utils.NewJobID()
	}
	return id
}

func RequestLogger() fiber.Handler {
	base := log.With("component", "http")

	return func(c *fiber.Ctx) error {
		reqID := requestID(c)
		c.Locals(reqIDKey, reqID)
		c.Set(reqIDHeader, reqID)

		start := time.Now()
		path := c.Path()
		method := c.Method()

		ua := strings.TrimSpace(string(c.Context().UserAgent()))
		if len(ua) > 200 {
			ua = ua[:200]
		}

		base.Debug("request started", "reqId", reqID, "method", method, "path", path, "ip", c.IP(), "ua", ua)

		err := c.Next()
		dur := time.Since(start)

		status := c.Response().StatusCode()
		if err != nil {
			base.Error("request failed", "reqId", reqID, "method", method, "path", path, "status", status, "dur", dur.String(), "err", err)
			return err
		}

		switch {
		case status >= fiber.StatusInternalServerError:
			base.Warn("request completed", "reqId", reqID, "method", method, "path", path, "status", status, "dur", dur.String())
		case isQuiet(path):
			base.Debug("request completed", "reqId", reqID, "method", method, "path", path, "status", status, "dur", dur.String())
		default:
			base.Info("request completed", "reqId", reqID, "method", method, "path", path, "status", status, "dur", dur.String())
		}
		return nil
	}
}

func ReqID(c *fiber.Ctx) string {
	if v := c.Locals(reqIDKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func HttpLogger(action string, c *fiber.Ctx) *log.Logger {
	return log.With(
		"component", "api",
		"action", action,
		"reqId", ReqID(c),
		"method", c.Method(),
		"path", c.Path(),
	)
}
