package middlewares

import (
	"strings"

	"renderbox/pkg"
	"renderbox/pkg/logger"
	"renderbox/pkg/token"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const (
	//QueryToken token in query name
	QueryToken = "auth"

	//CookieToken token in cookie name
	CookieToken = "auth_token"

	//TokenMemberID get member form token, set c.locals name
	TokenMemberID = "MemberID"
	//TokenRole get role form token, set c.locals name
	TokenRole = "role"
	//TokenClaims full claims, set c.locals name
	TokenClaims = "claims"
)

// GateConfig 路由分類
type GateConfig struct {
	PublicPages []string
	PublicAPI   []string
	Bypass      []string

	APIPrefix  string
	SignInPath string
	HomePath   string

	Revocations RevocationStore
}

// DefaultGateConfig 預設公開頁面、公開 API 與基礎設施路徑
func DefaultGateConfig() GateConfig {
	return GateConfig{
		PublicPages: []string{"/", "/about", "/sign-up", "/sign-in"},
		PublicAPI:   []string{"/api/videos", "/api/videos/*"},
		Bypass:      []string{"/healthz", "/metrics", "/swagger/*", "/static/*"},
		APIPrefix:   "/api",
		SignInPath:  "/sign-in",
		HomePath:    "/home",
	}
}

// AuthGate 依路由分類決定放行、跳轉或回 401
//   - 已登入使用者造訪公開頁面 → 302 HomePath
//   - 未登入造訪受保護頁面 → 302 SignInPath
//   - 未登入呼叫受保護 API → 401
func AuthGate(cfg GateConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		path := pkg.NormalizePath(c.Path())
		if pkg.MatchPath(cfg.Bypass, path) {
			return c.Next()
		}

		isAPI := path == cfg.APIPrefix || strings.HasPrefix(path, cfg.APIPrefix+"/")
		public := pkg.MatchPath(cfg.PublicPages, path)
		if isAPI {
			public = pkg.MatchPath(cfg.PublicAPI, path)
		}

		claims := authenticate(c, cfg.Revocations)
		if claims != nil {
			c.Locals(TokenMemberID, claims.MemberID)
			c.Locals(TokenRole, claims.Role)
			c.Locals(TokenClaims, claims)

			if !isAPI && public && path != cfg.HomePath {
				return c.Redirect(cfg.HomePath, fiber.StatusFound)
			}
			return c.Next()
		}

		if public {
			return c.Next()
		}
		if isAPI {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Unauthorized",
			})
		}
		return c.Redirect(cfg.SignInPath, fiber.StatusFound)
	}
}

// TokenFromRequest 依序從 Authorization header、cookie、query 取 token
func TokenFromRequest(c *fiber.Ctx) string {
	if t := token.FromBearer(c.Get(fiber.HeaderAuthorization)); t != "" {
		return t
	}
	if t := c.Cookies(CookieToken); t != "" {
		return t
	}
	return c.Query(QueryToken)
}

func authenticate(c *fiber.Ctx, store RevocationStore) *token.Claims {
	raw := TokenFromRequest(c)
	if raw == "" {
		return nil
	}

	claims, err := token.ParseJWTFunc(raw)
	if err != nil {
		logger.Log.Debug("token rejected", zap.Error(err))
		return nil
	}

	if store != nil {
		revoked, err := store.IsRevoked(c.UserContext(), claims.ID)
		if err != nil {
			logger.Log.Warn("revocation lookup failed, treating request as anonymous", zap.Error(err))
			return nil
		}
		if revoked {
			return nil
		}
	}
	return claims
}
