package web

import (
	"strings"
	"time"

	"renderbox/pkg/logger"
	"renderbox/pkg/middlewares"
	"renderbox/pkg/token"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SignInForm GET /sign-in
func (p *Pages) SignInForm(c *fiber.Ctx) error {
	return p.render(c, fiber.StatusOK, "sign_in.html", p.data(c, "Sign in"))
}

// SignIn POST /sign-in，接受身分提供者簽發的 token 並寫入 cookie
func (p *Pages) SignIn(c *fiber.Ctx) error {
	raw := strings.TrimSpace(c.FormValue("token"))
	claims, err := token.ParseJWTFunc(raw)
	if err != nil {
		logger.Log.Debug("sign-in rejected", zap.Error(err))
		d := p.data(c, "Sign in")
		d.Error = "Invalid or expired token"
		return p.render(c, fiber.StatusUnauthorized, "sign_in.html", d)
	}

	p.setAuthCookie(c, raw, claims)
	return c.Redirect("/home", fiber.StatusSeeOther)
}

// SignUpForm GET /sign-up
func (p *Pages) SignUpForm(c *fiber.Ctx) error {
	return p.render(c, fiber.StatusOK, "sign_up.html", p.data(c, "Sign up"))
}

// SignUp POST /sign-up，只在開啟 SelfSignUp 時簽發本地 token
func (p *Pages) SignUp(c *fiber.Ctx) error {
	if !p.selfSignUp {
		d := p.data(c, "Sign up")
		d.Error = "Accounts are issued by the identity provider"
		return p.render(c, fiber.StatusForbidden, "sign_up.html", d)
	}

	raw, err := token.GenerateJWTFunc(uuid.NewString(), string(token.RoleUser), token.Issuer)
	if err != nil {
		logger.Log.Error("issue token failed", zap.Error(err))
		d := p.data(c, "Sign up")
		d.Error = "Failed to create account"
		return p.render(c, fiber.StatusInternalServerError, "sign_up.html", d)
	}
	claims, err := token.ParseJWTFunc(raw)
	if err != nil {
		d := p.data(c, "Sign up")
		d.Error = "Failed to create account"
		return p.render(c, fiber.StatusInternalServerError, "sign_up.html", d)
	}

	p.setAuthCookie(c, raw, claims)
	return c.Redirect("/home", fiber.StatusSeeOther)
}

// SignOut POST /sign-out，撤銷 token 並清掉 cookie
func (p *Pages) SignOut(c *fiber.Ctx) error {
	if claims, ok := c.Locals(middlewares.TokenClaims).(*token.Claims); ok {
		if err := p.revocations.Revoke(c.UserContext(), claims.ID, token.RemainingTTL(claims)); err != nil {
			logger.Log.Warn("revoke token failed", zap.String("member_id", claims.MemberID), zap.Error(err))
		}
	}

	c.Cookie(&fiber.Cookie{
		Name:     middlewares.CookieToken,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   p.secureCookie,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.Redirect("/", fiber.StatusSeeOther)
}

func (p *Pages) setAuthCookie(c *fiber.Ctx, raw string, claims *token.Claims) {
	cookie := &fiber.Cookie{
		Name:     middlewares.CookieToken,
		Value:    raw,
		Path:     "/",
		HTTPOnly: true,
		Secure:   p.secureCookie,
		SameSite: fiber.CookieSameSiteLaxMode,
	}
	if claims.ExpiresAt != nil {
		cookie.Expires = claims.ExpiresAt.Time
	}
	c.Cookie(cookie)
}
