// Package webapi is the HTTP adapter over the services. It is organized into sub-packages:
// - wallet: balances and transfers
// - transaction: the transaction log and extraction
// - goal: savings goals and deposits
// - report: advice, summary, budget and account reset
package webapi

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/monegment/monegment/pkg/app"
	"github.com/monegment/monegment/pkg/middleware"
	"github.com/monegment/monegment/webapi/common"
	goalweb "github.com/monegment/monegment/webapi/goal"
	reportweb "github.com/monegment/monegment/webapi/report"
	transactionweb "github.com/monegment/monegment/webapi/transaction"
	walletweb "github.com/monegment/monegment/webapi/wallet"
)

// SetupApp Initialize Fiber with custom configuration
func SetupApp(a *app.App) *fiber.App {
	fiberApp := fiber.New(fiber.Config{
		BodyLimit: 10 * 1024 * 1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return common.ProblemDetailsJSON(c, "Internal Server Error", err)
		},
	})

	rl := a.Config.RateLimit
	if rl != nil && rl.MaxRequests > 0 {
		fiberApp.Use(limiter.New(limiter.Config{
			Max:        rl.MaxRequests,
			Expiration: rl.Window,
			KeyGenerator: func(c *fiber.Ctx) string {
				// First hop of X-Forwarded-For when behind a proxy, then X-Real-IP.
				if forwardedFor := c.Get("X-Forwarded-For"); forwardedFor != "" {
					first, _, _ := strings.Cut(forwardedFor, ",")
					return strings.TrimSpace(first)
				}
				if realIP := c.Get("X-Real-IP"); realIP != "" {
					return realIP
				}
				return c.IP()
			},
			LimitReached: func(c *fiber.Ctx) error {
				return common.ProblemDetailsJSON(
					c,
					"Too Many Requests",
					errors.New("rate limit exceeded"),
					fiber.StatusTooManyRequests,
				)
			},
		}))
	}
	fiberApp.Use(recover.New())
	fiberApp.Use(logger.New())

	fiberApp.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("monegment API is running! 💰")
	})

	protected := middleware.JwtProtected(a.Config.Auth.Jwt)
	walletweb.Routes(fiberApp, protected, a.BalanceService, a.WalletService, a.AuthService)
	transactionweb.Routes(fiberApp, protected, a.WalletService, a.ExtractorService, a.AuthService)
	goalweb.Routes(fiberApp, protected, a.GoalService, a.WalletService, a.AuthService)
	reportweb.Routes(fiberApp, protected, a.AdvisorService, a.ReportService, a.WalletService, a.AuthService)
	return fiberApp
}
