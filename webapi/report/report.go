package report

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	advisorsvc "github.com/monegment/monegment/pkg/service/advisor"
	authsvc "github.com/monegment/monegment/pkg/service/auth"
	reportsvc "github.com/monegment/monegment/pkg/service/report"
	walletsvc "github.com/monegment/monegment/pkg/service/wallet"
	"github.com/monegment/monegment/webapi/common"
)

// Routes registers the read-side endpoints and account maintenance.
//
// Routes:
//   - GET    /advice  : Allocation recommendation for this month.
//   - GET    /summary : Dashboard aggregates.
//   - GET    /budget  : Monthly spending limit, 0 when unset.
//   - PUT    /budget  : Set the monthly spending limit.
//   - DELETE /account : Delete every transaction and goal of the caller.
func Routes(
	app *fiber.App,
	protected fiber.Handler,
	advisorSvc *advisorsvc.Service,
	reportSvc *reportsvc.Service,
	walletSvc *walletsvc.Service,
	authSvc *authsvc.Service,
) {
	app.Get("/advice", protected, Advice(advisorSvc, authSvc))
	app.Get("/summary", protected, Summary(reportSvc, authSvc))
	app.Get("/budget", protected, GetBudget(reportSvc, authSvc))
	app.Put("/budget", protected, SetBudget(reportSvc, authSvc))
	app.Delete("/account", protected, ResetAccount(walletSvc, authSvc))
}

type BudgetRequest struct {
	Limit int64 `json:"limit" validate:"gte=0"`
}

type BudgetResponse struct {
	Limit int64 `json:"limit"`
}

func Advice(advisorSvc *advisorsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok, err := common.CurrentUserID(c, authSvc)
		if !ok {
			return err
		}
		rec, err := advisorSvc.RecommendAllocation(c.UserContext(), userID)
		if err != nil {
			log.Errorf("Failed to compute advice: %v", err)
			return common.ProblemDetailsJSON(c, "Failed to compute advice", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Advice computed", rec)
	}
}

func Summary(reportSvc *reportsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok, err := common.CurrentUserID(c, authSvc)
		if !ok {
			return err
		}
		sum, err := reportSvc.Summary(c.UserContext(), userID)
		if err != nil {
			log.Errorf("Failed to build summary: %v", err)
			return common.ProblemDetailsJSON(c, "Failed to build summary", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Summary fetched", sum)
	}
}

func GetBudget(reportSvc *reportsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok, err := common.CurrentUserID(c, authSvc)
		if !ok {
			return err
		}
		limit, err := reportSvc.GetBudget(c.UserContext(), userID)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to get budget", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Budget fetched", BudgetResponse{Limit: limit})
	}
}

func SetBudget(reportSvc *reportsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok, err := common.CurrentUserID(c, authSvc)
		if !ok {
			return err
		}
		input, err := common.BindAndValidate[BudgetRequest](c)
		if input == nil {
			return err
		}
		if err := reportSvc.SetBudget(c.UserContext(), userID, input.Limit); err != nil {
			return common.ProblemDetailsJSON(c, "Failed to set budget", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Budget saved", BudgetResponse{Limit: input.Limit})
	}
}

func ResetAccount(walletSvc *walletsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok, err := common.CurrentUserID(c, authSvc)
		if !ok {
			return err
		}
		if err := walletSvc.ResetAccount(c.UserContext(), userID); err != nil {
			log.Errorf("Failed to reset account: %v", err)
			return common.ProblemDetailsJSON(c, "Failed to reset account", err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
