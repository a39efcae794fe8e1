package goal

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"github.com/monegment/monegment/pkg/domain/goal"
	authsvc "github.com/monegment/monegment/pkg/service/auth"
	goalsvc "github.com/monegment/monegment/pkg/service/goal"
	walletsvc "github.com/monegment/monegment/pkg/service/wallet"
	"github.com/monegment/monegment/webapi/common"
)

const dateLayout = "2006-01-02"

// Routes registers goal endpoints.
//
// Routes:
//   - GET    /goals             : Goals by deadline.
//   - POST   /goals             : Create a goal.
//   - PUT    /goals/:id         : Edit title, target, deadline and priority.
//   - DELETE /goals/:id         : Delete a goal; its savings transactions stay.
//   - POST   /goals/:id/deposit : Move money from a wallet into the goal.
func Routes(
	app *fiber.App,
	protected fiber.Handler,
	goalSvc *goalsvc.Service,
	walletSvc *walletsvc.Service,
	authSvc *authsvc.Service,
) {
	app.Get("/goals", protected, List(goalSvc, authSvc))
	app.Post("/goals", protected, Create(goalSvc, authSvc))
	app.Put("/goals/:id", protected, Update(goalSvc, authSvc))
	app.Delete("/goals/:id", protected, Delete(goalSvc, authSvc))
	app.Post("/goals/:id/deposit", protected, Deposit(walletSvc, authSvc))
}

// Request creates or edits a goal. Deadline is YYYY-MM-DD.
type Request struct {
	Title        string `json:"title" validate:"required,max=100"`
	TargetAmount int64  `json:"target_amount"`
	Deadline     string `json:"deadline" validate:"required,datetime=2006-01-02"`
	Priority     string `json:"priority" validate:"omitempty,oneof=P1 P2 P3"`
}

func (r Request) params() goalsvc.Params {
	deadline, _ := time.Parse(dateLayout, r.Deadline)
	return goalsvc.Params{
		Title:    r.Title,
		Target:   r.TargetAmount,
		Deadline: deadline,
		Priority: goal.Priority(r.Priority),
	}
}

// DepositRequest funds a goal from Wallet.
type DepositRequest struct {
	Wallet string `json:"wallet" validate:"required"`
	Amount int64  `json:"amount"`
}

func List(goalSvc *goalsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok, err := common.CurrentUserID(c, authSvc)
		if !ok {
			return err
		}
		goals, err := goalSvc.ListGoals(c.UserContext(), userID)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to list goals", err)
		}
		if goals == nil {
			goals = []*goal.Goal{}
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Goals fetched", goals)
	}
}

func Create(goalSvc *goalsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok, err := common.CurrentUserID(c, authSvc)
		if !ok {
			return err
		}
		input, err := common.BindAndValidate[Request](c)
		if input == nil {
			return err
		}
		g, err := goalSvc.CreateGoal(c.UserContext(), userID, input.params())
		if err != nil {
			log.Errorf("Failed to create goal: %v", err)
			return common.ProblemDetailsJSON(c, "Failed to create goal", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Goal created", g)
	}
}

func Update(goalSvc *goalsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok, err := common.CurrentUserID(c, authSvc)
		if !ok {
			return err
		}
		id, ok, err := parseID(c)
		if !ok {
			return err
		}
		input, err := common.BindAndValidate[Request](c)
		if input == nil {
			return err
		}
		g, err := goalSvc.UpdateGoal(c.UserContext(), userID, id, input.params())
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to update goal", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Goal updated", g)
	}
}

func Delete(goalSvc *goalsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok, err := common.CurrentUserID(c, authSvc)
		if !ok {
			return err
		}
		id, ok, err := parseID(c)
		if !ok {
			return err
		}
		if err := goalSvc.DeleteGoal(c.UserContext(), userID, id); err != nil {
			return common.ProblemDetailsJSON(c, "Failed to delete goal", err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

func Deposit(walletSvc *walletsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok, err := common.CurrentUserID(c, authSvc)
		if !ok {
			return err
		}
		id, ok, err := parseID(c)
		if !ok {
			return err
		}
		input, err := common.BindAndValidate[DepositRequest](c)
		if input == nil {
			return err
		}
		g, err := walletSvc.DepositToGoal(c.UserContext(), userID, id, input.Wallet, input.Amount)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Deposit failed", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Deposit successful", g)
	}
}

// parseID reads the :id param. ok is false when a 400 was written.
func parseID(c *fiber.Ctx) (uuid.UUID, bool, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, false, common.ProblemDetailsJSON(c, "Invalid goal ID", err,
			"Goal ID must be a valid UUID", fiber.StatusBadRequest)
	}
	return id, true, nil
}
