package wallet

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/monegment/monegment/pkg/domain/wallet"
	authsvc "github.com/monegment/monegment/pkg/service/auth"
	balancesvc "github.com/monegment/monegment/pkg/service/balance"
	walletsvc "github.com/monegment/monegment/pkg/service/wallet"
	"github.com/monegment/monegment/webapi/common"
)

// Routes registers balance and transfer endpoints.
//
// Routes:
//   - GET  /balances         : Total and per-wallet balances.
//   - GET  /balances/:wallet : Balance of one wallet; the label is normalized.
//   - POST /transfers        : Move money between two wallets.
func Routes(
	app *fiber.App,
	protected fiber.Handler,
	balanceSvc *balancesvc.Service,
	walletSvc *walletsvc.Service,
	authSvc *authsvc.Service,
) {
	app.Get("/balances", protected, GetBalances(balanceSvc, authSvc))
	app.Get("/balances/:wallet", protected, GetWalletBalance(balanceSvc, authSvc))
	app.Post("/transfers", protected, Transfer(walletSvc, authSvc))
}

// TransferRequest moves Amount from Source to Target. Amount is checked by the service so
// that a same-wallet transfer is reported first.
type TransferRequest struct {
	Source string `json:"source" validate:"required"`
	Target string `json:"target" validate:"required"`
	Amount int64  `json:"amount"`
}

// WalletBalance is the response of GET /balances/:wallet.
type WalletBalance struct {
	Wallet  wallet.Wallet `json:"wallet"`
	Balance int64         `json:"balance"`
}

func GetBalances(balanceSvc *balancesvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok, err := common.CurrentUserID(c, authSvc)
		if !ok {
			return err
		}
		b, err := balanceSvc.GetBalances(c.UserContext(), userID)
		if err != nil {
			log.Errorf("Failed to get balances: %v", err)
			return common.ProblemDetailsJSON(c, "Failed to get balances", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Balances fetched", b)
	}
}

func GetWalletBalance(balanceSvc *balancesvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok, err := common.CurrentUserID(c, authSvc)
		if !ok {
			return err
		}
		label := c.Params("wallet")
		v, err := balanceSvc.GetWalletBalance(c.UserContext(), userID, label)
		if err != nil {
			log.Errorf("Failed to get wallet balance: %v", err)
			return common.ProblemDetailsJSON(c, "Failed to get wallet balance", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Balance fetched",
			WalletBalance{Wallet: wallet.Normalize(label), Balance: v})
	}
}

func Transfer(walletSvc *walletsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok, err := common.CurrentUserID(c, authSvc)
		if !ok {
			return err
		}
		input, err := common.BindAndValidate[TransferRequest](c)
		if input == nil {
			return err
		}
		res, err := walletSvc.Transfer(c.UserContext(), userID, input.Source, input.Target, input.Amount)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Transfer failed", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Transfer successful", res)
	}
}
