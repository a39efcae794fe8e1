package transaction

import (
	"io"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"github.com/monegment/monegment/pkg/domain/transaction"
	authsvc "github.com/monegment/monegment/pkg/service/auth"
	extractsvc "github.com/monegment/monegment/pkg/service/extract"
	walletsvc "github.com/monegment/monegment/pkg/service/wallet"
	"github.com/monegment/monegment/webapi/common"
)

// DefaultLimit is the page size of GET /transactions when none is given.
const DefaultLimit = 50

// Routes registers transaction log endpoints.
//
// Routes:
//   - GET    /transactions         : Newest entries first, ?limit=N.
//   - POST   /transactions         : Record a manual entry.
//   - PUT    /transactions/:id     : Edit amount, category, wallet and description.
//   - DELETE /transactions/:id     : Delete an entry.
//   - POST   /transactions/extract : Extract entries from text or an uploaded file and
//     import them; ?preview=true only returns the candidates.
func Routes(
	app *fiber.App,
	protected fiber.Handler,
	walletSvc *walletsvc.Service,
	extractSvc *extractsvc.Service,
	authSvc *authsvc.Service,
) {
	app.Get("/transactions", protected, List(walletSvc, authSvc))
	app.Post("/transactions", protected, Create(walletSvc, authSvc))
	app.Post("/transactions/extract", protected, Extract(walletSvc, extractSvc, authSvc))
	app.Put("/transactions/:id", protected, Update(walletSvc, authSvc))
	app.Delete("/transactions/:id", protected, Delete(walletSvc, authSvc))
}

// Request is a manual entry. Type defaults from the category.
type Request struct {
	Type        string `json:"type" validate:"omitempty,oneof=IN OUT"`
	Amount      int64  `json:"amount"`
	Category    string `json:"category" validate:"required,max=50"`
	Wallet      string `json:"wallet" validate:"required,max=50"`
	Description string `json:"description" validate:"max=255"`
}

func (r Request) candidate() transaction.Candidate {
	return transaction.Candidate{
		Direction:   transaction.Direction(r.Type),
		Amount:      r.Amount,
		Category:    r.Category,
		Wallet:      r.Wallet,
		Description: r.Description,
	}
}

// ExtractRequest is the JSON form of an extraction. Files are sent as multipart "file".
type ExtractRequest struct {
	Text string `json:"text" validate:"required,max=2000"`
}

func List(walletSvc *walletsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok, err := common.CurrentUserID(c, authSvc)
		if !ok {
			return err
		}
		limit := c.QueryInt("limit", DefaultLimit)
		txs, err := walletSvc.ListTransactions(c.UserContext(), userID, limit)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to list transactions", err)
		}
		if txs == nil {
			txs = []*transaction.Transaction{}
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Transactions fetched", txs)
	}
}

func Create(walletSvc *walletsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok, err := common.CurrentUserID(c, authSvc)
		if !ok {
			return err
		}
		input, err := common.BindAndValidate[Request](c)
		if input == nil {
			return err
		}
		tx, err := walletSvc.RecordTransaction(c.UserContext(), userID, input.candidate())
		if err != nil {
			log.Errorf("Failed to record transaction: %v", err)
			return common.ProblemDetailsJSON(c, "Failed to record transaction", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Transaction recorded", tx)
	}
}

func Update(walletSvc *walletsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok, err := common.CurrentUserID(c, authSvc)
		if !ok {
			return err
		}
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid transaction ID", err,
				"Transaction ID must be a valid UUID", fiber.StatusBadRequest)
		}
		input, err := common.BindAndValidate[Request](c)
		if input == nil {
			return err
		}
		tx, err := walletSvc.UpdateTransaction(c.UserContext(), userID, id, input.candidate())
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to update transaction", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Transaction updated", tx)
	}
}

func Delete(walletSvc *walletsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok, err := common.CurrentUserID(c, authSvc)
		if !ok {
			return err
		}
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid transaction ID", err,
				"Transaction ID must be a valid UUID", fiber.StatusBadRequest)
		}
		if err := walletSvc.DeleteTransaction(c.UserContext(), userID, id); err != nil {
			return common.ProblemDetailsJSON(c, "Failed to delete transaction", err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

func Extract(
	walletSvc *walletsvc.Service,
	extractSvc *extractsvc.Service,
	authSvc *authsvc.Service,
) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok, err := common.CurrentUserID(c, authSvc)
		if !ok {
			return err
		}
		var in extractsvc.Input
		if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
			in, err = fileInput(c)
			if err != nil {
				return common.ProblemDetailsJSON(c, "Invalid upload", err, fiber.StatusBadRequest)
			}
		} else {
			input, err := common.BindAndValidate[ExtractRequest](c)
			if input == nil {
				return err
			}
			in.Text = input.Text
		}

		candidates, err := extractSvc.Extract(c.UserContext(), userID, in)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Extraction failed", err)
		}
		if c.QueryBool("preview") {
			return common.SuccessResponseJSON(c, fiber.StatusOK, "Candidates extracted", candidates)
		}
		res, err := walletSvc.ImportCandidates(c.UserContext(), userID, candidates)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Import failed", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Transactions imported", res)
	}
}

func fileInput(c *fiber.Ctx) (extractsvc.Input, error) {
	fh, err := c.FormFile("file")
	if err != nil {
		return extractsvc.Input{}, err
	}
	f, err := fh.Open()
	if err != nil {
		return extractsvc.Input{}, err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return extractsvc.Input{}, err
	}
	return extractsvc.Input{Media: data, MIME: fh.Header.Get(fiber.HeaderContentType)}, nil
}
