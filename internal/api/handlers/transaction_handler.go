package handlers

import (
	"context"

	"fintrack/internal/dto"
	"fintrack/internal/models"
	"fintrack/internal/service"
	"fintrack/pkg/middleware"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type TransactionService interface {
	Create(ctx context.Context, ownerID int64, in service.CreateTransactionInput) (*models.Transaction, error)
	List(ctx context.Context, ownerID int64) ([]*models.Transaction, error)
	Dashboard(ctx context.Context, ownerID int64) (*models.Dashboard, error)
}

type TransactionHandler struct {
	txService TransactionService
	logger    *zap.Logger
}

func NewTransactionHandler(txService TransactionService, logger *zap.Logger) *TransactionHandler {
	return &TransactionHandler{
		txService: txService,
		logger:    logger,
	}
}

// ListTransactions godoc
// @Summary List transactions
// @Description All transactions of the current user, newest date first
// @Tags transactions
// @Produce json
// @Success 200 {object} dto.TransactionListEnvelope
// @Failure 401 {object} dto.ErrorResponse
// @Router /api/transacoes [get]
func (h *TransactionHandler) ListTransactions(c *fiber.Ctx) error {
	sess, ok := middleware.CurrentSession(c)
	if !ok {
		return errorJSON(c, fiber.StatusUnauthorized, "Not authenticated")
	}

	txs, err := h.txService.List(c.Context(), sess.Identity.UserID)
	if err != nil {
		return failure(c, h.logger, "List transactions", err)
	}

	return c.JSON(dto.TransactionListEnvelope{
		Success:      true,
		Transactions: dto.NewTransactionList(txs),
	})
}

// CreateTransaction godoc
// @Summary Record a transaction
// @Tags transactions
// @Accept json
// @Produce json
// @Param request body dto.CreateTransactionRequest true "Transaction"
// @Success 200 {object} dto.TransactionEnvelope
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /api/transacoes [post]
func (h *TransactionHandler) CreateTransaction(c *fiber.Ctx) error {
	sess, ok := middleware.CurrentSession(c)
	if !ok {
		return errorJSON(c, fiber.StatusUnauthorized, "Not authenticated")
	}

	var req dto.CreateTransactionRequest
	if ok, err := bindJSON(c, &req); !ok {
		return err
	}

	tx, err := h.txService.Create(c.Context(), sess.Identity.UserID, service.CreateTransactionInput{
		Description: req.Description,
		Kind:        req.Kind,
		Amount:      req.Amount,
		Date:        req.Date,
	})
	if err != nil {
		return failure(c, h.logger, "Create transaction", err)
	}

	h.logger.Debug("Transaction recorded",
		zap.Int64("user_id", tx.UserID),
		zap.Int64("transaction_id", tx.ID),
	)

	return c.JSON(dto.TransactionEnvelope{
		Success:     true,
		Message:     "Transaction recorded",
		Transaction: dto.NewTransactionResponse(tx),
	})
}

// Dashboard godoc
// @Summary Balance and trailing 30-day totals
// @Tags transactions
// @Produce json
// @Success 200 {object} dto.DashboardResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /api/dashboard [get]
func (h *TransactionHandler) Dashboard(c *fiber.Ctx) error {
	sess, ok := middleware.CurrentSession(c)
	if !ok {
		return errorJSON(c, fiber.StatusUnauthorized, "Not authenticated")
	}

	d, err := h.txService.Dashboard(c.Context(), sess.Identity.UserID)
	if err != nil {
		return failure(c, h.logger, "Dashboard", err)
	}

	return c.JSON(dto.NewDashboardResponse(d))
}
