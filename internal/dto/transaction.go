package dto

import (
	"fintrack/internal/models"

	"github.com/shopspring/decimal"
)

// CreateTransactionRequest accepts amount as a JSON number or numeric string.
// Field rules live in the service so every problem is reported together.
type CreateTransactionRequest struct {
	Description string          `json:"description"`
	Kind        string          `json:"kind"`
	Amount      decimal.Decimal `json:"amount"`
	Date        string          `json:"date"`
}

type TransactionResponse struct {
	ID          int64  `json:"id"`
	Description string `json:"description"`
	Kind        string `json:"kind"`
	Amount      string `json:"amount" example:"40.00"`
	Date        string `json:"date" example:"2024-01-02"`
}

type TransactionEnvelope struct {
	Success     bool                `json:"success"`
	Message     string              `json:"message,omitempty"`
	Transaction TransactionResponse `json:"transaction"`
}

type TransactionListEnvelope struct {
	Success      bool                  `json:"success"`
	Transactions []TransactionResponse `json:"transactions"`
}

type DashboardResponse struct {
	Success   bool   `json:"success"`
	Balance   string `json:"balance" example:"60.00"`
	Income30  string `json:"income30" example:"100.00"`
	Expense30 string `json:"expense30" example:"40.00"`
}

func NewTransactionResponse(tx *models.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:          tx.ID,
		Description: tx.Description,
		Kind:        string(tx.Kind),
		Amount:      money(tx.Amount),
		Date:        tx.Date.Format(models.DateLayout),
	}
}

func NewTransactionList(txs []*models.Transaction) []TransactionResponse {
	out := make([]TransactionResponse, 0, len(txs))
	for _, tx := range txs {
		out = append(out, NewTransactionResponse(tx))
	}
	return out
}

func NewDashboardResponse(d *models.Dashboard) DashboardResponse {
	return DashboardResponse{
		Success:   true,
		Balance:   money(d.Balance),
		Income30:  money(d.Income30),
		Expense30: money(d.Expense30),
	}
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}
