package main

import (
	"testing"
	"time"

	"fintrack/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestSampleTransactions(t *testing.T) {
	now := time.Date(2024, 3, 31, 15, 0, 0, 0, time.UTC)
	txs := sampleTransactions(now)

	assert.NotEmpty(t, txs)
	for _, tx := range txs {
		assert.True(t, models.TransactionKind(tx.Kind).Valid(), tx.Description)
		assert.True(t, tx.Amount.IsPositive(), tx.Description)
		d, err := time.Parse(models.DateLayout, tx.Date)
		assert.NoError(t, err)
		assert.False(t, d.After(now), tx.Description)
	}
}
