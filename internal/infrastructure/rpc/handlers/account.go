package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ledger-engine/internal/domain/models"
	"ledger-engine/internal/domain/processor"
	"ledger-engine/internal/infrastructure/metrics"
	apierrors "ledger-engine/internal/pkg/errors"
	"ledger-engine/internal/pkg/logging"
)

// MakeCreateAccountHandler implements CreateAccount(transaction_id) ->
// {success, created_account_id, error_message}.
func MakeCreateAccountHandler(engine Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			TransactionID string       `json:"transaction_id" binding:"required"`
			Keys          []models.Key `json:"keys"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			apiErr := apierrors.NewValidationError("invalid request format")
			c.JSON(apiErr.Status, apiErr)
			return
		}

		txID, ok := parseUUID(req.TransactionID)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid transaction_id: must be a canonical UUID"})
			return
		}

		transaction := models.NewTransaction(txID, models.CreateAccountInstruction(req.Keys), submissionTime())

		result, err := engine.Process(transaction)
		if err != nil {
			metrics.RecordOperation("create_account", "error")
			apiErr := translateProcessError(err)
			logging.Warn("create account rejected", map[string]interface{}{
				"transaction_id": req.TransactionID,
				"error":          err.Error(),
			})
			c.JSON(http.StatusOK, gin.H{"success": false, "error_message": apiErr.Message})
			return
		}

		metrics.RecordOperation("create_account", "success")
		c.JSON(http.StatusOK, gin.H{
			"success":            true,
			"created_account_id": result.AccountID.String(),
			"error_message":      "",
		})
	}
}

// MakeGetBalanceHandler implements GetBalance(transaction_id, account_id)
// -> {success, balance, error_message}. GetBalance is read-only and is
// never recorded in the processed-id set.
func MakeGetBalanceHandler(engine Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		accountIDRaw := c.Param("id")
		accountID, ok := parseUUID(accountIDRaw)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid account id: must be a canonical UUID"})
			return
		}

		txIDRaw := c.Query("transaction_id")
		txID, ok := parseUUID(txIDRaw)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid transaction_id: must be a canonical UUID"})
			return
		}

		transaction := models.NewTransaction(txID, models.GetBalanceInstruction(accountID), submissionTime())

		result, err := engine.Process(transaction)
		if err != nil {
			metrics.RecordOperation("get_balance", "error")
			apiErr := translateProcessError(err)
			logging.Warn("get balance rejected", map[string]interface{}{
				"transaction_id": txIDRaw,
				"account":        accountIDRaw,
				"error":          err.Error(),
			})
			c.JSON(http.StatusOK, gin.H{"success": false, "balance": 0, "error_message": apiErr.Message})
			return
		}

		metrics.RecordOperation("get_balance", "success")
		if result.Kind == processor.ResultBalance {
			metrics.AccountBalanceHistogram.Observe(float64(result.Balance))
		}

		c.JSON(http.StatusOK, gin.H{
			"success":       true,
			"balance":       result.Balance,
			"error_message": "",
		})
	}
}
