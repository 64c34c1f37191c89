package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ledger-engine/internal/domain/models"
	"ledger-engine/internal/infrastructure/metrics"
	apierrors "ledger-engine/internal/pkg/errors"
	"ledger-engine/internal/pkg/logging"
)

// MakeDepositHandler implements ProcessDeposit(transaction_id, amount) ->
// {success, error_message}. The destination account comes from the route
// (POST /accounts/:id/deposit), not the body.
func MakeDepositHandler(engine Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		destID, ok := parseUUID(c.Param("id"))
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid account id: must be a canonical UUID"})
			return
		}

		var req struct {
			TransactionID string `json:"transaction_id" binding:"required"`
			Amount        uint64 `json:"amount"`
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

		transaction := models.NewTransaction(txID, models.DepositInstruction(destID, req.Amount), submissionTime())

		_, err := engine.Process(transaction)
		if err != nil {
			metrics.RecordOperation("deposit", "error")
			apiErr := translateProcessError(err)
			logging.Warn("deposit rejected", map[string]interface{}{
				"transaction_id": req.TransactionID,
				"destination":    destID.String(),
				"amount":         req.Amount,
				"error":          err.Error(),
			})
			c.JSON(http.StatusOK, gin.H{"success": false, "error_message": apiErr.Message})
			return
		}

		metrics.RecordOperation("deposit", "success")
		c.JSON(http.StatusOK, gin.H{"success": true, "error_message": ""})
	}
}
