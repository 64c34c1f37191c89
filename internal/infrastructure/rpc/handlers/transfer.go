package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ledger-engine/internal/domain/models"
	"ledger-engine/internal/infrastructure/metrics"
	apierrors "ledger-engine/internal/pkg/errors"
	"ledger-engine/internal/pkg/logging"
)

// MakeTransferHandler implements ProcessTransfer(transaction_id,
// source_account_id, destination_account_id, amount) -> {success,
// error_message}. Self-transfers are not rejected at this layer — the
// processor applies the uniform no-op-commit policy.
func MakeTransferHandler(engine Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			TransactionID        string `json:"transaction_id" binding:"required"`
			SourceAccountID      string `json:"source_account_id" binding:"required"`
			DestinationAccountID string `json:"destination_account_id" binding:"required"`
			Amount               uint64 `json:"amount"`
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
		srcID, ok := parseUUID(req.SourceAccountID)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid source_account_id: must be a canonical UUID"})
			return
		}
		dstID, ok := parseUUID(req.DestinationAccountID)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid destination_account_id: must be a canonical UUID"})
			return
		}

		transaction := models.NewTransaction(
			txID,
			models.TransferInstruction(srcID, dstID, req.Amount),
			submissionTime(),
		)

		_, err := engine.Process(transaction)
		if err != nil {
			metrics.RecordOperation("transfer", "error")
			apiErr := translateProcessError(err)
			logging.Warn("transfer rejected", map[string]interface{}{
				"transaction_id": req.TransactionID,
				"source":         req.SourceAccountID,
				"destination":    req.DestinationAccountID,
				"amount":         req.Amount,
				"error":          err.Error(),
			})
			c.JSON(http.StatusOK, gin.H{"success": false, "error_message": apiErr.Message})
			return
		}

		metrics.RecordOperation("transfer", "success")
		metrics.TransferAmountHistogram.Observe(float64(req.Amount))
		c.JSON(http.StatusOK, gin.H{"success": true, "error_message": ""})
	}
}
