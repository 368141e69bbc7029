package restapi

import (
	"errors"
	"math/big"
	"net/http"

	"wallet_connector/internal/app/port"
	"wallet_connector/internal/app/service"
	"wallet_connector/internal/infrastructure/network/client"

	"github.com/gin-gonic/gin"
)

type formatTransactionRequest struct {
	Account string `json:"account" binding:"required"`
	To      string `json:"to" binding:"required"`
	// Value is a base-10 integer in the chain's smallest unit.
	Value string `json:"value"`
	Token string `json:"token"`
}

// TransactionHandler formats unsigned transfers for the wallet to sign.
type TransactionHandler struct {
	formatter port.TransactionFormatter
}

// NewTransactionHandler creates a TransactionHandler.
func NewTransactionHandler(formatter port.TransactionFormatter) *TransactionHandler {
	return &TransactionHandler{formatter: formatter}
}

// FormatTransactionHandler returns the unsigned payload for a native or token transfer.
func (h *TransactionHandler) FormatTransactionHandler(c *gin.Context) {
	var req formatTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status_message": err.Error()})
		return
	}

	value := new(big.Int)
	if req.Value != "" {
		if _, ok := value.SetString(req.Value, 10); !ok || value.Sign() < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"status_message": "value must be a non-negative base-10 integer"})
			return
		}
	}

	payload, err := h.formatter.FormatTransaction(c.Request.Context(), req.Account, req.To, value, req.Token)
	if errors.Is(err, service.ErrInvalidAddress) {
		c.JSON(http.StatusBadRequest, gin.H{"status_message": err.Error()})
		return
	}
	if errors.Is(err, client.ErrUnsupportedChain) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"status_message": err.Error()})
		return
	}
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusBadGateway, gin.H{"status_message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": payload})
}
