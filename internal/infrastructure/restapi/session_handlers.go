package restapi

import (
	"context"
	"errors"
	"net/http"

	"wallet_connector/internal/app/port"
	"wallet_connector/internal/app/service"
	"wallet_connector/internal/domain/entity"
	"wallet_connector/internal/infrastructure/qrmodal"
	"wallet_connector/internal/pkg/utils"

	"github.com/gin-gonic/gin"
)

// Balances of every supported chain are expressed in 18-decimal base units.
const balanceDecimals = 18

// QRCodeSource exposes the pairing modal and its QR code.
type QRCodeSource interface {
	View() qrmodal.View
	PNG() ([]byte, bool)
}

// SessionView is the session snapshot plus display-ready balances and the modal state.
type SessionView struct {
	entity.SessionState
	FormattedBalances map[string]string `json:"formattedBalances"`
	Modal             qrmodal.View      `json:"modal"`
}

// APISessionResponse is the response body of the session endpoints.
type APISessionResponse struct {
	Data          SessionView `json:"data"`
	StatusMessage string      `json:"status_message"`
}

type connectRequest struct {
	PairingTopic string `json:"pairingTopic"`
}

type accountRow struct {
	Account string
	Balance string
	Symbol  string
}

type indexView struct {
	IsInitializing bool
	Accounts       []accountRow
}

// SessionHandler serves the connect page and the session API.
type SessionHandler struct {
	sessions port.SessionService
	qr       QRCodeSource
	logger   port.Logger
	// background is the parent context of connect attempts, which outlive the request.
	background context.Context
}

// NewSessionHandler creates a SessionHandler. Connect attempts run under background.
func NewSessionHandler(background context.Context, sessions port.SessionService, qr QRCodeSource, logger port.Logger) *SessionHandler {
	return &SessionHandler{
		sessions:   sessions,
		qr:         qr,
		logger:     logger,
		background: background,
	}
}

// IndexHandler renders the page with the Connect button.
func (h *SessionHandler) IndexHandler(c *gin.Context) {
	state := h.sessions.Snapshot()
	formatted := h.formatBalances(state.Balances)

	view := indexView{IsInitializing: state.IsInitializing}
	for _, account := range state.Accounts {
		row := accountRow{Account: account}
		if b, ok := state.Balances[account]; ok && b.Supported() {
			row.Balance = formatted[account]
			row.Symbol = b.Symbol
		}
		view.Accounts = append(view.Accounts, row)
	}
	c.HTML(http.StatusOK, indexTemplateName, view)
}

// ConnectHandler starts a connect attempt in the background and returns immediately.
func (h *SessionHandler) ConnectHandler(c *gin.Context) {
	if h.sessions.IsInitializing() {
		c.JSON(http.StatusConflict, gin.H{"status_message": "Client is initializing."})
		return
	}

	var req connectRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"status_message": "Invalid request body."})
			return
		}
	}

	var pairing *entity.Pairing
	if req.PairingTopic != "" {
		for _, p := range h.sessions.Snapshot().Pairings {
			if p.Topic == req.PairingTopic {
				pairing = &p
				break
			}
		}
		if pairing == nil {
			c.JSON(http.StatusNotFound, gin.H{"status_message": "Unknown pairing."})
			return
		}
	}

	go func() {
		if err := h.sessions.Connect(h.background, pairing); err != nil {
			h.logger.Error("Connect rejected", "error", err)
		}
	}()

	c.JSON(http.StatusAccepted, gin.H{"status_message": "Connect started."})
}

// QRCodeHandler serves the pairing QR code while the modal is open.
func (h *SessionHandler) QRCodeHandler(c *gin.Context) {
	png, ok := h.qr.PNG()
	if !ok {
		c.Status(http.StatusNotFound)
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "image/png", png)
}

// GetSessionHandler returns the current session snapshot.
func (h *SessionHandler) GetSessionHandler(c *gin.Context) {
	c.JSON(http.StatusOK, h.response(h.sessions.Snapshot(), "Session state retrieved successfully."))
}

// DisconnectHandler terminates the active session.
func (h *SessionHandler) DisconnectHandler(c *gin.Context) {
	err := h.sessions.Disconnect(c.Request.Context())
	switch {
	case errors.Is(err, service.ErrNotInitialized):
		c.JSON(http.StatusServiceUnavailable, gin.H{"status_message": err.Error()})
		return
	case errors.Is(err, service.ErrSessionNotConnected):
		c.JSON(http.StatusConflict, gin.H{"status_message": err.Error()})
		return
	case err != nil:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"status_message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, h.response(h.sessions.Snapshot(), "Disconnect completed."))
}

func (h *SessionHandler) response(state entity.SessionState, msg string) APISessionResponse {
	return APISessionResponse{
		Data: SessionView{
			SessionState:      state,
			FormattedBalances: h.formatBalances(state.Balances),
			Modal:             h.qr.View(),
		},
		StatusMessage: msg,
	}
}

func (h *SessionHandler) formatBalances(balances entity.AccountBalances) map[string]string {
	formatted := make(map[string]string, len(balances))
	for account, b := range balances {
		if !b.Supported() {
			continue
		}
		value, err := utils.FormatDecimalString(b.Balance, balanceDecimals)
		if err != nil {
			h.logger.Warn("Unformattable balance", "account", account, "balance", b.Balance, "error", err)
			continue
		}
		formatted[account] = value
	}
	return formatted
}
