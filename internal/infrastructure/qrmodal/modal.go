package qrmodal

import (
	"fmt"
	"sync"

	"wallet_connector/internal/app/port"

	"github.com/skip2/go-qrcode"
)

const qrSize = 256

// View is what the modal currently shows.
type View struct {
	Open   bool     `json:"open"`
	URI    string   `json:"uri,omitempty"`
	Chains []string `json:"chains,omitempty"`
}

// Modal renders a pairing URI as a QR code and holds it until closed.
type Modal struct {
	mu     sync.RWMutex
	view   View
	png    []byte
	logger port.Logger
}

var _ port.Modal = (*Modal)(nil)

// New creates a closed modal.
func New(logger port.Logger) *Modal {
	return &Modal{logger: logger}
}

// OpenModal implements port.Modal.
func (m *Modal) OpenModal(uri string, chains []string) error {
	png, err := qrcode.Encode(uri, qrcode.Medium, qrSize)
	if err != nil {
		return fmt.Errorf("failed to encode pairing uri: %w", err)
	}

	m.mu.Lock()
	m.view = View{Open: true, URI: uri, Chains: append([]string{}, chains...)}
	m.png = png
	m.mu.Unlock()

	m.logger.Info("Modal opened", "chains", chains)
	return nil
}

// CloseModal implements port.Modal. Closing a closed modal is a no-op.
func (m *Modal) CloseModal() {
	m.mu.Lock()
	wasOpen := m.view.Open
	m.view = View{}
	m.png = nil
	m.mu.Unlock()

	if wasOpen {
		m.logger.Info("Modal closed")
	}
}

// View returns the current modal state.
func (m *Modal) View() View {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v := m.view
	v.Chains = append([]string(nil), m.view.Chains...)
	return v
}

// PNG returns the QR image of the open modal, false when closed.
func (m *Modal) PNG() ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.view.Open {
		return nil, false
	}
	return append([]byte(nil), m.png...), true
}
