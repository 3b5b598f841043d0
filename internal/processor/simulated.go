package processor

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/nikolayk812/checkoutpay/internal/domain"
)

const simulatedStatus = "requires_payment_method"

// Simulated stands in for the processor when no real credentials are configured.
// The same request always yields the same handle.
type Simulated struct{}

func NewSimulated() *Simulated {
	return &Simulated{}
}

func (Simulated) CreatePaymentIntent(_ context.Context, req domain.IntentRequest) (domain.IntentHandle, error) {
	sum := sha256.Sum256(fmt.Appendf(nil, "%s|%d|%s", req.Order.OrderID, req.AmountMinorUnits, req.Currency))
	id := "pi_sim_" + hex.EncodeToString(sum[:12])

	return domain.IntentHandle{
		ID:           id,
		ClientSecret: id + "_secret_sim",
		Status:       simulatedStatus,
		Simulated:    true,
	}, nil
}
