/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract. Amounts cross
  the wire as four-fractional-digit decimal strings, never floats - the
  same precision rule as the CSV snapshot.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

SEE ALSO:
  - handlers.go: Uses these types
  - ledger/snapshot.go: The domain types behind AccountDTO
*/
package api

import "github.com/warp/txledger/ledger"

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// AccountDTO represents one account's snapshot in API responses.
type AccountDTO struct {
	Client    uint16 `json:"client"`
	Available string `json:"available"`
	Held      string `json:"held"`
	Total     string `json:"total"`
	Locked    bool   `json:"locked"`
}

func toAccountDTO(s ledger.AccountSnapshot) AccountDTO {
	return AccountDTO{
		Client:    uint16(s.Client),
		Available: s.Available.StringFixed(),
		Held:      s.Held.StringFixed(),
		Total:     s.Total.StringFixed(),
		Locked:    s.Locked,
	}
}

// TransactionDTO represents a monetary history record in API responses.
type TransactionDTO struct {
	Tx           uint32 `json:"tx"`
	Client       uint16 `json:"client"`
	Kind         string `json:"kind"`
	Amount       string `json:"amount"`
	DisputeState string `json:"dispute_state"`
}

func toTransactionDTO(t ledger.Transaction) TransactionDTO {
	return TransactionDTO{
		Tx:           uint32(t.ID),
		Client:       uint16(t.Client),
		Kind:         string(t.Kind),
		Amount:       t.Amount.Amount().StringFixed(),
		DisputeState: string(t.State),
	}
}

// SubmitEventRequest is the request to feed one event into the engine.
// Amount is required for deposit/withdrawal and ignored otherwise.
type SubmitEventRequest struct {
	Type   string `json:"type"`
	Client uint16 `json:"client"`
	Tx     uint32 `json:"tx"`
	Amount string `json:"amount,omitempty"`
}

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
