/*
handlers.go - HTTP API handlers for the ledger engine

PURPOSE:
  Exposes the engine over REST for interactive use: feed events one at a
  time, inspect accounts and transaction history, download the snapshot
  CSV. The CSV batch path (cmd/engine) stays the primary interface; this
  is the live window onto the same engine.

ENDPOINTS:
  Accounts:
    GET    /api/accounts           All account snapshots
    GET    /api/accounts/{id}      One account snapshot

  Transactions:
    GET    /api/transactions/{id}  One history record with dispute state

  Events:
    POST   /api/events             Apply one event to the engine

  Snapshot:
    GET    /api/snapshot           Snapshot as CSV (same format as stdout)

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Undecodable request body or parameters
  - 404: Unknown account / transaction id
  - 422: Event rejected by the ledger rules (reason in details)
  - 500: Storage failure

ORDERING NOTE:
  The engine itself is sequential; events POSTed concurrently are applied
  one at a time, serialized by a mutex. The order among concurrent
  requests is not defined.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
  - ledger/engine.go: The rules being exposed
*/
package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/warp/txledger/csv"
	"github.com/warp/txledger/ledger"
)

// =============================================================================
// HANDLER
// =============================================================================

// Handler holds the engine and serializes event submission: the engine
// contract is strictly sequential processing.
type Handler struct {
	engine *ledger.Engine
	mu     sync.Mutex
}

// NewHandler creates the API handler around an engine.
func NewHandler(engine *ledger.Engine) *Handler {
	return &Handler{engine: engine}
}

// =============================================================================
// ACCOUNT ENDPOINTS
// =============================================================================

// ListAccounts returns every known account's snapshot, sorted by client id.
func (h *Handler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	snaps, err := h.engine.Snapshots(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list accounts", err)
		return
	}

	dtos := make([]AccountDTO, 0, len(snaps))
	for _, s := range snaps {
		dtos = append(dtos, toAccountDTO(s))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetAccount returns one account's snapshot.
func (h *Handler) GetAccount(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 16)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid client id", err)
		return
	}

	acct, found, err := h.engine.Accounts().Get(r.Context(), ledger.ClientID(id))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get account", err)
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "Account not found", nil)
		return
	}

	writeJSON(w, http.StatusOK, toAccountDTO(ledger.AccountSnapshot{
		Client:    acct.Client,
		Available: acct.Available,
		Held:      acct.Held,
		Total:     acct.Total(),
		Locked:    acct.Locked,
	}))
}

// =============================================================================
// TRANSACTION ENDPOINTS
// =============================================================================

// GetTransaction returns one monetary history record.
func (h *Handler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 32)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid transaction id", err)
		return
	}

	t, found, err := h.engine.Transactions().Get(r.Context(), ledger.TxID(id))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get transaction", err)
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "Transaction not found", nil)
		return
	}

	writeJSON(w, http.StatusOK, toTransactionDTO(t))
}

// =============================================================================
// EVENT ENDPOINT
// =============================================================================

// SubmitEvent applies one event. Rejections come back as 422 with the
// ledger's reason; they are normal operation, not server errors.
func (h *Handler) SubmitEvent(w http.ResponseWriter, r *http.Request) {
	var req SubmitEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	ev, err := req.toEvent()
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid event", err)
		return
	}

	h.mu.Lock()
	err = h.engine.Process(r.Context(), ev)
	h.mu.Unlock()

	if err != nil {
		if ledger.IsFatal(err) {
			writeError(w, http.StatusInternalServerError, "Storage failure", err)
			return
		}
		writeError(w, http.StatusUnprocessableEntity, "Event rejected", err)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{"status": "applied"})
}

func (req SubmitEventRequest) toEvent() (ledger.Event, error) {
	ev := ledger.Event{
		Client: ledger.ClientID(req.Client),
		Tx:     ledger.TxID(req.Tx),
	}

	switch req.Type {
	case "deposit":
		ev.Type = ledger.EventDeposit
	case "withdraw", "withdrawal":
		ev.Type = ledger.EventWithdrawal
	case "dispute":
		ev.Type = ledger.EventDispute
	case "resolve":
		ev.Type = ledger.EventResolve
	case "chargeback":
		ev.Type = ledger.EventChargeback
	default:
		return ledger.Event{}, ledger.ErrMalformedEvent
	}

	if ev.Type == ledger.EventDeposit || ev.Type == ledger.EventWithdrawal {
		if req.Amount == "" {
			return ledger.Event{}, ledger.ErrMissingAmount
		}
		value, err := decimal.NewFromString(req.Amount)
		if err != nil {
			return ledger.Event{}, err
		}
		amount, err := ledger.NewPositiveAmount(value)
		if err != nil {
			return ledger.Event{}, err
		}
		ev.Amount = &amount
	}
	return ev, nil
}

// =============================================================================
// SNAPSHOT ENDPOINT
// =============================================================================

// GetSnapshotCSV streams the snapshot in the CSV output format.
func (h *Handler) GetSnapshotCSV(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv")

	cw := csv.NewWriter(w)
	if err := h.engine.Snapshot(r.Context(), cw.Write); err != nil {
		// Headers are likely gone already; best effort.
		writeError(w, http.StatusInternalServerError, "Failed to produce snapshot", err)
		return
	}
	_ = cw.Flush()
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
