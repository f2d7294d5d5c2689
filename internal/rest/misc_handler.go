package rest

import (
	"net/http"

	"bazaar-be/internal/cart"
	"bazaar-be/internal/grouporder"
	"bazaar-be/internal/logger"
	"bazaar-be/internal/utils"

	"go.uber.org/zap"
)

type cartRequest struct {
	Items []cart.Item `json:"items"`
}

// validateCart runs the pre-checkout rules over a cart snapshot. The verdict
// is the payload, so an invalid cart still answers 200.
func (h *Handler) validateCart(w http.ResponseWriter, r *http.Request) {
	var in cartRequest
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, cart.Validate(in.Items))
}

func (h *Handler) createGroupOrder(w http.ResponseWriter, r *http.Request) {
	var in grouporder.CreateInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}

	vendorID, _ := utils.GetUserIDFromContext(r.Context())
	g, err := h.groups.Create(r.Context(), vendorID, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, map[string]any{
		"message":    "Group order created",
		"groupOrder": g,
	})
}

func (h *Handler) joinGroupOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, grouporder.ErrNotFound)
		return
	}
	var in grouporder.JoinInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}

	vendorID, _ := utils.GetUserIDFromContext(r.Context())
	g, err := h.groups.Join(r.Context(), vendorID, id, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{
		"message":    "Joined successfully",
		"groupOrder": g,
	})
}

func (h *Handler) listGroupOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.groups.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{"orders": orders})
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	status, code := "ok", http.StatusOK
	if h.ping != nil {
		if err := h.ping(r.Context()); err != nil {
			logger.FromCtx(r.Context()).Warn("store ping failed", zap.Error(err))
			status, code = "degraded", http.StatusServiceUnavailable
		}
	}
	utils.WriteJSON(w, code, map[string]any{
		"status":    status,
		"timestamp": h.now().UTC(),
		"metrics":   h.metrics.Snapshot(),
	})
}
