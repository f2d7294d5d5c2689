package rest

import (
	"net/http"

	"bazaar-be/internal/order"
	"bazaar-be/internal/user"
	"bazaar-be/internal/utils"
)

type statusRequest struct {
	Status string `json:"status"`
}

// viewerFrom maps the authenticated caller to the order party it reads as.
func viewerFrom(r *http.Request) order.Viewer {
	id, _ := utils.GetUserIDFromContext(r.Context())
	party := order.PartyVendor
	if utils.GetUserRoleFromContext(r.Context()) == string(user.RoleSupplier) {
		party = order.PartySupplier
	}
	return order.Viewer{UserID: id, Party: party}
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	var in order.CreateInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}

	vendorID, _ := utils.GetUserIDFromContext(r.Context())
	o, err := h.orders.Create(r.Context(), vendorID, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, map[string]any{
		"message": "Order placed successfully",
		"order":   o,
	})
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	res, err := h.orders.List(r.Context(), viewerFrom(r), q.Get("status"),
		utils.PositiveInt(q.Get("page"), 1),
		utils.PositiveInt(q.Get("limit"), order.DefaultPageLimit),
	)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{
		"orders":     res.Orders,
		"pagination": pagination(res.Page, res.Limit, res.Total, "totalOrders"),
	})
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, order.ErrOrderNotFound)
		return
	}
	o, err := h.orders.Get(r.Context(), viewerFrom(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{"order": o})
}

func (h *Handler) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, order.ErrOrderNotFound)
		return
	}
	var in statusRequest
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}

	supplierID, _ := utils.GetUserIDFromContext(r.Context())
	o, err := h.orders.UpdateStatus(r.Context(), supplierID, id, in.Status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{
		"message": "Order status updated successfully",
		"order":   o,
	})
}

func (h *Handler) rateOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, order.ErrOrderNotFound)
		return
	}
	var in order.RateInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}

	vendorID, _ := utils.GetUserIDFromContext(r.Context())
	o, err := h.orders.Rate(r.Context(), vendorID, id, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{
		"message": "Rating submitted successfully",
		"order":   o,
	})
}

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.orders.Dashboard(r.Context(), viewerFrom(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{"stats": stats})
}
