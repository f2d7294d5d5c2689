package rest

import (
	"net/http"
	"strings"

	"bazaar-be/internal/apperr"
	"bazaar-be/internal/product"
	"bazaar-be/internal/utils"

	"github.com/shopspring/decimal"
)

var errInvalidPriceFilter = apperr.Validation("invalid price filter")

func (h *Handler) categories(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, map[string]any{"categories": h.products.Categories()})
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := product.ListFilter{
		Page:      utils.PositiveInt(q.Get("page"), 1),
		Limit:     utils.PositiveInt(q.Get("limit"), product.DefaultPageLimit),
		Category:  product.Category(strings.TrimSpace(q.Get("category"))),
		Search:    q.Get("search"),
		SortBy:    q.Get("sortBy"),
		SortOrder: q.Get("sortOrder"),
	}

	var err error
	if f.MinPrice, err = priceParam(q.Get("minPrice")); err != nil {
		writeError(w, r, err)
		return
	}
	if f.MaxPrice, err = priceParam(q.Get("maxPrice")); err != nil {
		writeError(w, r, err)
		return
	}

	res, err := h.products.List(r.Context(), f)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeProductPage(w, res)
}

func (h *Handler) supplierProducts(w http.ResponseWriter, r *http.Request) {
	supplierID, err := pathID(r, "supplierId")
	if err != nil {
		writeError(w, r, err)
		return
	}

	q := r.URL.Query()
	res, err := h.products.ListBySupplier(r.Context(), supplierID,
		utils.PositiveInt(q.Get("page"), 1),
		utils.PositiveInt(q.Get("limit"), product.DefaultPageLimit),
	)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeProductPage(w, res)
}

func (h *Handler) recommendations(w http.ResponseWriter, r *http.Request) {
	vendorID, _ := utils.GetUserIDFromContext(r.Context())
	recommended, err := h.products.Recommend(r.Context(), vendorID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{"recommended": recommended})
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, product.ErrProductNotFound)
		return
	}
	p, err := h.products.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{"product": p})
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var in product.CreateInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}

	supplierID, _ := utils.GetUserIDFromContext(r.Context())
	p, err := h.products.Create(r.Context(), supplierID, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, map[string]any{
		"message": "Product created successfully",
		"product": p,
	})
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, product.ErrProductNotFound)
		return
	}
	var in product.UpdateInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}

	supplierID, _ := utils.GetUserIDFromContext(r.Context())
	p, err := h.products.Update(r.Context(), supplierID, id, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{
		"message": "Product updated successfully",
		"product": p,
	})
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, product.ErrProductNotFound)
		return
	}

	supplierID, _ := utils.GetUserIDFromContext(r.Context())
	if err := h.products.Delete(r.Context(), supplierID, id); err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{"message": "Product deleted successfully"})
}

func writeProductPage(w http.ResponseWriter, res *product.ListResult) {
	utils.WriteJSON(w, http.StatusOK, map[string]any{
		"products":   res.Products,
		"pagination": pagination(res.Page, res.Limit, res.Total, "totalProducts"),
	})
}

func priceParam(raw string) (*decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil || d.IsNegative() {
		return nil, errInvalidPriceFilter
	}
	return &d, nil
}
