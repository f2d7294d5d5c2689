package rest

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"

	"bazaar-be/internal/apperr"
	"bazaar-be/internal/logger"
	"bazaar-be/internal/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Money fields are rendered as JSON numbers.
func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

const maxBodyBytes = 1 << 20

var (
	errInvalidBody = apperr.Validation("invalid request body")
	errInvalidID   = apperr.NotFound("resource not found")
)

// statusFor maps an error kind to its HTTP status. Conflicts are reported
// as 400 like every other rejected request.
func statusFor(k apperr.Kind) int {
	switch k {
	case apperr.KindValidation, apperr.KindConflict:
		return http.StatusBadRequest
	case apperr.KindUnauthenticated:
		return http.StatusUnauthorized
	case apperr.KindAuthorization:
		return http.StatusForbidden
	case apperr.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var ae *apperr.Error
	if !errors.As(err, &ae) || ae.Kind == apperr.KindInternal {
		logger.FromCtx(r.Context()).Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		utils.WriteJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}
	utils.WriteJSONError(w, ae.Message, statusFor(ae.Kind), ae.Details...)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		logger.FromCtx(r.Context()).Debug("undecodable body", zap.Error(err))
		return errInvalidBody
	}
	return nil
}

func pathID(r *http.Request, name string) (uuid.UUID, error) {
	id, ok := utils.ParseID(r.PathValue(name))
	if !ok {
		return uuid.Nil, errInvalidID
	}
	return id, nil
}

// pagination builds the page block; countKey names the total item count.
func pagination(page, limit, total int, countKey string) map[string]any {
	pages := 0
	if limit > 0 {
		pages = int(math.Ceil(float64(total) / float64(limit)))
	}
	return map[string]any{
		"current": page,
		"total":   pages,
		"hasNext": page < pages,
		"hasPrev": page > 1,
		"limit":   limit,
		countKey:  total,
	}
}
