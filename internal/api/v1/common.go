package v1

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"stampjoy/internal/api/middleware"
	"stampjoy/internal/api/response"
	"stampjoy/internal/ledger"
	"stampjoy/internal/model"
	"stampjoy/internal/repository"
	"stampjoy/internal/service"
)

func parseIntOrDefault(raw string, def int) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return value
}

func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(strings.TrimSpace(c.Param(name)))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidInput, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

func currentIdentity(c *gin.Context) (model.Identity, bool) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, response.ErrUnauthorized, "unauthorized")
		return model.Identity{}, false
	}
	return identity, true
}

// handleServiceError translates service and domain errors into the API
// envelope. Handlers fall back to it for everything they do not map
// themselves.
func handleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrForbidden):
		response.Fail(c, http.StatusForbidden, response.ErrForbidden, "forbidden")
	case errors.Is(err, service.ErrInvalidInput):
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidInput, "invalid request")
	case errors.Is(err, service.ErrTransientConflict):
		response.Fail(c, http.StatusConflict, response.ErrConflict, "conflict, retry the request")
	case errors.Is(err, service.ErrInvalidPIN):
		response.Fail(c, http.StatusForbidden, response.ErrInvalidPIN, "invalid pin")
	case errors.Is(err, service.ErrPINLocked):
		response.Fail(c, http.StatusConflict, response.ErrPINLocked, "pin can no longer be changed")
	case errors.Is(err, service.ErrWeakPIN):
		response.Fail(c, http.StatusBadRequest, response.ErrWeakPIN, "pin must differ from the default")
	case errors.Is(err, service.ErrEmailTaken):
		response.Fail(c, http.StatusConflict, response.ErrEmailTaken, "email already registered")
	case errors.Is(err, service.ErrInvalidStampsRequired):
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidStamps, "stamps required must be at least 1")
	case errors.Is(err, service.ErrInvalidRating):
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidRating, "rating must be between 1 and 5")
	case errors.Is(err, ledger.ErrUnknownRestaurant):
		response.Fail(c, http.StatusNotFound, response.ErrRestaurantNotFound, "restaurant not found")
	case errors.Is(err, ledger.ErrInvalidQRCode):
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidQRCode, "invalid qr code")
	case errors.Is(err, ledger.ErrInvalidOrExpiredToken):
		response.Fail(c, http.StatusUnprocessableEntity, response.ErrTokenInvalid, "qr code is no longer valid")
	case errors.Is(err, ledger.ErrDuplicateScan):
		response.Fail(c, http.StatusConflict, response.ErrDuplicateScan, "qr code already scanned")
	case errors.Is(err, ledger.ErrSelfReferral):
		response.Fail(c, http.StatusUnprocessableEntity, response.ErrSelfReferral, "cannot use your own referral code")
	case errors.Is(err, ledger.ErrCircularReferral):
		response.Fail(c, http.StatusUnprocessableEntity, response.ErrCircularChain, "referral would create a cycle")
	case errors.Is(err, ledger.ErrUnknownCode):
		response.Fail(c, http.StatusNotFound, response.ErrUnknownCode, "referral code not found")
	case errors.Is(err, ledger.ErrAlreadyReferred):
		response.Fail(c, http.StatusConflict, response.ErrAlreadyReferred, "card already has a referrer")
	case errors.Is(err, repository.ErrNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound, "not found")
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal, "internal error")
	}
}
