package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/thanhldev/accountd"
)

var errorStatus = []struct {
	sentinel error
	status   int
}{
	{accountd.ErrValidation, http.StatusBadRequest},
	{accountd.ErrDuplicateUsername, http.StatusBadRequest},
	{accountd.ErrDuplicateEmail, http.StatusBadRequest},
	{accountd.ErrNoPendingOTP, http.StatusBadRequest},
	{accountd.ErrOTPMismatch, http.StatusBadRequest},
	{accountd.ErrOTPExpired, http.StatusBadRequest},
	{accountd.ErrInvalidCredentials, http.StatusBadRequest},
	{accountd.ErrDelivery, http.StatusBadRequest},
	{accountd.ErrRoleInvalid, http.StatusBadRequest},
	{accountd.ErrNotVerified, http.StatusForbidden},
	{accountd.ErrForbidden, http.StatusForbidden},
	{accountd.ErrUnauthenticated, http.StatusUnauthorized},
	{accountd.ErrNotFound, http.StatusNotFound},
	{accountd.ErrAvatarsDisabled, http.StatusNotImplemented},
}

// errorResponse maps an engine error to a status code and JSON body.
// The body carries the matched sentinel's message, not the full wrap
// chain: engine errors wrap transport detail (SMTP addresses, Redis
// state) that must never reach clients. Unmapped errors become a 500
// with a generic message.
func errorResponse(err error) (int, gin.H) {
	for _, m := range errorStatus {
		if errors.Is(err, m.sentinel) {
			return m.status, gin.H{"message": m.sentinel.Error()}
		}
	}
	return http.StatusInternalServerError, gin.H{"message": "internal server error"}
}
