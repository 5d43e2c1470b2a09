package httpapi

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/thanhldev/accountd"
)

func TestErrorResponseHidesWrappedDetail(t *testing.T) {
	wrapped := fmt.Errorf("%w: dial tcp 10.0.0.5:587: connect: connection refused", accountd.ErrDelivery)

	status, body := errorResponse(wrapped)
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, accountd.ErrDelivery.Error(), body["message"])
}

func TestErrorResponseMapsSentinels(t *testing.T) {
	status, body := errorResponse(accountd.ErrNotFound)
	require.Equal(t, http.StatusNotFound, status)
	require.Equal(t, accountd.ErrNotFound.Error(), body["message"])

	status, body = errorResponse(fmt.Errorf("login: %w", accountd.ErrInvalidCredentials))
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, accountd.ErrInvalidCredentials.Error(), body["message"])
}

func TestErrorResponseUnmappedIsOpaque(t *testing.T) {
	status, body := errorResponse(fmt.Errorf("pq: connection reset"))
	require.Equal(t, http.StatusInternalServerError, status)
	require.Equal(t, "internal server error", body["message"])
}
