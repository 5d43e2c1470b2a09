package accountd

import (
	"context"
	"errors"
	"fmt"
)

// Authenticate resolves a bearer token to the live account it names.
// Any verification failure, and a token whose account no longer exists,
// comes back as [ErrUnauthenticated]: the caller learns only that the
// credential does not work.
func (e *Engine) Authenticate(ctx context.Context, token string) (*Identity, error) {
	if !e.ready() {
		return nil, ErrEngineNotReady
	}

	claims, err := e.tokens.Parse(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}

	account, err := e.store.GetByID(ctx, claims.UID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("%w: account no longer exists", ErrUnauthenticated)
		}
		return nil, err
	}

	return &Identity{Account: account.Public()}, nil
}
