package accountd

import (
	"context"
	"errors"
)

// AdminCreate creates an account on behalf of an administrator. Unlike
// Register it sends no code and can mark the account verified up front.
func (e *Engine) AdminCreate(ctx context.Context, req AdminCreateRequest) (*PublicAccount, error) {
	if !e.ready() {
		return nil, ErrEngineNotReady
	}

	if err := e.validateUsername(req.Username); err != nil {
		return nil, err
	}
	if err := e.validateEmail(req.Email); err != nil {
		return nil, err
	}
	if err := e.validatePassword(req.Password); err != nil {
		return nil, err
	}

	role := req.Role
	if role == "" {
		role = e.config.Account.DefaultRole
	}
	if !role.Valid() {
		return nil, ErrRoleInvalid
	}

	account, err := e.store.Create(ctx, NewAccount{
		Username:   req.Username,
		Email:      req.Email,
		Password:   req.Password,
		Role:       role,
		IsVerified: req.Verified,
	})
	if err != nil {
		e.emitAudit(ctx, auditEventAccountCreate, false, "", err, nil)
		return nil, err
	}

	e.emitAudit(ctx, auditEventAccountCreate, true, account.ID, nil, func() map[string]string {
		return map[string]string{"role": string(account.Role)}
	})

	public := account.Public()
	return &public, nil
}

// ListAccounts returns all accounts in client-safe form.
func (e *Engine) ListAccounts(ctx context.Context) ([]PublicAccount, error) {
	if !e.ready() {
		return nil, ErrEngineNotReady
	}

	accounts, err := e.store.List(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]PublicAccount, 0, len(accounts))
	for i := range accounts {
		out = append(out, accounts[i].Public())
	}
	return out, nil
}

// GetAccount looks up a single account by id.
func (e *Engine) GetAccount(ctx context.Context, id string) (*PublicAccount, error) {
	if !e.ready() {
		return nil, ErrEngineNotReady
	}

	account, err := e.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	public := account.Public()
	return &public, nil
}

// AdminUpdate applies an administrative partial update, including role
// and verification changes.
func (e *Engine) AdminUpdate(ctx context.Context, id string, req AdminUpdateRequest) (*PublicAccount, error) {
	if !e.ready() {
		return nil, ErrEngineNotReady
	}

	if req.Username != nil {
		if err := e.validateUsername(*req.Username); err != nil {
			return nil, err
		}
		if err := e.checkUsernameFree(ctx, *req.Username, id); err != nil {
			return nil, err
		}
	}
	if req.Email != nil {
		if err := e.validateEmail(*req.Email); err != nil {
			return nil, err
		}
		if err := e.checkEmailFree(ctx, *req.Email, id); err != nil {
			return nil, err
		}
	}
	if req.Role != nil && !req.Role.Valid() {
		return nil, ErrRoleInvalid
	}

	account, err := e.store.Update(ctx, id, AccountPatch{
		Username:   req.Username,
		Email:      req.Email,
		Role:       req.Role,
		IsVerified: req.IsVerified,
	})
	if err != nil {
		e.emitAudit(ctx, auditEventAccountUpdate, false, id, err, nil)
		return nil, err
	}

	e.emitAudit(ctx, auditEventAccountUpdate, true, id, nil, nil)

	public := account.Public()
	return &public, nil
}

// DisableAccount is the administrative "delete": the record survives but
// is flipped to unverified, which locks out login until an admin
// re-enables it or the user verifies again.
func (e *Engine) DisableAccount(ctx context.Context, id string) error {
	if !e.ready() {
		return ErrEngineNotReady
	}

	disabled := false
	if _, err := e.store.Update(ctx, id, AccountPatch{IsVerified: &disabled}); err != nil {
		e.emitAudit(ctx, auditEventAccountDisable, false, id, err, nil)
		return err
	}
	_ = e.otp.Clear(ctx, id)

	e.metricInc(MetricAccountDisabled)
	e.emitAudit(ctx, auditEventAccountDisable, true, id, nil, nil)

	return nil
}

// SeedAdmin ensures a verified admin account exists for the given
// address. Intended for startup: it is idempotent, returning the
// existing account untouched when the email is already registered.
func (e *Engine) SeedAdmin(ctx context.Context, username, email, password string) (*PublicAccount, error) {
	if !e.ready() {
		return nil, ErrEngineNotReady
	}

	existing, err := e.store.GetByEmail(ctx, email)
	if err == nil {
		public := existing.Public()
		return &public, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	return e.AdminCreate(ctx, AdminCreateRequest{
		Username: username,
		Email:    email,
		Password: password,
		Role:     RoleAdmin,
		Verified: true,
	})
}
