package accountd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
)

// Profile returns the caller's own account view.
func (e *Engine) Profile(ctx context.Context, accountID string) (*PublicAccount, error) {
	if !e.ready() {
		return nil, ErrEngineNotReady
	}

	account, err := e.store.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	public := account.Public()
	return &public, nil
}

// UpdateProfile applies a self-service partial update. Only username and
// email are caller-editable; both are validated and checked against
// other accounts before the write.
func (e *Engine) UpdateProfile(ctx context.Context, accountID string, req ProfileUpdateRequest) (*PublicAccount, error) {
	if !e.ready() {
		return nil, ErrEngineNotReady
	}

	if req.Username != nil {
		if err := e.validateUsername(*req.Username); err != nil {
			return nil, err
		}
		if err := e.checkUsernameFree(ctx, *req.Username, accountID); err != nil {
			e.emitAudit(ctx, auditEventProfileUpdate, false, accountID, err, nil)
			return nil, err
		}
	}
	if req.Email != nil {
		if err := e.validateEmail(*req.Email); err != nil {
			return nil, err
		}
		if err := e.checkEmailFree(ctx, *req.Email, accountID); err != nil {
			e.emitAudit(ctx, auditEventProfileUpdate, false, accountID, err, nil)
			return nil, err
		}
	}

	account, err := e.store.Update(ctx, accountID, AccountPatch{
		Username: req.Username,
		Email:    req.Email,
	})
	if err != nil {
		e.emitAudit(ctx, auditEventProfileUpdate, false, accountID, err, nil)
		return nil, err
	}

	e.emitAudit(ctx, auditEventProfileUpdate, true, accountID, nil, nil)

	public := account.Public()
	return &public, nil
}

// UploadAvatar stores the image and records its public URL on the
// account. Fails [ErrAvatarsDisabled] when no avatar store was wired.
func (e *Engine) UploadAvatar(ctx context.Context, accountID, filename, contentType string, body io.Reader) (*PublicAccount, error) {
	if !e.ready() {
		return nil, ErrEngineNotReady
	}
	if e.avatars == nil {
		return nil, ErrAvatarsDisabled
	}

	account, err := e.store.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	key := avatarKey(account.ID, filename, e.now().UnixNano())
	url, err := e.avatars.Put(ctx, key, contentType, body)
	if err != nil {
		e.emitAudit(ctx, auditEventAvatarUpload, false, accountID, err, nil)
		return nil, fmt.Errorf("avatar upload: %w", err)
	}

	account, err = e.store.Update(ctx, accountID, AccountPatch{AvatarURL: &url})
	if err != nil {
		return nil, err
	}

	e.metricInc(MetricAvatarUpload)
	e.emitAudit(ctx, auditEventAvatarUpload, true, accountID, nil, func() map[string]string {
		return map[string]string{"key": key}
	})

	public := account.Public()
	return &public, nil
}

// DeleteAccount removes the caller's own record permanently and clears
// any pending challenge. Issued tokens naming the account stop
// authenticating immediately because Authenticate resolves the record
// on every call.
func (e *Engine) DeleteAccount(ctx context.Context, accountID string) error {
	if !e.ready() {
		return ErrEngineNotReady
	}

	if err := e.store.Delete(ctx, accountID); err != nil {
		e.emitAudit(ctx, auditEventAccountDelete, false, accountID, err, nil)
		return err
	}
	_ = e.otp.Clear(ctx, accountID)

	e.metricInc(MetricAccountDeleted)
	e.emitAudit(ctx, auditEventAccountDelete, true, accountID, nil, nil)

	return nil
}

// avatarKey builds the object key. The timestamp keeps every upload at a
// fresh key so stale CDN caches never serve a replaced avatar.
func avatarKey(accountID, filename string, nanos int64) string {
	ext := strings.ToLower(path.Ext(filename))
	return fmt.Sprintf("avatars/%s_%d%s", accountID, nanos, ext)
}

// checkUsernameFree fails when another account already holds username.
func (e *Engine) checkUsernameFree(ctx context.Context, username, selfID string) error {
	existing, err := e.store.GetByUsername(ctx, username)
	switch {
	case errors.Is(err, ErrNotFound):
		return nil
	case err != nil:
		return err
	case existing.ID == selfID:
		return nil
	default:
		return ErrDuplicateUsername
	}
}

// checkEmailFree fails when another account already holds email.
func (e *Engine) checkEmailFree(ctx context.Context, email, selfID string) error {
	existing, err := e.store.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, ErrNotFound):
		return nil
	case err != nil:
		return err
	case existing.ID == selfID:
		return nil
	default:
		return ErrDuplicateEmail
	}
}
