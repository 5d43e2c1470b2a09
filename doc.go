// Package accountd implements the account lifecycle of a user-facing web
// service: registration with email OTP verification, credential login with
// JWT access tokens, OTP-based password recovery, and role-gated account
// administration.
//
// The package is the engine layer only. It persists accounts through the
// [Store] interface, keeps pending OTP challenges in Redis, delivers codes
// through the [Mailer] capability, and stores avatars through [AvatarStore].
// HTTP routing lives in the httpapi package; process wiring in cmd/accountd.
//
// Engine methods are safe to call from multiple goroutines after
// initialization through [Builder.Build]. Construction is allocation-only;
// all I/O happens inside Engine methods against the injected dependencies.
//
// Correctness under concurrency relies on the backing services, not on
// in-process locking: username/email uniqueness is ultimately enforced by
// the store's unique indexes (the engine's pre-checks are best-effort), and
// OTP consume is a single atomic Redis script. A verification racing a
// reissue may observe the newer code, which is acceptable.
package accountd
