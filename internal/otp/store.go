// Package otp implements the one-time-code challenge store. One record
// per account, kept in Redis under a TTL: issuing overwrites any pending
// challenge, so an account never has more than one live code, and
// consuming is a single atomic Lua script so a verify can never race a
// delete.
package otp

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrNoPending means no challenge is outstanding for the account —
	// never issued, already consumed, or evicted by TTL.
	ErrNoPending = errors.New("no pending challenge")
	// ErrMismatch means a challenge exists but the submitted code is not
	// the most recently issued one. The record stays in place.
	ErrMismatch = errors.New("challenge code mismatch")
	// ErrExpired means the challenge's recorded expiry has passed. The
	// record is deleted.
	ErrExpired = errors.New("challenge expired")
	// ErrUnavailable wraps Redis transport failures.
	ErrUnavailable = errors.New("challenge store unavailable")
)

// consumeLua atomically performs GET -> expiry check -> compare -> DEL.
// KEYS[1] = record key
// ARGV[1] = hex sha256 of the submitted code
// ARGV[2] = current unix timestamp
//
// Record layout: "<expiresAt unix>:<hex sha256 of code>".
var consumeLua = redis.NewScript(`
local data = redis.call('GET', KEYS[1])
if not data then
  return {err='no_pending'}
end

local sep = string.find(data, ':', 1, true)
if not sep then
  redis.call('DEL', KEYS[1])
  return {err='no_pending'}
end

local expiresAt = tonumber(string.sub(data, 1, sep - 1))
if not expiresAt or tonumber(ARGV[2]) > expiresAt then
  redis.call('DEL', KEYS[1])
  return {err='expired'}
end

if string.sub(data, sep + 1) ~= ARGV[1] then
  return {err='mismatch'}
end

redis.call('DEL', KEYS[1])
return 1
`)

// Store keeps pending challenges keyed by account ID.
type Store struct {
	redis  redis.UniversalClient
	prefix string
	ttl    time.Duration
	now    func() time.Time
}

func NewStore(client redis.UniversalClient, prefix string, ttl time.Duration) *Store {
	if prefix == "" {
		prefix = "aotp"
	}
	return &Store{
		redis:  client,
		prefix: prefix,
		ttl:    ttl,
		now:    time.Now,
	}
}

func (s *Store) key(accountID string) string {
	return s.prefix + ":" + accountID
}

// GenerateCode draws a 6-digit code uniformly from [100000, 999999].
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n.Int64()+100000, 10), nil
}

// Issue generates a fresh code, replaces any pending challenge for the
// account, and returns the code for delivery. The code is never persisted
// in clear: only its hash and expiry are stored.
func (s *Store) Issue(ctx context.Context, accountID string) (string, error) {
	code, err := GenerateCode()
	if err != nil {
		return "", err
	}

	expiresAt := s.now().Add(s.ttl).Unix()
	record := strconv.FormatInt(expiresAt, 10) + ":" + hashCode(code)

	if err := s.redis.Set(ctx, s.key(accountID), record, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return code, nil
}

// Consume validates the submitted code against the pending challenge.
// On success the challenge is cleared, so a second identical submission
// fails with ErrNoPending. Expiry is strict: a code is rejected the
// moment now is past expiresAt.
func (s *Store) Consume(ctx context.Context, accountID, code string) error {
	err := consumeLua.Run(ctx, s.redis,
		[]string{s.key(accountID)},
		hashCode(code),
		s.now().Unix(),
	).Err()
	if err == nil {
		return nil
	}

	switch err.Error() {
	case "no_pending":
		return ErrNoPending
	case "expired":
		return ErrExpired
	case "mismatch":
		return ErrMismatch
	default:
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
}

// Clear drops any pending challenge for the account.
func (s *Store) Clear(ctx context.Context, accountID string) error {
	if err := s.redis.Del(ctx, s.key(accountID)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func hashCode(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}
