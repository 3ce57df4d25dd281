// Package usage holds the append-only download ledger. Every completed
// issuance writes exactly one record; all quota aggregates are computed from
// the ledger rather than from mutable counters, so the numbers cannot drift.
package usage

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/filemart-io/filemart/internal/shared/id"
)

// TokenBytes is the entropy of a download token before hex encoding.
const TokenBytes = 24

// UsageRecord is one ledger entry: who pulled which file, under which
// subscription, how many bytes, and the access token that gated the transfer.
// The byte size is snapshotted at issuance so later file edits cannot change
// quota history.
type UsageRecord struct {
	id             uint
	sid            string
	userID         uint
	subscriptionID *uint
	orderSID       *string
	fileID         uint
	byteSize       uint64
	token          string
	issuedAt       time.Time
	expiresAt      time.Time
}

// NewUsageRecord creates a ledger entry with a freshly minted token.
// subscriptionID is nil for free/featured downloads; orderSID is set only for
// paid-purchase downloads.
func NewUsageRecord(userID, fileID uint, subscriptionID *uint, orderSID *string, byteSize uint64, validity time.Duration) (*UsageRecord, error) {
	if userID == 0 {
		return nil, errors.New("user ID is required")
	}
	if fileID == 0 {
		return nil, errors.New("file ID is required")
	}
	if validity <= 0 {
		return nil, errors.New("token validity must be positive")
	}

	token, err := GenerateToken()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &UsageRecord{
		sid:            id.MustGenerateWithPrefix(id.PrefixUsageRecord, id.DefaultLength),
		userID:         userID,
		subscriptionID: subscriptionID,
		orderSID:       orderSID,
		fileID:         fileID,
		byteSize:       byteSize,
		token:          token,
		issuedAt:       now,
		expiresAt:      now.Add(validity),
	}, nil
}

// UsageRecordReconstructParams carries persisted state back into the domain.
type UsageRecordReconstructParams struct {
	ID             uint
	SID            string
	UserID         uint
	SubscriptionID *uint
	OrderSID       *string
	FileID         uint
	ByteSize       uint64
	Token          string
	IssuedAt       time.Time
	ExpiresAt      time.Time
}

// ReconstructUsageRecord rebuilds a ledger entry from persistence.
func ReconstructUsageRecord(p UsageRecordReconstructParams) (*UsageRecord, error) {
	if p.ID == 0 {
		return nil, errors.New("usage record ID cannot be zero")
	}
	if p.Token == "" {
		return nil, errors.New("usage record token cannot be empty")
	}

	return &UsageRecord{
		id:             p.ID,
		sid:            p.SID,
		userID:         p.UserID,
		subscriptionID: p.SubscriptionID,
		orderSID:       p.OrderSID,
		fileID:         p.FileID,
		byteSize:       p.ByteSize,
		token:          p.Token,
		issuedAt:       p.IssuedAt,
		expiresAt:      p.ExpiresAt,
	}, nil
}

// GenerateToken mints an opaque random download token.
func GenerateToken() (string, error) {
	buf := make([]byte, TokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate download token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

func (r *UsageRecord) ID() uint              { return r.id }
func (r *UsageRecord) SID() string           { return r.sid }
func (r *UsageRecord) UserID() uint          { return r.userID }
func (r *UsageRecord) SubscriptionID() *uint { return r.subscriptionID }
func (r *UsageRecord) OrderSID() *string     { return r.orderSID }
func (r *UsageRecord) FileID() uint          { return r.fileID }
func (r *UsageRecord) ByteSize() uint64      { return r.byteSize }
func (r *UsageRecord) Token() string         { return r.token }
func (r *UsageRecord) IssuedAt() time.Time   { return r.issuedAt }
func (r *UsageRecord) ExpiresAt() time.Time  { return r.expiresAt }

// IsLive reports whether the token is still redeemable at the given time.
func (r *UsageRecord) IsLive(now time.Time) bool {
	return now.Before(r.expiresAt)
}

// BelongsTo reports whether the record was issued to the given user. Tokens
// are not transferable.
func (r *UsageRecord) BelongsTo(userID uint) bool {
	return r.userID == userID
}

// SetID sets the record ID (only for persistence layer use).
func (r *UsageRecord) SetID(recordID uint) error {
	if r.id != 0 {
		return errors.New("usage record ID is already set")
	}
	if recordID == 0 {
		return errors.New("usage record ID cannot be zero")
	}
	r.id = recordID
	return nil
}
