package crypto

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInviteToken = errors.New("invalid invite token")
	ErrInviteTokenExpired = errors.New("invite token expired")
	ErrInviteKeyTooShort  = errors.New("invite key must be at least 32 bytes")
)

// InviteTokenData is the decoded payload of a group invite token.
type InviteTokenData struct {
	GroupID      uuid.UUID
	InviteeEmail string
	CreatedAt    time.Time
}

// InviteTokenGenerator creates and verifies signed group invite tokens.
// Tokens are self-contained: the group ID and invitee email ride inside
// the signed payload, so verification needs no database round trip.
type InviteTokenGenerator struct {
	key []byte
	ttl time.Duration
}

// NewInviteTokenGenerator creates a new invite token generator.
// Key must be at least 32 bytes. TTL bounds how long tokens stay valid.
func NewInviteTokenGenerator(key []byte, ttl time.Duration) (*InviteTokenGenerator, error) {
	if len(key) < 32 {
		return nil, ErrInviteKeyTooShort
	}
	return &InviteTokenGenerator{key: key, ttl: ttl}, nil
}

// Token layout, all big-endian:
//
//	entropy   8 bytes
//	timestamp 4 bytes (unix seconds)
//	group ID  16 bytes
//	invitee   remaining payload bytes
//	hmac      16 bytes (truncated HMAC-SHA256)
const (
	inviteHeaderLen = 8 + 4 + 16
	inviteSigLen    = 16
)

// Generate creates a compact signed invite token for a group and email.
func (g *InviteTokenGenerator) Generate(groupID uuid.UUID, inviteeEmail string) (string, error) {
	entropy := make([]byte, 8)
	if _, err := rand.Read(entropy); err != nil {
		return "", err
	}

	payload := make([]byte, 0, inviteHeaderLen+len(inviteeEmail))
	payload = append(payload, entropy...)
	payload = binary.BigEndian.AppendUint32(payload, uint32(time.Now().Unix()))
	payload = append(payload, groupID[:]...)
	payload = append(payload, inviteeEmail...)

	mac := hmac.New(sha256.New, g.key)
	mac.Write(payload)
	token := append(payload, mac.Sum(nil)[:inviteSigLen]...)

	return base64.RawURLEncoding.EncodeToString(token), nil
}

// Verify decodes and verifies an invite token.
func (g *InviteTokenGenerator) Verify(token string) (*InviteTokenData, error) {
	data, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, ErrInvalidInviteToken
	}
	if len(data) < inviteHeaderLen+inviteSigLen {
		return nil, ErrInvalidInviteToken
	}

	payload := data[:len(data)-inviteSigLen]
	sig := data[len(data)-inviteSigLen:]

	mac := hmac.New(sha256.New, g.key)
	mac.Write(payload)
	if !hmac.Equal(sig, mac.Sum(nil)[:inviteSigLen]) {
		return nil, ErrInvalidInviteToken
	}

	createdAt := time.Unix(int64(binary.BigEndian.Uint32(payload[8:12])), 0)
	if time.Since(createdAt) > g.ttl {
		return nil, ErrInviteTokenExpired
	}

	var groupID uuid.UUID
	copy(groupID[:], payload[12:28])

	return &InviteTokenData{
		GroupID:      groupID,
		InviteeEmail: string(payload[28:]),
		CreatedAt:    createdAt,
	}, nil
}

// VerifyForRecipient verifies the token and confirms it was intended for
// the given email.
func (g *InviteTokenGenerator) VerifyForRecipient(token, recipientEmail string) (*InviteTokenData, error) {
	data, err := g.Verify(token)
	if err != nil {
		return nil, err
	}
	if data.InviteeEmail != recipientEmail {
		return nil, ErrInvalidInviteToken
	}
	return data, nil
}

// Digest returns the HMAC digest of a token, used as its storage key so
// raw tokens never land in the database.
func (g *InviteTokenGenerator) Digest(token string) []byte {
	mac := hmac.New(sha256.New, g.key)
	mac.Write([]byte(token))
	return mac.Sum(nil)
}
