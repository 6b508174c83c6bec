package crypto

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	key := bytes.Repeat([]byte{0x42}, 32)
	e, err := NewEncryptor(key)
	if err != nil {
		t.Fatalf("NewEncryptor: %v", err)
	}

	plaintext := []byte("el consejo ha hablado")
	ciphertext, err := e.Encrypt(plaintext)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if bytes.Contains(ciphertext, plaintext) {
		t.Error("ciphertext contains plaintext")
	}

	got, err := e.Decrypt(ciphertext)
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if !bytes.Equal(got, plaintext) {
		t.Errorf("got %q, want %q", got, plaintext)
	}
}

func TestEncryptorRejectsBadKey(t *testing.T) {
	if _, err := NewEncryptor([]byte("short")); err != ErrInvalidKey {
		t.Errorf("got %v, want ErrInvalidKey", err)
	}
}

func TestDecryptTamperedCiphertext(t *testing.T) {
	e, _ := NewEncryptor(bytes.Repeat([]byte{0x01}, 32))
	ciphertext, _ := e.Encrypt([]byte("hola"))
	ciphertext[len(ciphertext)-1] ^= 0xff
	if _, err := e.Decrypt(ciphertext); err != ErrDecryptionFailed {
		t.Errorf("got %v, want ErrDecryptionFailed", err)
	}
}

func TestInviteTokenRoundTrip(t *testing.T) {
	key := bytes.Repeat([]byte{0x07}, 32)
	g, err := NewInviteTokenGenerator(key, 7*24*time.Hour)
	if err != nil {
		t.Fatalf("NewInviteTokenGenerator: %v", err)
	}

	groupID := uuid.New()
	token, err := g.Generate(groupID, "hermano@example.com")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	data, err := g.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if data.GroupID != groupID {
		t.Errorf("group ID mismatch: got %s, want %s", data.GroupID, groupID)
	}
	if data.InviteeEmail != "hermano@example.com" {
		t.Errorf("invitee mismatch: got %q", data.InviteeEmail)
	}
}

func TestInviteTokenWrongRecipient(t *testing.T) {
	g, _ := NewInviteTokenGenerator(bytes.Repeat([]byte{0x07}, 32), time.Hour)
	token, _ := g.Generate(uuid.New(), "a@example.com")
	if _, err := g.VerifyForRecipient(token, "b@example.com"); err != ErrInvalidInviteToken {
		t.Errorf("got %v, want ErrInvalidInviteToken", err)
	}
}

func TestInviteTokenTampered(t *testing.T) {
	g, _ := NewInviteTokenGenerator(bytes.Repeat([]byte{0x07}, 32), time.Hour)
	token, _ := g.Generate(uuid.New(), "a@example.com")
	tampered := "A" + token[1:]
	if _, err := g.Verify(tampered); err == nil {
		t.Error("tampered token verified")
	}
}

func TestInviteTokenExpired(t *testing.T) {
	g, _ := NewInviteTokenGenerator(bytes.Repeat([]byte{0x07}, 32), -time.Second)
	token, _ := g.Generate(uuid.New(), "a@example.com")
	if _, err := g.Verify(token); err != ErrInviteTokenExpired {
		t.Errorf("got %v, want ErrInviteTokenExpired", err)
	}
}
