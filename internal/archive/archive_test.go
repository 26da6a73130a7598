package archive

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

const doc = `{"tasks":[],"columns":[],"users":[],"activities":[],"exportDate":"2026-03-10T09:00:00Z","version":"1.0"}`

func TestSealOpen(t *testing.T) {
	sealed, err := Seal([]byte(doc), "correct horse")
	if err != nil {
		t.Fatalf("Seal failed: %v", err)
	}
	if bytes.Contains(sealed, []byte("exportDate")) {
		t.Error("Sealed output leaks plaintext")
	}
	if !IsSealed(sealed) {
		t.Error("Expected IsSealed")
	}

	var env Envelope
	if err := json.Unmarshal(sealed, &env); err != nil {
		t.Fatal(err)
	}
	if env.Format != Format || env.Version != Version || env.Salt == "" {
		t.Errorf("Unexpected envelope %+v", env)
	}

	plain, err := Open(sealed, "correct horse")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if string(plain) != doc {
		t.Errorf("Expected %s, got %s", doc, plain)
	}
}

func TestOpenWrongPassphrase(t *testing.T) {
	sealed, _ := Seal([]byte(doc), "right")
	if _, err := Open(sealed, "wrong"); !errors.Is(err, ErrWrongPassphrase) {
		t.Errorf("Expected ErrWrongPassphrase, got %v", err)
	}
	if _, err := Open(sealed, ""); !errors.Is(err, ErrEmptyPassphrase) {
		t.Errorf("Expected ErrEmptyPassphrase, got %v", err)
	}
}

func TestSealUsesFreshSalt(t *testing.T) {
	a, _ := Seal([]byte(doc), "pw")
	b, _ := Seal([]byte(doc), "pw")
	if bytes.Equal(a, b) {
		t.Error("Two seals of the same document should differ")
	}
}

func TestOpenPassesPlainExportThrough(t *testing.T) {
	out, err := Open([]byte(doc), "")
	if err != nil || string(out) != doc {
		t.Errorf("Plain export should pass through, got %s (%v)", out, err)
	}
	if IsSealed([]byte("not json")) {
		t.Error("Garbage reported as sealed")
	}
}

func TestOpenRejectsTamperedEnvelope(t *testing.T) {
	sealed, _ := Seal([]byte(doc), "pw")
	var env Envelope
	_ = json.Unmarshal(sealed, &env)

	env.Data = strings.Repeat("A", 8)
	short, _ := json.Marshal(env)
	if _, err := Open(short, "pw"); err == nil {
		t.Error("Expected error for truncated ciphertext")
	}

	env.Version = 99
	future, _ := json.Marshal(env)
	if _, err := Open(future, "pw"); err == nil {
		t.Error("Expected error for unknown version")
	}

	if _, err := Seal([]byte(doc), ""); !errors.Is(err, ErrEmptyPassphrase) {
		t.Errorf("Expected ErrEmptyPassphrase, got %v", err)
	}
}
