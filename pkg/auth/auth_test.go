package auth

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func managerWith(stores ...CredentialStore) *Manager {
	return &Manager{stores: stores}
}

func TestManagerStoreValidation(t *testing.T) {
	m := managerWith(NewMockStore())

	if err := m.Store(&Account{Cookie: "x"}); err == nil {
		t.Error("expected error for missing name")
	}
	if err := m.Store(&Account{Name: "main"}); err == nil {
		t.Error("expected error for missing cookie")
	}
}

func TestManagerStoreFallsThrough(t *testing.T) {
	failing := NewMockStore()
	failing.FailStore = true
	working := NewMockStore()
	m := managerWith(failing, working)

	err := m.Store(&Account{Name: "main", Cookie: "sessionid=abc"})
	if err != nil {
		t.Fatalf("Store() error = %v", err)
	}
	if !working.Exists("main") {
		t.Error("account should land in the first working store")
	}
}

func TestManagerRetrieve(t *testing.T) {
	s := NewMockStore()
	s.Store(&Account{Name: "main", Cookie: "sessionid=abc"})
	m := managerWith(s)

	account, err := m.Retrieve("main")
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if account.Cookie != "sessionid=abc" {
		t.Errorf("Cookie = %q", account.Cookie)
	}

	if _, err := m.Retrieve("missing"); err == nil {
		t.Error("expected error for unknown account")
	}
}

func TestManagerListPrefersNewest(t *testing.T) {
	old := NewMockStore()
	old.Store(&Account{Name: "main", Cookie: "old", LastModified: time.Now().Add(-time.Hour)})
	fresh := NewMockStore()
	fresh.Store(&Account{Name: "main", Cookie: "new", LastModified: time.Now()})
	m := managerWith(old, fresh)

	accounts, err := m.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(accounts) != 1 {
		t.Fatalf("expected merged single account, got %d", len(accounts))
	}
	if accounts[0].Cookie != "new" {
		t.Errorf("List must keep the most recently modified copy, got %q", accounts[0].Cookie)
	}
}

func TestEnvironmentStore(t *testing.T) {
	t.Setenv("DYDL_COOKIE", "sessionid=env")
	t.Setenv("DYDL_USER_AGENT", "env-agent")

	s := NewEnvironmentStore()
	account, err := s.Retrieve("")
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if account.Name != "default" || account.Cookie != "sessionid=env" {
		t.Errorf("account = %+v", account)
	}
	if account.UserAgent != "env-agent" {
		t.Errorf("UserAgent = %q", account.UserAgent)
	}

	if err := s.Store(account); err != ErrStoreUnavailable {
		t.Error("environment store must be read-only")
	}
}

func TestEnvironmentStoreEmpty(t *testing.T) {
	t.Setenv("DYDL_COOKIE", "")

	s := NewEnvironmentStore()
	if _, err := s.Retrieve(""); err == nil {
		t.Error("expected error with no cookie in the environment")
	}
	if s.Exists("") {
		t.Error("Exists() should be false with no cookie")
	}
}

func TestEncryptedFileStoreRoundTrip(t *testing.T) {
	t.Setenv("DYDL_PASSPHRASE", "test-passphrase")
	path := filepath.Join(t.TempDir(), "credentials.enc")

	s, err := NewEncryptedFileStore(path)
	if err != nil {
		t.Fatalf("NewEncryptedFileStore() error = %v", err)
	}

	account := &Account{Name: "main", Cookie: "sessionid=secret", LastModified: time.Now()}
	if err := s.Store(account); err != nil {
		t.Fatalf("Store() error = %v", err)
	}

	// The cookie must not appear in plaintext on disk
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if len(raw) == 0 || bytes.Contains(raw, []byte("sessionid=secret")) {
		t.Error("cookie stored in plaintext")
	}

	// A fresh store with the same passphrase can read it back
	s2, err := NewEncryptedFileStore(path)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	got, err := s2.Retrieve("main")
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if got.Cookie != "sessionid=secret" {
		t.Errorf("Cookie = %q", got.Cookie)
	}
}

func TestEncryptedFileStoreDelete(t *testing.T) {
	t.Setenv("DYDL_PASSPHRASE", "test-passphrase")
	path := filepath.Join(t.TempDir(), "credentials.enc")

	s, _ := NewEncryptedFileStore(path)
	s.Store(&Account{Name: "main", Cookie: "x"})

	if err := s.Delete("main"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("file should be removed when the last account is deleted")
	}
}

func TestSanitizeAccount(t *testing.T) {
	account := &Account{Name: "main", Cookie: "sessionid=verylongsecretvalue"}

	masked := SanitizeAccount(account)
	if masked.Cookie == account.Cookie {
		t.Error("cookie not masked")
	}
	if masked.Name != "main" {
		t.Errorf("Name = %q", masked.Name)
	}

	short := SanitizeAccount(&Account{Name: "x", Cookie: "tiny"})
	if short.Cookie != "********" {
		t.Errorf("short cookies must be fully masked, got %q", short.Cookie)
	}
}
