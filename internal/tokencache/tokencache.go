// Package tokencache stores OAuth access tokens on disk, encrypted with a key
// derived from a passphrase. Entries are keyed per user subject so one cache
// file can serve several profiles.
package tokencache

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/argon2"
)

const (
	storeVersion     = 1
	keyLengthBytes   = 32
	nonceLengthBytes = 12
	saltLengthBytes  = 16

	kdfTime    = 1
	kdfMemory  = 64 * 1024
	kdfThreads = 4
)

// Entry is one cached token with its expiry.
type Entry struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt,omitempty"`
}

func (e Entry) expired(now time.Time) bool {
	return !e.ExpiresAt.IsZero() && !now.Before(e.ExpiresAt)
}

// Cache is an encrypted token store backed by a single file. It is safe for
// concurrent use within one process; cross-process writers race on the file.
type Cache struct {
	path       string
	passphrase []byte

	mu sync.Mutex
}

type envelope struct {
	Version    int    `json:"version"`
	Salt       string `json:"salt"`
	Nonce      string `json:"nonce"`
	Ciphertext string `json:"ciphertext"`
}

type snapshot struct {
	Entries map[string]Entry `json:"entries"`
}

func New(path, passphrase string) (*Cache, error) {
	if strings.TrimSpace(path) == "" {
		return nil, validationError("token cache path is required", nil)
	}
	if strings.TrimSpace(passphrase) == "" {
		return nil, validationError("token cache passphrase is required", nil)
	}
	return &Cache{
		path:       filepath.Clean(path),
		passphrase: []byte(strings.TrimSpace(passphrase)),
	}, nil
}

// Put stores a token under the given subject. Expired entries are pruned on
// every write.
func (c *Cache) Put(subject string, entry Entry) error {
	key, err := normalizeSubject(subject)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	current, err := c.readLocked()
	if err != nil {
		return err
	}
	now := time.Now()
	for existingKey, existing := range current.Entries {
		if existing.expired(now) {
			delete(current.Entries, existingKey)
		}
	}
	current.Entries[key] = entry

	return c.writeLocked(current)
}

// Get returns the cached token for a subject. Expired or missing entries
// report a not-found fault.
func (c *Cache) Get(subject string) (Entry, error) {
	key, err := normalizeSubject(subject)
	if err != nil {
		return Entry{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	current, err := c.readLocked()
	if err != nil {
		return Entry{}, err
	}
	entry, found := current.Entries[key]
	if !found || entry.expired(time.Now()) {
		return Entry{}, notFoundError("no cached token for subject")
	}
	return entry, nil
}

func (c *Cache) Delete(subject string) error {
	key, err := normalizeSubject(subject)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	current, err := c.readLocked()
	if err != nil {
		return err
	}
	delete(current.Entries, key)
	return c.writeLocked(current)
}

// Subjects lists the cached subjects, expired entries included, in sorted
// order.
func (c *Cache) Subjects() ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	current, err := c.readLocked()
	if err != nil {
		return nil, err
	}
	subjects := make([]string, 0, len(current.Entries))
	for key := range current.Entries {
		subjects = append(subjects, key)
	}
	sort.Strings(subjects)
	return subjects, nil
}

func (c *Cache) readLocked() (snapshot, error) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return snapshot{Entries: map[string]Entry{}}, nil
		}
		return snapshot{}, internalError("failed to read token cache", err)
	}

	var outer envelope
	if err := json.Unmarshal(data, &outer); err != nil {
		return snapshot{}, internalError("failed to decode token cache", err)
	}
	if outer.Version != storeVersion {
		return snapshot{}, validationError("token cache format version is unsupported", nil)
	}

	salt, err := base64.StdEncoding.DecodeString(outer.Salt)
	if err != nil {
		return snapshot{}, validationError("token cache salt is invalid", err)
	}
	nonce, err := base64.StdEncoding.DecodeString(outer.Nonce)
	if err != nil {
		return snapshot{}, validationError("token cache nonce is invalid", err)
	}
	ciphertext, err := base64.StdEncoding.DecodeString(outer.Ciphertext)
	if err != nil {
		return snapshot{}, validationError("token cache ciphertext is invalid", err)
	}

	gcm, err := c.cipherFor(salt)
	if err != nil {
		return snapshot{}, err
	}
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return snapshot{}, authError("failed to decrypt token cache with the provided passphrase", err)
	}

	var current snapshot
	if err := json.Unmarshal(plaintext, &current); err != nil {
		return snapshot{}, internalError("failed to decode decrypted token cache", err)
	}
	if current.Entries == nil {
		current.Entries = map[string]Entry{}
	}
	return current, nil
}

func (c *Cache) writeLocked(current snapshot) error {
	if current.Entries == nil {
		current.Entries = map[string]Entry{}
	}
	plaintext, err := json.Marshal(current)
	if err != nil {
		return internalError("failed to encode token cache", err)
	}

	salt, err := randomBytes(saltLengthBytes)
	if err != nil {
		return internalError("failed to generate token cache salt", err)
	}
	nonce, err := randomBytes(nonceLengthBytes)
	if err != nil {
		return internalError("failed to generate token cache nonce", err)
	}

	gcm, err := c.cipherFor(salt)
	if err != nil {
		return err
	}
	ciphertext := gcm.Seal(nil, nonce, plaintext, nil)

	encoded, err := json.Marshal(envelope{
		Version:    storeVersion,
		Salt:       base64.StdEncoding.EncodeToString(salt),
		Nonce:      base64.StdEncoding.EncodeToString(nonce),
		Ciphertext: base64.StdEncoding.EncodeToString(ciphertext),
	})
	if err != nil {
		return internalError("failed to encode token cache envelope", err)
	}

	return writeAtomicFile(c.path, encoded)
}

func (c *Cache) cipherFor(salt []byte) (cipher.AEAD, error) {
	if len(salt) == 0 {
		return nil, validationError("token cache salt is missing", nil)
	}
	key := argon2.IDKey(c.passphrase, salt, kdfTime, kdfMemory, kdfThreads, keyLengthBytes)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, internalError("failed to initialize token cache cipher", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, internalError("failed to initialize token cache cipher mode", err)
	}
	return gcm, nil
}

func normalizeSubject(subject string) (string, error) {
	trimmed := strings.TrimSpace(subject)
	if trimmed == "" {
		return "", validationError("token cache subject is required", nil)
	}
	return trimmed, nil
}

func randomBytes(length int) ([]byte, error) {
	buffer := make([]byte, length)
	if _, err := rand.Read(buffer); err != nil {
		return nil, err
	}
	return buffer, nil
}

func writeAtomicFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return internalError("failed to create token cache directory", err)
	}

	tempFile, err := os.CreateTemp(dir, ".albert-token-*")
	if err != nil {
		return internalError("failed to create temporary token cache file", err)
	}
	tempPath := tempFile.Name()

	if _, err := tempFile.Write(data); err != nil {
		tempFile.Close()
		os.Remove(tempPath)
		return internalError("failed to write token cache", err)
	}
	if err := tempFile.Chmod(0o600); err != nil {
		tempFile.Close()
		os.Remove(tempPath)
		return internalError("failed to restrict token cache permissions", err)
	}
	if err := tempFile.Close(); err != nil {
		os.Remove(tempPath)
		return internalError("failed to close token cache file", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return internalError("failed to replace token cache file", err)
	}
	return nil
}
