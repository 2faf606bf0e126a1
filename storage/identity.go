package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Identity is the locally persisted anonymous user. It never expires.
type Identity struct {
	UserID    string `json:"user_id"`
	CreatedAt string `json:"created_at"`
}

func LoadIdentity() (*Identity, error) {
	path, err := IdentityPath()
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("identity path is a directory: %s", path)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var identity Identity
	if err := json.NewDecoder(file).Decode(&identity); err != nil {
		return nil, fmt.Errorf("decode identity: %w", err)
	}
	return &identity, nil
}

func SaveIdentity(identity *Identity) error {
	if _, err := ensureConfigDir(); err != nil {
		return err
	}
	path, err := IdentityPath()
	if err != nil {
		return err
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	return encoder.Encode(identity)
}

func ClearIdentity() error {
	path, err := IdentityPath()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return nil
}

// LocalIdentity exposes the identity file as a single user id slot.
type LocalIdentity struct{}

// UserID returns the stored id, or "" when none was generated yet.
func (LocalIdentity) UserID() (string, error) {
	identity, err := LoadIdentity()
	if err != nil || identity == nil {
		return "", err
	}
	return identity.UserID, nil
}

func (LocalIdentity) SetUserID(id string) error {
	return SaveIdentity(&Identity{
		UserID:    id,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	})
}
