package auth

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

// KeychainService is the service name credentials are stored under.
const KeychainService = "gosolc"

// ErrNoCredential is returned when no credential is stored for a host.
var ErrNoCredential = errors.New("no credential stored")

// Store persists credentials by mirror host.
type Store interface {
	Get(host string) (Credential, error)
	Set(host string, c Credential) error
	Delete(host string) error
}

// Keychain stores credentials in the OS keychain (macOS Keychain,
// Windows Credential Manager, Secret Service on Linux).
type Keychain struct {
	Service string
}

// NewKeychain returns a Keychain using KeychainService.
func NewKeychain() *Keychain {
	return &Keychain{Service: KeychainService}
}

// Get implements Store.
func (k *Keychain) Get(host string) (Credential, error) {
	raw, err := keyring.Get(k.Service, HostOf(host))
	if errors.Is(err, keyring.ErrNotFound) {
		return Credential{}, fmt.Errorf("%s: %w", host, ErrNoCredential)
	}
	if err != nil {
		return Credential{}, fmt.Errorf("read keychain: %w", err)
	}

	var c Credential
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		return Credential{}, fmt.Errorf("decode credential for %s: %w", host, err)
	}
	return c, nil
}

// Set implements Store.
func (k *Keychain) Set(host string, c Credential) error {
	if c.Type == "" {
		c.Type = TypeBearer
	}
	data, err := json.Marshal(c)
	if err != nil {
		return err
	}
	if err := keyring.Set(k.Service, HostOf(host), string(data)); err != nil {
		return fmt.Errorf("write keychain: %w", err)
	}
	return nil
}

// Delete implements Store. Deleting a missing credential is not an error.
func (k *Keychain) Delete(host string) error {
	err := keyring.Delete(k.Service, HostOf(host))
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("delete keychain entry: %w", err)
	}
	return nil
}

// Load builds a host table from the credentials stored for mirrors.
// Mirrors without a credential are left anonymous.
func Load(s Store, mirrors ...string) (*Hosts, error) {
	hosts := NewHosts()
	for _, m := range mirrors {
		if m == "" {
			continue
		}
		c, err := s.Get(m)
		if errors.Is(err, ErrNoCredential) {
			continue
		}
		if err != nil {
			return nil, err
		}
		hosts.Add(m, c.Authenticator())
	}
	return hosts, nil
}
