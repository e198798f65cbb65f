package sshtransport

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/crypto/ssh"
)

// LoadHostKey reads an RSA host key from dir/ssh_host_rsa_key, generating
// none itself — operators are expected to provision one the same way an
// sshd deployment would (spec.md §6 host key loading).
func LoadHostKey(dir string) (ssh.Signer, error) {
	path := filepath.Join(dir, "ssh_host_rsa_key")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading host key %s: %w", path, err)
	}
	signer, err := ssh.ParsePrivateKey(data)
	if err != nil {
		return nil, fmt.Errorf("parsing host key %s: %w", path, err)
	}
	return signer, nil
}
