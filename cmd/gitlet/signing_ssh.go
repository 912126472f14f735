package main

import (
	"bufio"
	"bytes"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/odvcencio/gitlet/pkg/repo"
	"golang.org/x/crypto/ssh"
)

// Signatures are stored as "sshsig-v1:<format>:<public key>:<signature>"
// with both binary fields base64 encoded.
const commitSignaturePrefix = "sshsig-v1"

func newSSHCommitSigner(keyPath string) (repo.CommitSigner, string, error) {
	resolvedPath, err := resolveSigningKeyPath(keyPath)
	if err != nil {
		return nil, "", err
	}

	raw, err := os.ReadFile(resolvedPath)
	if err != nil {
		return nil, "", fmt.Errorf("read signing key %q: %w", resolvedPath, err)
	}
	signer, err := ssh.ParsePrivateKey(raw)
	if err != nil {
		return nil, "", fmt.Errorf("parse signing key %q: %w", resolvedPath, err)
	}

	pubB64 := base64.StdEncoding.EncodeToString(signer.PublicKey().Marshal())
	commitSigner := func(payload []byte) (string, error) {
		sig, err := signer.Sign(rand.Reader, payload)
		if err != nil {
			return "", err
		}
		sigB64 := base64.StdEncoding.EncodeToString(sig.Blob)
		return fmt.Sprintf("%s:%s:%s:%s", commitSignaturePrefix, sig.Format, pubB64, sigB64), nil
	}
	return commitSigner, resolvedPath, nil
}

// parseCommitSignature splits a stored signature into the signing key and
// the SSH signature it carries.
func parseCommitSignature(signature string) (ssh.PublicKey, *ssh.Signature, error) {
	parts := strings.SplitN(strings.TrimSpace(signature), ":", 4)
	if len(parts) != 4 || parts[0] != commitSignaturePrefix {
		return nil, nil, fmt.Errorf("unsupported signature format")
	}
	keyBytes, err := base64.StdEncoding.DecodeString(parts[2])
	if err != nil {
		return nil, nil, fmt.Errorf("decode signature key: %w", err)
	}
	pub, err := ssh.ParsePublicKey(keyBytes)
	if err != nil {
		return nil, nil, fmt.Errorf("parse signature key: %w", err)
	}
	blob, err := base64.StdEncoding.DecodeString(parts[3])
	if err != nil {
		return nil, nil, fmt.Errorf("decode signature: %w", err)
	}
	return pub, &ssh.Signature{Format: parts[1], Blob: blob}, nil
}

// newSSHSignatureVerifier checks signatures against the key embedded in
// each one. When trusted is non-empty the key must also be one of them.
func newSSHSignatureVerifier(trusted []ssh.PublicKey) repo.SignatureVerifier {
	return func(payload []byte, signature string) error {
		pub, sig, err := parseCommitSignature(signature)
		if err != nil {
			return err
		}
		if len(trusted) > 0 && !isTrustedKey(pub, trusted) {
			return fmt.Errorf("signing key %s is not trusted", ssh.FingerprintSHA256(pub))
		}
		if err := pub.Verify(payload, sig); err != nil {
			return fmt.Errorf("bad signature from %s: %w", ssh.FingerprintSHA256(pub), err)
		}
		return nil
	}
}

func isTrustedKey(pub ssh.PublicKey, trusted []ssh.PublicKey) bool {
	wire := pub.Marshal()
	for _, k := range trusted {
		if bytes.Equal(k.Marshal(), wire) {
			return true
		}
	}
	return false
}

// loadTrustedKeys reads an authorized_keys style file. Blank lines and
// comments are skipped.
func loadTrustedKeys(path string) ([]ssh.PublicKey, error) {
	expanded, err := expandUserPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(expanded)
	if err != nil {
		return nil, fmt.Errorf("open trusted keys: %w", err)
	}
	defer f.Close()

	var keys []ssh.PublicKey
	sc := bufio.NewScanner(f)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		pub, _, _, _, err := ssh.ParseAuthorizedKey([]byte(text))
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", expanded, line, err)
		}
		keys = append(keys, pub)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read trusted keys: %w", err)
	}
	return keys, nil
}

func resolveSigningKeyPath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path != "" {
		return expandUserPath(path)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	for _, name := range []string{"id_ed25519", "id_ecdsa", "id_rsa"} {
		candidate := filepath.Join(home, ".ssh", name)
		if st, err := os.Stat(candidate); err == nil && !st.IsDir() {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no default SSH private key found in ~/.ssh (id_ed25519, id_ecdsa, id_rsa)")
}

func expandUserPath(path string) (string, error) {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		path = filepath.Join(home, path[2:])
	}
	return filepath.Abs(path)
}
