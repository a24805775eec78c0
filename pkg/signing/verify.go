// SPDX-License-Identifier: Apache-2.0

// Package signing verifies PGP signatures on published checksum files
package signing

import (
	"fmt"
	"os"

	"github.com/ProtonMail/gopenpgp/v3/crypto"
	"github.com/ProtonMail/gopenpgp/v3/profile"
	"github.com/charmbracelet/log"
)

// LoadPublicKey loads a key from either ASCII-armored or binary format (auto-detects)
func LoadPublicKey(path string) (*crypto.Key, error) {
	if path == "" {
		return nil, fmt.Errorf("no public key configured (set verify.public-key)")
	}

	keyData, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read key: %w", err)
	}

	key, err := crypto.NewKeyFromArmored(string(keyData))
	if err == nil {
		return key, nil
	}

	key, err = crypto.NewKey(keyData)
	if err != nil {
		return nil, fmt.Errorf("failed to parse key (tried both armored and binary formats): %w", err)
	}

	return key, nil
}

// VerifyDetached checks a detached signature over data
func VerifyDetached(data, signature []byte, publicKey *crypto.Key) error {
	pgp := crypto.PGPWithProfile(profile.RFC4880())

	verifier, err := pgp.Verify().
		VerificationKey(publicKey).
		New()
	if err != nil {
		return fmt.Errorf("failed to create verifier: %w", err)
	}

	// Try armored format first
	verifyResult, err := verifier.VerifyDetached(data, signature, crypto.Armor)
	if err != nil {
		verifyResult, err = verifier.VerifyDetached(data, signature, crypto.Bytes)
		if err != nil {
			return fmt.Errorf("signature verification failed (tried both armored and binary formats): %w", err)
		}
	}

	if sigErr := verifyResult.SignatureError(); sigErr != nil {
		return fmt.Errorf("signature error: %w", sigErr)
	}

	return nil
}

// VerifyFile verifies the detached signature at signaturePath over the
// file at dataPath using the public key at keyPath
func VerifyFile(dataPath, signaturePath, keyPath string) error {
	data, err := os.ReadFile(dataPath)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", dataPath, err)
	}

	signature, err := os.ReadFile(signaturePath)
	if err != nil {
		return fmt.Errorf("signature file not found: %w", err)
	}

	publicKey, err := LoadPublicKey(keyPath)
	if err != nil {
		return fmt.Errorf("failed to load public key: %w", err)
	}

	if err := VerifyDetached(data, signature, publicKey); err != nil {
		return err
	}

	log.Debug("Signature verified", "file", dataPath, "key", publicKey.GetHexKeyID())
	return nil
}
