package main

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-jose/go-jose/v4"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

const minKeyBits = 2048

type keygenResult struct {
	KeyID          string
	PrivateKeyPath string
	PublicKeyPath  string
}

func newKeygenCmd() *cobra.Command {
	var (
		outDir string
		bits   int
		force  bool
	)

	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate an RSA signing key pair",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			spinner, _ := pterm.DefaultSpinner.Start(fmt.Sprintf("Generating %d bit RSA key", bits))
			result, err := generateKeyPair(outDir, bits, force)
			if err != nil {
				if spinner != nil {
					spinner.Fail(err.Error())
				}
				return err
			}
			if spinner != nil {
				spinner.Success("Key pair written")
			}

			err = pterm.DefaultTable.WithData(pterm.TableData{
				{"private key", result.PrivateKeyPath},
				{"public key", result.PublicKeyPath},
				{"suggested key id", result.KeyID},
			}).Render()
			if err != nil {
				return err
			}
			pterm.Info.Println("Set jwt.private_key_path, jwt.public_key_path and jwt.key_id accordingly.")
			return nil
		},
	}

	cmd.Flags().StringVar(&outDir, "out-dir", ".", "Directory to write private.pem and public.pem to")
	cmd.Flags().IntVar(&bits, "bits", 3072, "RSA key size in bits")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing key files")
	return cmd
}

// generateKeyPair writes a PKCS8 private key and an SPKI public key into dir.
// The suggested key id is the RFC 7638 thumbprint of the public key.
func generateKeyPair(dir string, bits int, force bool) (*keygenResult, error) {
	if bits < minKeyBits {
		return nil, fmt.Errorf("key size must be at least %d bits", minKeyBits)
	}

	result := &keygenResult{
		PrivateKeyPath: filepath.Join(dir, "private.pem"),
		PublicKeyPath:  filepath.Join(dir, "public.pem"),
	}
	if !force {
		for _, path := range []string{result.PrivateKeyPath, result.PublicKeyPath} {
			if _, err := os.Stat(path); err == nil {
				return nil, fmt.Errorf("%s already exists, use --force to overwrite", path)
			} else if !errors.Is(err, os.ErrNotExist) {
				return nil, err
			}
		}
	}

	key, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}

	privateDER, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		return nil, fmt.Errorf("encode private key: %w", err)
	}
	publicDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("encode public key: %w", err)
	}

	thumbprint, err := (&jose.JSONWebKey{Key: &key.PublicKey}).Thumbprint(crypto.SHA256)
	if err != nil {
		return nil, fmt.Errorf("compute key thumbprint: %w", err)
	}
	result.KeyID = base64.RawURLEncoding.EncodeToString(thumbprint)[:16]

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", dir, err)
	}
	if err := os.WriteFile(result.PrivateKeyPath, pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: privateDER}), 0o600); err != nil {
		return nil, fmt.Errorf("write private key: %w", err)
	}
	if err := os.WriteFile(result.PublicKeyPath, pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: publicDER}), 0o644); err != nil {
		return nil, fmt.Errorf("write public key: %w", err)
	}

	return result, nil
}
