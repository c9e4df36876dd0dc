// Package veranet runs the bundled ONNX brand classifier. A bundle is a
// directory holding the model, its label map, and a signed manifest; nothing
// is loaded before the manifest signature and per-file hashes check out.
package veranet

import (
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// manifestPublicKeyBase64 is the release signing key baked into the binary.
// VERALUX_MANIFEST_PUBLIC_KEY overrides it for self-hosted bundles.
const manifestPublicKeyBase64 = "kXx0aJ1yS2Zb8m5o3qQeWJ4dTtFhC7gVnL6pA0rEuMc="

// ManifestFile is one entry of manifest.json.
type ManifestFile struct {
	Path   string `json:"path"`
	SHA256 string `json:"sha256"`
	Size   int64  `json:"size"`
}

// Manifest mirrors manifest.json.
type Manifest struct {
	Model     string         `json:"model"`
	Version   string         `json:"version"`
	CreatedAt string         `json:"created_at"`
	Files     []ManifestFile `json:"files"`
}

// ManifestSignature holds manifest.sig contents.
type ManifestSignature struct {
	Algorithm string `json:"algorithm"`
	Signature string `json:"signature"`
}

// VerifyBundle validates the manifest signature and every listed file's size
// and sha256 for a local bundle directory.
func VerifyBundle(dir string) (*Manifest, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("bundle dir missing")
	}

	manifestBytes, err := os.ReadFile(filepath.Join(dir, "manifest.json"))
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var manifest Manifest
	if err := json.Unmarshal(manifestBytes, &manifest); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}

	sigEncoded, sigAlg, err := readSignatureFile(filepath.Join(dir, "manifest.sig"))
	if err != nil {
		return nil, err
	}
	pk, err := manifestPublicKey()
	if err != nil {
		return nil, fmt.Errorf("load manifest public key: %w", err)
	}
	if err := verifyManifest(manifestBytes, sigEncoded, sigAlg, pk); err != nil {
		return nil, err
	}

	for _, f := range manifest.Files {
		local, err := resolveBundlePath(dir, filepath.FromSlash(f.Path))
		if err != nil {
			return nil, fmt.Errorf("resolve path %s: %w", f.Path, err)
		}
		info, err := os.Stat(local)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", f.Path, err)
		}
		if f.Size > 0 && info.Size() != f.Size {
			return nil, fmt.Errorf("size mismatch for %s: expected %d got %d", f.Path, f.Size, info.Size())
		}
		sum, err := fileSHA256(local)
		if err != nil {
			return nil, fmt.Errorf("hash %s: %w", f.Path, err)
		}
		if f.SHA256 != "" && !strings.EqualFold(sum, f.SHA256) {
			return nil, fmt.Errorf("sha256 mismatch for %s: expected %s got %s", f.Path, f.SHA256, sum)
		}
	}

	return &manifest, nil
}

func fileSHA256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func readSignatureFile(path string) (encoded string, alg string, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", fmt.Errorf("read manifest signature: %w", err)
	}
	var sig ManifestSignature
	if jsonErr := json.Unmarshal(data, &sig); jsonErr == nil && strings.TrimSpace(sig.Signature) != "" {
		return strings.TrimSpace(sig.Signature), sig.Algorithm, nil
	}
	return strings.TrimSpace(string(data)), "ed25519", nil
}

func verifyManifest(manifestBytes []byte, sigEncoded, sigAlgorithm string, pk []byte) error {
	if len(pk) != ed25519.PublicKeySize {
		return fmt.Errorf("invalid manifest public key length: %d", len(pk))
	}

	alg := strings.ToLower(strings.TrimSpace(sigAlgorithm))
	if alg == "" {
		alg = "ed25519"
	}
	if alg != "ed25519" {
		return fmt.Errorf("unsupported signature algorithm %q", alg)
	}

	sigBytes, err := decodeBase64(sigEncoded)
	if err != nil {
		return fmt.Errorf("decode signature: %w", err)
	}
	if len(sigBytes) != ed25519.SignatureSize {
		return fmt.Errorf("manifest signature invalid length: got %d, want %d", len(sigBytes), ed25519.SignatureSize)
	}
	if !ed25519.Verify(pk, manifestBytes, sigBytes) {
		return errors.New("manifest signature verification failed")
	}
	return nil
}

func manifestPublicKey() ([]byte, error) {
	if envVal := strings.TrimSpace(os.Getenv("VERALUX_MANIFEST_PUBLIC_KEY")); envVal != "" {
		if pk, err := decodeBase64(envVal); err == nil {
			return pk, nil
		}
	}
	return decodeBase64(manifestPublicKeyBase64)
}

func decodeBase64(v string) ([]byte, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, errors.New("empty value")
	}
	decoders := []func(string) ([]byte, error){
		base64.StdEncoding.DecodeString,
		base64.RawStdEncoding.DecodeString,
		base64.URLEncoding.DecodeString,
		base64.RawURLEncoding.DecodeString,
	}
	for _, dec := range decoders {
		if b, err := dec(v); err == nil {
			return b, nil
		}
	}
	return nil, errors.New("unable to decode base64 value")
}

// resolveBundlePath joins rel under dir and rejects anything escaping it.
func resolveBundlePath(dir, rel string) (string, error) {
	joined := filepath.Join(dir, rel)
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	absJoined, err := filepath.Abs(joined)
	if err != nil {
		return "", err
	}
	if absJoined != absDir && !strings.HasPrefix(absJoined, absDir+string(filepath.Separator)) {
		return "", fmt.Errorf("path escapes bundle dir")
	}
	return joined, nil
}
