package keysource

import (
	"fmt"
	"strings"

	goPoP "github.com/MrEthical07/goPoP"
	"github.com/golang-jwt/jwt/v5"
)

// Record is the wire form of signing configuration as fetched from a backend:
// the algorithm and key identity plus the key itself, PEM-encoded for
// asymmetric algorithms or raw for HMAC.
type Record struct {
	Algorithm      string `json:"alg"`
	KeyID          string `json:"kid,omitempty"`
	CertThumbprint string `json:"x5t,omitempty"`
	PEMKey         []byte `json:"pem_key,omitempty"`
	Secret         []byte `json:"secret,omitempty"`
}

// Material parses the record into ready-to-sign material. The key type is
// chosen by algorithm family, matching what the corresponding golang-jwt
// signing method expects.
func (r Record) Material() (goPoP.SigningMaterial, error) {
	material := goPoP.SigningMaterial{
		Algorithm:      r.Algorithm,
		KeyID:          r.KeyID,
		CertThumbprint: r.CertThumbprint,
	}

	if r.Algorithm == "" {
		return goPoP.SigningMaterial{}, fmt.Errorf("%w: missing algorithm", ErrBadRecord)
	}

	switch {
	case strings.HasPrefix(r.Algorithm, "HS"):
		if len(r.Secret) == 0 {
			return goPoP.SigningMaterial{}, fmt.Errorf("%w: %s requires a secret", ErrBadRecord, r.Algorithm)
		}
		material.Key = r.Secret

	case strings.HasPrefix(r.Algorithm, "RS"), strings.HasPrefix(r.Algorithm, "PS"):
		key, err := jwt.ParseRSAPrivateKeyFromPEM(r.PEMKey)
		if err != nil {
			return goPoP.SigningMaterial{}, fmt.Errorf("%w: %s: %v", ErrBadRecord, r.Algorithm, err)
		}
		material.Key = key

	case strings.HasPrefix(r.Algorithm, "ES"):
		key, err := jwt.ParseECPrivateKeyFromPEM(r.PEMKey)
		if err != nil {
			return goPoP.SigningMaterial{}, fmt.Errorf("%w: %s: %v", ErrBadRecord, r.Algorithm, err)
		}
		material.Key = key

	case r.Algorithm == "EdDSA":
		key, err := jwt.ParseEdPrivateKeyFromPEM(r.PEMKey)
		if err != nil {
			return goPoP.SigningMaterial{}, fmt.Errorf("%w: EdDSA: %v", ErrBadRecord, err)
		}
		material.Key = key

	default:
		return goPoP.SigningMaterial{}, fmt.Errorf("%w: unsupported algorithm %q", ErrBadRecord, r.Algorithm)
	}

	return material, nil
}
