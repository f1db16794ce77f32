package jwk

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/charmbracelet/roster/pkg/config"
	"github.com/matryer/is"
)

func newPair(t *testing.T) (*config.Config, Pair) {
	t.Helper()
	is := is.New(t)
	cfg := config.DefaultConfig()
	cfg.DataPath = t.TempDir()
	is.NoErr(cfg.Validate())
	kp, err := NewPair(cfg)
	is.NoErr(err)
	return cfg, kp
}

func TestBadNewPair(t *testing.T) {
	_, err := NewPair(nil)
	if !errors.Is(err, config.ErrNilConfig) {
		t.Errorf("NewPair(nil) => %v, want %v", err, config.ErrNilConfig)
	}
}

func TestGoodNewPair(t *testing.T) {
	is := is.New(t)
	cfg, kp := newPair(t)

	// The key is written on first use and reused afterwards.
	again, err := NewPair(cfg)
	is.NoErr(err)
	is.Equal(kp.JWK().KeyID, again.JWK().KeyID)
	is.Equal(kp.JWK().Algorithm, "EdDSA")
}

func TestIssueVerify(t *testing.T) {
	is := is.New(t)
	cfg, kp := newPair(t)

	now := time.Now()
	token, err := kp.Issue(cfg.HTTP.PublicURL, "user-1", "bob@example.com", now, time.Hour)
	is.NoErr(err)

	claims, err := kp.Verify(cfg.HTTP.PublicURL, token)
	is.NoErr(err)
	is.Equal(claims.Subject, "user-1")
	is.Equal(claims.Email, "bob@example.com")

	_, err = kp.Verify("https://other.example.com", token)
	is.True(errors.Is(err, ErrInvalidToken))

	expired, err := kp.Issue(cfg.HTTP.PublicURL, "user-1", "", now.Add(-2*time.Hour), time.Hour)
	is.NoErr(err)
	_, err = kp.Verify(cfg.HTTP.PublicURL, expired)
	is.True(errors.Is(err, ErrInvalidToken))

	_, other := newPair(t)
	_, err = other.Verify(cfg.HTTP.PublicURL, token)
	is.True(errors.Is(err, ErrInvalidToken))
}

func TestJWKS(t *testing.T) {
	is := is.New(t)
	_, kp := newPair(t)

	b, err := json.Marshal(kp.JWKS())
	is.NoErr(err)

	var set struct {
		Keys []struct {
			Kty string `json:"kty"`
			Crv string `json:"crv"`
			Kid string `json:"kid"`
			D   string `json:"d"`
		} `json:"keys"`
	}
	is.NoErr(json.Unmarshal(b, &set))
	is.Equal(len(set.Keys), 1)
	is.Equal(set.Keys[0].Kty, "OKP")
	is.Equal(set.Keys[0].Crv, "Ed25519")
	is.Equal(set.Keys[0].Kid, kp.JWK().KeyID)
	is.Equal(set.Keys[0].D, "") // public key only
}
