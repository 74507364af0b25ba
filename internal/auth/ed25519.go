package auth

import (
	"context"
	"crypto/ed25519"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"sync"
)

// Ed25519Signer answers the server's challenge with an Ed25519 signature
// and sends the base64 signature in the auth header. The signature stays
// valid until the server rotates its challenge, so it is cached until Reset.
type Ed25519Signer struct {
	privateKey   ed25519.PrivateKey
	headerName   string
	challengeURL string
	httpClient   *http.Client

	mu        sync.Mutex
	signature string
}

func NewEd25519Signer(privateKeyPEM []byte, headerName, challengeURL string, httpClient *http.Client) (*Ed25519Signer, error) {
	key, err := ParsePrivateKey(privateKeyPEM)
	if err != nil {
		return nil, err
	}
	if headerName == "" {
		headerName = "Authorization"
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Ed25519Signer{
		privateKey:   key,
		headerName:   headerName,
		challengeURL: challengeURL,
		httpClient:   httpClient,
	}, nil
}

func LoadPrivateKey(filename string) ([]byte, error) {
	privKeyBytes, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read private key: %w", err)
	}
	return privKeyBytes, nil
}

func ParsePrivateKey(privateKeyPEM []byte) (ed25519.PrivateKey, error) {
	block, _ := pem.Decode(privateKeyPEM)
	if block == nil {
		return nil, errors.New("failed to decode PEM block containing the private key")
	}
	privKey, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}
	edPriv, ok := privKey.(ed25519.PrivateKey)
	if !ok {
		return nil, errors.New("key is not an Ed25519 private key")
	}
	return edPriv, nil
}

func (s *Ed25519Signer) Authorize(ctx context.Context, req *http.Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.signature == "" {
		challenge, err := s.fetchChallenge(ctx)
		if err != nil {
			return err
		}
		s.signature = base64.StdEncoding.EncodeToString(ed25519.Sign(s.privateKey, challenge))
		authLogger.Debug().Str("challenge_url", s.challengeURL).Msg("Signed new challenge")
	}

	req.Header.Set(s.headerName, s.signature)
	return nil
}

func (s *Ed25519Signer) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.signature = ""
}

func (s *Ed25519Signer) fetchChallenge(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.challengeURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build challenge request: %w", err)
	}

	res, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch challenge: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("challenge endpoint returned %d", res.StatusCode)
	}

	var payload struct {
		Challenge string `json:"challenge"`
	}
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode challenge: %w", err)
	}

	challenge, err := base64.StdEncoding.DecodeString(strings.TrimSpace(payload.Challenge))
	if err != nil {
		return nil, fmt.Errorf("invalid challenge encoding: %w", err)
	}
	return challenge, nil
}
