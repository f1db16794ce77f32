package notify

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/roster/pkg/config"
	"github.com/charmbracelet/roster/pkg/proto"
	"github.com/charmbracelet/roster/pkg/version"
	"github.com/google/go-querystring/query"
	"github.com/google/uuid"
)

// Webhook headers.
const (
	HeaderEvent     = "X-Roster-Event"
	HeaderDelivery  = "X-Roster-Delivery"
	HeaderSignature = "X-Roster-Signature"
)

// safeClient refuses to connect to private addresses and does not follow
// redirects.
var safeClient = &http.Client{
	Timeout: 30 * time.Second,
	Transport: &http.Transport{
		DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			host, _, err := net.SplitHostPort(addr)
			if err != nil {
				return nil, err //nolint:wrapcheck
			}

			if ip := net.ParseIP(host); ip != nil {
				if err := ValidateIPBeforeDial(ip); err != nil {
					return nil, fmt.Errorf("blocked connection to private IP: %w", err)
				}
			}

			dialer := &net.Dialer{
				Timeout:   10 * time.Second,
				KeepAlive: 30 * time.Second,
			}
			return dialer.DialContext(ctx, network, addr)
		},
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	},
	CheckRedirect: func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	},
}

// Webhook posts notifications to an HTTP endpoint.
type Webhook struct {
	url         string
	secret      string
	contentType ContentType
	client      *http.Client
}

var _ Notifier = (*Webhook)(nil)

// NewWebhook returns a webhook notifier. The URL must not point to a private
// or internal address.
func NewWebhook(cfg config.WebhookConfig) (*Webhook, error) {
	ct, err := ParseContentType(cfg.ContentType)
	if err != nil {
		return nil, err
	}

	if err := ValidateURL(cfg.URL); err != nil {
		return nil, err
	}

	return &Webhook{
		url:         cfg.URL,
		secret:      cfg.Secret,
		contentType: ct,
		client:      safeClient,
	}, nil
}

// Name implements Notifier.
func (*Webhook) Name() string {
	return "webhook"
}

// Notify implements Notifier.
func (w *Webhook) Notify(ctx context.Context, n proto.Notification) (Result, error) {
	var buf bytes.Buffer
	switch w.contentType {
	case ContentTypeJSON:
		if err := json.NewEncoder(&buf).Encode(n); err != nil {
			return Result{}, err
		}
	case ContentTypeForm:
		v, err := query.Values(n)
		if err != nil {
			return Result{}, err
		}
		buf.WriteString(v.Encode()) // nolint: errcheck
	default:
		return Result{}, ErrInvalidContentType
	}

	id, err := uuid.NewUUID()
	if err != nil {
		return Result{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(buf.Bytes()))
	if err != nil {
		return Result{}, err
	}

	req.Header.Set("Content-Type", w.contentType.String())
	req.Header.Set("User-Agent", "Roster/"+version.Version)
	req.Header.Set(HeaderEvent, Event)
	req.Header.Set(HeaderDelivery, id.String())
	if w.secret != "" {
		req.Header.Set(HeaderSignature, "sha256="+Sign(w.secret, buf.Bytes()))
	}

	res, err := w.client.Do(req)
	if err != nil {
		return Result{}, err
	}

	defer res.Body.Close()               // nolint: errcheck
	_, _ = io.Copy(io.Discard, res.Body) // nolint: errcheck

	r := Result{Status: res.StatusCode}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return r, fmt.Errorf("unexpected response status: %s", res.Status)
	}

	return r, nil
}

// Sign returns the hex encoded HMAC-SHA256 of body.
func Sign(secret string, body []byte) string {
	sig := hmac.New(sha256.New, []byte(secret))
	sig.Write(body) // nolint: errcheck
	return hex.EncodeToString(sig.Sum(nil))
}
