package notify

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"

	"github.com/charmbracelet/roster/pkg/config"
	"github.com/charmbracelet/roster/pkg/proto"
)

// SMTP emails invitations.
type SMTP struct {
	addr string
	from string
	auth smtp.Auth
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

var _ Notifier = (*SMTP)(nil)

// NewSMTP returns an SMTP notifier.
func NewSMTP(cfg config.SMTPConfig) *SMTP {
	s := &SMTP{
		addr: net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		from: cfg.From,
		send: smtp.SendMail,
	}
	if cfg.Username != "" {
		s.auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	return s
}

// Name implements Notifier.
func (*SMTP) Name() string {
	return "smtp"
}

// Notify implements Notifier. net/smtp does not take a context, so the
// context is only checked before sending.
func (s *SMTP) Notify(ctx context.Context, n proto.Notification) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	if err := s.send(s.addr, s.auth, s.from, []string{n.Email}, message(s.from, n)); err != nil {
		return Result{}, fmt.Errorf("send mail: %w", err)
	}

	return Result{}, nil
}

func message(from string, n proto.Notification) []byte {
	inviter := n.InviterName
	if inviter == "" {
		inviter = n.InviterEmail
	}

	var b bytes.Buffer
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", n.Email)
	fmt.Fprintf(&b, "Subject: %s\r\n", oneLine(fmt.Sprintf("You have been invited to join %s", n.OrganizationName)))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")
	fmt.Fprintf(&b, "%s invited you to join %s.\r\n\r\n", inviter, n.OrganizationName)
	fmt.Fprintf(&b, "Accept the invitation at %s\r\n\r\n", n.URL)
	fmt.Fprintf(&b, "This invitation expires: %s\r\n", expiry(n))
	return b.Bytes()
}

func oneLine(s string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(s)
}
