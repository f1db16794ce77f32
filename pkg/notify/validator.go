package notify

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"net/url"
	"slices"
	"strings"
)

var (
	// ErrInvalidScheme is returned when the notification URL scheme is not
	// http or https.
	ErrInvalidScheme = errors.New("notification URL must use http or https scheme")
	// ErrPrivateIP is returned when the notification URL resolves to a
	// private IP address.
	ErrPrivateIP = errors.New("notification URL cannot resolve to private or internal IP addresses")
	// ErrInvalidURL is returned when the notification URL is invalid.
	ErrInvalidURL = errors.New("invalid notification URL")
)

// reserved are IPv4 ranges not covered by the net.IP predicates.
var reserved = []netip.Prefix{
	netip.MustParsePrefix("0.0.0.0/8"),
	netip.MustParsePrefix("100.64.0.0/10"),
	netip.MustParsePrefix("192.0.0.0/24"),
	netip.MustParsePrefix("192.0.2.0/24"),
	netip.MustParsePrefix("198.18.0.0/15"),
	netip.MustParsePrefix("198.51.100.0/24"),
	netip.MustParsePrefix("203.0.113.0/24"),
	netip.MustParsePrefix("240.0.0.0/4"),
}

// ValidateURL checks that a notification URL uses http(s) and does not
// point at a loopback, private, link-local or reserved address.
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return ErrInvalidURL
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return ErrInvalidScheme
	}

	hostname := u.Hostname()
	if hostname == "" {
		return fmt.Errorf("%w: missing hostname", ErrInvalidURL)
	}

	if isLocalhost(hostname) {
		return ErrPrivateIP
	}

	if ip := net.ParseIP(hostname); ip != nil {
		return ValidateIPBeforeDial(ip)
	}

	ips, err := net.DefaultResolver.LookupIPAddr(context.Background(), hostname)
	if err != nil {
		return fmt.Errorf("%w: cannot resolve hostname: %v", ErrInvalidURL, err)
	}

	if slices.ContainsFunc(ips, func(a net.IPAddr) bool { return isInternal(a.IP) }) {
		return ErrPrivateIP
	}

	return nil
}

// ValidateIPBeforeDial rejects internal addresses. The webhook client calls
// it on every dial so a hostname cannot be rebound to an internal address
// after validation.
func ValidateIPBeforeDial(ip net.IP) error {
	if isInternal(ip) {
		return ErrPrivateIP
	}
	return nil
}

func isLocalhost(hostname string) bool {
	hostname = strings.ToLower(hostname)
	return hostname == "localhost" ||
		hostname == "localhost.localdomain" ||
		strings.HasSuffix(hostname, ".localhost")
}

func isInternal(ip net.IP) bool {
	if ip.IsLoopback() ||
		ip.IsLinkLocalUnicast() ||
		ip.IsLinkLocalMulticast() ||
		ip.IsPrivate() ||
		ip.IsUnspecified() ||
		ip.IsMulticast() {
		return true
	}

	addr, ok := netip.AddrFromSlice(ip)
	if !ok {
		return true
	}
	addr = addr.Unmap()
	if !addr.Is4() {
		return false
	}

	return slices.ContainsFunc(reserved, func(p netip.Prefix) bool {
		return p.Contains(addr)
	})
}
