// Package security validates outbound HTTP requests made on behalf of the
// model. The http_get and http_post tools fetch model-chosen URLs, so every
// target is screened against SSRF (Server-Side Request Forgery): private
// networks, loopback, link-local ranges, and cloud metadata endpoints are
// refused, both on the initial URL and on every redirect hop.
package security

import (
	"fmt"
	"net"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/daecheol96/funcagent/internal/log"
)

const (
	defaultMaxResponseSize = 5 * 1024 * 1024
	defaultRequestTimeout  = 10 * time.Second
	maxRedirects           = 3
)

// HTTP screens URLs requested by tool executions.
type HTTP struct {
	maxResponseSize int64
	timeout         time.Duration
	allowedSchemes  []string
	logger          log.Logger
}

// NewHTTP creates a validator with the default limits: http/https only,
// 5MB response cap, 10s request timeout.
func NewHTTP(logger log.Logger) *HTTP {
	if logger == nil {
		logger = log.NewNop()
	}
	return &HTTP{
		maxResponseSize: defaultMaxResponseSize,
		timeout:         defaultRequestTimeout,
		allowedSchemes:  []string{"http", "https"},
		logger:          logger,
	}
}

// ValidateURL reports whether a URL is safe to fetch. It checks the scheme,
// the hostname against a dangerous-host list, and every IP the hostname
// resolves to against private and reserved ranges.
func (v *HTTP) ValidateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}

	if !slices.Contains(v.allowedSchemes, strings.ToLower(u.Scheme)) {
		return fmt.Errorf("disallowed scheme %q (only http/https)", u.Scheme)
	}

	hostname := u.Hostname()
	if hostname == "" {
		return fmt.Errorf("missing hostname")
	}

	if isDangerousHostname(hostname) {
		v.logger.Warn("blocked request to dangerous hostname",
			"url", rawURL,
			"hostname", hostname,
			"security_event", "ssrf_dangerous_hostname")
		return fmt.Errorf("access to internal hosts and metadata services is not allowed")
	}

	// An IP literal can be checked without DNS.
	if ip := net.ParseIP(hostname); ip != nil {
		if isPrivateIP(ip) {
			v.logger.Warn("blocked request to private IP",
				"url", rawURL,
				"ip", ip.String(),
				"security_event", "ssrf_private_ip")
			return fmt.Errorf("access to internal network address %s is not allowed", ip)
		}
		return nil
	}

	ips, err := net.LookupIP(hostname)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", hostname, err)
	}
	for _, ip := range ips {
		if isPrivateIP(ip) {
			v.logger.Warn("blocked request resolving to private IP",
				"url", rawURL,
				"hostname", hostname,
				"resolved_ip", ip.String(),
				"security_event", "ssrf_private_ip")
			return fmt.Errorf("access to internal network address %s is not allowed", ip)
		}
	}
	return nil
}

// MaxResponseSize returns the byte cap tools apply when reading bodies.
func (v *HTTP) MaxResponseSize() int64 {
	return v.maxResponseSize
}

// Client returns an HTTP client that re-validates every redirect target, so a
// safe public URL cannot bounce a request into a private network.
func (v *HTTP) Client() *http.Client {
	return &http.Client{
		Timeout: v.timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return fmt.Errorf("stopped after %d redirects", maxRedirects)
			}
			if err := v.ValidateURL(req.URL.String()); err != nil {
				v.logger.Warn("blocked unsafe redirect",
					"redirect_url", req.URL.String(),
					"original_url", via[0].URL.String(),
					"security_event", "ssrf_unsafe_redirect")
				return fmt.Errorf("redirect to unsafe URL: %w", err)
			}
			return nil
		},
	}
}

func isDangerousHostname(hostname string) bool {
	hostname = strings.ToLower(hostname)

	local := []string{"localhost", "127.0.0.1", "::1", "0.0.0.0"}
	if slices.Contains(local, hostname) {
		return true
	}

	// Cloud metadata services.
	metadata := []string{
		"169.254.169.254",
		"metadata.google.internal",
		"metadata",
	}
	for _, endpoint := range metadata {
		if hostname == endpoint || strings.Contains(hostname, endpoint) {
			return true
		}
	}
	return false
}

func isPrivateIP(ip net.IP) bool {
	blockedIPv4 := []string{
		"10.0.0.0/8",
		"172.16.0.0/12",
		"192.168.0.0/16",
		"127.0.0.0/8",
		"169.254.0.0/16",
		"0.0.0.0/8",
		"224.0.0.0/4",
		"240.0.0.0/4",
	}
	for _, cidr := range blockedIPv4 {
		_, subnet, err := net.ParseCIDR(cidr)
		if err != nil {
			continue
		}
		if subnet.Contains(ip) {
			return true
		}
	}

	if ip.IsLoopback() || ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() {
		return true
	}

	// IPv6 unique local addresses, fc00::/7.
	if v6 := ip.To16(); v6 != nil && ip.To4() == nil && (v6[0] == 0xfc || v6[0] == 0xfd) {
		return true
	}

	return false
}
