package validation

import (
	"fmt"
	"net"
	"net/url"
	"strings"
)

// EndpointValidator checks a user supplied MediaWiki API endpoint before the
// client sends anything to it.
type EndpointValidator struct {
	// AllowLocalhost permits loopback hosts, used for a local MediaWiki
	AllowLocalhost bool
	// AllowPrivateIPs permits RFC 1918 and link-local addresses
	AllowPrivateIPs bool
	MaxLength       int
}

func NewEndpointValidator() *EndpointValidator {
	return &EndpointValidator{
		AllowLocalhost:  false,
		AllowPrivateIPs: false,
		MaxLength:       2048,
	}
}

// NewPermissiveEndpointValidator allows loopback and private hosts.
func NewPermissiveEndpointValidator() *EndpointValidator {
	return &EndpointValidator{
		AllowLocalhost:  true,
		AllowPrivateIPs: true,
		MaxLength:       2048,
	}
}

// ValidateAndNormalize returns the endpoint in canonical form. A bare host
// gets https:// and the standard /w/api.php path.
func (v *EndpointValidator) ValidateAndNormalize(input string) (string, error) {
	input = strings.TrimSpace(input)

	if input == "" {
		return "", fmt.Errorf("endpoint cannot be empty")
	}
	if len(input) > v.MaxLength {
		return "", fmt.Errorf("endpoint too long (max %d characters)", v.MaxLength)
	}
	if strings.ContainsAny(input, "<>\"'` ") {
		return "", fmt.Errorf("endpoint contains invalid characters")
	}

	if !strings.HasPrefix(input, "http://") && !strings.HasPrefix(input, "https://") {
		input = "https://" + input
	}

	u, err := url.Parse(input)
	if err != nil {
		return "", fmt.Errorf("invalid endpoint format: %w", err)
	}
	if u.Host == "" {
		return "", fmt.Errorf("endpoint must have a hostname")
	}
	if u.User != nil {
		return "", fmt.Errorf("endpoint must not carry credentials")
	}
	if u.RawQuery != "" || u.Fragment != "" {
		return "", fmt.Errorf("endpoint must not carry a query or fragment")
	}

	if err := v.validateHost(u.Host); err != nil {
		return "", err
	}
	if strings.Contains(u.Path, "..") {
		return "", fmt.Errorf("directory traversal patterns not allowed in endpoint path")
	}

	if u.Path == "" || u.Path == "/" {
		u.Path = "/w/api.php"
	}
	if !strings.HasSuffix(u.Path, "api.php") {
		return "", fmt.Errorf("endpoint path must end in api.php, got %q", u.Path)
	}

	return u.String(), nil
}

func (v *EndpointValidator) validateHost(host string) error {
	hostname := host
	if strings.Contains(host, ":") {
		var err error
		hostname, _, err = net.SplitHostPort(host)
		if err != nil {
			return fmt.Errorf("invalid host format: %w", err)
		}
	}

	if !v.AllowLocalhost && isLocalhost(hostname) {
		return fmt.Errorf("localhost endpoints are not permitted")
	}

	if ip := net.ParseIP(hostname); ip != nil {
		if ip.IsUnspecified() || ip.Equal(net.IPv4bcast) {
			return fmt.Errorf("unroutable address %s", hostname)
		}
		if !v.AllowPrivateIPs && isPrivateIP(ip) && !(v.AllowLocalhost && ip.IsLoopback()) {
			return fmt.Errorf("private IP addresses are not permitted")
		}
	}

	return nil
}

func isLocalhost(hostname string) bool {
	hostname = strings.ToLower(hostname)
	if hostname == "localhost" || strings.HasSuffix(hostname, ".localhost") {
		return true
	}
	ip := net.ParseIP(hostname)
	return ip != nil && ip.IsLoopback()
}

func isPrivateIP(ip net.IP) bool {
	return ip.IsPrivate() || ip.IsLoopback() || ip.IsLinkLocalUnicast()
}
