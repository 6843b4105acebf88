package ptz

import "fmt"

// ValidateHost rejects host strings that could smuggle a path, query, or
// userinfo component into a URL built from them. Accepted characters are
// letters, digits, '.', ':' and '-', which covers hostnames, IPv4 and
// bare IPv6 addresses.
func ValidateHost(host string) error {
	if host == "" {
		return fmt.Errorf("%w: host must not be empty", ErrConnectionFailed)
	}
	for _, r := range host {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '.' || r == ':' || r == '-':
		default:
			return fmt.Errorf("%w: invalid character %q in host %q", ErrConnectionFailed, r, host)
		}
	}
	return nil
}
