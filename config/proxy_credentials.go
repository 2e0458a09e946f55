package config

import (
	"fmt"
	"strings"

	"github.com/rook-sec/padoracle/oracle"
)

// ProxyCredentials is a "USER:PASS" pair for an upstream HTTP proxy, as
// accepted by the web subcommand's --proxy-credentials flag.
//
// Grounded on original_source/src/config/proxy_credentials.rs.
type ProxyCredentials struct {
	Username string
	Password string
}

// ParseProxyCredentials splits s on its first colon.
func ParseProxyCredentials(s string) (ProxyCredentials, error) {
	user, pass, ok := strings.Cut(s, ":")
	if !ok {
		return ProxyCredentials{}, fmt.Errorf("proxy credentials %q: expected USER:PASS", s)
	}
	if user == "" {
		return ProxyCredentials{}, fmt.Errorf("proxy credentials %q: username is empty", s)
	}
	return ProxyCredentials{Username: user, Password: pass}, nil
}

// ToOracle converts p into the oracle package's wire-level type.
func (p ProxyCredentials) ToOracle() oracle.ProxyCredentials {
	return oracle.ProxyCredentials{Username: p.Username, Password: p.Password}
}
