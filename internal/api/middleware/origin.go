package middleware

import (
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
)

// DefaultAllowedOrigins admits pages served from the local machine on any
// port.
var DefaultAllowedOrigins = []string{
	"http://localhost:*",
	"http://127.0.0.1:*",
	"http://[::1]:*",
}

type originRule struct {
	scheme string
	host   string
	port   string // "*" matches any port
}

// OriginPolicy decides which browser origins may drive the service. Rules
// have the form scheme://host[:port], where the port may be "*". A single
// "*" rule admits every origin.
type OriginPolicy struct {
	rules    []originRule
	allowAll bool
}

// NewOriginPolicy parses the allow-list
func NewOriginPolicy(patterns []string) (*OriginPolicy, error) {
	p := &OriginPolicy{}
	for _, pattern := range patterns {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}
		if pattern == "*" {
			p.allowAll = true
			continue
		}
		rule, err := parseOriginRule(pattern)
		if err != nil {
			return nil, err
		}
		p.rules = append(p.rules, rule)
	}
	return p, nil
}

func parseOriginRule(pattern string) (originRule, error) {
	scheme, hostport, ok := strings.Cut(pattern, "://")
	if !ok || scheme == "" || hostport == "" || strings.ContainsAny(hostport, "/?#") {
		return originRule{}, fmt.Errorf("invalid origin %q: want scheme://host[:port]", pattern)
	}

	rule := originRule{scheme: strings.ToLower(scheme)}
	host, port, err := net.SplitHostPort(hostport)
	if err != nil {
		// No port
		host = strings.TrimSuffix(strings.TrimPrefix(hostport, "["), "]")
	}
	if host == "" {
		return originRule{}, fmt.Errorf("invalid origin %q: empty host", pattern)
	}
	rule.host = strings.ToLower(host)
	rule.port = port
	return rule, nil
}

// Allowed reports whether a request carrying the Origin header value origin
// may proceed. Requests without an Origin header do not come from a web
// page and are allowed.
func (p *OriginPolicy) Allowed(origin string) bool {
	if origin == "" || p.allowAll {
		return true
	}

	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	host := strings.ToLower(u.Hostname())
	port := u.Port()

	for _, rule := range p.rules {
		if rule.scheme != scheme || rule.host != host {
			continue
		}
		if rule.port == "*" || rule.port == port {
			return true
		}
	}
	return false
}

// CheckOrigin adapts the policy to websocket.Upgrader. Pages served by
// this host are always allowed.
func (p *OriginPolicy) CheckOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if u, err := url.Parse(origin); err == nil && u.Host != "" && strings.EqualFold(u.Host, r.Host) {
		return true
	}
	return p.Allowed(origin)
}
