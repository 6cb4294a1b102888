package tenant

import (
	"net"
	"net/http"
	"regexp"
	"strings"
)

// DevDomains are loopback domains that resolve to 127.0.0.1 for any label,
// so tenants can be exercised locally without DNS.
var DevDomains = []string{"localhost", "lvh.me"}

// Resolver extracts a tenant identifier from a request.
// An empty string means the request carries no tenant.
type Resolver func(r *http.Request) (string, error)

// HostResolver maps a Host header to a tenant identifier.
type HostResolver struct {
	patterns []*regexp.Regexp
}

// NewHostResolver builds a resolver for <label>.<domain> hosts. Development
// domains are matched before the primary domain. When devDomains is empty,
// DevDomains is used; an empty primaryDomain disables production matching.
func NewHostResolver(primaryDomain string, devDomains ...string) *HostResolver {
	if len(devDomains) == 0 {
		devDomains = DevDomains
	}

	domains := make([]string, 0, len(devDomains)+1)
	domains = append(domains, devDomains...)
	if primaryDomain != "" {
		domains = append(domains, primaryDomain)
	}

	patterns := make([]*regexp.Regexp, 0, len(domains))
	for _, d := range domains {
		d = strings.Trim(strings.ToLower(strings.TrimSpace(d)), ".")
		if d == "" {
			continue
		}
		patterns = append(patterns, regexp.MustCompile(`^(`+identifierPattern+`)\.`+regexp.QuoteMeta(d)+`$`))
	}

	return &HostResolver{patterns: patterns}
}

// ResolveHost returns the tenant label of host, or "" when there is none:
// apex domains, bare IPs, "www", unknown domains and malformed input.
func (h *HostResolver) ResolveHost(host string) string {
	host = strings.TrimSpace(host)
	if host == "" {
		return ""
	}
	if hostname, _, err := net.SplitHostPort(host); err == nil {
		host = hostname
	}
	host = strings.TrimSuffix(strings.ToLower(host), ".")

	for _, p := range h.patterns {
		m := p.FindStringSubmatch(host)
		if m == nil || m[1] == "www" {
			continue
		}
		return m[1]
	}
	return ""
}

// Resolve implements Resolver using the request Host. It never fails.
func (h *HostResolver) Resolve(r *http.Request) (string, error) {
	if r == nil {
		return "", nil
	}
	return h.ResolveHost(r.Host), nil
}
