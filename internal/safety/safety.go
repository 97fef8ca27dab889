// Package safety decides whether a user-supplied URL may be dereferenced
// over the network (SSRF prevention). Only literal IP hostnames are
// classified; a domain name passes even if it would resolve to a private
// address, because no DNS lookup is performed here. That keeps the check
// pure and side-effect free, at the cost of not catching DNS rebinding.
package safety

import (
	"net"
	"net/url"
	"strings"
)

// Hostnames that are never safe regardless of scheme or port.
var deniedHostnames = map[string]struct{}{
	"localhost":                {},
	"metadata.google.internal": {},
}

// Pre-compiled CIDR networks for reserved ranges the stdlib classifiers
// do not cover. Parsed once at package initialization.
var (
	cgnat      *net.IPNet // 100.64.0.0/10 - carrier-grade NAT
	futureUse  *net.IPNet // 240.0.0.0/4 - reserved for future use
	v6uniqueLL *net.IPNet // fc00::/7 - IPv6 unique local
)

func init() {
	var err error
	_, cgnat, err = net.ParseCIDR("100.64.0.0/10")
	if err != nil {
		panic("invalid CGNAT CIDR: " + err.Error())
	}
	_, futureUse, err = net.ParseCIDR("240.0.0.0/4")
	if err != nil {
		panic("invalid reserved CIDR: " + err.Error())
	}
	_, v6uniqueLL, err = net.ParseCIDR("fc00::/7")
	if err != nil {
		panic("invalid IPv6 unique local CIDR: " + err.Error())
	}
}

// IsSafeURL reports whether raw is safe to fetch. It fails closed: any
// parse failure or missing hostname yields false.
func IsSafeURL(raw string) bool {
	parsed, err := url.Parse(raw)
	if err != nil {
		return false
	}
	host := parsed.Hostname()
	if host == "" {
		return false
	}
	if _, denied := deniedHostnames[strings.ToLower(host)]; denied {
		return false
	}
	if ip := net.ParseIP(host); ip != nil {
		return !isRestrictedIP(ip)
	}
	// Domain name: passes without resolution.
	return true
}

// isRestrictedIP reports whether ip is private, loopback, link-local,
// unspecified, or otherwise reserved. Handles IPv4, IPv6, and
// IPv6-mapped IPv4 addresses.
func isRestrictedIP(ip net.IP) bool {
	if ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() || ip.IsUnspecified() {
		return true
	}
	if v4 := ip.To4(); v4 != nil {
		if cgnat.Contains(v4) || futureUse.Contains(v4) {
			return true
		}
		return false
	}
	return v6uniqueLL.Contains(ip)
}
