//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// RegistrableDomain returns the eTLD+1 of a host, URL, or email address.
// It returns "" when no registrable domain can be derived.
func RegistrableDomain(s string) string {
	host := strings.ToLower(strings.TrimSpace(s))
	if host == "" {
		return ""
	}
	if at := strings.LastIndexByte(host, '@'); at >= 0 {
		host = host[at+1:]
	} else if strings.Contains(host, "://") {
		u, err := url.Parse(host)
		if err != nil {
			return ""
		}
		host = u.Hostname()
	} else if i := strings.IndexAny(host, "/:?#"); i >= 0 {
		host = host[:i]
	}
	host = strings.TrimSuffix(host, ".")
	if host == "" {
		return ""
	}
	d, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return ""
	}
	return d
}

// DomainsMatch reports whether a contact email and a company website share a
// registrable domain. ok is false when either side cannot be resolved.
func DomainsMatch(email, website string) (match, ok bool) {
	a := RegistrableDomain(email)
	b := RegistrableDomain(website)
	if a == "" || b == "" {
		return false, false
	}
	return a == b, true
}
