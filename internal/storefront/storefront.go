// Package storefront validates the link to the external book shop.
package storefront

import (
	"net/url"
	"strings"
)

// DefaultURL is the shop opened from the library when no override is configured
const DefaultURL = "https://3f5487-9f.myshopify.com"

// Parse returns the storefront URL if it can be opened.
// Only absolute http and https URLs with a host qualify; anything else
// means the storefront is not offered.
func Parse(raw string) (*url.URL, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, false
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, false
	}
	if u.Host == "" {
		return nil, false
	}
	return u, true
}
