package main

import (
	"net/url"
	"regexp"
	"strings"
)

// Conservative shape check: a 2-256 char host part, an alphabetic 2-6 letter
// top-level label, then an optional path/query tail from a safe character set.
var subscriptionURLPattern = regexp.MustCompile(`^https?://[-a-zA-Z0-9@:%._\+~#=]{2,256}\.[a-z]{2,6}\b([-a-zA-Z0-9@:%_\+.~#?&//=]*)$`)

// checkSubscriptionURL validates a raw subscription URL and returns the
// normalized form. The whole string is lower-cased first, path and query
// included.
func checkSubscriptionURL(raw string) (string, error) {
	subURL := strings.ToLower(raw)

	parsed, err := url.Parse(subURL)
	if err != nil {
		return "", &urlParseError{err: err}
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", errUnsupportedScheme
	}
	if parsed.Hostname() == "" {
		return "", errMissingHost
	}
	if !subscriptionURLPattern.MatchString(subURL) {
		return "", errMalformedURL
	}
	return subURL, nil
}
