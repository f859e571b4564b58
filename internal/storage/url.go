package storage

import "strings"

// PublicPrefix is the path under which the API serves stored objects.
const PublicPrefix = "/uploads/"

// PublicURL is the relative URL recorded on products for key.
func PublicURL(key string) string {
	return PublicPrefix + strings.TrimPrefix(key, "/")
}

// KeyFromURL reverses PublicURL. ok is false for URLs the store did not issue.
func KeyFromURL(url string) (key string, ok bool) {
	if !strings.HasPrefix(url, PublicPrefix) {
		return "", false
	}
	key = strings.TrimPrefix(url, PublicPrefix)
	if key == "" || strings.Contains(key, "..") {
		return "", false
	}
	return key, true
}
