package models

import "strings"

// throttlePatterns are substrings that mark a provider error as a
// rate-limit (throttle) failure. Providers rarely expose a typed error for
// this, so classification is by message.
var throttlePatterns = []string{
	"rate limit",
	"rate_limit",
	"ratelimit",
	"too many requests",
	"overloaded",
	"throttl",
	"429",
	"529",
	"slow down",
}

// isThrottle reports whether err looks like a provider rate-limit failure.
func isThrottle(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, pattern := range throttlePatterns {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}
