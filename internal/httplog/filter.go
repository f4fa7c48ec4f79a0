package httplog

// IsApproved reports whether url may be logged.
// A matching blacklist rejects even when the whitelist matches too;
// a whitelist that is set and does not match rejects; anything else is approved.
// Patterns match anywhere in the URL.
func (c Configuration) IsApproved(url string) bool {
	if c.URLBlacklistPattern != nil && c.URLBlacklistPattern.MatchString(url) {
		return false
	}

	if c.URLWhitelistPattern != nil && !c.URLWhitelistPattern.MatchString(url) {
		return false
	}

	return true
}
