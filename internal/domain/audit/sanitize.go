package audit

import "strings"

// RedactedMarker replaces an entire reason string when any sensitive
// substring is present. Redaction is wholesale: false positives are
// acceptable, information leakage is not.
const RedactedMarker = "[REDACTED]"

// sensitiveSubstrings trigger wholesale reason redaction. Filesystem-like
// prefixes catch path leakage; the keyword entries catch credential
// material.
var sensitiveSubstrings = []string{
	"/home/", "/mnt/", "/etc/",
	"token", "key", "secret",
}

// RedactReason returns content unchanged unless it carries a sensitive
// substring, in which case the whole string is replaced with RedactedMarker.
func RedactReason(content string) string {
	for _, s := range sensitiveSubstrings {
		if strings.Contains(content, s) {
			return RedactedMarker
		}
	}
	return content
}

// Sanitize scrubs an event before emission. The reason passes RedactReason;
// a metadata error_code is reduced to the substring before the first colon
// so the stable code survives but ancillary text does not.
func Sanitize(event Event) Event {
	if event.Reason != "" {
		event.Reason = RedactReason(event.Reason)
	}
	if event.Metadata != nil && event.Metadata.ErrorCode != "" {
		meta := *event.Metadata
		meta.ErrorCode, _, _ = strings.Cut(meta.ErrorCode, ":")
		event.Metadata = &meta
	}
	return event
}
