package primitives

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID prefixes for the entity kinds minted by the platform.
// A prefixed ID has the form "<prefix><uuid>" where the prefix already
// carries its trailing hyphen.
const (
	PrefixMessage  = "msg-"
	PrefixEnvelope = "env-"
	PrefixImport   = "import-"
	PrefixListing  = "listing-"
	PrefixUser     = "user-"
	PrefixSession  = "session-"
	PrefixTrace    = "trace-"
	PrefixSpan     = "span-"
	PrefixWorkflow = "workflow-"
	PrefixJob      = "job-"
)

// NewUUID returns a random version-4 UUID string in lowercase.
func NewUUID() string {
	return uuid.NewString()
}

// DeterministicID derives a UUID-shaped identifier from seed. The same seed
// always yields the same ID. The first 32 hex digits of SHA-256(seed) are
// laid out as a UUID with the version nibble forced to '4' and the variant
// nibble forced to '8' to stay bit-compatible with existing platform data.
func DeterministicID(seed string) string {
	h := HashString(seed)
	return fmt.Sprintf("%s-%s-4%s-8%s-%s",
		h[0:8],
		h[8:12],
		h[13:16],
		h[17:20],
		h[20:32],
	)
}

// RandomID returns "<prefix><random-uuid>".
func RandomID(prefix string) string {
	return prefix + NewUUID()
}

// ContentBasedID returns "<prefix><deterministic-uuid>" derived from seed.
func ContentBasedID(prefix, seed string) string {
	return prefix + DeterministicID(seed)
}

// NewMessageID mints a random message ID.
func NewMessageID() string {
	return RandomID(PrefixMessage)
}

// NewSessionID mints a random session ID.
func NewSessionID() string {
	return RandomID(PrefixSession)
}

// NewTraceID mints a random trace ID.
func NewTraceID() string {
	return RandomID(PrefixTrace)
}

// ImportID mints a deterministic import ID from the content hash of the
// imported document.
func ImportID(contentHash string) string {
	return ContentBasedID(PrefixImport, contentHash)
}

// ListingID mints a deterministic listing ID from an external identifier.
func ListingID(externalID string) string {
	return ContentBasedID(PrefixListing, externalID)
}

// ValidateIDFormat checks that id has the form "prefix-<uuid>" with a
// lowercase alphanumeric (plus hyphen) prefix and a 36-character UUID-shaped
// suffix. The whole ID must be lowercase.
func ValidateIDFormat(id string) error {
	if strings.ToLower(id) != id {
		return errors.New("id must be lowercase")
	}
	if len(id) < 38 {
		return errors.New("id must have format prefix-uuid")
	}
	// The UUID part is the final 36 characters; the prefix is everything
	// before it, including its trailing hyphen.
	uuidPart := id[len(id)-36:]
	prefix := id[:len(id)-36]
	if !strings.HasSuffix(prefix, "-") {
		return errors.New("id must have format prefix-uuid")
	}
	for _, c := range prefix {
		if (c < 'a' || c > 'z') && (c < '0' || c > '9') && c != '-' {
			return errors.New("prefix must be lowercase alphanumeric with hyphens")
		}
	}
	if uuidPart[8] != '-' || uuidPart[13] != '-' || uuidPart[18] != '-' || uuidPart[23] != '-' {
		return errors.New("invalid uuid layout")
	}
	for i, c := range uuidPart {
		if i == 8 || i == 13 || i == 18 || i == 23 {
			continue
		}
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return errors.New("uuid part must be lowercase hex")
		}
	}
	return nil
}
