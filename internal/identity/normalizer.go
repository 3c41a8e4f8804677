// Package identity canonicalizes phone numbers and email addresses into the
// single key used for lookup, indexing and code hashing. Normalization must
// stay deterministic: the key participates in the stored HMAC message, so a
// rule change silently invalidates every active code.
package identity

import (
	"strings"

	"github.com/nyaruka/phonenumbers"

	"github.com/you/classauth/domain"
)

// Kind discriminates the two identity channels.
type Kind string

const (
	KindPhone Kind = "phone"
	KindEmail Kind = "email"
)

// Normalizer canonicalizes raw identities. DefaultRegion is the region used
// to parse phone numbers written without a leading +.
type Normalizer struct {
	defaultRegion string
}

// NewNormalizer creates a normalizer for the given default phone region
// (ISO 3166-1 alpha-2, e.g. "US", "VN").
func NewNormalizer(defaultRegion string) *Normalizer {
	if defaultRegion == "" {
		defaultRegion = "US"
	}
	return &Normalizer{defaultRegion: defaultRegion}
}

// Detect guesses the identity kind from its shape.
func Detect(raw string) Kind {
	if strings.Contains(raw, "@") {
		return KindEmail
	}
	return KindPhone
}

// Normalize canonicalizes raw according to kind. Phones are parsed with the
// region-aware libphonenumber rules and emitted in E.164; emails are trimmed
// and lower-cased. Unparseable input fails with ErrInvalidIdentity.
func (n *Normalizer) Normalize(raw string, kind Kind) (string, error) {
	switch kind {
	case KindPhone:
		return n.normalizePhone(raw)
	case KindEmail:
		return normalizeEmail(raw)
	default:
		return "", domain.ErrInvalidIdentity
	}
}

// NormalizeAny detects the kind from the input shape and normalizes it.
func (n *Normalizer) NormalizeAny(raw string) (string, error) {
	return n.Normalize(raw, Detect(raw))
}

func (n *Normalizer) normalizePhone(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", domain.ErrInvalidIdentity
	}

	num, err := phonenumbers.Parse(trimmed, n.defaultRegion)
	if err != nil {
		return "", domain.ErrInvalidIdentity
	}
	if !phonenumbers.IsValidNumber(num) {
		return "", domain.ErrInvalidIdentity
	}

	return phonenumbers.Format(num, phonenumbers.E164), nil
}

func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 {
		return "", domain.ErrInvalidIdentity
	}
	return email, nil
}
