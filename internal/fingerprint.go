package internal

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Fingerprint returns the durable identity of an idea: a SHA-256 hex digest
// of its normalized title, problem, target market and revenue model. Fields
// are joined with an unescaped "|", so a pipe moved across a field boundary
// does not change the digest. Stored fingerprints depend on this layout.
func Fingerprint(idea Idea) string {
	payload := strings.Join([]string{
		normalizeFingerprintField(idea.Title),
		normalizeFingerprintField(idea.Problem),
		normalizeFingerprintField(idea.TargetMarket),
		normalizeFingerprintField(idea.RevenueModel),
	}, "|")
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}

// Deduplicator removes ideas that share a fingerprint
type Deduplicator struct{}

// NewDeduplicator creates a new Deduplicator
func NewDeduplicator() *Deduplicator {
	return &Deduplicator{}
}

// Deduplicate keeps the first idea of every fingerprint, preserving order
func (d *Deduplicator) Deduplicate(ideas []Idea) []Idea {
	seen := make(map[string]bool)
	unique := make([]Idea, 0, len(ideas))

	for _, idea := range ideas {
		fp := Fingerprint(idea)
		if !seen[fp] {
			seen[fp] = true
			unique = append(unique, idea)
		}
	}

	return unique
}
