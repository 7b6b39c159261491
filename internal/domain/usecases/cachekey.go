package usecases

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/asila/asila/internal/domain/entities"
)

// Fingerprint derives a short deterministic hash grouping semantically
// identical queries: the first 12 hex characters of SHA-256 over the
// lowercased message, followed by the department name when one matched.
func Fingerprint(message string, dept entities.Department) string {
	digest := sha256.New()
	digest.Write([]byte(strings.ToLower(message)))
	if dept != entities.DepartmentNone {
		digest.Write([]byte(dept))
	}
	return hex.EncodeToString(digest.Sum(nil))[:12]
}

// BuildCacheKey serializes the cache identity tuple to a single string:
// cache:{tenantId}:{normalizedLocation}:{fingerprint}:{language}.
// An absent location becomes the literal token "all"; internal whitespace
// in a location is replaced with hyphens. Equal inputs always yield equal
// keys - the cache coherence contract other components rely on.
func BuildCacheKey(tenantID, location, fingerprint, language string) string {
	locationKey := "all"
	if location != "" {
		locationKey = strings.ReplaceAll(strings.ToLower(location), " ", "-")
	}
	return fmt.Sprintf("cache:%s:%s:%s:%s", tenantID, locationKey, fingerprint, language)
}
