package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// DefaultGuidelineCollection is the shared rulebook collection name.
const DefaultGuidelineCollection = "is_plani_rehberi"

// userCollectionPrefix prefixes every per-user collection.
const userCollectionPrefix = "user_"

// userCollectionHashLen is the number of hex characters kept from the digest.
const userCollectionHashLen = 32

// DistanceMetric is the similarity function of a collection.
type DistanceMetric string

// Supported distance metrics.
const (
	DistanceCosine DistanceMetric = "Cosine"
	DistanceDot    DistanceMetric = "Dot"
	DistanceEuclid DistanceMetric = "Euclid"
)

// CollectionInfo describes an existing collection.
type CollectionInfo struct {
	// Name is the collection name.
	Name string

	// VectorSize is the configured vector dimension.
	VectorSize int

	// Distance is the configured metric.
	Distance DistanceMetric

	// PointsCount is the number of stored points.
	PointsCount int
}

// NormalizeIdentity trims and lower-cases an identity string.
func NormalizeIdentity(identity string) string {
	return strings.ToLower(strings.TrimSpace(identity))
}

// UserCollectionName derives the per-user collection name from an identity.
// The mapping is one-way: a SHA-256 digest of the normalised identity, so
// storage keys never reveal the email address.
// Returns an empty string for an empty identity.
func UserCollectionName(identity string) string {
	normalized := NormalizeIdentity(identity)
	if normalized == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(normalized))
	return userCollectionPrefix + hex.EncodeToString(sum[:])[:userCollectionHashLen]
}
