package domain

// DefaultGuidelineFile is the rulebook file indexed when none is given.
const DefaultGuidelineFile = "YÖNERGE.docx"

// GuidelineIndexOptions control rulebook indexing.
type GuidelineIndexOptions struct {
	// Recreate drops the collection before indexing.
	Recreate bool
}

// GuidelineIndexResult summarises a rulebook indexing run.
type GuidelineIndexResult struct {
	CollectionName string
	SectionCount   int
	// Codes lists the indexed section codes in document order.
	Codes []string
}

// GuidelineStatus describes the rulebook collection.
type GuidelineStatus struct {
	CollectionName string
	Exists         bool
	PointsCount    int
	VectorSize     int
}
