package domain

import "time"

// Payload keys of guideline points.
const (
	PayloadSectionCode      = "sectionCode"
	PayloadTitle            = "title"
	PayloadPurpose          = "purpose"
	PayloadSearchedElements = "searchedElements"
	PayloadScoringLogic     = "scoringLogic"
	PayloadOriginalText     = "originalText"
)

// Payload keys of user chunk points.
const (
	PayloadText        = "text"
	PayloadFileName    = "fileName"
	PayloadChunkIndex  = "chunkIndex"
	PayloadTotalChunks = "totalChunks"
	PayloadUploadedAt  = "uploadedAt"
)

// Payload returns the vector point payload of a section.
func (r SectionRecord) Payload() map[string]any {
	return map[string]any{
		PayloadSectionCode:      r.SectionCode,
		PayloadTitle:            r.Title,
		PayloadPurpose:          r.Purpose,
		PayloadSearchedElements: r.SearchedElements,
		PayloadScoringLogic:     r.ScoringLogic,
		PayloadOriginalText:     r.OriginalText,
	}
}

// SectionFromPayload rebuilds a section from a point payload.
// Missing keys become empty strings.
func SectionFromPayload(p map[string]any) SectionRecord {
	return SectionRecord{
		SectionCode:      payloadString(p, PayloadSectionCode),
		Title:            payloadString(p, PayloadTitle),
		Purpose:          payloadString(p, PayloadPurpose),
		SearchedElements: payloadString(p, PayloadSearchedElements),
		ScoringLogic:     payloadString(p, PayloadScoringLogic),
		OriginalText:     payloadString(p, PayloadOriginalText),
	}
}

// Payload returns the vector point payload of a chunk.
func (c Chunk) Payload() map[string]any {
	return map[string]any{
		PayloadText:        c.Text,
		PayloadFileName:    c.FileName,
		PayloadChunkIndex:  c.ChunkIndex,
		PayloadTotalChunks: c.TotalChunks,
		PayloadUploadedAt:  c.UploadedAt.UTC().Format(time.RFC3339),
	}
}

// ChunkFromPayload rebuilds a chunk from a point payload. The text falls
// back to originalText for points written by the rulebook indexer.
func ChunkFromPayload(p map[string]any) Chunk {
	text := payloadString(p, PayloadText)
	if text == "" {
		text = payloadString(p, PayloadOriginalText)
	}
	c := Chunk{
		Text:        text,
		FileName:    payloadString(p, PayloadFileName),
		ChunkIndex:  payloadInt(p, PayloadChunkIndex),
		TotalChunks: payloadInt(p, PayloadTotalChunks),
	}
	if ts, err := time.Parse(time.RFC3339, payloadString(p, PayloadUploadedAt)); err == nil {
		c.UploadedAt = ts
	}
	return c
}

func payloadString(p map[string]any, key string) string {
	s, _ := p[key].(string)
	return s
}

// payloadInt accepts the integer types of in-process payloads and the
// float64 produced by JSON decoding.
func payloadInt(p map[string]any, key string) int {
	switch v := p[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case uint64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}
