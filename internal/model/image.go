package model

// ImageRef points at an object stored in the media bucket. PublicID is the
// bare object id, the delivery URL carries the full key.
type ImageRef struct {
	URL      string `bson:"url" json:"url"`
	PublicID string `bson:"public_id" json:"public_id"`
	ThumbURL string `bson:"thumb_url,omitempty" json:"thumb_url,omitempty"`
	Width    int    `bson:"width,omitempty" json:"width,omitempty"`
	Height   int    `bson:"height,omitempty" json:"height,omitempty"`
}

// FileRef points at a downloadable file. When the file was supplied as a
// bare external URL no PublicID exists and the media bucket holds nothing
// for it.
type FileRef struct {
	URL      string `bson:"url" json:"url"`
	PublicID string `bson:"public_id,omitempty" json:"public_id,omitempty"`
	Format   string `bson:"format,omitempty" json:"format,omitempty"`
}

// MaxImages caps the image list of a preset or gallery item.
const MaxImages = 8

// MergeImages combines already-uploaded references with freshly uploaded
// ones, preserving order and capping the result at MaxImages.
func MergeImages(existing, added []ImageRef) []ImageRef {
	merged := make([]ImageRef, 0, len(existing)+len(added))
	merged = append(merged, existing...)
	merged = append(merged, added...)

	if len(merged) > MaxImages {
		merged = merged[:MaxImages]
	}

	return merged
}

// UniqueTags deduplicates while preserving first-seen order.
func UniqueTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))

	for _, t := range tags {
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}

		seen[t] = struct{}{}
		out = append(out, t)
	}

	return out
}
