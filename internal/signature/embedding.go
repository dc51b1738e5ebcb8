package signature

import "math"

// EmbeddingDims is the width of the feature-hashed ingredient vector stored
// alongside catalog templates
const EmbeddingDims = 32

// Embedding feature-hashes normalized ingredient tokens into a unit-length
// vector. Similar ingredient sets land close together under L2 distance,
// which is all the catalog prefilter needs. The result always has
// EmbeddingDims entries, all zero for an empty set.
func Embedding(tokens []string) []float32 {
	vec := make([]float32, EmbeddingDims)
	norm := NormalizeIngredients(tokens)
	if len(norm) == 0 {
		return vec
	}
	for _, tok := range norm {
		vec[HashSignature(tok)%EmbeddingDims]++
	}
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	length := float32(math.Sqrt(sum))
	for i := range vec {
		vec[i] /= length
	}
	return vec
}
