package match

import (
	"hash/fnv"
	"math"
	"strings"
)

// NameVectorDim is the dimensionality of name embeddings produced by
// NameVector. It matches the vector column width of the blocking index.
const NameVectorDim = 384

// NameVector embeds a name into a fixed-size vector by hashing its character
// trigrams into buckets and L2-normalizing the bucket counts. Similar names
// share most of their trigrams, so their vectors land close under cosine
// distance. The embedding is deterministic and needs no model, which is all
// candidate blocking requires: it narrows the pool, and the pairwise scorer
// makes the actual call.
func NameVector(name string) []float32 {
	vec := make([]float32, NameVectorDim)

	normalized := normalizeForVector(name)
	if normalized == "" {
		return vec
	}

	// Pad so single-character names still produce boundary trigrams.
	padded := "  " + normalized + "  "
	runes := []rune(padded)

	for i := 0; i+3 <= len(runes); i++ {
		h := fnv.New32a()
		h.Write([]byte(string(runes[i : i+3])))
		vec[h.Sum32()%NameVectorDim]++
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm == 0 {
		return vec
	}
	scale := float32(1 / math.Sqrt(norm))
	for i := range vec {
		vec[i] *= scale
	}
	return vec
}

// CosineSimilarity returns the cosine of the angle between two vectors of
// equal length, or 0 when either is a zero vector.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// normalizeForVector lowercases and collapses runs of whitespace so trigram
// counts don't depend on formatting.
func normalizeForVector(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}
