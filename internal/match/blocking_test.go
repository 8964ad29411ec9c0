package match

import "testing"

func TestNameVector_Normalized(t *testing.T) {
	vec := NameVector("Sarah Johnson")
	if len(vec) != NameVectorDim {
		t.Fatalf("dimension = %d, want %d", len(vec), NameVectorDim)
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm < 0.999 || norm > 1.001 {
		t.Errorf("squared norm = %v, want 1", norm)
	}
}

func TestNameVector_FormattingInvariant(t *testing.T) {
	a := NameVector("Sarah Johnson")
	b := NameVector("  sarah   JOHNSON ")
	if CosineSimilarity(a, b) < 0.9999 {
		t.Error("case and whitespace should not change the embedding")
	}
}

func TestNameVector_SimilarNamesAreClose(t *testing.T) {
	sarah := NameVector("Sarah Johnson")
	sara := NameVector("Sara Johnson")
	mike := NameVector("Mike Williams")

	near := CosineSimilarity(sarah, sara)
	far := CosineSimilarity(sarah, mike)
	if near <= far {
		t.Errorf("near-duplicate similarity %v should exceed unrelated %v", near, far)
	}
	if near < 0.6 {
		t.Errorf("near-duplicate similarity = %v, want substantial trigram overlap", near)
	}
}

func TestNameVector_Empty(t *testing.T) {
	vec := NameVector("   ")
	for i, v := range vec {
		if v != 0 {
			t.Fatalf("empty name should embed to the zero vector (bucket %d = %v)", i, v)
		}
	}
	if CosineSimilarity(vec, NameVector("Sarah")) != 0 {
		t.Error("zero vector similarity should be 0")
	}
}
