package security

import "testing"

func TestHasher_HashAndCompare(t *testing.T) {
	h := NewHasher(4) // min cost to keep the test fast
	hash, err := h.Hash([]byte("correct horse battery staple"))
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if hash == "" || hash == "correct horse battery staple" {
		t.Fatal("hash empty or equal to plaintext")
	}
	if err := h.Compare([]byte("correct horse battery staple"), hash); err != nil {
		t.Errorf("Compare matching: %v", err)
	}
	if err := h.Compare([]byte("wrong password"), hash); err == nil {
		t.Error("Compare mismatching: want error")
	}
}

func TestNewHasher_CostClamping(t *testing.T) {
	if h := NewHasher(0); h.Cost != 10 { // bcrypt.DefaultCost
		t.Errorf("NewHasher(0).Cost = %d, want 10", h.Cost)
	}
	if h := NewHasher(2); h.Cost != 4 {
		t.Errorf("NewHasher(2).Cost = %d, want 4", h.Cost)
	}
	if h := NewHasher(99); h.Cost != 31 {
		t.Errorf("NewHasher(99).Cost = %d, want 31", h.Cost)
	}
}
