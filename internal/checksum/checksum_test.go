package checksum

import "testing"

func TestSumIsStable(t *testing.T) {
	if Sum([]byte("a")) != Sum([]byte("a")) {
		t.Fatal("digest not deterministic")
	}
	if Sum([]byte("a")) == Sum([]byte("b")) {
		t.Fatal("distinct inputs collide")
	}
}

func TestProject(t *testing.T) {
	if Project("demo", nil) != Sum([]byte("demo")) {
		t.Error("name-only digest should match Sum of the name")
	}
	if Project("demo", []byte("{}")) == Project("demo", nil) {
		t.Error("timeline must change the digest")
	}
	if Project("a", []byte("b")) == Project("ab", []byte("")) {
		t.Error("name and timeline boundary is ambiguous")
	}
}
