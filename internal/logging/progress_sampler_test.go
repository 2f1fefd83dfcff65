package logging

import "testing"

func TestProgressSamplerBuckets(t *testing.T) {
	s := NewProgressSampler(5)
	if !s.ShouldLog(0, "render") {
		t.Fatal("first event should log")
	}
	if s.ShouldLog(2, "render") {
		t.Fatal("same bucket should not log")
	}
	if !s.ShouldLog(5, "render") {
		t.Fatal("bucket boundary should log")
	}
	if !s.ShouldLog(100, "render") {
		t.Fatal("completion should log")
	}
}

func TestProgressSamplerPhaseChange(t *testing.T) {
	s := NewProgressSampler(5)
	s.ShouldLog(50, "render")
	if !s.ShouldLog(1, "mux") {
		t.Fatal("phase change should log even at low percent")
	}
}

func TestProgressSamplerNilSafe(t *testing.T) {
	var s *ProgressSampler
	if !s.ShouldLog(10, "render") {
		t.Fatal("nil sampler should always log")
	}
	s.Reset()
}
