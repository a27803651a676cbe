package bulkhead

import "testing"

func BenchmarkSemaphore_AcquireRelease(b *testing.B) {
	s := NewSemaphore(100)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := s.TryAcquire(); err == nil {
			s.Release()
		}
	}
}

func BenchmarkSemaphore_AcquireReleaseParallel(b *testing.B) {
	s := NewSemaphore(100)

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if err := s.TryAcquire(); err == nil {
				s.Release()
			}
		}
	})
}

func BenchmarkGate_AcquireRelease(b *testing.B) {
	g := NewGate(100)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := g.TryAcquire(); err == nil {
			g.Release()
		}
	}
}
