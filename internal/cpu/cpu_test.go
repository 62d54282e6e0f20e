package cpu

import (
	"runtime"
	"testing"
)

func TestDetectFeaturesArchitecture(t *testing.T) {
	ResetDetection()
	defer ResetDetection()

	f := DetectFeatures()
	if f.Architecture != runtime.GOARCH {
		t.Fatalf("Architecture = %q, want %q", f.Architecture, runtime.GOARCH)
	}

	if runtime.GOARCH == "amd64" && !f.HasSSE2 {
		t.Fatal("amd64 must report SSE2")
	}
}

func TestForcedFeatures(t *testing.T) {
	defer ResetDetection()

	SetForcedFeatures(Features{Architecture: "amd64", HasSSE2: true, HasAVX2: true})

	f := DetectFeatures()
	if !f.HasAVX2 || f.Best() != SIMDAVX2 {
		t.Fatalf("forced features not returned: %+v", f)
	}

	ResetDetection()

	if got := DetectFeatures().Architecture; got != runtime.GOARCH {
		t.Fatalf("after reset Architecture = %q", got)
	}
}

func TestBestAndExtensions(t *testing.T) {
	tests := []struct {
		name string
		f    Features
		best SIMDLevel
		ext  string
	}{
		{"none", Features{}, SIMDNone, "none"},
		{"sse2", Features{HasSSE2: true}, SIMDSSE2, "SSE2"},
		{"avx2", Features{HasSSE2: true, HasAVX: true, HasAVX2: true}, SIMDAVX2, "SSE2 AVX AVX2"},
		{"neon", Features{HasNEON: true}, SIMDNEON, "NEON"},
		{"forced generic", Features{HasSSE2: true, HasAVX2: true, ForceGeneric: true}, SIMDNone, "none"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.f.Best(); got != tt.best {
				t.Errorf("Best() = %v, want %v", got, tt.best)
			}

			if got := tt.f.Extensions(); got != tt.ext {
				t.Errorf("Extensions() = %q, want %q", got, tt.ext)
			}
		})
	}
}
