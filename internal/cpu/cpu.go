// Package cpu reports the SIMD extensions of the host processor. The info
// command prints them next to the vector kernels the DSP code runs on.
package cpu

import (
	"strings"
	"sync"
)

// SIMDLevel is a SIMD instruction set extension.
type SIMDLevel int

const (
	SIMDNone SIMDLevel = iota
	SIMDSSE2
	SIMDAVX
	SIMDAVX2
	SIMDAVX512
	SIMDNEON
)

func (s SIMDLevel) String() string {
	switch s {
	case SIMDNone:
		return "none"
	case SIMDSSE2:
		return "SSE2"
	case SIMDAVX:
		return "AVX"
	case SIMDAVX2:
		return "AVX2"
	case SIMDAVX512:
		return "AVX-512"
	case SIMDNEON:
		return "NEON"
	default:
		return "unknown"
	}
}

// Features describes the detected processor capabilities.
type Features struct {
	HasSSE2   bool
	HasAVX    bool
	HasAVX2   bool
	HasAVX512 bool
	HasNEON   bool

	// ForceGeneric reports every extension as unavailable.
	ForceGeneric bool

	Architecture string // runtime.GOARCH
}

// Best returns the widest extension f supports.
func (f Features) Best() SIMDLevel {
	switch {
	case f.ForceGeneric:
		return SIMDNone
	case f.HasAVX512:
		return SIMDAVX512
	case f.HasAVX2:
		return SIMDAVX2
	case f.HasAVX:
		return SIMDAVX
	case f.HasSSE2:
		return SIMDSSE2
	case f.HasNEON:
		return SIMDNEON
	default:
		return SIMDNone
	}
}

// Extensions lists the supported extensions, narrowest first, or "none".
func (f Features) Extensions() string {
	if f.ForceGeneric {
		return SIMDNone.String()
	}

	var names []string

	for _, l := range []struct {
		on    bool
		level SIMDLevel
	}{
		{f.HasSSE2, SIMDSSE2},
		{f.HasAVX, SIMDAVX},
		{f.HasAVX2, SIMDAVX2},
		{f.HasAVX512, SIMDAVX512},
		{f.HasNEON, SIMDNEON},
	} {
		if l.on {
			names = append(names, l.level.String())
		}
	}

	if len(names) == 0 {
		return SIMDNone.String()
	}

	return strings.Join(names, " ")
}

var (
	detectMu   sync.Mutex
	detectOnce sync.Once
	detected   Features

	forcedMu sync.RWMutex
	forced   *Features
)

// DetectFeatures returns the host features. Detection runs once and is
// cached; SetForcedFeatures overrides it.
func DetectFeatures() Features {
	forcedMu.RLock()
	f := forced
	forcedMu.RUnlock()

	if f != nil {
		return *f
	}

	detectMu.Lock()
	defer detectMu.Unlock()

	detectOnce.Do(func() {
		detected = detectFeaturesImpl()
	})

	return detected
}

// SetForcedFeatures makes DetectFeatures return f until ResetDetection.
func SetForcedFeatures(f Features) {
	forcedMu.Lock()
	defer forcedMu.Unlock()

	forced = &f
}

// ResetDetection drops forced features and the detection cache.
func ResetDetection() {
	forcedMu.Lock()
	forced = nil
	forcedMu.Unlock()

	detectMu.Lock()
	detectOnce = sync.Once{}
	detected = Features{}
	detectMu.Unlock()
}
