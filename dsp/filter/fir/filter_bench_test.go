package fir

import (
	"strconv"
	"testing"
)

var benchOrders = []int{32, 128, 512}

func BenchmarkProcessBlock(b *testing.B) {
	for _, order := range benchOrders {
		b.Run(strconv.Itoa(order), func(b *testing.B) {
			f, err := NewIdentity(order)
			if err != nil {
				b.Fatal(err)
			}

			buf := make([]float64, 256)
			b.SetBytes(int64(8 * len(buf)))

			for b.Loop() {
				f.ProcessBlock(buf)
			}
		})
	}
}

func BenchmarkLMSStep(b *testing.B) {
	for _, order := range benchOrders {
		b.Run(strconv.Itoa(order), func(b *testing.B) {
			f, err := New(order)
			if err != nil {
				b.Fatal(err)
			}

			for b.Loop() {
				f.Write(0.25)
				f.Adapt(1e-4 * (0.1 - f.Output()))
				f.Advance()
			}
		})
	}
}
