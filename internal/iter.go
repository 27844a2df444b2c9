package internal

import (
	"fmt"
	"iter"
)

// IterSeq2Concat concatenates multiple dual-return iterators into a single iterator sequence.
func IterSeq2Concat[T1 any, T2 any](seqs ...iter.Seq2[T1, T2]) iter.Seq2[T1, T2] {
	return func(yield func(T1, T2) bool) {
		for _, seq := range seqs {
			for val1, val2 := range seq {
				if !yield(val1, val2) {
					return // Stop if the consumer stops
				}
			}
		}
	}
}

// HexDefines yields each name with its value as an assembler hex literal.
func HexDefines[V ~uint8 | ~uint16 | ~int](defs map[string]V) iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		for name, value := range defs {
			if !yield(name, fmt.Sprintf("0x%x", value)) {
				return
			}
		}
	}
}
