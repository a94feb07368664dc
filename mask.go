package kbnf

import (
	"math"

	"github.com/kbnf-go/kbnf/vocab"
)

// MaskLogits zeroes out the probability of every token not in allowed by
// setting its logit to -Inf, choosing between a sparse and a dense write
// strategy depending on how much of the vocabulary allowed covers: when
// allowed is a small fraction of the vocabulary it is cheaper to blank the
// whole buffer once and then restore the allowed entries; when it covers
// most of the vocabulary it is cheaper to walk it directly and blank the
// complement. Returns *InvalidLogitsLengthError if logits is shorter than
// the vocabulary.
func (e *Engine) MaskLogits(logits []float32, allowed []vocab.TokenID) error {
	want := len(e.vocab.Tokens)
	if len(logits) < want {
		return &InvalidLogitsLengthError{Got: len(logits), Want: want}
	}
	if len(logits) == 0 {
		return nil
	}
	density := float64(len(allowed)) / float64(len(logits))
	if density < 0.5 {
		e.maskSparse(logits, allowed)
	} else {
		e.maskDense(logits, allowed)
	}
	return nil
}

func (e *Engine) maskSparse(logits []float32, allowed []vocab.TokenID) {
	saved := make([]float32, len(allowed))
	for i, tok := range allowed {
		saved[i] = logits[tok]
	}
	for i := range logits {
		logits[i] = float32(math.Inf(-1))
	}
	for i, tok := range allowed {
		logits[tok] = saved[i]
	}
}

func (e *Engine) maskDense(logits []float32, allowed []vocab.TokenID) {
	keep := make([]bool, len(logits))
	for _, tok := range allowed {
		keep[tok] = true
	}
	for i := range logits {
		if !keep[i] {
			logits[i] = float32(math.Inf(-1))
		}
	}
}
