package kbnf

import (
	"fmt"

	"github.com/kbnf-go/kbnf/vocab"
)

// AcceptTokenError is returned by TryAcceptNewToken/TryAcceptNewBytes when
// the supplied bytes are not a valid continuation of the grammar from the
// engine's current state.
type AcceptTokenError struct {
	Token []byte
	Cause error
}

func (e *AcceptTokenError) Error() string {
	return fmt.Sprintf("kbnf: token %q rejected: %v", e.Token, e.Cause)
}

func (e *AcceptTokenError) Unwrap() error { return e.Cause }

// CreateEngineError wraps a failure constructing an Engine: an unparsable
// grammar, an undefined start nonterminal, or a grammar too large for the
// identifier width budget.
type CreateEngineError struct {
	Cause error
}

func (e *CreateEngineError) Error() string {
	return fmt.Sprintf("kbnf: failed to construct engine: %v", e.Cause)
}

func (e *CreateEngineError) Unwrap() error { return e.Cause }

// FinishedError is returned by operations that require more input when the
// engine has already reached an accepting state with no further live
// derivations.
type FinishedError struct{}

func (e *FinishedError) Error() string { return "kbnf: engine has already finished" }

// UnknownTokenError is returned by TryAcceptNewToken when the given id is
// outside the vocabulary's range.
type UnknownTokenError struct {
	Token vocab.TokenID
}

func (e *UnknownTokenError) Error() string {
	return fmt.Sprintf("kbnf: unknown token id %d", e.Token)
}

// InvalidLogitsLengthError is returned by MaskLogits-adjacent operations
// when the supplied logits slice is shorter than the vocabulary.
type InvalidLogitsLengthError struct {
	Got, Want int
}

func (e *InvalidLogitsLengthError) Error() string {
	return fmt.Sprintf("kbnf: logits length %d is shorter than the vocabulary size %d", e.Got, e.Want)
}

// BufferTooSmallError is returned by the id-buffer writers when the
// destination slice cannot hold every id that must be written.
type BufferTooSmallError struct {
	Needed, Got int
}

func (e *BufferTooSmallError) Error() string {
	return fmt.Sprintf("kbnf: buffer holds %d ids, need %d", e.Got, e.Needed)
}
