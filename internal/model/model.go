// Package model holds the closed set of recognized embedding-model
// descriptors: window length, overlap, framing reserve, and the framing
// procedure each model uses to pad a body of token ids into a fixed-length
// window.
package model

import "fmt"

// noOpWindow is the sentinel "infinite" window used by the no-op model so
// the chunker's fast path (L+F <= W) always triggers.
const noOpWindow = 1 << 30

// Descriptor is an immutable model value: window length W, overlap O,
// framing reserve F, and the leading/trailing/padding token ids its framing
// procedure writes.
type Descriptor struct {
	name       string
	tokenizer  string
	w          int
	o          int
	f          int
	leadingID  int
	trailingID int
	paddingID  int
	identity   bool
}

// Name returns the model identifier this descriptor was constructed from.
func (d Descriptor) Name() string { return d.name }

// Tokenizer returns the tokenizer identity backing this model.
func (d Descriptor) Tokenizer() string { return d.tokenizer }

// W returns the window length in tokens.
func (d Descriptor) W() int { return d.w }

// O returns the overlap in tokens between adjacent windows.
func (d Descriptor) O() int { return d.o }

// F returns the framing reserve: the number of special tokens the model
// inserts per window.
func (d Descriptor) F() int { return d.f }

// Frame appends a fixed-length window of exactly W token ids to out, given
// a body of at most W-F token ids. For framing models this writes a
// leading id, the body, a trailing id, and pads the remainder with the
// padding id. The no-op model copies body verbatim (F=0, so there is
// nothing to frame).
func (d Descriptor) Frame(out []int, body []int) []int {
	if len(body) > d.w-d.f {
		panic(fmt.Sprintf("model: body length %d exceeds W-F (%d)", len(body), d.w-d.f))
	}
	if d.identity {
		out = append(out, body...)
		return out
	}
	out = append(out, d.leadingID)
	out = append(out, body...)
	out = append(out, d.trailingID)
	pad := d.w - d.f - len(body)
	for i := 0; i < pad; i++ {
		out = append(out, d.paddingID)
	}
	return out
}

// Lookup resolves a model identifier to its descriptor. Unknown
// identifiers return an error ("unsupported model").
func Lookup(name string) (Descriptor, error) {
	switch name {
	case "codebert":
		return Descriptor{
			name: name, tokenizer: "cl100k_base",
			w: 512, o: 64, f: 2,
			leadingID: 0, trailingID: 2, paddingID: 1,
		}, nil
	case "minilm":
		return Descriptor{
			name: name, tokenizer: "cl100k_base",
			w: 256, o: 32, f: 2,
			leadingID: 101, trailingID: 102, paddingID: 0,
		}, nil
	case "no-op":
		return Descriptor{
			name: name, tokenizer: "cl100k_base",
			w: noOpWindow, o: 0, f: 0,
			identity: true,
		}, nil
	default:
		return Descriptor{}, fmt.Errorf("model: unsupported model %q", name)
	}
}

// Names returns the recognized model identifiers, in the fixed order used
// by --languages-style listings.
func Names() []string {
	return []string{"codebert", "minilm", "no-op"}
}
