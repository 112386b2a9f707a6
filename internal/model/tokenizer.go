package model

import (
	"fmt"
	"sort"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// Encoding is the retained result of tokenizing one piece of source text:
// the token ids, plus a byte-offset bridge letting callers translate
// between byte positions and token indices. The chunker is required to
// hold onto one of these for the duration of chunking a single match.
type Encoding struct {
	ids []int
	// tokenStart[i] is the byte offset where token i begins; tokenStart
	// has length len(ids)+1, with tokenStart[len(ids)] == len(text).
	tokenStart []int
}

var tokenizers = struct {
	mu    sync.Mutex
	cache map[string]*tiktoken.Tiktoken
}{cache: make(map[string]*tiktoken.Tiktoken)}

func getTokenizer(name string) (*tiktoken.Tiktoken, error) {
	tokenizers.mu.Lock()
	defer tokenizers.mu.Unlock()
	if tk, ok := tokenizers.cache[name]; ok {
		return tk, nil
	}
	tk, err := tiktoken.GetEncoding(name)
	if err != nil {
		return nil, fmt.Errorf("model: loading tokenizer %q: %w", name, err)
	}
	tokenizers.cache[name] = tk
	return tk, nil
}

// Encode tokenizes text under the named tokenizer (e.g. "cl100k_base") and
// builds the byte-offset bridge by decoding each token id individually.
// BPE token boundaries are byte-exact and non-overlapping, so concatenating
// the per-token decodes reproduces text exactly.
func Encode(tokenizerName string, text string) (*Encoding, error) {
	tk, err := getTokenizer(tokenizerName)
	if err != nil {
		return nil, err
	}
	ids := tk.Encode(text, nil, nil)
	tokenStart := make([]int, len(ids)+1)
	offset := 0
	for i, id := range ids {
		tokenStart[i] = offset
		offset += len(tk.Decode([]int{id}))
	}
	tokenStart[len(ids)] = offset
	return &Encoding{ids: ids, tokenStart: tokenStart}, nil
}

// IDs returns the full token id sequence.
func (e *Encoding) IDs() []int { return e.ids }

// Len returns the number of tokens.
func (e *Encoding) Len() int { return len(e.ids) }

// CharToToken returns the index of the token covering byteOffset. Offsets
// at or past the end of the text resolve to the final token's index (or 0
// for an empty encoding).
func (e *Encoding) CharToToken(byteOffset int) int {
	if len(e.ids) == 0 {
		return 0
	}
	// tokenStart[1:] holds each token's end offset; find the first token
	// whose end offset is greater than byteOffset.
	i := sort.Search(len(e.ids), func(i int) bool {
		return e.tokenStart[i+1] > byteOffset
	})
	if i >= len(e.ids) {
		return len(e.ids) - 1
	}
	return i
}

// TokenToChars returns the [start, end) byte range covered by token i.
func (e *Encoding) TokenToChars(i int) (start, end int) {
	return e.tokenStart[i], e.tokenStart[i+1]
}
