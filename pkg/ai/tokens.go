package ai

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"

	"github.com/archivelab/vault/internal/util"
)

const tokenEncoding = "o200k_base"

var (
	encodingOnce sync.Once
	encoding     *tiktoken.Tiktoken
)

// TruncateTokens cuts text to at most budget tokens before it is submitted
// to a provider. When the encoding cannot be loaded it falls back to a rune
// cut at four characters per token, which overshoots rarely and cheaply.
func TruncateTokens(text string, budget int) string {
	if budget <= 0 || text == "" {
		return text
	}

	encodingOnce.Do(func() {
		enc, err := tiktoken.GetEncoding(tokenEncoding)
		if err == nil {
			encoding = enc
		}
	})

	if encoding == nil {
		return util.TruncateRunes(text, budget*4)
	}

	tokens := encoding.Encode(text, nil, nil)
	if len(tokens) <= budget {
		return text
	}
	return encoding.Decode(tokens[:budget])
}
