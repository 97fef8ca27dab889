// Package token counts tokens with tiktoken encodings.
package token

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

var (
	encoderCache   = make(map[string]*tiktoken.Tiktoken)
	encoderCacheMu sync.RWMutex
)

// getEncoder returns a cached tiktoken encoder for the given encoding
// name, falling back to cl100k_base for unknown names.
func getEncoder(encoding string) (*tiktoken.Tiktoken, error) {
	encoderCacheMu.RLock()
	if enc, ok := encoderCache[encoding]; ok {
		encoderCacheMu.RUnlock()
		return enc, nil
	}
	encoderCacheMu.RUnlock()

	encoderCacheMu.Lock()
	defer encoderCacheMu.Unlock()

	if enc, ok := encoderCache[encoding]; ok {
		return enc, nil
	}
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		enc, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			return nil, err
		}
	}
	encoderCache[encoding] = enc
	return enc, nil
}

// Counter counts tokens using a fixed encoding.
type Counter struct {
	enc *tiktoken.Tiktoken
}

func NewCounter(encoding string) (*Counter, error) {
	enc, err := getEncoder(encoding)
	if err != nil {
		return nil, err
	}
	return &Counter{enc: enc}, nil
}

// Count returns the number of tokens in text.
func (c *Counter) Count(text string) int {
	return len(c.enc.Encode(text, nil, nil))
}
