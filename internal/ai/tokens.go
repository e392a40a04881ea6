package ai

import (
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"
	tiktoken_loader "github.com/pkoukk/tiktoken-go-loader"
)

var (
	tokenEncoder *tiktoken.Tiktoken
	encoderOnce  sync.Once
	encoderErr   error
)

// initTokenEncoder loads cl100k_base from the ranks embedded in the binary.
// Counting never downloads the BPE file, so a generation makes a single request.
func initTokenEncoder() error {
	encoderOnce.Do(func() {
		tiktoken.SetBpeLoader(tiktoken_loader.NewOfflineLoader())
		tokenEncoder, encoderErr = tiktoken.GetEncoding("cl100k_base")
	})
	return encoderErr
}

// CountTokens counts cl100k_base tokens, falling back to an estimate of four bytes
// per token if the encoding cannot be built.
func CountTokens(text string) int {
	if err := initTokenEncoder(); err != nil {
		return estimateTokens(text)
	}
	return len(tokenEncoder.Encode(text, nil, nil))
}

func estimateTokens(text string) int {
	if text == "" {
		return 0
	}
	return (len(text) + 3) / 4
}

// CompletionTokenBudget is the max_tokens sent with a request: the instruction
// plus room for one message of maxLength characters.
func CompletionTokenBudget(instruction string, maxLength int) int {
	return CountTokens(strings.Repeat("x", maxLength+5) + instruction)
}
