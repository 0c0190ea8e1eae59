package token_management

import (
	"fmt"
	"sync"

	"github.com/codectx/codectx/constants/lipgloss"
	"github.com/codectx/codectx/token_management/contracts"
)

// TokenManager implementation
type tokenManager struct {
	mu              sync.Mutex
	usedToken       int
	usedInputToken  int
	usedOutputToken int
}

// NewTokenManager creates a new token manager
func NewTokenManager() contracts.ITokenManagement {
	return &tokenManager{}
}

// Estimate approximates the token count of a file from its byte size.
// One token per four bytes tracks typical source code closely enough to
// steer small files away from the AI provider.
func Estimate(size int64) int {
	return int(size / 4)
}

// UsedTokens accumulates the token count for the session. Providers
// call this from worker goroutines.
func (tm *tokenManager) UsedTokens(inputToken int, outputToken int) {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	tm.usedInputToken += inputToken
	tm.usedOutputToken += outputToken
	tm.usedToken += inputToken + outputToken
}

func (tm *tokenManager) DisplayTokens(model string) {
	tm.mu.Lock()
	total, input, output := tm.usedToken, tm.usedInputToken, tm.usedOutputToken
	tm.mu.Unlock()

	tokenInfo := fmt.Sprintf("Tokens Used: %d (input: %d, output: %d) - Model: %s", total, input, output, model)
	tokenBox := lipgloss.BoxStyle.Render(tokenInfo)
	fmt.Println(tokenBox)
}

func (tm *tokenManager) GetCurrentTokenUsage() (total int, input int, output int) {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	return tm.usedToken, tm.usedInputToken, tm.usedOutputToken
}

// ClearToken resets token counts for a fresh run.
func (tm *tokenManager) ClearToken() {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	tm.usedToken = 0
	tm.usedInputToken = 0
	tm.usedOutputToken = 0
}
