package contracts

// ITokenManagement tracks token usage across a run.
type ITokenManagement interface {
	UsedTokens(inputToken int, outputToken int)
	DisplayTokens(model string)
	GetCurrentTokenUsage() (total int, input int, output int)
	ClearToken()
}
