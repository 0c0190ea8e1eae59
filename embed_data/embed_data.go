package embed_data

import _ "embed"

//go:embed prompts/summarize_prompt.txt
var SummarizeSystemPrompt []byte

//go:embed prompts/mock_summary.txt
var MockSummary []byte

//go:embed tree_sitter/csharp.json
var CSharpQuery []byte

//go:embed tree_sitter/go.json
var GoQuery []byte

//go:embed tree_sitter/java.json
var JavaQuery []byte

//go:embed tree_sitter/javascript.json
var JavascriptQuery []byte

//go:embed tree_sitter/python.json
var PythonQuery []byte

//go:embed tree_sitter/typescript.json
var TypescriptQuery []byte
