package processor

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/alecthomas/chroma/v2/lexers"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/csharp"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/codectx/codectx/embed_data"
)

type grammar struct {
	lang  *sitter.Language
	query []byte
}

var grammars = map[string]grammar{
	"go":         {golang.GetLanguage(), embed_data.GoQuery},
	"python":     {python.GetLanguage(), embed_data.PythonQuery},
	"java":       {java.GetLanguage(), embed_data.JavaQuery},
	"javascript": {javascript.GetLanguage(), embed_data.JavascriptQuery},
	"typescript": {typescript.GetLanguage(), embed_data.TypescriptQuery},
	"csharp":     {csharp.GetLanguage(), embed_data.CSharpQuery},
}

// chroma lexer names for the languages with a tree-sitter grammar.
var lexerNames = map[string]string{
	"Go":         "go",
	"Python":     "python",
	"Java":       "java",
	"JavaScript": "javascript",
	"TypeScript": "typescript",
	"C#":         "csharp",
}

// DetectLanguage maps a file name to a supported grammar key, or ""
// when the language has no grammar.
func DetectLanguage(path string) string {
	lexer := lexers.Match(filepath.Base(path))
	if lexer == nil {
		return ""
	}
	return lexerNames[lexer.Config().Name]
}

// ExtractSignatures produces a declaration outline for the file: one
// "tag: name" line per captured declaration, grouped by tag. Languages
// without a grammar fall back to a line-based scan.
func ExtractSignatures(path string, sourceCode []byte) (string, error) {
	language := DetectLanguage(path)
	g, ok := grammars[language]
	if !ok {
		return fallbackOutline(sourceCode), nil
	}

	parser := sitter.NewParser()
	parser.SetLanguage(g.lang)
	tree := parser.Parse(nil, sourceCode)
	defer tree.Close()

	queries := make(map[string]string)
	if err := json.Unmarshal(g.query, &queries); err != nil {
		return "", fmt.Errorf("failed to parse %s queries: %v", language, err)
	}

	tags := make([]string, 0, len(queries))
	for tag := range queries {
		tags = append(tags, tag)
	}
	sort.Strings(tags)

	var elements []string
	for _, tag := range tags {
		query, err := sitter.NewQuery([]byte(queries[tag]), g.lang)
		if err != nil {
			return "", fmt.Errorf("failed to compile %s query %q: %v", language, tag, err)
		}

		cursor := sitter.NewQueryCursor()
		cursor.Exec(query, tree.RootNode())

		for {
			match, ok := cursor.NextMatch()
			if !ok {
				break
			}
			for _, cap := range match.Captures {
				element := cap.Node.Content(sourceCode)
				elements = append(elements, fmt.Sprintf("%s: %s", tag, element))
			}
		}
		query.Close()
	}

	if len(elements) == 0 {
		return "No declarations found.", nil
	}
	return strings.Join(elements, "\n"), nil
}

var declLine = regexp.MustCompile(`^\s*(func|def|class|function|fn|sub|module|interface|struct|enum|trait|impl)\b`)

// fallbackOutline keeps declaration-looking lines from a file in a
// language without a grammar.
func fallbackOutline(sourceCode []byte) string {
	var elements []string
	for _, line := range strings.Split(string(sourceCode), "\n") {
		if declLine.MatchString(line) {
			elements = append(elements, strings.TrimSpace(line))
		}
	}
	if len(elements) == 0 {
		return "No declarations found."
	}
	return strings.Join(elements, "\n")
}
