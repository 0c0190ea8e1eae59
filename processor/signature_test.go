package processor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectLanguage(t *testing.T) {
	assert.Equal(t, "go", DetectLanguage("cmd/root.go"))
	assert.Equal(t, "python", DetectLanguage("src/app.py"))
	assert.Equal(t, "javascript", DetectLanguage("index.js"))
	assert.Equal(t, "typescript", DetectLanguage("app.ts"))
	assert.Equal(t, "java", DetectLanguage("Main.java"))
	assert.Equal(t, "csharp", DetectLanguage("Program.cs"))
	assert.Equal(t, "", DetectLanguage("notes.xyz"))
}

func TestExtractSignatures_Go(t *testing.T) {
	source := []byte(`package demo

type Widget struct{}

func (w *Widget) Spin() {}

func New() *Widget { return &Widget{} }
`)
	out, err := ExtractSignatures("widget.go", source)
	require.NoError(t, err)

	assert.Contains(t, out, "type: Widget")
	assert.Contains(t, out, "method: Spin")
	assert.Contains(t, out, "function: New")
}

func TestExtractSignatures_Python(t *testing.T) {
	source := []byte(`class Greeter:
    def hello(self):
        pass

def main():
    pass
`)
	out, err := ExtractSignatures("greeter.py", source)
	require.NoError(t, err)

	assert.Contains(t, out, "class: Greeter")
	assert.Contains(t, out, "function: hello")
	assert.Contains(t, out, "function: main")
}

func TestExtractSignatures_UnknownLanguageFallback(t *testing.T) {
	source := []byte("fn main() {\n    let x = 1;\n}\n")
	out, err := ExtractSignatures("main.xyz", source)
	require.NoError(t, err)

	assert.Contains(t, out, "fn main() {")
	assert.NotContains(t, out, "let x")
}

func TestExtractSignatures_NoDeclarations(t *testing.T) {
	out, err := ExtractSignatures("empty.go", []byte("package empty\n"))
	require.NoError(t, err)
	assert.Equal(t, "No declarations found.", out)
}
