package server

import "html/template"

// pageTemplate renders both the input form and, after a submission, the
// processed output with its token counts and download links.
const pageTemplate = `<!DOCTYPE html>
<html>
<head>
    <title>1FileLLM Web Interface</title>
    <style>
    body { font-family: sans-serif; margin: 2em; }
    input[type="text"] { width: 80%; padding: 0.5em; }
    .output-container { margin-top: 2em; }
    .file-links { margin-top: 1em; }
    pre { background: #f8f8f8; padding: 1em; border: 1px solid #ccc; white-space: pre-wrap; }
    </style>
</head>
<body>
    <h1>1FileLLM Web Interface</h1>
    <form method="POST" action="/">
        <p>Enter a URL, DOI, or PMID:</p>
        <input type="text" name="input_path" required placeholder="e.g. https://github.com/example/repo or 10.1234/example"/>
        <button type="submit">Process</button>
    </form>

    {{if .Output}}
    <div class="output-container">
        <h2>Processed Output</h2>
        <pre>{{.Output}}</pre>

        {{if .HasResult}}
        <h3>Token Counts</h3>
        <p>Uncompressed Tokens: {{.UncompressedTokens}}<br>
        Compressed Tokens: {{.CompressedTokens}}</p>

        <div class="file-links">
            <a href="/download?filename={{.UncompressedFile}}">Download Uncompressed Output</a> |
            <a href="/download?filename={{.CompressedFile}}">Download Compressed Output</a>
        </div>
        {{end}}
    </div>
    {{end}}
</body>
</html>
`

func mustParseTemplate() *template.Template {
	return template.Must(template.New("page").Parse(pageTemplate))
}

// pageData feeds pageTemplate. Output carries either the processed text
// or a user-visible error message; HasResult distinguishes the two.
type pageData struct {
	Output             string
	HasResult          bool
	UncompressedTokens int
	CompressedTokens   int
	UncompressedFile   string
	CompressedFile     string
}
