package preview

import (
	"bytes"
	"errors"
	"strings"

	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
)

// ErrEmptyArtifact is returned when there is nothing to render.
var ErrEmptyArtifact = errors.New("artifact is empty")

// md renders markdown answers; fenced snippets get inline-styled highlighting
// so the document stays self-contained.
var md = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		highlighting.NewHighlighting(
			highlighting.WithStyle("github"),
		),
	),
)

// Render turns an artifact into a hardened document for the viewer. Answers
// that are not markup (a model replying in markdown) are converted first.
func Render(artifact string) (string, error) {
	trimmed := strings.TrimSpace(artifact)
	if trimmed == "" {
		return "", ErrEmptyArtifact
	}
	if strings.HasPrefix(trimmed, "<") {
		return Harden(artifact), nil
	}
	doc, err := markdownDocument(trimmed)
	if err != nil {
		return "", err
	}
	return Harden(doc), nil
}

func markdownDocument(src string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	var sb strings.Builder
	sb.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n<meta charset=\"utf-8\">\n")
	sb.WriteString("<meta name=\"viewport\" content=\"width=device-width, initial-scale=1\">\n")
	sb.WriteString("<style>body{font-family:system-ui,sans-serif;max-width:48rem;margin:2rem auto;padding:0 1rem;line-height:1.6}pre{overflow:auto}</style>\n")
	sb.WriteString("</head>\n<body>\n")
	sb.Write(buf.Bytes())
	sb.WriteString("</body>\n</html>\n")
	return sb.String(), nil
}
