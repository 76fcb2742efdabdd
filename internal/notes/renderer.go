// Package notes は会議ノート・議事録・スライド本文のMarkdownを安全なHTMLに変換する。
package notes

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"

	"github.com/hitoshi/meetdesk/internal/security"
)

// Renderer はMarkdownをサニタイズ済みHTMLに変換する。
// goldmarkは生HTMLを出力しない設定で使い、出力をさらにサニタイザに通す。
type Renderer struct {
	md        goldmark.Markdown
	sanitizer security.ContentSanitizer
}

// NewRenderer はRendererを生成する。
func NewRenderer(sanitizer security.ContentSanitizer) *Renderer {
	return &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.Table, extension.Strikethrough, extension.Linkify),
			goldmark.WithRendererOptions(
				goldmarkHTML.WithHardWraps(),
			),
		),
		sanitizer: sanitizer,
	}
}

// Render はMarkdownをHTMLに変換する。空白のみの入力には空文字列を返す。
// 変換に失敗した場合はテキストをエスケープして段落として返す。
func (r *Renderer) Render(markdown string) string {
	if strings.TrimSpace(markdown) == "" {
		return ""
	}

	var buf bytes.Buffer
	if err := r.md.Convert([]byte(markdown), &buf); err != nil {
		buf.Reset()
		buf.WriteString("<p>")
		buf.Write(util.EscapeHTML([]byte(markdown)))
		buf.WriteString("</p>")
	}
	return r.sanitizer.Sanitize(buf.String())
}
