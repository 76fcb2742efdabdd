// Package security はアプリケーションのセキュリティ機能を提供する。
//
// ContentSanitizer は会議ノート・議事録・スライド本文をMarkdownから変換したHTMLを
// サニタイズする。外部ストアの値は任意の入力経路から書き込まれるため、
// 許可リストベースのbluemondayポリシーで安全なタグと属性のみを通過させる。
package security

import (
	"regexp"

	"github.com/microcosm-cc/bluemonday"
)

var (
	cellAlign    = regexp.MustCompile(`^(left|center|right)$`)
	codeLanguage = regexp.MustCompile(`^language-[A-Za-z0-9_+-]+$`)
)

// ContentSanitizer はHTMLサニタイズのインターフェース。
type ContentSanitizer interface {
	// Sanitize はHTMLをサニタイズして安全なHTMLを返す。
	// 空文字列の入力には空文字列を返し、同一入力に対して常に同一出力を返す。
	Sanitize(rawHTML string) string
}

// contentSanitizer はContentSanitizerの実装。
// bluemondayのポリシーはスレッドセーフに共有できる。
type contentSanitizer struct {
	policy *bluemonday.Policy
}

// NewContentSanitizer は会議ノート向けのポリシーでContentSanitizerを生成する。
// ポリシーの内容:
//   - 許可タグ: 見出し(h1-h6), p, br, hr, ul, ol, li, blockquote, pre, code,
//     strong, em, del, table系, a, img
//   - script, iframe, style, form等および全てのon*イベント属性は除去
//   - URL属性（aのhref, imgのsrc）: https, mailto のみ
//   - aタグ: target="_blank"とrel="noopener noreferrer"を付与
//   - codeのclass: language-xxx のみ（シンタックスハイライト用）
func NewContentSanitizer() *contentSanitizer {
	p := bluemonday.NewPolicy()

	p.AllowElements(
		"h1", "h2", "h3", "h4", "h5", "h6",
		"p", "br", "hr",
		"ul", "ol", "li",
		"blockquote", "pre", "code",
		"strong", "em", "del",
		"table", "thead", "tbody", "tr", "th", "td",
	)
	p.AllowAttrs("align").Matching(cellAlign).OnElements("th", "td")
	p.AllowAttrs("class").Matching(codeLanguage).OnElements("code")
	p.AllowAttrs("start").Matching(bluemonday.Integer).OnElements("ol")

	p.AllowAttrs("href").OnElements("a")
	p.AllowRelativeURLs(false)
	p.AllowURLSchemes("https", "mailto")
	p.AddTargetBlankToFullyQualifiedLinks(true)
	p.RequireNoReferrerOnLinks(true)

	p.AllowAttrs("src").OnElements("img")
	p.AllowAttrs("alt", "title").OnElements("img")

	return &contentSanitizer{
		policy: p,
	}
}

// Sanitize はHTMLをサニタイズして安全なHTMLを返す。
func (s *contentSanitizer) Sanitize(rawHTML string) string {
	return s.policy.Sanitize(rawHTML)
}
