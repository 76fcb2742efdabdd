package model

import "strings"

// Identity は自己申告された閲覧者のメールアドレスを表す。
// 認証は行わない。空の場合は未設定（匿名閲覧）として扱う。
type Identity struct {
	Email string
}

// NewIdentity は前後の空白を除去したIdentityを生成する。
func NewIdentity(email string) Identity {
	return Identity{Email: strings.TrimSpace(email)}
}

// IsEmpty はIdentityが未設定かどうかを返す。
func (i Identity) IsEmpty() bool {
	return strings.TrimSpace(i.Email) == ""
}

// Matches は候補メールアドレスがIdentityと一致するかを判定する。
// 前後の空白を除去し、大文字小文字を区別せずに比較する。
// Identityが空の場合は常にfalseを返す（空の主催者欄との誤一致を防ぐ）。
func (i Identity) Matches(candidate string) bool {
	if i.IsEmpty() {
		return false
	}
	c := strings.TrimSpace(candidate)
	if c == "" {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(i.Email), c)
}
