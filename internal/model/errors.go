package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: identity, validation, meeting, upload, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeValidationFailed  = "VALIDATION_FAILED"
	ErrCodeMeetingNotFound   = "MEETING_NOT_FOUND"
	ErrCodeFetchFailed       = "FETCH_FAILED"
	ErrCodeUploadFileMissing = "UPLOAD_FILE_MISSING"
	ErrCodeUploadFileType    = "UPLOAD_FILE_TYPE"
	ErrCodeUploadForbidden   = "UPLOAD_FORBIDDEN"
	ErrCodeInvalidIdentity   = "INVALID_IDENTITY"
	ErrCodeInvalidQuery      = "INVALID_QUERY"
	ErrCodeUpstreamFailed    = "UPSTREAM_FAILED"
)

// NewValidationError は書き込み前の入力検証エラーを生成する。
func NewValidationError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeValidationFailed,
		Message:  fmt.Sprintf("入力内容に誤りがあります: %s", reason),
		Category: "validation",
		Action:   "入力内容を確認して再度送信してください。",
	}
}

// NewMeetingNotFoundError は会議未検出エラーを生成する。
func NewMeetingNotFoundError(meetingID string) *APIError {
	return &APIError{
		Code:     ErrCodeMeetingNotFound,
		Message:  fmt.Sprintf("指定された会議が見つかりません: %s", meetingID),
		Category: "meeting",
		Action:   "会議一覧を再読み込みしてください。",
	}
}

// NewFetchFailedError は会議一覧の取得失敗エラーを生成する。
func NewFetchFailedError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeFetchFailed,
		Message:  fmt.Sprintf("会議一覧の取得に失敗しました: %s", reason),
		Category: "meeting",
		Action:   "しばらく待ってから再読み込みしてください。",
	}
}

// NewUploadFileMissingError はアップロードファイル未指定エラーを生成する。
func NewUploadFileMissingError() *APIError {
	return &APIError{
		Code:     ErrCodeUploadFileMissing,
		Message:  "アップロードするファイルが指定されていません。",
		Category: "upload",
		Action:   "ファイルを選択してから再度お試しください。",
	}
}

// NewUploadFileTypeError は非対応ファイル形式エラーを生成する。
func NewUploadFileTypeError(allowed string) *APIError {
	return &APIError{
		Code:     ErrCodeUploadFileType,
		Message:  "対応していないファイル形式です。",
		Category: "upload",
		Action:   fmt.Sprintf("%s のファイルを選択してください。", allowed),
	}
}

// NewUploadForbiddenError は主催者以外によるアップロード試行エラーを生成する。
func NewUploadForbiddenError() *APIError {
	return &APIError{
		Code:     ErrCodeUploadForbidden,
		Message:  "この会議にファイルをアップロードする権限がありません。",
		Category: "upload",
		Action:   "会議の主催者のみがアップロードできます。",
	}
}

// NewInvalidIdentityError は無効なメールアドレスエラーを生成する。
func NewInvalidIdentityError(email string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidIdentity,
		Message:  fmt.Sprintf("無効なメールアドレスです: %q", email),
		Category: "identity",
		Action:   "your@email.com の形式で入力してください。",
	}
}

// NewInvalidQueryError はクエリパラメータ不正エラーを生成する。
func NewInvalidQueryError(param string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidQuery,
		Message:  fmt.Sprintf("無効なパラメータです: %s", param),
		Category: "validation",
		Action:   "パラメータの形式を確認してください。",
	}
}

// NewUpstreamFailedError は外部Webhookへの送信失敗エラーを生成する。
func NewUpstreamFailedError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeUpstreamFailed,
		Message:  fmt.Sprintf("外部サービスへの送信に失敗しました: %s", reason),
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	}
}
