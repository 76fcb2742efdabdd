package projection

import "github.com/hitoshi/meetdesk/internal/model"

// DefaultPageSize は一覧の1ページあたりの既定件数。
const DefaultPageSize = 5

// Page はページ分割の結果。
type Page struct {
	Items      []model.Meeting
	TotalPages int
}

// Paginate は並べ替え済みの会議列を固定長のページに分割する。
//
// pageNumberは1始まり。TotalPagesは ceil(件数/pageSize) で、0件でも1を返す。
// 範囲外のpageNumberはエラーにせず空のItemsを返す。
// pageSizeが0以下の場合はDefaultPageSizeを使う。
func Paginate(meetings []model.Meeting, pageSize, pageNumber int) Page {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	total := (len(meetings) + pageSize - 1) / pageSize
	if total < 1 {
		total = 1
	}

	page := Page{Items: []model.Meeting{}, TotalPages: total}
	if pageNumber < 1 || pageNumber > total {
		return page
	}

	start := (pageNumber - 1) * pageSize
	if start >= len(meetings) {
		return page
	}
	end := start + pageSize
	if end > len(meetings) {
		end = len(meetings)
	}
	page.Items = meetings[start:end]
	return page
}
