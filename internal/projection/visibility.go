package projection

import "github.com/hitoshi/meetdesk/internal/model"

// FilterForViewer は閲覧者が主催者または参加者である会議のみを返す。
// Identityが空の場合は入力をそのまま返す（アクセス制御ではなく表示の絞り込みのため）。
// 相対順序は維持する。
func FilterForViewer(meetings []model.Meeting, identity model.Identity) []model.Meeting {
	if identity.IsEmpty() {
		return meetings
	}
	visible := make([]model.Meeting, 0, len(meetings))
	for _, m := range meetings {
		if RoleOf(m, identity) != model.RoleNone {
			visible = append(visible, m)
		}
	}
	return visible
}
