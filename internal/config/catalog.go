package config

import (
	"fmt"
	"slices"

	"github.com/BurntSushi/toml"
)

// Catalog は作成フォームの選択肢などの静的な一覧。
// 値に振る舞いは結び付けず、そのままクライアントに返す。
type Catalog struct {
	Platforms    []string `toml:"platforms" json:"platforms"`
	Organizers   []string `toml:"organizers" json:"organizers"`
	Participants []string `toml:"participants" json:"participants"`
	AIFeatures   []string `toml:"ai_features" json:"ai_features"`
}

// DefaultCatalog は組み込みのカタログを返す。
func DefaultCatalog() Catalog {
	return Catalog{
		Platforms:    []string{"Google Meet", "Zoom", "MS Teams"},
		Organizers:   []string{},
		Participants: []string{},
		AIFeatures:   []string{"summary", "transcript", "action_items"},
	}
}

// LoadCatalog はTOMLファイルからカタログを読み込む。
// pathが空の場合は組み込みのカタログを返す。ファイルで指定されなかった一覧は既定値のまま。
func LoadCatalog(path string) (Catalog, error) {
	cat := DefaultCatalog()
	if path == "" {
		return cat, nil
	}

	var fc Catalog
	md, err := toml.DecodeFile(path, &fc)
	if err != nil {
		return Catalog{}, fmt.Errorf("failed to load catalog file %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Catalog{}, fmt.Errorf("unknown keys in catalog file %s: %v", path, undecoded)
	}

	if md.IsDefined("platforms") {
		cat.Platforms = compact(fc.Platforms)
	}
	if md.IsDefined("organizers") {
		cat.Organizers = compact(fc.Organizers)
	}
	if md.IsDefined("participants") {
		cat.Participants = compact(fc.Participants)
	}
	if md.IsDefined("ai_features") {
		cat.AIFeatures = compact(fc.AIFeatures)
	}
	return cat, nil
}

// compact は空要素と重複を除く。
func compact(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v == "" || slices.Contains(out, v) {
			continue
		}
		out = append(out, v)
	}
	return out
}
