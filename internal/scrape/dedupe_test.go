package scrape

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/TTMK7777/player-list-scraper/internal/model"
)

func TestIsNoise(t *testing.T) {
	tests := []struct {
		name  string
		rec   model.StoreRecord
		noise bool
	}{
		{"real store", model.StoreRecord{StoreName: "渋谷店", Address: "〒150-0001 東京都渋谷区神宮前1-2-3"}, false},
		{"search label", model.StoreRecord{StoreName: "店舗を探す"}, true},
		{"region header", model.StoreRecord{StoreName: "関東"}, true},
		{"hit count", model.StoreRecord{StoreName: "24件"}, true},
		{"campaign", model.StoreRecord{StoreName: "夏のキャンペーン実施中"}, true},
		{"contact", model.StoreRecord{StoreName: "お問い合わせ"}, true},
		{"single char", model.StoreRecord{StoreName: "店"}, true},
		{"address equals name", model.StoreRecord{StoreName: "新宿店", Address: "新宿店"}, true},
		{"short bogus address", model.StoreRecord{StoreName: "新宿店", Address: "2階"}, true},
		{"region prefix but longer", model.StoreRecord{StoreName: "関東マート川口店", Phone: "048-123-4567"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.noise, IsNoise(tt.rec))
		})
	}
}

func TestFilterNoise_DedupesByName(t *testing.T) {
	in := []model.StoreRecord{
		{StoreName: "渋谷店", Address: "〒150-0001 東京都渋谷区神宮前1-2-3"},
		{StoreName: "渋谷店", Address: "東京都渋谷区の別表記の住所です"},
		{StoreName: "店舗一覧"},
		{StoreName: "梅田店", Phone: "06-1111-2222"},
	}
	out := FilterNoise(in)
	assert.Len(t, out, 2)
	assert.Equal(t, "渋谷店", out[0].StoreName)
	assert.Contains(t, out[0].Address, "〒150-0001")
	assert.Equal(t, "梅田店", out[1].StoreName)
}

func TestDedupe_CompositeKey(t *testing.T) {
	in := []model.StoreRecord{
		{StoreName: "渋谷店", Address: "東京都渋谷区神宮前1-2-3"},
		{StoreName: "渋谷店", Address: "東京都渋谷区神宮前1-2-3"},
		{StoreName: "渋谷店", Address: "東京都渋谷区道玄坂9-8-7"},
	}
	out := Dedupe(in)
	assert.Len(t, out, 2)

	assert.Equal(t, out, Dedupe(out))
}
