// Package template manages reusable attribute-investigation templates: a
// named attribute list plus judging criteria. Built-in templates ship in
// code; user templates live as YAML files under a templates directory.
package template

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// Template categories.
const (
	CategoryAttribute  = "属性系"
	CategoryGeographic = "地理系"
	CategoryTaxonomy   = "分類系"
	CategoryCustom     = "カスタム"
)

// Template is one investigation preset.
type Template struct {
	ID          string    `yaml:"id" json:"id" validate:"required"`
	Label       string    `yaml:"label" json:"label" validate:"required"`
	Description string    `yaml:"description,omitempty" json:"description,omitempty"`
	Category    string    `yaml:"category" json:"category" validate:"required,oneof=属性系 地理系 分類系 カスタム"`
	Attributes  []string  `yaml:"attributes" json:"attributes" validate:"required,min=1,dive,required"`
	Context     string    `yaml:"context,omitempty" json:"context,omitempty"`
	BatchSize   int       `yaml:"batch_size,omitempty" json:"batch_size,omitempty" validate:"min=0"`
	Builtin     bool      `yaml:"builtin,omitempty" json:"builtin,omitempty"`
	CreatedAt   time.Time `yaml:"created_at,omitempty" json:"created_at,omitempty"`
	UpdatedAt   time.Time `yaml:"updated_at,omitempty" json:"updated_at,omitempty"`
}

var validate = validator.New()

// Validate reports whether the template is well formed.
func (t Template) Validate() error {
	return validate.Struct(t)
}

// BuiltinTemplates returns the presets that ship with the tool.
func BuiltinTemplates() []Template {
	return []Template{
		{
			ID:          "動画配信_ジャンル",
			Label:       "動画配信サービス カテゴリ調査",
			Description: "定額制動画配信サービスの各ジャンルの取り扱い有無を調査",
			Category:    CategoryAttribute,
			BatchSize:   5,
			Builtin:     true,
			Attributes: []string{
				"邦画", "洋画", "国内ドラマ", "海外ドラマ", "韓国ドラマ",
				"アニメ", "バラエティ", "ドキュメンタリー", "音楽", "お笑い",
				"スポーツ試合・中継", "オリジナルコンテンツ", "ギャンブル動画",
				"アダルト動画", "演劇・ミュージカル",
			},
		},
		{
			ID:          "クレカ_ブランド",
			Label:       "クレジットカード ブランド調査",
			Description: "クレジットカードの取り扱い国際ブランドを調査",
			Category:    CategoryAttribute,
			BatchSize:   10,
			Builtin:     true,
			Attributes: []string{
				"VISA", "Mastercard", "JCB", "American Express",
				"Diners Club", "銀聯(UnionPay)", "Discover",
			},
		},
	}
}
