package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager(t.TempDir())
	require.NoError(t, err)
	return m
}

func TestBuiltinTemplatesAreValid(t *testing.T) {
	builtins := BuiltinTemplates()
	require.Len(t, builtins, 2)
	for _, tpl := range builtins {
		assert.NoError(t, tpl.Validate(), tpl.ID)
		assert.True(t, tpl.Builtin)
	}
	assert.Len(t, builtins[0].Attributes, 15)
	assert.Len(t, builtins[1].Attributes, 7)
}

func TestTemplateValidate(t *testing.T) {
	tests := []struct {
		name    string
		tpl     Template
		wantErr bool
	}{
		{
			name: "valid",
			tpl:  Template{ID: "test", Label: "テスト", Category: CategoryCustom, Attributes: []string{"A"}},
		},
		{
			name:    "missing id",
			tpl:     Template{Label: "テスト", Category: CategoryCustom, Attributes: []string{"A"}},
			wantErr: true,
		},
		{
			name:    "bad category",
			tpl:     Template{ID: "test", Label: "テスト", Category: "その他", Attributes: []string{"A"}},
			wantErr: true,
		},
		{
			name:    "no attributes",
			tpl:     Template{ID: "test", Label: "テスト", Category: CategoryCustom},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.tpl.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestManagerSaveGetDelete(t *testing.T) {
	m := newTestManager(t)

	tpl := Template{
		ID: "qr決済_対応", Label: "QR決済対応調査", Category: CategoryCustom,
		Attributes: []string{"PayPay", "楽天ペイ", "d払い"},
	}
	path, err := m.Save(tpl)
	require.NoError(t, err)
	assert.FileExists(t, path)

	got, err := m.Get("qr決済_対応")
	require.NoError(t, err)
	assert.Equal(t, tpl.Attributes, got.Attributes)
	assert.False(t, got.UpdatedAt.IsZero())

	require.NoError(t, m.Delete("qr決済_対応"))
	_, err = m.Get("qr決済_対応")
	assert.Error(t, err)
}

func TestManagerProtectsBuiltins(t *testing.T) {
	m := newTestManager(t)

	_, err := m.Save(Template{
		ID: "クレカ_ブランド", Label: "上書き", Category: CategoryAttribute, Attributes: []string{"VISA"},
	})
	assert.Error(t, err)

	assert.Error(t, m.Delete("動画配信_ジャンル"))
}

func TestManagerList(t *testing.T) {
	m := newTestManager(t)
	_, err := m.Save(Template{
		ID: "custom1", Label: "カスタム1", Category: CategoryCustom, Attributes: []string{"A"},
	})
	require.NoError(t, err)

	all := m.List("")
	assert.Len(t, all, 3)

	custom := m.List(CategoryCustom)
	require.Len(t, custom, 1)
	assert.Equal(t, "custom1", custom[0].ID)
}

func TestImportAttributes(t *testing.T) {
	got := ImportAttributes("VISA, Mastercard\nJCB\n\n  American Express  ", ",")
	assert.Equal(t, []string{"VISA", "Mastercard", "JCB", "American Express"}, got)
}
