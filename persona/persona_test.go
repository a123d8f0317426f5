// Persona 画像访问器与特质提取测试。
package persona

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProfile() Profile {
	return Profile{
		"demographics": map[string]any{
			"age":      28,
			"location": "Berlin",
		},
		"technical": map[string]any{
			"proficiency": 8,
			"devices": map[string]any{
				"desktop": 0.2,
				"mobile":  0.7,
				"tablet":  0.1,
			},
			"payment_methods": []any{"Credit Card", "PayPal"},
		},
		"e_commerce_specific": map[string]any{
			"patience_level":        3,
			"importance_of_reviews": 9,
		},
		"shopping_behavior": map[string]any{
			"frequency":          "Weekly",
			"product_categories": []any{"Electronics", "Books"},
		},
	}
}

func TestProfile_Value(t *testing.T) {
	p := testProfile()

	v, ok := p.Value("demographics.age")
	require.True(t, ok)
	assert.Equal(t, 28, v)

	_, ok = p.Value("demographics.missing")
	assert.False(t, ok)

	// 中间节点不是 map 时视为缺失
	_, ok = p.Value("demographics.age.nested")
	assert.False(t, ok)
}

func TestProfile_TypedAccessors(t *testing.T) {
	p := testProfile()

	assert.Equal(t, 28, p.Int("demographics.age", 35))
	assert.Equal(t, 35, p.Int("demographics.missing", 35))
	assert.Equal(t, "Weekly", p.String("shopping_behavior.frequency", "Monthly"))
	assert.Equal(t, "Monthly", p.String("shopping_behavior.missing", "Monthly"))
	assert.Equal(t, []string{"Electronics", "Books"}, p.Strings("shopping_behavior.product_categories"))
	assert.Empty(t, p.Strings("shopping_behavior.missing"))

	devices := p.FloatMap("technical.devices")
	assert.InDelta(t, 0.7, devices["mobile"], 1e-9)
	assert.Len(t, devices, 3)
}

func TestProfile_IntFromFloat(t *testing.T) {
	// JSON 反序列化会把数字解成 float64
	p := Profile{"technical": map[string]any{"proficiency": float64(6)}}
	assert.Equal(t, 6, p.Int("technical.proficiency", 5))
}

func TestProfile_Clone(t *testing.T) {
	p := testProfile()
	clone := p.Clone()

	clone["demographics"].(map[string]any)["age"] = 99
	assert.Equal(t, 28, p.Int("demographics.age", 0))
	assert.Equal(t, 99, clone.Int("demographics.age", 0))
}

func TestExtractTraits(t *testing.T) {
	traits := ExtractTraits(testProfile())

	assert.Equal(t, 8, traits.TechProficiency)
	assert.Equal(t, 3, traits.PatienceLevel)
	assert.Equal(t, 28, traits.Age)
	// 占比最高的设备
	assert.Equal(t, "mobile", traits.PrimaryDevice)
}

func TestExtractTraits_Defaults(t *testing.T) {
	traits := ExtractTraits(Profile{})

	assert.Equal(t, DefaultTechProficiency, traits.TechProficiency)
	assert.Equal(t, DefaultPatienceLevel, traits.PatienceLevel)
	assert.Equal(t, DefaultAge, traits.Age)
	assert.Equal(t, DefaultDevice, traits.PrimaryDevice)
}

func TestAttentionSpan(t *testing.T) {
	// attention = 10 - clamp((75-age)/10, 1, 10)
	tests := []struct {
		name string
		age  int
		want float64
	}{
		{"young adult", 25, 5.0},
		{"middle aged", 55, 8.0},
		{"senior", 80, 9.0},
		{"very young", 10, 3.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			traits := ExtractTraits(Profile{
				"demographics": map[string]any{"age": tt.age},
			})
			assert.InDelta(t, tt.want, traits.AttentionSpan, 1e-9)
		})
	}
}
