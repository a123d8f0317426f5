// Package persona models synthetic shopper profiles as dot-path addressable
// attribute maps with typed, defaulting accessors.
package persona

import "strings"

// Default values used when a profile does not carry an attribute.
const (
	DefaultTechProficiency = 5
	DefaultPatienceLevel   = 5
	DefaultAge             = 35
	DefaultDevice          = "desktop"
)

// Profile 是一个嵌套属性映射，按点路径寻址（如 "technical.proficiency"）。
// 上游 persona 生成器以 JSON 形式提供该结构；缺失路径一律走默认值。
type Profile map[string]any

// Value walks the dot path and reports whether it resolved.
func (p Profile) Value(path string) (any, bool) {
	var current any = map[string]any(p)
	for _, part := range strings.Split(path, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// Int 返回整型属性，缺失或类型不符时返回默认值。
func (p Profile) Int(path string, def int) int {
	v, ok := p.Value(path)
	if !ok {
		return def
	}
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return def
}

// Float 返回浮点属性，缺失或类型不符时返回默认值。
func (p Profile) Float(path string, def float64) float64 {
	v, ok := p.Value(path)
	if !ok {
		return def
	}
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	}
	return def
}

// String 返回字符串属性，缺失或类型不符时返回默认值。
func (p Profile) String(path string, def string) string {
	v, ok := p.Value(path)
	if !ok {
		return def
	}
	if s, ok := v.(string); ok {
		return s
	}
	return def
}

// Strings 返回字符串列表属性；单个字符串被视为单元素列表。
func (p Profile) Strings(path string) []string {
	v, ok := p.Value(path)
	if !ok {
		return nil
	}
	switch list := v.(type) {
	case []string:
		return list
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case string:
		return []string{list}
	}
	return nil
}

// FloatMap 返回 string→float64 映射属性（如 technical.devices 的设备占比）。
func (p Profile) FloatMap(path string) map[string]float64 {
	v, ok := p.Value(path)
	if !ok {
		return nil
	}
	switch m := v.(type) {
	case map[string]float64:
		return m
	case map[string]any:
		out := make(map[string]float64, len(m))
		for k, item := range m {
			switch n := item.(type) {
			case float64:
				out[k] = n
			case int:
				out[k] = float64(n)
			}
		}
		return out
	}
	return nil
}

// Clone returns a deep copy of the profile. Execution plans hold a snapshot
// so later mutation of the caller's map cannot leak into a running plan.
func (p Profile) Clone() Profile {
	if p == nil {
		return nil
	}
	return Profile(cloneMap(map[string]any(p)))
}

func cloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return cloneMap(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = cloneValue(item)
		}
		return out
	case []string:
		return append([]string(nil), val...)
	case map[string]float64:
		out := make(map[string]float64, len(val))
		for k, n := range val {
			out[k] = n
		}
		return out
	default:
		return val
	}
}
