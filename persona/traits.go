package persona

// Traits 是从 Profile 提炼出的行为特征，供浏览器节奏与任务规划使用。
type Traits struct {
	TechProficiency int
	PatienceLevel   int
	Age             int
	// AttentionSpan 取值约 1-10，年龄越大注意力持续越久。
	AttentionSpan float64
	// PrimaryDevice 为占比最高的设备（desktop/mobile/tablet）。
	PrimaryDevice string
}

// ExtractTraits 从 Profile 读取行为特征，缺失路径使用默认值。
func ExtractTraits(p Profile) Traits {
	t := Traits{
		TechProficiency: p.Int("technical.proficiency", DefaultTechProficiency),
		PatienceLevel:   p.Int("e_commerce_specific.patience_level", DefaultPatienceLevel),
		Age:             p.Int("demographics.age", DefaultAge),
		PrimaryDevice:   DefaultDevice,
	}
	t.AttentionSpan = attentionSpan(t.Age)

	devices := p.FloatMap("technical.devices")
	best := -1.0
	for device, share := range devices {
		if share > best {
			best = share
			t.PrimaryDevice = device
		}
	}
	return t
}

// attentionSpan 随年龄上升：35 岁约 6，75 岁及以上 9。
func attentionSpan(age int) float64 {
	factor := (75.0 - float64(age)) / 10.0
	if factor < 1 {
		factor = 1
	}
	if factor > 10 {
		factor = 10
	}
	return 10 - factor
}
