package layout

import (
	"math"
	"strconv"
	"strings"
)

// pt 与毫米之间的换算常量。
const (
	PtToMm = 0.352777
	MmToPt = 1.0 / PtToMm
)

// parseLengthMM 解析带可选单位后缀（mm/cm/in/pt）的长度值并换算为毫米。
// 无单位按毫米处理；格式错误或非有限值取 0。
func parseLengthMM(value string) float64 {
	v, unit := splitUnit(value)
	switch unit {
	case "cm":
		return v * 10
	case "in":
		return v * 25.4
	case "pt":
		return v * PtToMm
	default: // "mm" 或无单位
		return v
	}
}

// parseFontSizePT 解析带可选单位后缀的字号并换算为 pt，无单位按 pt 处理。
func parseFontSizePT(value string) float64 {
	v, unit := splitUnit(value)
	switch unit {
	case "mm":
		return v * MmToPt
	case "cm":
		return v * 10 * MmToPt
	case "in":
		return v * 25.4 * MmToPt
	default: // "pt" 或无单位
		return v
	}
}

func splitUnit(value string) (float64, string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, ""
	}
	unit := ""
	num := value
	for _, suffix := range []string{"mm", "cm", "in", "pt"} {
		if strings.HasSuffix(value, suffix) {
			unit = suffix
			num = strings.TrimSpace(strings.TrimSuffix(value, suffix))
			break
		}
	}
	f, err := strconv.ParseFloat(num, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, ""
	}
	return f, unit
}
