package calculator

import (
	"fmt"
	"strconv"
)

// Watts per unit of each refrigeration capacity unit.
var refrigerationUnits = map[string]float64{
	"W":      1,
	"Kcal/h": 1.163,
	"BTU/h":  0.293,
	"KJ/H":   0.278,
}

// RefrigerationUnits lists the supported units in display order.
func RefrigerationUnits() []string {
	return []string{"W", "Kcal/h", "BTU/h", "KJ/H"}
}

// ConvertRefrigeration converts a refrigeration capacity between units,
// going through watts.
func ConvertRefrigeration(value float64, from, to string) (float64, error) {
	if value < 0 {
		return 0, errorf("数值不能为负数")
	}
	if from == to {
		return 0, errorf("从单位和到单位不能相同")
	}
	fromW, ok := refrigerationUnits[from]
	if !ok {
		return 0, errorf("不支持的从单位: %s", from)
	}
	toW, ok := refrigerationUnits[to]
	if !ok {
		return 0, errorf("不支持的目标单位: %s", to)
	}
	return value * fromW / toW, nil
}

// RefrigerationFormula renders the conversion as "<value> <from> = <result> <to>".
func RefrigerationFormula(value float64, from, to string, result float64) string {
	return fmt.Sprintf("%s %s = %.4f %s", strconv.FormatFloat(value, 'f', -1, 64), from, result, to)
}
