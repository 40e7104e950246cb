package util

import "math"

// Round2 округляет денежное значение до 2 знаков после запятой
// Все денежные поля датасета (цены, скидки, итоги) проходят через эту функцию
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
