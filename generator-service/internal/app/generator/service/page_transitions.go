package service

import (
	"math/rand"

	"shopsim/generator-service/internal/app/generator/entity"
)

// transition - один переход стохастической модели навигации: куда и с каким весом
type transition struct {
	next   entity.PageType
	weight float64
}

// PageTransitionModel - стохастическая модель навигации по страницам
// Таблица переходов описана декларативно (состояние -> взвешенные переходы),
// что делает распределение проверяемым в тестах без чтения логики выборки
type PageTransitionModel struct {
	entry []entity.PageType
	table map[entity.PageType][]transition
}

// NewPageTransitionModel создает модель с фиксированной таблицей переходов
func NewPageTransitionModel() *PageTransitionModel {
	return &PageTransitionModel{
		// Первая страница сессии выбирается равновероятно из точек входа
		entry: []entity.PageType{entity.PageHome, entity.PageSearch, entity.PageCategoryListing},
		table: map[entity.PageType][]transition{
			entity.PageHome: {
				{entity.PageCategoryListing, 0.5},
				{entity.PageSearch, 0.3},
				{entity.PageProductDetail, 0.2},
			},
			entity.PageCategoryListing: {
				{entity.PageProductDetail, 0.7},
				{entity.PageCategoryListing, 0.1},
				{entity.PageSearch, 0.1},
				{entity.PageHome, 0.1},
			},
			entity.PageSearch: {
				{entity.PageProductDetail, 0.6},
				{entity.PageSearch, 0.2},
				{entity.PageCategoryListing, 0.1},
				{entity.PageHome, 0.1},
			},
			entity.PageProductDetail: {
				{entity.PageProductDetail, 0.3},
				{entity.PageCart, 0.3},
				{entity.PageCategoryListing, 0.2},
				{entity.PageSearch, 0.1},
				{entity.PageHome, 0.1},
			},
			entity.PageCart: {
				{entity.PageCheckout, 0.6},
				{entity.PageProductDetail, 0.2},
				{entity.PageCategoryListing, 0.1},
				{entity.PageHome, 0.1},
			},
			entity.PageCheckout: {
				{entity.PageConfirmation, 0.8},
				{entity.PageCart, 0.1},
				{entity.PageHome, 0.1},
			},
			entity.PageConfirmation: {
				{entity.PageHome, 0.6},
				{entity.PageProductDetail, 0.2},
				{entity.PageCategoryListing, 0.2},
			},
		},
	}
}

// Next выбирает тип следующей страницы
// Позиция 0 - равновероятный выбор точки входа; дальше следующая страница
// выбирается по взвешенному распределению для текущей страницы.
// Состояние вне таблицы откатывается на home
func (m *PageTransitionModel) Next(rng *rand.Rand, position int, prev entity.PageType) entity.PageType {
	if position == 0 {
		return m.entry[rng.Intn(len(m.entry))]
	}

	transitions, ok := m.table[prev]
	if !ok {
		return entity.PageHome
	}

	total := 0.0
	for _, t := range transitions {
		total += t.weight
	}

	r := rng.Float64() * total
	for _, t := range transitions {
		r -= t.weight
		if r < 0 {
			return t.next
		}
	}

	// Возможно только из-за погрешности float-арифметики на последнем шаге
	return transitions[len(transitions)-1].next
}
