package inventory

import (
	"sync"

	"shopsim/generator-service/internal/app/generator/entity"
)

// Ledger - авторитетный потокобезопасный учет остатков товаров
// Единственная разделяемая изменяемая структура генератора: все чтения
// и списания идут через его методы, прямого доступа к остаткам нет
type Ledger struct {
	mu    sync.RWMutex
	stock map[string]int
}

// NewLedger создает учет остатков из стартовых остатков каталога
func NewLedger(products []entity.Product) *Ledger {
	stock := make(map[string]int, len(products))
	for _, p := range products {
		stock[p.ProductID] = p.CurrentStock
	}
	return &Ledger{stock: stock}
}

// Stock возвращает снимок текущего остатка товара
// Значение может устареть к моменту использования - вызывающий обязан
// относиться к нему как к оценке для планирования, а не как к гарантии
func (l *Ledger) Stock(productID string) (int, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	stock, ok := l.stock[productID]
	return stock, ok
}

// TryDecrement атомарно списывает quantity единиц товара
// Успех только если quantity > 0 и остатка хватает; иначе остаток не меняется
// и возвращается false. false - не ошибка, а штатный сигнал нехватки товара
func (l *Ledger) TryDecrement(productID string, quantity int) bool {
	if quantity <= 0 {
		return false
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	stock, ok := l.stock[productID]
	if !ok || stock < quantity {
		return false
	}

	l.stock[productID] = stock - quantity
	return true
}

// Snapshot возвращает копию текущих остатков всех товаров
// Используется для финальной пересериализации каталога после генерации
func (l *Ledger) Snapshot() map[string]int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	snapshot := make(map[string]int, len(l.stock))
	for id, stock := range l.stock {
		snapshot[id] = stock
	}
	return snapshot
}

// TotalStock возвращает суммарный остаток по всем товарам
func (l *Ledger) TotalStock() int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	total := 0
	for _, stock := range l.stock {
		total += stock
	}
	return total
}
