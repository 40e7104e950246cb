package service

import (
	"math/rand"
	"time"

	"github.com/brianvoe/gofakeit/v7"

	"shopsim/generator-service/internal/app/generator/entity"
	"shopsim/generator-service/internal/app/generator/inventory"
	"shopsim/generator-service/internal/app/generator/util"
)

// Пулы значений для транзакций
var (
	sessionPayments = []string{"credit_card", "paypal", "apple_pay", "crypto"}
	basketPayments  = []string{"credit_card", "paypal", "bank_transfer", "gift_card"}

	basketStatuses = []entity.TransactionStatus{
		entity.TxStatusCompleted,
		entity.TxStatusProcessing,
		entity.TxStatusShipped,
		entity.TxStatusDelivered,
	}

	discountRates = []float64{0.05, 0.10, 0.15, 0.20}
)

const (
	discountProbability = 0.2 // Вероятность скидки на транзакцию
	maxBasketProducts   = 3   // Максимум различных товаров в независимой корзине
)

// TransactionBuilder превращает корзины в подтвержденные транзакции,
// списывая остатки через inventory.Ledger - единственный путь записи
type TransactionBuilder struct {
	ledger   *inventory.Ledger
	products []entity.Product
	users    []entity.User
	rng      *rand.Rand
	faker    *gofakeit.Faker
	now      time.Time
	timespan time.Duration
}

// NewTransactionBuilder создает новый построитель транзакций
func NewTransactionBuilder(
	ledger *inventory.Ledger,
	products []entity.Product,
	users []entity.User,
	rng *rand.Rand,
	faker *gofakeit.Faker,
	now time.Time,
	timespanDays int,
) *TransactionBuilder {
	return &TransactionBuilder{
		ledger:   ledger,
		products: products,
		users:    users,
		rng:      rng,
		faker:    faker,
		now:      now,
		timespan: time.Duration(timespanDays) * 24 * time.Hour,
	}
}

// FromSession строит транзакцию из корзины конвертировавшейся сессии
// Списание по принципу "все или ничего": отказ на любой позиции отбрасывает
// всю транзакцию (возвращается nil). Уже списанные к этому моменту позиции
// НЕ возвращаются на склад - ровно это поведение фиксирует исходный датасет,
// и на него есть отдельный тест; менять только осознанно
func (b *TransactionBuilder) FromSession(session *entity.Session) *entity.Transaction {
	items := make([]entity.TransactionItem, 0, len(session.CartOrder))

	for _, productID := range session.CartOrder {
		line := session.CartContents[productID]
		if line.Quantity <= 0 {
			continue
		}

		if !b.ledger.TryDecrement(productID, line.Quantity) {
			return nil
		}

		items = append(items, entity.TransactionItem{
			ProductID: productID,
			Quantity:  line.Quantity,
			UnitPrice: line.Price,
			Subtotal:  util.Round2(float64(line.Quantity) * line.Price),
		})
	}

	if len(items) == 0 {
		return nil
	}

	tx := b.finalize(items)
	tx.SessionID = &session.SessionID
	tx.UserID = session.UserID
	tx.Timestamp = session.EndTime
	tx.PaymentMethod = sessionPayments[b.rng.Intn(len(sessionPayments))]
	tx.Status = entity.TxStatusCompleted

	return tx
}

// RandomBasket строит независимую транзакцию без сессии
// Берет до 3 различных товаров, пропускает неактивные, списывает каждый
// независимо: позиции с нехваткой остатка просто опускаются (в отличие от
// FromSession это не повод отбросить транзакцию). nil, если не выжила ни одна
func (b *TransactionBuilder) RandomBasket() *entity.Transaction {
	user := b.users[b.rng.Intn(len(b.users))]

	count := maxBasketProducts
	if count > len(b.products) {
		count = len(b.products)
	}

	// Выбираем count различных товаров без перестановки всего каталога
	picked := make(map[int]struct{}, count)
	indices := make([]int, 0, count)
	for len(indices) < count {
		idx := b.rng.Intn(len(b.products))
		if _, dup := picked[idx]; dup {
			continue
		}
		picked[idx] = struct{}{}
		indices = append(indices, idx)
	}

	items := make([]entity.TransactionItem, 0, count)
	for _, idx := range indices {
		product := &b.products[idx]
		if !product.IsActive {
			continue
		}

		quantity := 1 + b.rng.Intn(maxBasketProducts)
		if !b.ledger.TryDecrement(product.ProductID, quantity) {
			continue
		}

		items = append(items, entity.TransactionItem{
			ProductID: product.ProductID,
			Quantity:  quantity,
			UnitPrice: product.BasePrice,
			Subtotal:  util.Round2(float64(quantity) * product.BasePrice),
		})
	}

	if len(items) == 0 {
		return nil
	}

	tx := b.finalize(items)
	tx.UserID = user.UserID
	tx.Timestamp = b.faker.DateRange(b.now.Add(-b.timespan), b.now)
	tx.PaymentMethod = basketPayments[b.rng.Intn(len(basketPayments))]
	tx.Status = basketStatuses[b.rng.Intn(len(basketStatuses))]

	return tx
}

// finalize считает арифметику транзакции: сумму позиций, вероятностную
// скидку (p=0.2, ставка из фиксированного набора) и итог с округлением
func (b *TransactionBuilder) finalize(items []entity.TransactionItem) *entity.Transaction {
	subtotal := 0.0
	for _, item := range items {
		subtotal += item.Subtotal
	}

	discount := 0.0
	if b.rng.Float64() < discountProbability {
		rate := discountRates[b.rng.Intn(len(discountRates))]
		discount = util.Round2(subtotal * rate)
	}

	return &entity.Transaction{
		TransactionID: newTransactionID(b.rng),
		Items:         items,
		Subtotal:      subtotal,
		Discount:      discount,
		Total:         util.Round2(subtotal - discount),
	}
}
