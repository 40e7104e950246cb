package service

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopsim/generator-service/internal/app/generator/entity"
	"shopsim/generator-service/internal/app/generator/inventory"
)

// Хелперы для создания тестовых данных

func newTestCategories() []entity.Category {
	return []entity.Category{
		{CategoryID: "cat_000", Name: "Electronics"},
		{CategoryID: "cat_001", Name: "Books"},
	}
}

func newTestProducts() []entity.Product {
	products := make([]entity.Product, 0, 10)
	for i := 0; i < 10; i++ {
		products = append(products, entity.Product{
			ProductID:    fmt.Sprintf("prod_%05d", i),
			Name:         "Test Product",
			CategoryID:   "cat_000",
			BasePrice:    19.99,
			CurrentStock: 100,
			IsActive:     true,
		})
	}
	return products
}

func newTestUser() *entity.User {
	return &entity.User{
		UserID: "user_000000",
		GeoData: entity.GeoData{
			City:    "Springfield",
			State:   "IL",
			Country: "US",
		},
	}
}

func newTestSynthesizer(seed int64, products []entity.Product) (*SessionSynthesizer, *inventory.Ledger) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	rng := rand.New(rand.NewSource(seed))
	faker := gofakeit.New(uint64(seed))
	ledger := inventory.NewLedger(products)
	model := NewPageTransitionModel()
	return NewSessionSynthesizer(products, newTestCategories(), ledger, model, rng, faker, now, 90), ledger
}

func TestSessionSynthesizer_BasicShape(t *testing.T) {
	synth, _ := newTestSynthesizer(42, newTestProducts())
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 200; i++ {
		session := synth.Synthesize(newTestUser())

		assert.Contains(t, session.SessionID, "sess_")
		assert.Equal(t, "user_000000", session.UserID)

		// Длительность в [30, 3600], конец = старт + длительность
		assert.GreaterOrEqual(t, session.DurationSeconds, 30)
		assert.LessOrEqual(t, session.DurationSeconds, 3600)
		assert.Equal(t,
			session.StartTime.Add(time.Duration(session.DurationSeconds)*time.Second),
			session.EndTime,
		)

		// Старт внутри временного диапазона
		assert.False(t, session.StartTime.After(now))
		assert.False(t, session.StartTime.Before(now.AddDate(0, 0, -90)))

		// Один просмотр на интервал: 3-15 внутренних точек дают 4-16 просмотров
		assert.GreaterOrEqual(t, len(session.PageViews), 4)
		assert.LessOrEqual(t, len(session.PageViews), 16)

		// Гео-снимок и профиль устройства заполнены
		assert.Equal(t, "Springfield", session.GeoData.City)
		assert.NotEmpty(t, session.GeoData.IPAddress)
		assert.NotEmpty(t, session.DeviceProfile.Type)
		assert.NotEmpty(t, session.Referrer)
	}
}

func TestSessionSynthesizer_PageViewDurations(t *testing.T) {
	// Каждый просмотр длится > 0 секунд, сумма равна длительности сессии
	synth, _ := newTestSynthesizer(42, newTestProducts())

	for i := 0; i < 200; i++ {
		session := synth.Synthesize(newTestUser())

		total := 0
		for _, pv := range session.PageViews {
			assert.Greater(t, pv.ViewDuration, 0)
			total += pv.ViewDuration
		}
		assert.Equal(t, session.DurationSeconds, total)

		// Метки времени просмотров не убывают
		for j := 1; j < len(session.PageViews); j++ {
			assert.False(t, session.PageViews[j].Timestamp.Before(session.PageViews[j-1].Timestamp))
		}
	}
}

func TestSessionSynthesizer_PageContent(t *testing.T) {
	synth, _ := newTestSynthesizer(42, newTestProducts())

	for i := 0; i < 100; i++ {
		session := synth.Synthesize(newTestUser())

		viewedFromPages := make(map[string]struct{})
		for _, pv := range session.PageViews {
			switch pv.PageType {
			case entity.PageProductDetail:
				// Карточка товара несет и товар, и его категорию
				require.NotNil(t, pv.ProductID)
				require.NotNil(t, pv.CategoryID)
				viewedFromPages[*pv.ProductID] = struct{}{}
			case entity.PageCategoryListing:
				// Список категории несет только категорию
				assert.Nil(t, pv.ProductID)
				require.NotNil(t, pv.CategoryID)
			default:
				assert.Nil(t, pv.ProductID)
				assert.Nil(t, pv.CategoryID)
			}
		}

		// Набор просмотренных товаров совпадает с карточками из просмотров
		assert.Len(t, session.ViewedProducts, len(viewedFromPages))
		for _, id := range session.ViewedProducts {
			_, ok := viewedFromPages[id]
			assert.True(t, ok)
		}
	}
}

func TestSessionSynthesizer_CartInvariants(t *testing.T) {
	synth, _ := newTestSynthesizer(42, newTestProducts())

	sawCart := false
	for i := 0; i < 300; i++ {
		session := synth.Synthesize(newTestUser())

		assert.Len(t, session.CartOrder, len(session.CartContents))
		for _, id := range session.CartOrder {
			line, ok := session.CartContents[id]
			require.True(t, ok)

			// Только положительные количества, цена зафиксирована при добавлении
			assert.Greater(t, line.Quantity, 0)
			assert.Equal(t, 19.99, line.Price)
			sawCart = true
		}
	}
	assert.True(t, sawCart, "no session ever filled a cart")
}

func TestSessionSynthesizer_CartLimitedByObservedStock(t *testing.T) {
	// Товар с остатком 2: в корзину не может попасть больше двух единиц
	products := newTestProducts()[:1]
	products[0].CurrentStock = 2

	synth, _ := newTestSynthesizer(42, products)

	for i := 0; i < 300; i++ {
		session := synth.Synthesize(newTestUser())
		for _, line := range session.CartContents {
			assert.LessOrEqual(t, line.Quantity, 2)
		}
	}
}

func TestSessionSynthesizer_Classification(t *testing.T) {
	synth, _ := newTestSynthesizer(42, newTestProducts())

	statuses := make(map[entity.ConversionStatus]int)
	for i := 0; i < 500; i++ {
		session := synth.Synthesize(newTestUser())
		statuses[session.ConversionStatus]++

		hasCheckout := false
		for _, pv := range session.PageViews {
			if pv.PageType == entity.PageCheckout || pv.PageType == entity.PageConfirmation {
				hasCheckout = true
				break
			}
		}

		switch session.ConversionStatus {
		case entity.StatusBrowsed:
			// browsed только при пустой корзине
			assert.Empty(t, session.CartContents)
		case entity.StatusConverted:
			// Конверсия требует непустой корзины и достигнутого checkout
			assert.NotEmpty(t, session.CartContents)
			assert.True(t, hasCheckout)
		case entity.StatusAbandoned:
			assert.NotEmpty(t, session.CartContents)
		default:
			t.Fatalf("unexpected conversion status %s", session.ConversionStatus)
		}
	}

	// При рабочих вероятностях встречаются все три исхода
	assert.Greater(t, statuses[entity.StatusBrowsed], 0)
	assert.Greater(t, statuses[entity.StatusAbandoned], 0)
	assert.Greater(t, statuses[entity.StatusConverted], 0)
}

func TestSessionSynthesizer_Deterministic(t *testing.T) {
	// Одинаковый seed дает идентичную последовательность сессий
	first, _ := newTestSynthesizer(7, newTestProducts())
	second, _ := newTestSynthesizer(7, newTestProducts())

	for i := 0; i < 20; i++ {
		a, err := json.Marshal(first.Synthesize(newTestUser()))
		require.NoError(t, err)
		b, err := json.Marshal(second.Synthesize(newTestUser()))
		require.NoError(t, err)
		assert.Equal(t, a, b)
	}
}
