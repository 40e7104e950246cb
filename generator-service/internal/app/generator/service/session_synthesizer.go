package service

import (
	"math/rand"
	"sort"
	"time"

	"github.com/brianvoe/gofakeit/v7"

	"shopsim/generator-service/internal/app/generator/entity"
	"shopsim/generator-service/internal/app/generator/inventory"
)

// Пулы значений для профиля сессии
var (
	deviceTypes = []string{"mobile", "desktop", "tablet"}
	deviceOS    = []string{"iOS", "Android", "Windows", "macOS"}
	browsers    = []string{"Chrome", "Safari", "Firefox", "Edge"}
	referrers   = []string{"direct", "email", "social", "search_engine", "affiliate"}
)

const (
	minSessionDuration = 30   // Минимальная длительность сессии в секундах
	maxSessionDuration = 3600 // Максимальная длительность сессии в секундах

	contentRetries = 10 // Попыток найти активный товар с остатком для product_detail

	addToCartProbability = 0.3 // Вероятность положить просматриваемый товар в корзину
	conversionRate       = 0.7 // Вероятность конверсии для подходящей сессии
	maxCartQuantity      = 3   // Максимум единиц товара за одно добавление
)

// SessionSynthesizer генерирует браузерные сессии пользователей
// Ведет просмотры через PageTransitionModel и собирает предварительную корзину
// против наблюдаемых (еще не списанных) остатков из inventory.Ledger
type SessionSynthesizer struct {
	products   []entity.Product
	categories []entity.Category
	ledger     *inventory.Ledger
	model      *PageTransitionModel
	rng        *rand.Rand
	faker      *gofakeit.Faker
	now        time.Time
	timespan   time.Duration
}

// NewSessionSynthesizer создает новый синтезатор сессий
func NewSessionSynthesizer(
	products []entity.Product,
	categories []entity.Category,
	ledger *inventory.Ledger,
	model *PageTransitionModel,
	rng *rand.Rand,
	faker *gofakeit.Faker,
	now time.Time,
	timespanDays int,
) *SessionSynthesizer {
	return &SessionSynthesizer{
		products:   products,
		categories: categories,
		ledger:     ledger,
		model:      model,
		rng:        rng,
		faker:      faker,
		now:        now,
		timespan:   time.Duration(timespanDays) * 24 * time.Hour,
	}
}

// Synthesize генерирует одну сессию для пользователя
// Статус конверсии классифицируется только после построения всей
// последовательности просмотров, не по ходу
func (s *SessionSynthesizer) Synthesize(user *entity.User) *entity.Session {
	start := s.faker.DateRange(s.now.Add(-s.timespan), s.now)
	duration := minSessionDuration + s.rng.Intn(maxSessionDuration-minSessionDuration+1)

	slots := s.timeSlots(duration)

	pageViews := make([]entity.PageView, 0, len(slots)-1)
	viewed := make([]string, 0)
	viewedSet := make(map[string]struct{})
	cart := make(map[string]entity.CartLine)
	cartOrder := make([]string, 0)

	var prev entity.PageType
	for i := 0; i < len(slots)-1; i++ {
		pageType := s.model.Next(s.rng, i, prev)
		prev = pageType

		view := entity.PageView{
			Timestamp:    start.Add(time.Duration(slots[i]) * time.Second),
			PageType:     pageType,
			ViewDuration: slots[i+1] - slots[i],
		}

		switch pageType {
		case entity.PageProductDetail:
			product := s.resolveProduct()
			view.ProductID = &product.ProductID
			view.CategoryID = &product.CategoryID

			if _, ok := viewedSet[product.ProductID]; !ok {
				viewedSet[product.ProductID] = struct{}{}
				viewed = append(viewed, product.ProductID)
			}

			if s.rng.Float64() < addToCartProbability {
				s.addToCart(cart, &cartOrder, product)
			}

		case entity.PageCategoryListing:
			category := s.categories[s.rng.Intn(len(s.categories))]
			view.CategoryID = &category.CategoryID
		}

		pageViews = append(pageViews, view)
	}

	return &entity.Session{
		SessionID:       newSessionID(s.rng),
		UserID:          user.UserID,
		StartTime:       start,
		EndTime:         start.Add(time.Duration(duration) * time.Second),
		DurationSeconds: duration,
		GeoData: entity.SessionGeo{
			GeoData:   user.GeoData,
			IPAddress: s.faker.IPv4Address(),
		},
		DeviceProfile: entity.DeviceProfile{
			Type:    deviceTypes[s.rng.Intn(len(deviceTypes))],
			OS:      deviceOS[s.rng.Intn(len(deviceOS))],
			Browser: browsers[s.rng.Intn(len(browsers))],
		},
		ViewedProducts:   viewed,
		PageViews:        pageViews,
		CartContents:     cart,
		CartOrder:        cartOrder,
		ConversionStatus: s.classify(cart, pageViews),
		Referrer:         referrers[s.rng.Intn(len(referrers))],
	}
}

// timeSlots генерирует строго возрастающие временные отметки сессии:
// 0 и полная длительность всегда включены, между ними 3-15 различных точек.
// Строгое возрастание гарантирует, что каждый просмотр длится > 0 секунд
func (s *SessionSynthesizer) timeSlots(duration int) []int {
	interior := 3 + s.rng.Intn(13)
	if interior > duration-1 {
		interior = duration - 1
	}

	points := make(map[int]struct{}, interior)
	for len(points) < interior {
		points[1+s.rng.Intn(duration-1)] = struct{}{}
	}

	slots := make([]int, 0, interior+2)
	slots = append(slots, 0)
	for p := range points {
		slots = append(slots, p)
	}
	slots = append(slots, duration)
	sort.Ints(slots)

	return slots
}

// resolveProduct подбирает товар для страницы product_detail
// До 10 попыток найти активный товар с наблюдаемым остатком > 0;
// если не нашли - откат на произвольный товар, подбор никогда не блокирует
func (s *SessionSynthesizer) resolveProduct() *entity.Product {
	for attempt := 0; attempt < contentRetries; attempt++ {
		product := &s.products[s.rng.Intn(len(s.products))]
		if !product.IsActive {
			continue
		}
		if stock, ok := s.ledger.Stock(product.ProductID); ok && stock > 0 {
			return product
		}
	}

	return &s.products[s.rng.Intn(len(s.products))]
}

// addToCart добавляет товар в предварительную корзину
// Количество ограничено min(3, наблюдаемый остаток - уже в корзине);
// при отсутствии запаса позиция не добавляется
func (s *SessionSynthesizer) addToCart(cart map[string]entity.CartLine, cartOrder *[]string, product *entity.Product) {
	line, exists := cart[product.ProductID]
	if !exists {
		line = entity.CartLine{Price: product.BasePrice}
	}

	observed, ok := s.ledger.Stock(product.ProductID)
	if !ok {
		return
	}

	headroom := observed - line.Quantity
	if headroom > maxCartQuantity {
		headroom = maxCartQuantity
	}
	if headroom <= 0 {
		return
	}

	line.Quantity += 1 + s.rng.Intn(headroom)
	cart[product.ProductID] = line
	if !exists {
		*cartOrder = append(*cartOrder, product.ProductID)
	}
}

// classify определяет статус конверсии по готовой сессии
// Сессия подходит для конверсии, только если корзина не пуста и был просмотр
// checkout или confirmation; подходящая сессия конвертируется с p=0.7
func (s *SessionSynthesizer) classify(cart map[string]entity.CartLine, pageViews []entity.PageView) entity.ConversionStatus {
	if len(cart) == 0 {
		return entity.StatusBrowsed
	}

	reachedCheckout := false
	for _, pv := range pageViews {
		if pv.PageType == entity.PageCheckout || pv.PageType == entity.PageConfirmation {
			reachedCheckout = true
			break
		}
	}

	if reachedCheckout && s.rng.Float64() < conversionRate {
		return entity.StatusConverted
	}
	return entity.StatusAbandoned
}
