package catalog

import (
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/brianvoe/gofakeit/v7"

	"shopsim/generator-service/internal/app/generator/config"
	"shopsim/generator-service/internal/app/generator/entity"
	"shopsim/generator-service/internal/app/generator/util"
)

// Catalog содержит полный сгенерированный каталог магазина
type Catalog struct {
	Categories []entity.Category
	Products   []entity.Product
	Users      []entity.User
}

// Builder детерминированно строит каталог: категории, товары и пользователей
// Одинаковый seed дает побайтово идентичный каталог
type Builder struct {
	cfg   *config.Config
	rng   *rand.Rand
	faker *gofakeit.Faker
	now   time.Time // Опорное время генерации, фиксируется при создании
}

// NewBuilder создает новый построитель каталога
// Время передается явно, чтобы тесты могли зафиксировать его
func NewBuilder(cfg *config.Config, rng *rand.Rand, faker *gofakeit.Faker, now time.Time) *Builder {
	return &Builder{
		cfg:   cfg,
		rng:   rng,
		faker: faker,
		now:   now,
	}
}

// Build генерирует каталог целиком: сначала категории, затем товары и пользователей
// Порядок фиксирован, так как товары ссылаются на категории
func (b *Builder) Build() *Catalog {
	categories := b.buildCategories()
	return &Catalog{
		Categories: categories,
		Products:   b.buildProducts(categories),
		Users:      b.buildUsers(),
	}
}

// buildCategories генерирует категории с 3-5 подкатегориями каждая
func (b *Builder) buildCategories() []entity.Category {
	categories := make([]entity.Category, 0, b.cfg.NumCategories)

	for catID := 0; catID < b.cfg.NumCategories; catID++ {
		category := entity.Category{
			CategoryID:    fmt.Sprintf("cat_%03d", catID),
			Name:          b.faker.Company(),
			Subcategories: []entity.Subcategory{},
		}

		numSubs := 3 + b.rng.Intn(3)
		for subID := 0; subID < numSubs; subID++ {
			category.Subcategories = append(category.Subcategories, entity.Subcategory{
				SubcategoryID: fmt.Sprintf("sub_%03d_%02d", catID, subID),
				Name:          b.faker.BS(),
				ProfitMargin:  util.Round2(b.uniform(0.1, 0.4)),
			})
		}

		categories = append(categories, category)
	}

	return categories
}

// buildProducts генерирует товары с историей цен
// Первая запись истории попадает в первую треть окна, начинающегося
// за 2*TimespanDays до опорного времени; далее 0-2 изменения цены в пределах
// +-20% от базовой. История пересортировывается по дате, так что текущая
// цена всегда хронологически последняя запись
func (b *Builder) buildProducts(categories []entity.Category) []entity.Product {
	products := make([]entity.Product, 0, b.cfg.NumProducts)
	creationStart := b.now.AddDate(0, 0, -b.cfg.TimespanDays*2)

	firstThirdDays := b.cfg.TimespanDays / 3
	if firstThirdDays < 1 {
		firstThirdDays = 1
	}

	for prodID := 0; prodID < b.cfg.NumProducts; prodID++ {
		category := categories[b.rng.Intn(len(categories))]

		basePrice := util.Round2(b.uniform(5, 500))
		initialDate := b.faker.DateRange(creationStart, creationStart.AddDate(0, 0, firstThirdDays))

		history := []entity.PricePoint{{Price: basePrice, Date: initialDate}}

		numChanges := b.rng.Intn(3)
		changeDate := initialDate
		for i := 0; i < numChanges; i++ {
			changeDate = b.faker.DateRange(changeDate, b.now)
			history = append(history, entity.PricePoint{
				Price: util.Round2(basePrice * b.uniform(0.8, 1.2)),
				Date:  changeDate,
			})
		}

		sort.Slice(history, func(i, j int) bool {
			return history[i].Date.Before(history[j].Date)
		})

		products = append(products, entity.Product{
			ProductID:    fmt.Sprintf("prod_%05d", prodID),
			Name:         b.faker.ProductName(),
			CategoryID:   category.CategoryID,
			BasePrice:    history[len(history)-1].Price,
			CurrentStock: 10 + b.rng.Intn(991),
			IsActive:     b.rng.Float64() < 0.95,
			PriceHistory: history,
			CreationDate: history[0].Date,
		})
	}

	return products
}

// buildUsers генерирует пользователей с датой регистрации старше временного
// диапазона сессий и последней активностью между регистрацией и опорным временем
func (b *Builder) buildUsers() []entity.User {
	users := make([]entity.User, 0, b.cfg.NumUsers)

	regStart := b.now.AddDate(0, 0, -b.cfg.TimespanDays*3)
	regEnd := b.now.AddDate(0, 0, -b.cfg.TimespanDays)

	for userID := 0; userID < b.cfg.NumUsers; userID++ {
		regDate := b.faker.DateRange(regStart, regEnd)

		users = append(users, entity.User{
			UserID: fmt.Sprintf("user_%06d", userID),
			GeoData: entity.GeoData{
				City:    b.faker.City(),
				State:   b.faker.StateAbr(),
				Country: b.faker.CountryAbr(),
			},
			RegistrationDate: regDate,
			LastActive:       b.faker.DateRange(regDate, b.now),
		})
	}

	return users
}

// uniform возвращает случайное число в диапазоне [min, max)
func (b *Builder) uniform(min, max float64) float64 {
	return min + b.rng.Float64()*(max-min)
}
