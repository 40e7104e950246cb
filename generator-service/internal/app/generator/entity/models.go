package entity

import "time"

// Subcategory представляет подкатегорию внутри категории товаров
type Subcategory struct {
	SubcategoryID string  `json:"subcategory_id"`
	Name          string  `json:"name"`
	ProfitMargin  float64 `json:"profit_margin"` // Маржинальность в диапазоне [0.1, 0.4]
}

// Category представляет категорию товаров в каталоге
// Неизменяема после создания
type Category struct {
	CategoryID    string        `json:"category_id"`
	Name          string        `json:"name"`
	Subcategories []Subcategory `json:"subcategories"`
}

// PricePoint представляет одну запись в истории цен товара
type PricePoint struct {
	Price float64   `json:"price"`
	Date  time.Time `json:"date"`
}

// Product представляет товар в каталоге
// CurrentStock изменяется только через inventory.Ledger, остальные поля неизменяемы
type Product struct {
	ProductID    string       `json:"product_id"`
	Name         string       `json:"name"`
	CategoryID   string       `json:"category_id"` // Ссылка на категорию
	BasePrice    float64      `json:"base_price"`  // Текущая цена = последняя запись истории
	CurrentStock int          `json:"current_stock"`
	IsActive     bool         `json:"is_active"`
	PriceHistory []PricePoint `json:"price_history"` // Отсортирована по дате по возрастанию, не пуста
	CreationDate time.Time    `json:"creation_date"` // Дата первой записи истории цен
}

// GeoData представляет географические данные пользователя
type GeoData struct {
	City    string `json:"city"`
	State   string `json:"state"`
	Country string `json:"country"`
}

// User представляет пользователя магазина
// Неизменяем после создания; LastActive >= RegistrationDate
type User struct {
	UserID           string    `json:"user_id"`
	GeoData          GeoData   `json:"geo_data"`
	RegistrationDate time.Time `json:"registration_date"`
	LastActive       time.Time `json:"last_active"`
}

// PageType представляет тип страницы в браузерной сессии
type PageType string

const (
	PageHome            PageType = "home"             // Главная страница
	PageSearch          PageType = "search"           // Страница поиска
	PageCategoryListing PageType = "category_listing" // Список товаров категории
	PageProductDetail   PageType = "product_detail"   // Карточка товара
	PageCart            PageType = "cart"             // Корзина
	PageCheckout        PageType = "checkout"         // Оформление заказа
	PageConfirmation    PageType = "confirmation"     // Подтверждение заказа
)

// PageView представляет один просмотр страницы внутри сессии
type PageView struct {
	Timestamp    time.Time `json:"timestamp"`
	PageType     PageType  `json:"page_type"`
	ProductID    *string   `json:"product_id"`    // Заполнен только для product_detail
	CategoryID   *string   `json:"category_id"`   // Заполнен для product_detail и category_listing
	ViewDuration int       `json:"view_duration"` // Длительность просмотра в секундах, всегда > 0
}

// SessionGeo представляет гео-снимок сессии: данные пользователя плюс IP
type SessionGeo struct {
	GeoData
	IPAddress string `json:"ip_address"`
}

// DeviceProfile представляет устройство, с которого шла сессия
type DeviceProfile struct {
	Type    string `json:"type"`
	OS      string `json:"os"`
	Browser string `json:"browser"`
}

// CartLine представляет позицию в корзине сессии
type CartLine struct {
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"` // Цена за единицу на момент добавления
}

// ConversionStatus представляет итог сессии
type ConversionStatus string

const (
	StatusConverted ConversionStatus = "converted" // Сессия завершилась покупкой
	StatusAbandoned ConversionStatus = "abandoned" // Корзина не пуста, покупки не было
	StatusBrowsed   ConversionStatus = "browsed"   // Пользователь только смотрел
)

// Session представляет одну браузерную сессию пользователя
// Создается целиком синтезатором и неизменяема после этого
type Session struct {
	SessionID        string              `json:"session_id"`
	UserID           string              `json:"user_id"`
	StartTime        time.Time           `json:"start_time"`
	EndTime          time.Time           `json:"end_time"`
	DurationSeconds  int                 `json:"duration_seconds"`
	GeoData          SessionGeo          `json:"geo_data"`
	DeviceProfile    DeviceProfile       `json:"device_profile"`
	ViewedProducts   []string            `json:"viewed_products"`
	PageViews        []PageView          `json:"page_views"`
	CartContents     map[string]CartLine `json:"cart_contents"` // Только позиции с количеством > 0
	ConversionStatus ConversionStatus    `json:"conversion_status"`
	Referrer         string              `json:"referrer"`

	// CartOrder хранит порядок добавления товаров в корзину.
	// Go не гарантирует порядок обхода map, а результат конвертации корзины
	// в транзакцию зависит от того, какая позиция списывается первой.
	CartOrder []string `json:"-"`
}

// TransactionItem представляет позицию в транзакции
type TransactionItem struct {
	ProductID string  `json:"product_id"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	Subtotal  float64 `json:"subtotal"` // Quantity * UnitPrice, округлено до 2 знаков
}

// TransactionStatus представляет статус транзакции
type TransactionStatus string

const (
	TxStatusCompleted  TransactionStatus = "completed"  // Завершена
	TxStatusProcessing TransactionStatus = "processing" // В обработке
	TxStatusShipped    TransactionStatus = "shipped"    // Отправлена
	TxStatusDelivered  TransactionStatus = "delivered"  // Доставлена
)

// Transaction представляет совершенную покупку
// Создается один раз и ровно один раз пишется в выходной поток
type Transaction struct {
	TransactionID string            `json:"transaction_id"`
	SessionID     *string           `json:"session_id"` // null для независимых корзин
	UserID        string            `json:"user_id"`
	Timestamp     time.Time         `json:"timestamp"`
	Items         []TransactionItem `json:"items"`
	Subtotal      float64           `json:"subtotal"` // Сумма subtotal всех позиций
	Discount      float64           `json:"discount"` // 0 или subtotal * ставка скидки
	Total         float64           `json:"total"`    // Subtotal - Discount, округлено до 2 знаков
	PaymentMethod string            `json:"payment_method"`
	Status        TransactionStatus `json:"status"`
}
