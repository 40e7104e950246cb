package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
)

// Config содержит все настройки генератора датасета
// Загружается из переменных окружения, значения по умолчанию дают
// датасет умеренного размера (умещается в 8GB RAM при генерации)
type Config struct {
	NumUsers        int `validate:"gt=0"`  // Количество пользователей
	NumProducts     int `validate:"gt=0"`  // Количество товаров
	NumCategories   int `validate:"gt=0"`  // Количество категорий
	NumSessions     int `validate:"gte=0"` // Целевое количество сессий
	NumTransactions int `validate:"gte=0"` // Целевое количество транзакций

	TimespanDays int `validate:"gt=0"` // Временной диапазон сессий в днях
	ChunkSize    int `validate:"gt=0"` // Количество сессий на один файл sessions_N.json

	// Множитель для предохранителя по итерациям: цикл генерации гарантированно
	// останавливается после (NumSessions + NumTransactions) * FailsafeMultiplier итераций
	FailsafeMultiplier int `validate:"gte=1"`

	Seed      int64  // Seed генератора случайных чисел, одинаковый seed дает одинаковый датасет
	OutputDir string `validate:"required"` // Каталог для выходных файлов
	LogLevel  string // Уровень логирования (debug/info/warn/error)
}

// Load загружает конфигурацию из переменных окружения и валидирует ее
// Невалидная конфигурация - фатальная ошибка до начала генерации
func Load() (*Config, error) {
	numUsers, err := getEnvInt("NUM_USERS", 10000)
	if err != nil {
		return nil, err
	}
	numProducts, err := getEnvInt("NUM_PRODUCTS", 5000)
	if err != nil {
		return nil, err
	}
	numCategories, err := getEnvInt("NUM_CATEGORIES", 25)
	if err != nil {
		return nil, err
	}
	numSessions, err := getEnvInt("NUM_SESSIONS", 300000)
	if err != nil {
		return nil, err
	}
	numTransactions, err := getEnvInt("NUM_TRANSACTIONS", 100000)
	if err != nil {
		return nil, err
	}
	timespanDays, err := getEnvInt("TIMESPAN_DAYS", 90)
	if err != nil {
		return nil, err
	}
	chunkSize, err := getEnvInt("CHUNK_SIZE", 30000)
	if err != nil {
		return nil, err
	}
	failsafeMultiplier, err := getEnvInt("FAILSAFE_MULTIPLIER", 3)
	if err != nil {
		return nil, err
	}

	seed, err := strconv.ParseInt(getEnv("RANDOM_SEED", "42"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid RANDOM_SEED value: %w", err)
	}

	cfg := &Config{
		NumUsers:           numUsers,
		NumProducts:        numProducts,
		NumCategories:      numCategories,
		NumSessions:        numSessions,
		NumTransactions:    numTransactions,
		TimespanDays:       timespanDays,
		ChunkSize:          chunkSize,
		FailsafeMultiplier: failsafeMultiplier,
		Seed:               seed,
		OutputDir:          getEnv("OUTPUT_DIR", "."),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
	}

	// Валидируем конфигурацию до начала какой-либо работы
	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MaxIterations возвращает предохранитель по итерациям для цикла генерации
// Гарантирует завершение даже при неудачном seed, когда цели недостижимы
func (c *Config) MaxIterations() int {
	return (c.NumSessions + c.NumTransactions) * c.FailsafeMultiplier
}

// getEnv получает значение переменной окружения или возвращает значение по умолчанию
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt получает числовое значение переменной окружения
// Возвращает ошибку, если значение не парсится как число
func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value: %w", key, err)
	}
	return parsed, nil
}
