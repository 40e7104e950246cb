package main

import (
	"context"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/brianvoe/gofakeit/v7"

	"shopsim/generator-service/internal/app/generator/catalog"
	"shopsim/generator-service/internal/app/generator/config"
	"shopsim/generator-service/internal/app/generator/inventory"
	"shopsim/generator-service/internal/app/generator/service"
	"shopsim/generator-service/internal/app/generator/writer"
	"shopsim/pkg/logger"
)

func main() {
	// === ИНИЦИАЛИЗАЦИЯ КОНФИГУРАЦИИ ===
	// Невалидная конфигурация фатальна до начала любой генерации
	cfg, err := config.Load()
	if err != nil {
		logger.Init("generator-service", "info")
		logger.Fatal().Err(err).Msg("Failed to load config")
	}

	logger.Init("generator-service", cfg.LogLevel)
	logger.Info().
		Int64("seed", cfg.Seed).
		Str("output_dir", cfg.OutputDir).
		Msg("Initializing dataset generation")

	// === ИСТОЧНИКИ СЛУЧАЙНОСТИ ===
	// Один seed питает и rng, и faker - одинаковый seed дает
	// побайтово идентичный датасет
	rng := rand.New(rand.NewSource(cfg.Seed))
	faker := gofakeit.New(uint64(cfg.Seed))
	now := time.Now()

	// === ГЕНЕРАЦИЯ КАТАЛОГА ===
	// Категории, товары с историей цен и пользователи
	cat := catalog.NewBuilder(cfg, rng, faker, now).Build()
	logger.Info().
		Int("categories", len(cat.Categories)).
		Int("products", len(cat.Products)).
		Int("users", len(cat.Users)).
		Msg("Catalog generated")

	// === ЗАПИСЬ КАТАЛОЖНЫХ ФАЙЛОВ ===
	// products.json будет перезаписан в конце с итоговыми остатками
	if err := writeCatalog(cfg.OutputDir, cat); err != nil {
		logger.Fatal().Err(err).Msg("Failed to write catalog files")
	}

	// === ИНИЦИАЛИЗАЦИЯ УЧЕТА ОСТАТКОВ ===
	// Единственная точка изменения остатков для всех синтезаторов
	ledger := inventory.NewLedger(cat.Products)

	// === ИНИЦИАЛИЗАЦИЯ ВЫХОДНЫХ ПОТОКОВ ===
	// Потоковый массив транзакций + чанки сессий ограниченного размера
	out, err := writer.NewStreamWriter(cfg.OutputDir, cfg.ChunkSize)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to open output streams")
	}

	// === ИНИЦИАЛИЗАЦИЯ СИНТЕЗАТОРОВ ===
	model := service.NewPageTransitionModel()
	sessions := service.NewSessionSynthesizer(
		cat.Products, cat.Categories, ledger, model, rng, faker, now, cfg.TimespanDays,
	)
	transactions := service.NewTransactionBuilder(
		ledger, cat.Products, cat.Users, rng, faker, now, cfg.TimespanDays,
	)

	orchestrator := service.NewOrchestrator(cfg, cat, ledger, sessions, transactions, out, rng)

	// === ЗАПУСК ЦИКЛА ГЕНЕРАЦИИ ===
	// SIGINT/SIGTERM прерывают цикл с корректным сбросом буферов
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stats, err := orchestrator.Run(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("Generation failed")
	}

	// === ИТОГОВЫЙ ОТЧЕТ ===
	logger.Info().
		Int("sessions", stats.Sessions).
		Int("target_sessions", cfg.NumSessions).
		Int("transactions", stats.Transactions).
		Int("target_transactions", cfg.NumTransactions).
		Int("iterations", stats.Iterations).
		Int("remaining_stock", ledger.TotalStock()).
		Int("session_files", out.SessionChunks()).
		Msg("Dataset generation complete")

	os.Exit(0)
}

// writeCatalog пишет каталожные файлы: categories.json, products.json, users.json
func writeCatalog(dir string, cat *catalog.Catalog) error {
	if err := writer.WriteJSONFile(filepath.Join(dir, "categories.json"), cat.Categories); err != nil {
		return err
	}
	if err := writer.WriteJSONFile(filepath.Join(dir, "products.json"), cat.Products); err != nil {
		return err
	}
	return writer.WriteJSONFile(filepath.Join(dir, "users.json"), cat.Users)
}
