package service

import (
	"context"
	"fmt"
	"math/rand"
	"path/filepath"

	"shopsim/generator-service/internal/app/generator/catalog"
	"shopsim/generator-service/internal/app/generator/config"
	"shopsim/generator-service/internal/app/generator/entity"
	"shopsim/generator-service/internal/app/generator/inventory"
	"shopsim/generator-service/internal/app/generator/writer"
	"shopsim/pkg/logger"
)

const (
	basketProbability = 0.2   // Вероятность независимой транзакции на итерацию
	progressInterval  = 10000 // Периодичность отчета о прогрессе (итераций)
)

// Stats содержит итоги прогона генерации
type Stats struct {
	Sessions     int // Сгенерировано сессий
	Transactions int // Сгенерировано транзакций
	Iterations   int // Потрачено итераций цикла
}

// Orchestrator ведет цикл генерации: чередует синтез сессий и транзакций,
// следит за целевыми счетчиками и предохранителем по итерациям
// Все состояние прогона (счетчики, цели, писатели) живет здесь явно,
// никаких глобальных переменных процесса
type Orchestrator struct {
	cfg      *config.Config
	cat      *catalog.Catalog
	ledger   *inventory.Ledger
	sessions *SessionSynthesizer
	builder  *TransactionBuilder
	out      *writer.StreamWriter
	rng      *rand.Rand
}

// NewOrchestrator создает оркестратор прогона генерации
func NewOrchestrator(
	cfg *config.Config,
	cat *catalog.Catalog,
	ledger *inventory.Ledger,
	sessions *SessionSynthesizer,
	builder *TransactionBuilder,
	out *writer.StreamWriter,
	rng *rand.Rand,
) *Orchestrator {
	return &Orchestrator{
		cfg:      cfg,
		cat:      cat,
		ledger:   ledger,
		sessions: sessions,
		builder:  builder,
		out:      out,
		rng:      rng,
	}
}

// Run выполняет цикл генерации до достижения целей или предохранителя
// Инвариант цикла: продолжаем пока (сессий < цели ИЛИ транзакций < цели)
// И итераций < предохранителя. На любом выходе из цикла сбрасываются буферы,
// закрывается поток транзакций и пересериализуется каталог с итоговыми
// остатками. Ошибки записи/сериализации фатальны
func (o *Orchestrator) Run(ctx context.Context) (*Stats, error) {
	stats := &Stats{}
	maxIterations := o.cfg.MaxIterations()

	logger.Info().
		Int("target_sessions", o.cfg.NumSessions).
		Int("target_transactions", o.cfg.NumTransactions).
		Int("max_iterations", maxIterations).
		Msg("Starting session and transaction generation")

	for (stats.Sessions < o.cfg.NumSessions || stats.Transactions < o.cfg.NumTransactions) &&
		stats.Iterations < maxIterations {

		if ctx.Err() != nil {
			logger.Warn().Msg("Generation interrupted, flushing buffers")
			break
		}

		stats.Iterations++

		// Синтез сессии, пока не достигнута цель по сессиям
		if stats.Sessions < o.cfg.NumSessions {
			user := &o.cat.Users[o.rng.Intn(len(o.cat.Users))]
			session := o.sessions.Synthesize(user)

			if err := o.out.WriteSession(session); err != nil {
				o.out.Close()
				return stats, fmt.Errorf("failed to persist session: %w", err)
			}
			stats.Sessions++

			// Конвертировавшаяся сессия порождает попытку транзакции;
			// nil означает нехватку остатков и не является ошибкой
			if session.ConversionStatus == entity.StatusConverted && stats.Transactions < o.cfg.NumTransactions {
				if tx := o.builder.FromSession(session); tx != nil {
					if err := o.out.WriteTransaction(tx); err != nil {
						o.out.Close()
						return stats, fmt.Errorf("failed to persist transaction: %w", err)
					}
					stats.Transactions++
				}
			}
		}

		// Независимо от шага сессии - добор транзакций случайными корзинами
		if stats.Transactions < o.cfg.NumTransactions && o.rng.Float64() < basketProbability {
			if tx := o.builder.RandomBasket(); tx != nil {
				if err := o.out.WriteTransaction(tx); err != nil {
					o.out.Close()
					return stats, fmt.Errorf("failed to persist transaction: %w", err)
				}
				stats.Transactions++
			}
		}

		if stats.Iterations%progressInterval == 0 {
			logger.Info().
				Int("sessions", stats.Sessions).
				Int("transactions", stats.Transactions).
				Int("iteration", stats.Iterations).
				Msg("Generation progress")
		}
	}

	// Сброс хвоста сессий и закрытие массива транзакций
	if err := o.out.Close(); err != nil {
		return stats, fmt.Errorf("failed to close output streams: %w", err)
	}

	// Пересериализация каталога с итоговыми остатками после всех списаний
	if err := o.resnapshotProducts(); err != nil {
		return stats, err
	}

	if stats.Sessions < o.cfg.NumSessions || stats.Transactions < o.cfg.NumTransactions {
		// Сработал предохранитель - не ошибка, но недобор нужно зафиксировать
		logger.Warn().
			Int("sessions", stats.Sessions).
			Int("target_sessions", o.cfg.NumSessions).
			Int("transactions", stats.Transactions).
			Int("target_transactions", o.cfg.NumTransactions).
			Msg("Iteration fail-safe reached before targets were met")
	}

	return stats, nil
}

// resnapshotProducts переписывает products.json с остатками из учета
// Единственное изменение уже записанных данных, предусмотренное дизайном
func (o *Orchestrator) resnapshotProducts() error {
	snapshot := o.ledger.Snapshot()

	products := make([]entity.Product, len(o.cat.Products))
	copy(products, o.cat.Products)
	for i := range products {
		if stock, ok := snapshot[products[i].ProductID]; ok {
			products[i].CurrentStock = stock
		}
	}

	path := filepath.Join(o.cfg.OutputDir, "products.json")
	if err := writer.WriteJSONFile(path, products); err != nil {
		return fmt.Errorf("failed to re-snapshot products: %w", err)
	}
	return nil
}
