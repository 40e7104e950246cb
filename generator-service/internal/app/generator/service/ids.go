package service

import (
	"encoding/hex"
	"math/rand"

	"github.com/google/uuid"
)

// newSessionID генерирует идентификатор сессии вида sess_<10 hex-символов>
// UUID берет случайность из переданного rng, поэтому идентификаторы
// воспроизводимы при одинаковом seed
func newSessionID(rng *rand.Rand) string {
	return "sess_" + uuidHex(rng)[:10]
}

// newTransactionID генерирует идентификатор транзакции вида txn_<12 hex-символов>
func newTransactionID(rng *rand.Rand) string {
	return "txn_" + uuidHex(rng)[:12]
}

func uuidHex(rng *rand.Rand) string {
	// math/rand.Rand.Read не возвращает ошибок
	u, _ := uuid.NewRandomFromReader(rng)
	return hex.EncodeToString(u[:])
}
