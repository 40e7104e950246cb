package writer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"shopsim/generator-service/internal/app/generator/entity"
)

// SessionChunkWriter копит сессии в ограниченном буфере и сбрасывает их
// целыми JSON-массивами в файлы sessions_<N>.json
// Каждый файл, кроме возможно последнего, содержит ровно chunkSize записей
type SessionChunkWriter struct {
	dir        string
	chunkSize  int
	buf        []*entity.Session
	chunkIndex int
}

// NewSessionChunkWriter создает писатель чанков сессий
func NewSessionChunkWriter(dir string, chunkSize int) *SessionChunkWriter {
	return &SessionChunkWriter{
		dir:       dir,
		chunkSize: chunkSize,
		buf:       make([]*entity.Session, 0, chunkSize),
	}
}

// Append добавляет сессию в буфер и сбрасывает чанк при достижении размера
func (w *SessionChunkWriter) Append(session *entity.Session) error {
	w.buf = append(w.buf, session)
	if len(w.buf) >= w.chunkSize {
		return w.Flush()
	}
	return nil
}

// Flush пишет накопленный остаток как очередной чанк и очищает буфер
// Пустой буфер - не операция; вызывается в конце прогона для хвоста
func (w *SessionChunkWriter) Flush() error {
	if len(w.buf) == 0 {
		return nil
	}

	path := filepath.Join(w.dir, fmt.Sprintf("sessions_%d.json", w.chunkIndex))
	if err := WriteJSONFile(path, w.buf); err != nil {
		return err
	}

	w.buf = w.buf[:0]
	w.chunkIndex++
	return nil
}

// ChunksWritten возвращает количество записанных файлов чанков
func (w *SessionChunkWriter) ChunksWritten() int {
	return w.chunkIndex
}

// StreamWriter - выходной канал генератора: потоковый JSON-массив транзакций
// плюс чанки сессий. Однопоточный ресурс: при параллельных продюсерах записи
// должны сериализоваться снаружи (например, одной пишущей горутиной)
type StreamWriter struct {
	transactions *ArrayEncoder
	sessions     *SessionChunkWriter
}

// NewStreamWriter открывает поток транзакций и подготавливает писатель сессий
func NewStreamWriter(dir string, chunkSize int) (*StreamWriter, error) {
	transactions, err := NewArrayEncoder(filepath.Join(dir, "transactions.json"))
	if err != nil {
		return nil, err
	}

	return &StreamWriter{
		transactions: transactions,
		sessions:     NewSessionChunkWriter(dir, chunkSize),
	}, nil
}

// WriteSession добавляет сессию в буфер чанков
func (w *StreamWriter) WriteSession(session *entity.Session) error {
	return w.sessions.Append(session)
}

// WriteTransaction дописывает транзакцию в потоковый массив
func (w *StreamWriter) WriteTransaction(tx *entity.Transaction) error {
	return w.transactions.Encode(tx)
}

// SessionChunks возвращает количество записанных файлов сессий
func (w *StreamWriter) SessionChunks() int {
	return w.sessions.ChunksWritten()
}

// Close сбрасывает хвост сессий и закрывает массив транзакций
// Вызывается и при штатном завершении, и при срабатывании предохранителя
func (w *StreamWriter) Close() error {
	if err := w.sessions.Flush(); err != nil {
		// Массив транзакций все равно нужно закрыть корректно
		w.transactions.Close()
		return err
	}
	return w.transactions.Close()
}

// WriteJSONFile сериализует значение целиком в файл
// Используется для каталога (categories/products/users) и чанков сессий
func WriteJSONFile(path string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
