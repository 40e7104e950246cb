package writer

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
)

// ArrayEncoder инкрементально пишет JSON-массив в файл
// Элементы кодируются по одному по мере поступления, поэтому пиковая память
// ограничена одним элементом, а не всем массивом. Учет "первого элемента"
// (запятые-разделители) инкапсулирован внутри; Close всегда закрывает массив,
// в том числе при досрочном завершении генерации
type ArrayEncoder struct {
	file   *os.File
	buf    *bufio.Writer
	first  bool
	closed bool
}

// NewArrayEncoder открывает файл и пишет открывающую скобку массива
func NewArrayEncoder(path string) (*ArrayEncoder, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", path, err)
	}

	buf := bufio.NewWriter(file)
	if _, err := buf.WriteString("[\n"); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to write array opening: %w", err)
	}

	return &ArrayEncoder{file: file, buf: buf, first: true}, nil
}

// Encode сериализует и дописывает один элемент массива
// Ошибка сериализации фатальна для генерации: лучше остановиться,
// чем выпустить битые записи
func (e *ArrayEncoder) Encode(v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode element: %w", err)
	}

	if !e.first {
		if _, err := e.buf.WriteString(",\n"); err != nil {
			return fmt.Errorf("failed to write separator: %w", err)
		}
	}

	if _, err := e.buf.Write(data); err != nil {
		return fmt.Errorf("failed to write element: %w", err)
	}

	e.first = false
	return nil
}

// Close закрывает JSON-массив и файл
// Идемпотентен: повторный вызов безопасен
func (e *ArrayEncoder) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true

	if _, err := e.buf.WriteString("\n]\n"); err != nil {
		e.file.Close()
		return fmt.Errorf("failed to write array closing: %w", err)
	}
	if err := e.buf.Flush(); err != nil {
		e.file.Close()
		return fmt.Errorf("failed to flush: %w", err)
	}

	if err := e.file.Close(); err != nil {
		return fmt.Errorf("failed to close file: %w", err)
	}
	return nil
}
