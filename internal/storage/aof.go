// Package storage reads and writes append-only files of RESP commands, the
// persistence format of crystalcache.
package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/genc-murat/crystalstats/internal/core/models"
	"github.com/genc-murat/crystalstats/pkg/resp"
)

type AOF struct {
	file *os.File
	mu   sync.Mutex
}

// OpenAOF opens path for reading and appending, creating it if needed.
func OpenAOF(path string) (*AOF, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0666)
	if err != nil {
		return nil, err
	}
	return &AOF{file: f}, nil
}

func (aof *AOF) Close() error {
	aof.mu.Lock()
	defer aof.mu.Unlock()
	return aof.file.Close()
}

// Write appends one command at the end of the file.
func (aof *AOF) Write(value models.Value) error {
	aof.mu.Lock()
	defer aof.mu.Unlock()

	if _, err := aof.file.Seek(0, io.SeekEnd); err != nil {
		return err
	}
	writer := resp.NewWriter(aof.file)
	if err := writer.Write(value); err != nil {
		return err
	}
	return writer.Flush()
}

// Read replays every command from the start of the file. A callback error
// stops the replay and is returned as is.
func (aof *AOF) Read(callback func(value models.Value) error) error {
	aof.mu.Lock()
	defer aof.mu.Unlock()

	if _, err := aof.file.Seek(0, io.SeekStart); err != nil {
		return err
	}

	reader := resp.NewReader(aof.file)
	for n := 0; ; n++ {
		value, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("aof command %d: %w", n, err)
		}
		if err := callback(value); err != nil {
			return err
		}
	}
}

// Replay opens path read-only and feeds every command to callback.
func Replay(path string, callback func(value models.Value) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	aof := &AOF{file: f}
	return aof.Read(callback)
}
