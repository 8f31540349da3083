// Package jsonstore reads and writes whole JSON array documents on disk.
//
// It is the only I/O boundary of the catalog: every collection (courses,
// modules, lessons) lives in one file holding a JSON array, and every write
// replaces the whole file.
//
// # Usage
//
//	courses := jsonstore.NewFile[entities.Course]("./data/courses.json")
//	all, err := courses.ReadAll(ctx)
//	all = append(all, course)
//	err = courses.WriteAll(ctx, all)
//
// A write goes to a temp file in the same directory which is then renamed
// over the target, so a reader never observes a half-written document. Two
// different files are still written independently.
package jsonstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Op names the failed file operation.
type Op string

const (
	OpRead  Op = "read"
	OpParse Op = "parse"
	OpWrite Op = "write"
)

// Error describes a failed read, parse or write of a store file.
type Error struct {
	Path string
	Op   Op
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, filepath.Base(e.Path), e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// ErrNullDocument is returned when a file parses as JSON null instead of an array.
var ErrNullDocument = errors.New("document is null")

type normalizer interface {
	Normalize()
}

// File is a JSON array document of T.
type File[T any] struct {
	path string
	mu   sync.RWMutex
}

// NewFile binds a store to path. The file is not touched until the first call.
func NewFile[T any](path string) *File[T] {
	return &File[T]{path: path}
}

// Path returns the file location.
func (f *File[T]) Path() string {
	return f.path
}

// Name returns the base name of the file, e.g. "courses.json".
func (f *File[T]) Name() string {
	return filepath.Base(f.path)
}

// ReadAll decodes the whole array. A missing, unreadable or malformed file is
// an *Error; there is no fallback to an empty collection.
func (f *File[T]) ReadAll(ctx context.Context) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, &Error{Path: f.path, Op: OpRead, Err: err}
	}

	f.mu.RLock()
	data, err := os.ReadFile(f.path)
	f.mu.RUnlock()
	if err != nil {
		return nil, &Error{Path: f.path, Op: OpRead, Err: err}
	}

	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, &Error{Path: f.path, Op: OpParse, Err: err}
	}
	if items == nil {
		return nil, &Error{Path: f.path, Op: OpParse, Err: ErrNullDocument}
	}

	for i := range items {
		if n, ok := any(&items[i]).(normalizer); ok {
			n.Normalize()
		}
	}
	return items, nil
}

// WriteAll replaces the file content with items, indented by two spaces.
func (f *File[T]) WriteAll(ctx context.Context, items []T) error {
	if err := ctx.Err(); err != nil {
		return &Error{Path: f.path, Op: OpWrite, Err: err}
	}
	if items == nil {
		items = []T{}
	}

	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return &Error{Path: f.path, Op: OpWrite, Err: fmt.Errorf("marshal: %w", err)}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	tmp, err := os.CreateTemp(filepath.Dir(f.path), "."+filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return &Error{Path: f.path, Op: OpWrite, Err: err}
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		_ = os.Remove(tmpPath)
		return &Error{Path: f.path, Op: OpWrite, Err: err}
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return &Error{Path: f.path, Op: OpWrite, Err: err}
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		_ = os.Remove(tmpPath)
		return &Error{Path: f.path, Op: OpWrite, Err: err}
	}
	if err := os.Rename(tmpPath, f.path); err != nil {
		_ = os.Remove(tmpPath)
		return &Error{Path: f.path, Op: OpWrite, Err: err}
	}
	return nil
}

// EnsureFile creates path holding an empty array when it does not exist yet.
// Parent directories are created as needed. Existing files are left alone.
func EnsureFile(path string) (created bool, err error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return false, fmt.Errorf("failed to create data directory: %w", err)
	}
	if err := os.WriteFile(path, []byte("[]\n"), 0644); err != nil {
		return false, fmt.Errorf("failed to create %s: %w", path, err)
	}
	return true, nil
}
