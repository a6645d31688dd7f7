package tasks

import (
	"encoding/json"
	"fmt"
	"slices"
	"sync"

	"github.com/freekieb7/hearth/filesystem"
)

type Store interface {
	Load() ([]Task, error)
	Save(tasks []Task) error
}

// document is the on-disk layout: {"values": [...]}.
type document struct {
	Values []Task `json:"values"`
}

// FileStore keeps the task list as an indented JSON document.
type FileStore struct {
	fs   filesystem.Filesystem
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{
		fs:   filesystem.NewLocalFileSystem(),
		path: path,
	}
}

// Load returns an empty list when the file does not exist yet.
func (store *FileStore) Load() ([]Task, error) {
	exists, err := store.fs.FileExists(store.path)
	if err != nil {
		return nil, err
	}
	if !exists {
		return []Task{}, nil
	}

	data, err := store.fs.ReadFile(store.path)
	if err != nil {
		return nil, err
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("tasks: decoding %s: %w", store.path, err)
	}
	if doc.Values == nil {
		return nil, fmt.Errorf("tasks: decoding %s: %w: missing values array", store.path, ErrInvalidTask)
	}

	return doc.Values, nil
}

func (store *FileStore) Save(tasks []Task) error {
	if tasks == nil {
		tasks = []Task{}
	}

	data, err := json.MarshalIndent(document{Values: tasks}, "", "    ")
	if err != nil {
		return err
	}

	return store.fs.WriteFile(store.path, append(data, '\n'))
}

type MemoryStore struct {
	mu    sync.Mutex
	tasks []Task
	saves int
}

func NewMemoryStore(tasks ...Task) *MemoryStore {
	return &MemoryStore{tasks: tasks}
}

func (m *MemoryStore) Load() ([]Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.tasks), nil
}

func (m *MemoryStore) Save(tasks []Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks = slices.Clone(tasks)
	m.saves++
	return nil
}

// Saves reports how many times Save was called.
func (m *MemoryStore) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}
