package state

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

const counterFileName = "receipt_counter.json"

// counterFile is the on-disk shape of the persisted counter.
type counterFile struct {
	ReceiptNumber uint64    `json:"receipt_number"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// FileRepository implements ports.CounterRepository using a JSON file.
type FileRepository struct {
	dir string
}

// NewFileRepository creates a new FileRepository for the given directory.
func NewFileRepository(dir string) *FileRepository {
	return &FileRepository{dir: dir}
}

// Load retrieves the last saved counter value from disk.
// Returns zero and nil error if no counter file exists.
func (r *FileRepository) Load(ctx context.Context) (uint64, error) {
	data, err := os.ReadFile(r.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}

	var cf counterFile
	if err := json.Unmarshal(data, &cf); err != nil {
		return 0, err
	}
	return cf.ReceiptNumber, nil
}

// Save persists the counter value atomically.
// Uses atomic write (write to temp file, then rename) to prevent corruption.
func (r *FileRepository) Save(ctx context.Context, value uint64) error {
	// Ensure directory exists
	if err := os.MkdirAll(r.dir, 0o700); err != nil {
		return err
	}

	path := r.Path()
	tmp := path + ".tmp"

	data, err := json.MarshalIndent(counterFile{
		ReceiptNumber: value,
		UpdatedAt:     time.Now(),
	}, "", "  ")
	if err != nil {
		return err
	}

	// Write to temp file
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}

	// Atomic rename
	return os.Rename(tmp, path)
}

// Path returns the full path to the counter file.
func (r *FileRepository) Path() string {
	return filepath.Join(r.dir, counterFileName)
}
