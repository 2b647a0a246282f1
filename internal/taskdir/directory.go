// Package taskdir implements the on-disk layout of a benchmark task: a YAML
// metadata record next to a CSV table holding every seed's samples.
//
//	<task dir>/
//	  metadata.yaml
//	  samples.csv
package taskdir

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/ahrav/mibench/internal/domain"
)

// File names inside a task directory.
const (
	MetadataFile = "metadata.yaml"
	SamplesFile  = "samples.csv"
)

// Directory is a task directory on disk.
type Directory struct {
	path string
}

// New returns a handle for the directory at path. Nothing is touched on disk.
func New(path string) Directory { return Directory{path: filepath.Clean(path)} }

// Path returns the directory path.
func (d Directory) Path() string { return d.path }

// MetadataPath returns the path of the metadata file.
func (d Directory) MetadataPath() string { return filepath.Join(d.path, MetadataFile) }

// SamplesPath returns the path of the samples file.
func (d Directory) SamplesPath() string { return filepath.Join(d.path, SamplesFile) }

// HoldsTask reports whether the directory already contains a saved task.
func (d Directory) HoldsTask() bool {
	_, err := os.Stat(d.MetadataPath())
	return err == nil
}

// Save writes metadata and samples. The files are written into a sibling
// temporary directory which is renamed into place, so a failed save never
// leaves a directory that Load would accept.
//
// Returns an error wrapping domain.ErrAlreadyExists if the directory holds a
// task and existOK is false. With existOK the previous task is replaced.
func (d Directory) Save(metadata domain.TaskMetadata, table *Table, existOK bool) (err error) {
	if err := metadata.Validate(); err != nil {
		return err
	}
	if d.HoldsTask() && !existOK {
		return fmt.Errorf("%w: %s", domain.ErrAlreadyExists, d.path)
	}

	parent := filepath.Dir(d.path)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return fmt.Errorf("create parent directory: %w", err)
	}
	tmp, err := os.MkdirTemp(parent, "."+filepath.Base(d.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temporary directory: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.RemoveAll(tmp)
		}
	}()
	if err := os.Chmod(tmp, 0o755); err != nil {
		return fmt.Errorf("chmod temporary directory: %w", err)
	}

	meta, err := yaml.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}
	var samples bytes.Buffer
	if err := table.WriteCSV(&samples); err != nil {
		return fmt.Errorf("encode samples: %w", err)
	}
	// Samples first: a directory without metadata is not a task.
	if err := writeFile(filepath.Join(tmp, SamplesFile), samples.Bytes()); err != nil {
		return err
	}
	if err := writeFile(filepath.Join(tmp, MetadataFile), meta); err != nil {
		return err
	}
	return d.replaceWith(tmp)
}

// replaceWith moves tmp to the directory path, setting aside whatever task
// was there until the rename succeeded.
func (d Directory) replaceWith(tmp string) error {
	info, err := os.Stat(d.path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return rename(tmp, d.path)
	case err != nil:
		return fmt.Errorf("stat %s: %w", d.path, err)
	case !info.IsDir():
		return fmt.Errorf("%s exists and is not a directory", d.path)
	}

	if !d.HoldsTask() {
		// An empty directory is replaced by rename; anything else is not ours.
		if err := os.Remove(d.path); err != nil {
			return fmt.Errorf("%s exists and is not a task directory: %w", d.path, err)
		}
		return rename(tmp, d.path)
	}

	backup := tmp + ".old"
	if err := os.Rename(d.path, backup); err != nil {
		return fmt.Errorf("set aside previous task: %w", err)
	}
	if err := os.Rename(tmp, d.path); err != nil {
		_ = os.Rename(backup, d.path)
		return fmt.Errorf("move task into place: %w", err)
	}
	return os.RemoveAll(backup)
}

// LoadMetadata reads and re-validates the metadata record.
// Returns an error wrapping domain.ErrMetadataValidation for out-of-range
// fields and domain.ErrCorruptData for unreadable YAML.
func (d Directory) LoadMetadata() (domain.TaskMetadata, error) {
	data, err := os.ReadFile(d.MetadataPath())
	if err != nil {
		return domain.TaskMetadata{}, fmt.Errorf("read metadata: %w", err)
	}
	var metadata domain.TaskMetadata
	if err := yaml.Unmarshal(data, &metadata); err != nil {
		return domain.TaskMetadata{}, fmt.Errorf("%w: metadata: %w", domain.ErrCorruptData, err)
	}
	if err := metadata.Validate(); err != nil {
		return domain.TaskMetadata{}, err
	}
	return metadata, nil
}

// LoadTable reads the samples table.
func (d Directory) LoadTable() (*Table, error) {
	f, err := os.Open(d.SamplesPath())
	if err != nil {
		return nil, fmt.Errorf("read samples: %w", err)
	}
	defer f.Close()
	return ReadCSV(f)
}

func writeFile(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return err
	}
	_ = f.Sync() // best-effort durability
	return f.Close()
}

func rename(from, to string) error {
	if err := os.Rename(from, to); err != nil {
		return fmt.Errorf("move task into place: %w", err)
	}
	return nil
}
