// Package filekv stores credential entries in a JSON file, one file per API origin.
package filekv

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/jrsteele09/go-crm/credentials"
)

const appDirName = "go-crm"

var _ credentials.KV = (*FileKV)(nil)

// FileKV is a durable credentials.KV backed by a single JSON object on disk.
// Every Set and Remove rewrites the file through a temp file and rename.
type FileKV struct {
	path string
	mu   sync.Mutex
}

// New returns a FileKV persisting to path. The file is created on first write.
func New(path string) *FileKV {
	return &FileKV{path: path}
}

// PathFor returns the credentials file for the given API origin inside dir.
// An empty dir resolves to the user's config directory.
func PathFor(dir, origin string) (string, error) {
	if dir == "" {
		configDir, err := os.UserConfigDir()
		if err != nil {
			return "", fmt.Errorf("[filekv PathFor] os.UserConfigDir: %w", err)
		}
		dir = filepath.Join(configDir, appDirName)
	}

	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("[filekv PathFor] invalid origin %q", origin)
	}
	name := strings.NewReplacer(":", "_", "/", "_").Replace(u.Scheme + "_" + u.Host)
	return filepath.Join(dir, name+".json"), nil
}

// Path returns the backing file location.
func (f *FileKV) Path() string {
	return f.path
}

func (f *FileKV) Get(key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.read()
	if err != nil {
		return "", false, err
	}
	value, ok := values[key]
	return value, ok, nil
}

func (f *FileKV) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.read()
	if err != nil {
		return err
	}
	values[key] = value
	return f.write(values)
}

func (f *FileKV) Remove(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.read()
	if err != nil {
		return err
	}
	if _, ok := values[key]; !ok {
		return nil
	}
	delete(values, key)
	return f.write(values)
}

func (f *FileKV) read() (map[string]string, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return make(map[string]string), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.path, err)
	}

	values := make(map[string]string)
	if len(data) == 0 {
		return values, nil
	}
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("corrupt credentials file %s: %w", f.path, err)
	}
	return values, nil
}

func (f *FileKV) write(values map[string]string) error {
	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return fmt.Errorf("encode credentials: %w", err)
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".credentials-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	return os.Rename(tmp.Name(), f.path)
}
