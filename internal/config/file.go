package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
	"github.com/pelletier/go-toml/v2"

	"github.com/handiism/skylark-downloader/internal/model"
)

// Load reads settings from path.
//
// Missing files yield defaults and no error. Unreadable or malformed files
// yield defaults and an error wrapping model.ErrConfigIO. Keys absent from
// the file keep their default values.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultSettings(), nil
		}
		return DefaultSettings(), model.Wrap(model.ErrConfigIO, "load", path, err)
	}

	settings := DefaultSettings()
	if err := decode(path, data, settings); err != nil {
		return DefaultSettings(), model.Wrap(model.ErrConfigIO, "decode", path, err)
	}
	return settings, nil
}

// Save writes the settings to path.
func (s *Settings) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return model.Wrap(model.ErrConfigIO, "save", "create directory", err)
	}

	data, err := encode(path, s)
	if err != nil {
		return model.Wrap(model.ErrConfigIO, "save", "encode", err)
	}

	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return model.Wrap(model.ErrConfigIO, "save", "acquire lock", err)
	}
	defer func() { _ = lock.Unlock() }()

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return model.Wrap(model.ErrConfigIO, "save", "create temp file", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return model.Wrap(model.ErrConfigIO, "save", "write", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return model.Wrap(model.ErrConfigIO, "save", "close", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return model.Wrap(model.ErrConfigIO, "save", "chmod", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return model.Wrap(model.ErrConfigIO, "save", "rename", err)
	}
	return nil
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

func decode(path string, data []byte, s *Settings) error {
	if isTOML(path) {
		return toml.Unmarshal(data, s)
	}
	return json.Unmarshal(data, s)
}

func encode(path string, s *Settings) ([]byte, error) {
	if isTOML(path) {
		return toml.Marshal(s)
	}
	return json.MarshalIndent(s, "", "  ")
}
