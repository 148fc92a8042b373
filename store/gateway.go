// Package store keeps the JSON state files of the tracker: the price tick series and the
// position history. Every write goes through a temp file and a rename.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/AlexNa-Holdings/lptracker/cmn"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// Amounts and prices are written as JSON numbers, the format the reporting side reads.
func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// rename is replaced in tests to simulate a crash between write and rename.
var rename = os.Rename

// Read decodes the JSON document at path into v. Missing or corrupt files are errors.
func Read(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %s: %v", cmn.ErrData, path, err)
	}
	return nil
}

// Load is the lenient Read: a missing file leaves v untouched and a corrupt one resets it with
// reset. Only I/O errors other than not-exist are returned.
func Load(path string, v any, reset func()) error {
	err := Read(path, v)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, os.ErrNotExist):
		log.Debug().Msgf("%s not found, starting empty", path)
		return nil
	case errors.Is(err, cmn.ErrData):
		log.Warn().Err(err).Msgf("corrupt %s, starting empty", path)
		if reset != nil {
			reset()
		}
		return nil
	default:
		return fmt.Errorf("%w: read %s: %v", cmn.ErrPersistence, path, err)
	}
}

// SaveAtomic writes v as indented JSON next to path and renames it over path.
// On failure path keeps its previous content.
func SaveAtomic(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: marshal %s: %v", cmn.ErrPersistence, path, err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("%w: %v", cmn.ErrPersistence, err)
	}

	f, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: create temp for %s: %v", cmn.ErrPersistence, path, err)
	}
	tmp := f.Name()

	fail := func(step string, err error) error {
		f.Close()
		if rmErr := os.Remove(tmp); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			log.Warn().Err(rmErr).Msgf("remove %s", tmp)
		}
		log.Error().Err(err).Str("file", path).Msgf("save failed at %s", step)
		return fmt.Errorf("%w: %s %s: %v", cmn.ErrPersistence, step, path, err)
	}

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fail("write", err)
	}
	if err := f.Sync(); err != nil {
		return fail("sync", err)
	}
	if err := f.Chmod(0644); err != nil {
		return fail("chmod", err)
	}
	if err := f.Close(); err != nil {
		return fail("close", err)
	}
	if err := rename(tmp, path); err != nil {
		return fail("rename", err)
	}

	log.Trace().Msgf("saved %s (%d bytes)", path, len(data)+1)
	return nil
}
