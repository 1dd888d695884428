package wea

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
)

// cacheSuffix names the parsed-series sidecar written next to the EPW file.
const cacheSuffix = ".wea.msgpack"

// Load reads a weather series from an EPW file, going through a
// msgpack-encoded sidecar cache so repeated runs skip the 8760-row parse.
// The cache is used only when it is at least as fresh as the EPW file; a
// stale, missing or unreadable sidecar falls back to a full parse and is
// rewritten best-effort.
func Load(path string) (*Wea, error) {
	cachePath := sidecarPath(path)

	if w, ok := loadSidecar(path, cachePath); ok {
		return w, nil
	}

	w, err := ReadEPW(path)
	if err != nil {
		return nil, err
	}
	writeSidecar(cachePath, w)
	return w, nil
}

func sidecarPath(epwPath string) string {
	return strings.TrimSuffix(epwPath, filepath.Ext(epwPath)) + cacheSuffix
}

func loadSidecar(epwPath, cachePath string) (*Wea, bool) {
	epwInfo, err := os.Stat(epwPath)
	if err != nil {
		return nil, false
	}
	cacheInfo, err := os.Stat(cachePath)
	if err != nil || cacheInfo.ModTime().Before(epwInfo.ModTime()) {
		return nil, false
	}

	data, err := os.ReadFile(cachePath)
	if err != nil {
		return nil, false
	}
	var w Wea
	if err := msgpack.Unmarshal(data, &w); err != nil {
		return nil, false
	}
	if len(w.DirectNormal) != HoursPerYear || len(w.DiffuseHorizontal) != HoursPerYear {
		return nil, false
	}
	return &w, true
}

func writeSidecar(cachePath string, w *Wea) {
	data, err := msgpack.Marshal(w)
	if err != nil {
		return
	}
	// The sidecar is an optimization; failure to write it is not an error.
	_ = os.WriteFile(cachePath, data, 0o644)
}

// InvalidateCache removes the sidecar cache for an EPW file, if present.
func InvalidateCache(epwPath string) error {
	err := os.Remove(sidecarPath(epwPath))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing weather cache: %w", err)
	}
	return nil
}
