package artifact

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/earth-sol/onefilellm/config"
)

// ErrForbidden means the requested name is not on the download
// allow-list. It is returned before any filesystem access happens.
var ErrForbidden = errors.New("filename not allowed")

// ErrNotFound means the name is allow-listed but no artifact exists yet.
var ErrNotFound = errors.New("artifact not found")

// Gatekeeper serves previously written artifacts strictly by identity.
// The allow-list is fixed at construction from config and never
// influenced by request input.
type Gatekeeper struct {
	dir     string
	allowed map[string]struct{}
}

func NewGatekeeper(cfg config.OutputConfig) *Gatekeeper {
	return &Gatekeeper{
		dir: cfg.Dir,
		allowed: map[string]struct{}{
			cfg.UncompressedFile: {},
			cfg.CompressedFile:   {},
		},
	}
}

// Resolve validates the requested name and returns the path to serve.
// Names carrying any path separator, and names outside the allow-list,
// are Forbidden before the filesystem is touched. A valid name whose
// file does not exist is NotFound.
func (g *Gatekeeper) Resolve(requestedName string) (string, error) {
	if requestedName == "" {
		return "", ErrNotFound
	}
	if strings.ContainsAny(requestedName, `/\`) {
		return "", ErrForbidden
	}
	name := filepath.Base(requestedName)
	if _, ok := g.allowed[name]; !ok {
		return "", ErrForbidden
	}

	path := filepath.Join(g.dir, name)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", ErrNotFound
	}
	return path, nil
}
