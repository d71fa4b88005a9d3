package script

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Extensions lists the file extensions accepted without forcing.
var Extensions = []string{".py", ".star", ".txt"}

// SaveOptions tune a single Save call.
type SaveOptions struct {
	// Force accepts names with any extension.
	Force bool
}

// Store persists script sources.
type Store interface {
	Load(name string) (string, error)
	Save(name, text string, optFns ...func(o *SaveOptions)) error
	List() ([]string, error)
	Delete(name string) error
}

// CheckName validates the extension of name.
func CheckName(name string, force bool) error {
	if name == "" {
		return fmt.Errorf("empty script name")
	}
	if force {
		return nil
	}
	ext := strings.ToLower(filepath.Ext(name))
	for _, ok := range Extensions {
		if ext == ok {
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrUnsupportedExtension, name)
}

func saveOptions(optFns []func(o *SaveOptions)) SaveOptions {
	var opts SaveOptions
	for _, fn := range optFns {
		fn(&opts)
	}
	return opts
}
