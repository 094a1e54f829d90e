package auth

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"
)

// WriteTokenFile stores token at path for the UI shell to pick up.
//
// The write goes through a temp file and rename, so a shell polling the file
// never reads half a token. Permissions are tightened to 0600 afterwards
// because atomic.WriteFile keeps the mode of an existing file and uses the
// default for a new one.
func WriteTokenFile(path, token string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("auth: creating token directory %s: %w", dir, err)
		}
	}
	if err := atomic.WriteFile(path, strings.NewReader(token+"\n")); err != nil {
		return fmt.Errorf("auth: writing token file %s: %w", path, err)
	}
	if err := os.Chmod(path, 0o600); err != nil {
		return fmt.Errorf("auth: restricting token file %s: %w", path, err)
	}
	return nil
}

// ReadTokenFile returns the token stored by WriteTokenFile.
func ReadTokenFile(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("auth: reading token file %s: %w", path, err)
	}
	token := strings.TrimSpace(string(b))
	if token == "" {
		return "", fmt.Errorf("auth: token file %s is empty", path)
	}
	return token, nil
}

// RemoveTokenFile deletes the token file on shutdown. A missing file is fine.
func RemoveTokenFile(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("auth: removing token file %s: %w", path, err)
	}
	return nil
}
