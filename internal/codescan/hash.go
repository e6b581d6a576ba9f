package codescan

import (
	"crypto/md5"
	"encoding/base64"
	"fmt"
	"io"
	"os"
)

// ContentMD5 returns the base64 encoded MD5 digest of the file at path, as
// expected by the Content-MD5 header.
func ContentMD5(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open artifact %q: %w", path, err)
	}
	defer f.Close()

	hasher := md5.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return "", fmt.Errorf("failed to read artifact %q: %w", path, err)
	}
	return base64.StdEncoding.EncodeToString(hasher.Sum(nil)), nil
}
