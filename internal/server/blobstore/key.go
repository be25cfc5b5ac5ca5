package blobstore

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

const keyPrefix = "images"

// NewKey derives the storage key for a file name uploaded at t. The uuid
// segment keeps identically named uploads apart.
func NewKey(t time.Time, name string) string {
	return fmt.Sprintf("%s/%04d/%02d/%02d/%s-%s",
		keyPrefix, t.Year(), int(t.Month()), t.Day(), uuid.NewString(), baseName(name))
}

func baseName(name string) string {
	name = strings.ReplaceAll(name, `\`, "/")
	b := path.Base(name)
	if b == "." || b == "/" || b == "" {
		return "photo"
	}
	return b
}
