package service

import (
	"fmt"

	"github.com/gosimple/slug"
)

// uniqueSlug slugifies name (fallback when nothing is left) and appends -1, -2, ...
// until taken reports false.
func uniqueSlug(name, fallback string, taken func(candidate string) (bool, error)) (string, error) {
	base := slug.Make(name)
	if base == "" {
		base = fallback
	}

	candidate := base
	for suffix := 1; ; suffix++ {
		exists, err := taken(candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, suffix)
	}
}
