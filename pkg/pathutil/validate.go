// Package pathutil provides name validation utilities for confsync.
package pathutil

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/confsync-project/confsync/pkg/errclass"
)

var nameRegex = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)

// ValidateItemType checks that an item type is safe to use as a snapshot
// subdirectory name. Item types are opaque keys (roles, flows, settings, ...)
// supplied by external config managers and must never escape the snapshot tree.
func ValidateItemType(itemType string) error {
	if itemType == "" {
		return errclass.ErrItemTypeInvalid.WithMessage("item type must not be empty")
	}

	// NFC normalize
	itemType = norm.NFC.String(itemType)

	if itemType == ".." || strings.Contains(itemType, "..") {
		return errclass.ErrItemTypeInvalid.WithMessagef("item type must not contain '..': %s", itemType)
	}

	if strings.ContainsAny(itemType, "/\\") {
		return errclass.ErrItemTypeInvalid.WithMessagef("item type must not contain separators: %s", itemType)
	}

	// Check for control characters
	for _, r := range itemType {
		if unicode.IsControl(r) {
			return errclass.ErrItemTypeInvalid.WithMessagef("item type must not contain control characters: %q", itemType)
		}
	}

	if !nameRegex.MatchString(itemType) {
		return errclass.ErrItemTypeInvalid.WithMessagef("item type must match [a-zA-Z0-9._-]+: %s", itemType)
	}

	return nil
}

// ValidateIdentifier checks a caller-supplied snapshot identifier with the
// same rules as item types.
func ValidateIdentifier(id string) error {
	if err := ValidateItemType(id); err != nil {
		return errclass.ErrItemTypeInvalid.WithMessagef("invalid snapshot identifier %q", id)
	}
	return nil
}
