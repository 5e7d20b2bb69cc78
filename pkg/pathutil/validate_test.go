package pathutil_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/confsync-project/confsync/pkg/errclass"
	"github.com/confsync-project/confsync/pkg/pathutil"
)

func TestValidateItemType_Valid(t *testing.T) {
	for _, name := range []string{"roles", "feature-flags", "settings.v2", "A_B", "123"} {
		assert.NoError(t, pathutil.ValidateItemType(name), "name %q", name)
	}
}

func TestValidateItemType_Invalid(t *testing.T) {
	for _, name := range []string{
		"",
		"..",
		"a/../b",
		"roles/admin",
		"roles\\admin",
		"ro les",
		"roles\x00",
		"röles",
	} {
		err := pathutil.ValidateItemType(name)
		assert.ErrorIs(t, err, errclass.ErrItemTypeInvalid, "name %q", name)
	}
}

func TestValidateIdentifier(t *testing.T) {
	assert.NoError(t, pathutil.ValidateIdentifier("2024-03-01T12-00-00-000Z_import_local"))
	assert.Error(t, pathutil.ValidateIdentifier("../../etc/passwd"))
}
