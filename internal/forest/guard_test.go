package forest

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssertContained(t *testing.T) {
	root := "/forests/foo"

	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"direct child", "/forests/foo/backend", false},
		{"nested descendant", "/forests/foo/backend/src", false},
		{"root itself", "/forests/foo", true},
		{"parent", "/forests", true},
		{"sibling", "/forests/bar", true},
		{"sibling sharing prefix", "/forests/foobar", true},
		{"escape via dotdot", "/forests/foo/../bar", true},
		{"unrelated path", "/etc/passwd", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := assertContained(root, tt.path)
			if tt.wantErr {
				require.Error(t, err)
				var violation *InvariantViolationError
				assert.ErrorAs(t, err, &violation)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestAssertContainedRelativeInputs(t *testing.T) {
	// Relative inputs are resolved against the working directory before
	// the check, so a relative descendant of a relative root passes.
	err := assertContained("work", filepath.Join("work", "sub"))
	assert.NoError(t, err)

	err = assertContained("work", "elsewhere")
	assert.Error(t, err)
}
