package preflight

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	aerrors "github.com/TonnyWong1052/gemsh/internal/errors"
)

func fakePath(present ...string) LookPathFunc {
	set := map[string]bool{}
	for _, p := range present {
		set[p] = true
	}
	return func(name string) (string, error) {
		if set[name] {
			return "/usr/bin/" + name, nil
		}
		return "", errors.New("not found")
	}
}

func TestRequireAllPresent(t *testing.T) {
	c := NewCheckerWith(fakePath("curl", "fzf"))
	assert.NoError(t, c.Require("curl", "fzf"))
	assert.NoError(t, c.Require())
	assert.True(t, c.Has("fzf"))
}

func TestRequireReportsEveryMissingTool(t *testing.T) {
	c := NewCheckerWith(fakePath("curl"))
	err := c.Require("curl", "jq", "fzf")
	require.Error(t, err)
	assert.True(t, aerrors.HasCode(err, aerrors.ErrToolMissing))
	assert.Equal(t, aerrors.CategorySetup, aerrors.CategoryOf(err))
	assert.Contains(t, err.Error(), "jq, fzf")
}
