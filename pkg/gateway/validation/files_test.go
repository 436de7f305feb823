package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileRules_Check(t *testing.T) {
	rules := ImageRules()

	t.Run("missing file", func(t *testing.T) {
		err := rules.Check(nil)
		var verr *Error
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "file", verr.Field)
		assert.Equal(t, "No file provided", verr.Message)
	})

	t.Run("allowed types", func(t *testing.T) {
		for _, ct := range []string{"image/jpeg", "image/png", "image/webp"} {
			assert.NoError(t, rules.Check(&File{Name: "a", ContentType: ct, Size: 1}), ct)
		}
	})

	t.Run("rejected type", func(t *testing.T) {
		err := rules.Check(&File{Name: "a.gif", ContentType: "image/gif", Size: 1})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "image/gif")
	})

	t.Run("size at ceiling", func(t *testing.T) {
		assert.NoError(t, rules.Check(&File{ContentType: "image/png", Size: MaxImageSize}))
	})

	t.Run("size over ceiling", func(t *testing.T) {
		err := rules.Check(&File{ContentType: "image/png", Size: MaxImageSize + 1})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "10 MiB")
	})
}

func TestFileRules_EmptyAllowList(t *testing.T) {
	rules := FileRules{}
	assert.True(t, rules.Allows("application/pdf"))
	assert.NoError(t, rules.Check(&File{ContentType: "application/pdf", Size: 1 << 30}))
}
