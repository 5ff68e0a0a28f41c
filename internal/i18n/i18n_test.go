package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslate(t *testing.T) {
	require.NoError(t, Initialize("en"))

	assert.True(t, Supported("en"))
	assert.True(t, Supported("zh_TW"))
	assert.False(t, Supported("fr"))

	assert.Equal(t, "Draft not found", T("en", KeyDraftNotFound))
	assert.Equal(t, "找不到草稿", T("zh_TW", KeyDraftNotFound))
	assert.Equal(t, "Invalid request", T("en", KeyValidationInvalid, "request"))

	// Missing in zh_TW falls back to English; unknown keys come back as is.
	assert.Equal(t, "Unknown size", T("zh_TW", KeyUnknownSize))
	assert.Equal(t, "no.such.key", T("fr", "no.such.key"))
}
