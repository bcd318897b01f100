package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkdownService_NotInitialized(t *testing.T) {
	_, err := NewMarkdownService().Render("**bold**")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not initialized")
}

func TestMarkdownService_RenderPlain(t *testing.T) {
	service := NewMarkdownService()
	require.NoError(t, service.InitializeWithStyle("notty"))
	assert.Equal(t, "notty", service.Style())

	rendered, err := service.Render("- Range: **488 km**\n- Price: $45,500")
	require.NoError(t, err)
	assert.Contains(t, rendered, "Range")
	assert.Contains(t, rendered, "488 km")
	assert.Contains(t, rendered, "Price")
}

func TestMarkdownService_RenderEmpty(t *testing.T) {
	service := NewMarkdownService()
	require.NoError(t, service.InitializeWithStyle("notty"))

	rendered, err := service.Render("   ")
	require.NoError(t, err)
	assert.Equal(t, "", rendered)
}

func TestMarkdownService_Initialize(t *testing.T) {
	service := NewMarkdownService()
	require.NoError(t, service.Initialize())
	assert.Contains(t, []string{"auto", "notty"}, service.Style())
}
