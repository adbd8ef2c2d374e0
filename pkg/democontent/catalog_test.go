package democontent_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/demo-content/pkg/democontent"
)

func TestDefaultCatalog(t *testing.T) {
	catalog := democontent.DefaultCatalog()

	require.NoError(t, catalog.Validate())
	assert.Len(t, catalog.Images, 6)
	assert.Equal(t, "https://picsum.photos/seed/sparti-6/1600/900", catalog.Images[5].URL)
	assert.Equal(t, "Sparti Demo Image 1", catalog.Images[0].Title)
	assert.Equal(t, []democontent.PageSpec{
		{Title: "Home", Slug: "home"},
		{Title: "About", Slug: "about"},
		{Title: "Services", Slug: "services"},
		{Title: "Contact", Slug: "contact"},
		{Title: "Blog", Slug: "blog"},
	}, catalog.Pages)
	assert.Equal(t, "Demo Post 4", catalog.PostTitle(4))
	assert.Equal(t, "Primary", catalog.MenuName)
}

func TestLoadCatalog(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expectError bool
		check       func(t *testing.T, c democontent.Catalog)
	}{
		{
			name:  "partial document keeps defaults",
			input: `{"post_count": 2, "menu_name": "Main"}`,
			check: func(t *testing.T, c democontent.Catalog) {
				assert.Equal(t, 2, c.PostCount)
				assert.Equal(t, "Main", c.MenuName)
				assert.Len(t, c.Pages, 5)
				assert.Len(t, c.Images, 6)
			},
		},
		{
			name:  "replaces images",
			input: `{"images": [{"url": "https://example.com/x.jpg", "title": "X"}]}`,
			check: func(t *testing.T, c democontent.Catalog) {
				assert.Equal(t, []democontent.ImageSpec{{URL: "https://example.com/x.jpg", Title: "X"}}, c.Images)
			},
		},
		{
			name:        "unknown field",
			input:       `{"post_cnt": 2}`,
			expectError: true,
		},
		{
			name:        "duplicate page slug",
			input:       `{"pages": [{"title": "A", "slug": "a"}, {"title": "B", "slug": "a"}]}`,
			expectError: true,
		},
		{
			name:        "title format without verb",
			input:       `{"post_title_format": "Demo Post"}`,
			expectError: true,
		},
		{
			name:        "title format with a second verb",
			input:       `{"post_title_format": "Post %d %s"}`,
			expectError: true,
		},
		{
			name:        "title format with two ints",
			input:       `{"post_title_format": "Post %d of %d"}`,
			expectError: true,
		},
		{
			name:        "title format with width flag",
			input:       `{"post_title_format": "Post %03d"}`,
			expectError: true,
		},
		{
			name:        "title format with trailing percent",
			input:       `{"post_title_format": "Post %d %"}`,
			expectError: true,
		},
		{
			name:  "title format with escaped percent",
			input: `{"post_title_format": "100%% Post %d"}`,
			check: func(t *testing.T, c democontent.Catalog) {
				assert.Equal(t, "100%% Post %d", c.PostTitleFormat)
			},
		},
		{
			name:        "malformed json",
			input:       `{`,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			catalog, err := democontent.LoadCatalog(strings.NewReader(tt.input))
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, catalog)
		})
	}
}
