package democontent_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/demo-content/pkg/democontent"
	"github.com/tendant/demo-content/pkg/democontent/repo/memory"
)

// fakeSideloader registers attachments without any network access. URLs in
// failing are rejected the way an unreachable host would be. With noURL set
// attachments are stored without a public URL.
type fakeSideloader struct {
	repo    democontent.Repository
	failing map[string]bool
	noURL   bool
	calls   int
}

func (f *fakeSideloader) Sideload(ctx context.Context, req democontent.SideloadRequest) (*democontent.Item, error) {
	f.calls++
	if f.failing[req.URL] {
		return nil, fmt.Errorf("GET %s: connection refused", req.URL)
	}
	item := &democontent.Item{
		Type:       democontent.ContentTypeAttachment,
		Title:      req.Title,
		Status:     democontent.StatusInherit,
		MimeType:   "image/jpeg",
		URL:        "/media/" + strings.ReplaceAll(req.Title, " ", "-") + ".jpg",
		Attributes: req.Attributes,
	}
	if f.noURL {
		item.URL = ""
	}
	if err := f.repo.CreateItem(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

type recordingCleaner struct {
	removed []int64
}

func (r *recordingCleaner) RemoveMedia(ctx context.Context, item *democontent.Item) error {
	r.removed = append(r.removed, item.ID)
	return nil
}

type recordingSink struct {
	democontent.NoopEventSink
	mu     sync.Mutex
	events []string
}

func (r *recordingSink) record(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, name)
	return nil
}

func (r *recordingSink) ItemCreated(ctx context.Context, item *democontent.Item) error {
	return r.record("item.created:" + string(item.Type))
}

func (r *recordingSink) MenuCreated(ctx context.Context, menu *democontent.Menu) error {
	return r.record("menu.created")
}

func (r *recordingSink) ImportCompleted(ctx context.Context, result democontent.ImportResult) error {
	return r.record("import.completed")
}

func (r *recordingSink) RemovalCompleted(ctx context.Context, removed int) error {
	return r.record("removal.completed")
}

func (r *recordingSink) count(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e == name {
			n++
		}
	}
	return n
}

type testEnv struct {
	repo       *memory.Repository
	sideloader *fakeSideloader
	cleaner    *recordingCleaner
	sink       *recordingSink
	svc        *democontent.Provisioner
}

func setupProvisioner(t *testing.T, opts ...democontent.Option) *testEnv {
	t.Helper()
	env := &testEnv{
		repo:    memory.New(),
		cleaner: &recordingCleaner{},
		sink:    &recordingSink{},
	}
	env.sideloader = &fakeSideloader{repo: env.repo, failing: map[string]bool{}}

	options := []democontent.Option{
		democontent.WithRepository(env.repo),
		democontent.WithSettings(env.repo),
		democontent.WithSideloader(env.sideloader),
		democontent.WithMediaCleaner(env.cleaner),
		democontent.WithEventSink(env.sink),
		democontent.WithThemeLocations(democontent.StaticLocations{
			{Slug: "footer_navigation", Label: "Footer"},
			{Slug: "primary_navigation", Label: "Primary Navigation"},
		}),
	}
	svc, err := democontent.New(append(options, opts...)...)
	require.NoError(t, err)
	env.svc = svc
	return env
}

func adminContext() context.Context {
	return democontent.WithCapabilities(context.Background(), democontent.CapabilityManageOptions)
}

func TestProvisionerCreation(t *testing.T) {
	repo := memory.New()
	sideloader := &fakeSideloader{repo: repo}

	tests := []struct {
		name        string
		options     []democontent.Option
		expectError bool
	}{
		{
			name:        "no options should fail",
			options:     []democontent.Option{},
			expectError: true,
		},
		{
			name: "missing sideloader should fail",
			options: []democontent.Option{
				democontent.WithRepository(repo),
				democontent.WithSettings(repo),
			},
			expectError: true,
		},
		{
			name: "invalid catalog should fail",
			options: []democontent.Option{
				democontent.WithRepository(repo),
				democontent.WithSettings(repo),
				democontent.WithSideloader(sideloader),
				democontent.WithCatalog(democontent.Catalog{PostCount: 1, PostTitleFormat: "no verb", MenuName: "Primary"}),
			},
			expectError: true,
		},
		{
			name: "repository, settings and sideloader should succeed",
			options: []democontent.Option{
				democontent.WithRepository(repo),
				democontent.WithSettings(repo),
				democontent.WithSideloader(sideloader),
			},
			expectError: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := democontent.New(tt.options...)

			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, svc)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, svc)
			}
		})
	}
}

func TestRunImport_Fresh(t *testing.T) {
	env := setupProvisioner(t)
	ctx := adminContext()

	result, err := env.svc.RunImport(ctx)
	require.NoError(t, err)

	assert.Equal(t, 6, result.ImagesImported)
	assert.Equal(t, 5, result.PagesCreated)
	assert.Equal(t, 5, result.PostsCreated)
	assert.Equal(t, 5, result.MenuItemsCreated)
	assert.Equal(t, "primary_navigation", result.MenuLocation)
	assert.NotZero(t, result.MenuID)

	t.Run("everything created carries the marker", func(t *testing.T) {
		items, err := env.repo.FindItems(ctx, democontent.ItemQuery{})
		require.NoError(t, err)
		assert.Len(t, items, 16)
		for _, item := range items {
			assert.True(t, item.IsDemo(), "item %d (%s) lacks the marker", item.ID, item.Title)
		}
	})

	t.Run("attachments record their source", func(t *testing.T) {
		images, err := env.repo.FindItems(ctx, democontent.ItemQuery{Types: []democontent.ContentType{democontent.ContentTypeAttachment}})
		require.NoError(t, err)
		require.Len(t, images, 6)
		assert.Equal(t, "https://picsum.photos/seed/sparti-1/1600/900", images[0].Attributes[democontent.SourceURLAttribute])
	})

	t.Run("reading settings point at home and blog", func(t *testing.T) {
		home := findPage(t, env.repo, "home")
		blog := findPage(t, env.repo, "blog")

		showOnFront, err := env.repo.GetOption(ctx, democontent.OptionShowOnFront)
		require.NoError(t, err)
		assert.Equal(t, "page", showOnFront)
		assertOption(t, env.repo, democontent.OptionPageOnFront, home.ID)
		assertOption(t, env.repo, democontent.OptionPageForPosts, blog.ID)
	})

	t.Run("home uses the landing template", func(t *testing.T) {
		home := findPage(t, env.repo, "home")
		assert.Contains(t, home.Content, "wp:cover")
		assert.Contains(t, home.Content, `id="features"`)

		about := findPage(t, env.repo, "about")
		assert.NotContains(t, about.Content, "wp:cover")
		assert.Contains(t, about.Content, `<h1 class="has-text-align-center">About</h1>`)
	})

	t.Run("posts get featured image and categories", func(t *testing.T) {
		posts, err := env.repo.FindItems(ctx, democontent.ItemQuery{Types: []democontent.ContentType{democontent.ContentTypePost}})
		require.NoError(t, err)
		require.Len(t, posts, 5)

		images, err := env.repo.FindItems(ctx, democontent.ItemQuery{Types: []democontent.ContentType{democontent.ContentTypeAttachment}})
		require.NoError(t, err)

		news, err := env.repo.GetTermBySlug(ctx, democontent.TaxonomyCategory, "news")
		require.NoError(t, err)
		updates, err := env.repo.GetTermBySlug(ctx, democontent.TaxonomyCategory, "updates")
		require.NoError(t, err)

		for i, post := range posts {
			n := i + 1
			assert.Equal(t, fmt.Sprintf("Demo Post %d", n), post.Title)
			assert.Equal(t, fmt.Sprintf("demo-post-%d", n), post.Slug)
			assert.Equal(t, images[n%len(images)].ID, post.FeaturedMediaID)
			assert.ElementsMatch(t, []int64{news.ID, updates.ID}, post.TermIDs)
		}
	})

	t.Run("menu links the five pages in order", func(t *testing.T) {
		entries, err := env.repo.ListMenuItems(ctx, result.MenuID)
		require.NoError(t, err)
		require.Len(t, entries, 5)
		for i, slug := range []string{"home", "about", "services", "contact", "blog"} {
			assert.Equal(t, findPage(t, env.repo, slug).ID, entries[i].ObjectID)
			assert.Equal(t, i+1, entries[i].Position)
		}

		assertOption(t, env.repo, democontent.MenuOption, result.MenuID)
		locations, err := env.repo.GetMenuLocations(ctx)
		require.NoError(t, err)
		assert.Equal(t, map[string]int64{"primary_navigation": result.MenuID}, locations)
	})

	t.Run("events", func(t *testing.T) {
		assert.Equal(t, 6, env.sink.count("item.created:attachment"))
		assert.Equal(t, 5, env.sink.count("item.created:page"))
		assert.Equal(t, 5, env.sink.count("item.created:post"))
		assert.Equal(t, 1, env.sink.count("menu.created"))
		assert.Equal(t, 1, env.sink.count("import.completed"))
	})
}

func TestRunImport_Idempotent(t *testing.T) {
	env := setupProvisioner(t)
	ctx := adminContext()

	first, err := env.svc.RunImport(ctx)
	require.NoError(t, err)

	second, err := env.svc.RunImport(ctx)
	require.NoError(t, err)

	assert.Equal(t, 0, second.ImagesImported)
	assert.Equal(t, 0, second.PagesCreated)
	assert.Equal(t, 0, second.PostsCreated)
	assert.Equal(t, 0, second.MenuItemsCreated)
	assert.Equal(t, 6, second.ImagesReused)
	assert.Equal(t, 5, second.PagesReused)
	assert.Equal(t, 5, second.PostsSkipped)
	assert.Equal(t, first.MenuID, second.MenuID)
	assert.Equal(t, 6, env.sideloader.calls)

	items, err := env.repo.FindItems(ctx, democontent.ItemQuery{})
	require.NoError(t, err)
	assert.Len(t, items, 16)
}

func TestRunImport_PermissionDenied(t *testing.T) {
	env := setupProvisioner(t)

	result, err := env.svc.RunImport(context.Background())
	assert.ErrorIs(t, err, democontent.ErrPermissionDenied)
	assert.Equal(t, democontent.ImportResult{}, result)
	assert.Zero(t, env.sideloader.calls)

	items, err := env.repo.FindItems(context.Background(), democontent.ItemQuery{})
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestRunImport_AllFetchesFail(t *testing.T) {
	env := setupProvisioner(t)
	for _, spec := range democontent.DefaultCatalog().Images {
		env.sideloader.failing[spec.URL] = true
	}
	ctx := adminContext()

	result, err := env.svc.RunImport(ctx)
	require.NoError(t, err)

	assert.Equal(t, 0, result.ImagesImported)
	assert.Equal(t, 5, result.PagesCreated)
	assert.Equal(t, 5, result.PostsCreated)

	about := findPage(t, env.repo, "about")
	assert.NotContains(t, about.Content, "wp:image")

	posts, err := env.repo.FindItems(ctx, democontent.ItemQuery{Types: []democontent.ContentType{democontent.ContentTypePost}})
	require.NoError(t, err)
	for _, post := range posts {
		assert.Zero(t, post.FeaturedMediaID)
	}
}

func TestRunImport_AttachmentsWithoutURL(t *testing.T) {
	env := setupProvisioner(t)
	env.sideloader.noURL = true
	ctx := adminContext()

	result, err := env.svc.RunImport(ctx)
	require.NoError(t, err)

	assert.Equal(t, 6, env.sideloader.calls)
	assert.Equal(t, 0, result.ImagesImported)
	assert.Equal(t, 0, result.ImagesReused)

	about := findPage(t, env.repo, "about")
	assert.NotContains(t, about.Content, "wp:image")
}

func TestRunImport_ReusesExistingPage(t *testing.T) {
	env := setupProvisioner(t)
	ctx := adminContext()

	existing := &democontent.Item{
		Type:   democontent.ContentTypePage,
		Title:  "About Us",
		Slug:   "about",
		Status: democontent.StatusPublish,
	}
	require.NoError(t, env.repo.CreateItem(ctx, existing))

	result, err := env.svc.RunImport(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, result.PagesCreated)
	assert.Equal(t, 1, result.PagesReused)

	got, err := env.repo.GetItem(ctx, existing.ID)
	require.NoError(t, err)
	assert.False(t, got.IsDemo(), "reused page must not be tagged")

	entries, err := env.repo.ListMenuItems(ctx, result.MenuID)
	require.NoError(t, err)
	assert.Equal(t, existing.ID, entries[1].ObjectID)

	t.Run("removal leaves the unmarked page", func(t *testing.T) {
		removed := env.svc.RemoveDemoContent(ctx)
		assert.Equal(t, 4+5+6+1, removed)

		_, err := env.repo.GetItem(ctx, existing.ID)
		assert.NoError(t, err)
	})
}

func TestRunImport_FrontPagePolicy(t *testing.T) {
	tests := []struct {
		name    string
		policy  democontent.FrontPagePolicy
		wantSet bool
	}{
		{name: "when known sets reused pages", policy: democontent.FrontPageWhenKnown, wantSet: true},
		{name: "when created skips reused pages", policy: democontent.FrontPageWhenCreated, wantSet: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupProvisioner(t, democontent.WithFrontPagePolicy(tt.policy))
			ctx := adminContext()

			home := &democontent.Item{Type: democontent.ContentTypePage, Title: "Home", Slug: "home", Status: democontent.StatusPublish}
			require.NoError(t, env.repo.CreateItem(ctx, home))

			_, err := env.svc.RunImport(ctx)
			require.NoError(t, err)

			_, err = env.repo.GetOption(ctx, democontent.OptionPageOnFront)
			if tt.wantSet {
				assertOption(t, env.repo, democontent.OptionPageOnFront, home.ID)
			} else {
				assert.ErrorIs(t, err, democontent.ErrOptionNotFound)
			}
			// blog was created by this run under both policies
			assertOption(t, env.repo, democontent.OptionPageForPosts, findPage(t, env.repo, "blog").ID)
		})
	}
}

func TestRunImport_MenuOptionFirstRunWins(t *testing.T) {
	env := setupProvisioner(t)
	ctx := adminContext()

	require.NoError(t, env.repo.SetOption(ctx, democontent.MenuOption, "12345"))

	result, err := env.svc.RunImport(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, int64(12345), result.MenuID)
	assertOption(t, env.repo, democontent.MenuOption, 12345)
}

func TestRunImport_PreservesOtherMenuLocations(t *testing.T) {
	env := setupProvisioner(t)
	ctx := adminContext()

	require.NoError(t, env.repo.SetMenuLocations(ctx, map[string]int64{"footer_navigation": 77}))

	result, err := env.svc.RunImport(ctx)
	require.NoError(t, err)

	locations, err := env.repo.GetMenuLocations(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{
		"footer_navigation":  77,
		"primary_navigation": result.MenuID,
	}, locations)
}

func TestRunImport_NoThemeLocations(t *testing.T) {
	env := setupProvisioner(t, democontent.WithThemeLocations(democontent.StaticLocations{}))
	ctx := adminContext()

	result, err := env.svc.RunImport(ctx)
	require.NoError(t, err)
	assert.Empty(t, result.MenuLocation)

	locations, err := env.repo.GetMenuLocations(ctx)
	require.NoError(t, err)
	assert.Empty(t, locations)
}

func TestPreferredMenuLocation(t *testing.T) {
	tests := []struct {
		name     string
		declared []democontent.MenuLocation
		want     string
	}{
		{name: "none", declared: nil, want: ""},
		{name: "primary_navigation wins", declared: []democontent.MenuLocation{{Slug: "primary"}, {Slug: "primary_navigation"}}, want: "primary_navigation"},
		{name: "primary before first", declared: []democontent.MenuLocation{{Slug: "footer"}, {Slug: "primary"}}, want: "primary"},
		{name: "first declared", declared: []democontent.MenuLocation{{Slug: "header"}, {Slug: "footer"}}, want: "header"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, democontent.PreferredMenuLocation(tt.declared))
		})
	}
}

func TestRemoveDemoContent(t *testing.T) {
	env := setupProvisioner(t)
	ctx := adminContext()

	result, err := env.svc.RunImport(ctx)
	require.NoError(t, err)

	unrelated := &democontent.Item{Type: democontent.ContentTypePost, Title: "Hello world", Status: democontent.StatusPublish}
	require.NoError(t, env.repo.CreateItem(ctx, unrelated))

	removed := env.svc.RemoveDemoContent(ctx)
	assert.Equal(t, 17, removed)

	demo, err := env.repo.FindItems(ctx, democontent.DemoItemsQuery())
	require.NoError(t, err)
	assert.Empty(t, demo)

	_, err = env.repo.GetItem(ctx, unrelated.ID)
	assert.NoError(t, err)

	_, err = env.repo.GetMenu(ctx, result.MenuID)
	assert.ErrorIs(t, err, democontent.ErrMenuNotFound)

	_, err = env.repo.GetOption(ctx, democontent.MenuOption)
	assert.ErrorIs(t, err, democontent.ErrOptionNotFound)

	locations, err := env.repo.GetMenuLocations(ctx)
	require.NoError(t, err)
	assert.Empty(t, locations)

	assert.Len(t, env.cleaner.removed, 6)
	assert.Equal(t, 1, env.sink.count("removal.completed"))

	t.Run("second removal finds nothing", func(t *testing.T) {
		assert.Equal(t, 0, env.svc.RemoveDemoContent(ctx))
	})
}

func TestRemoveDemoContent_DraftsAndMissingMenu(t *testing.T) {
	env := setupProvisioner(t)
	ctx := adminContext()

	draft := &democontent.Item{
		Type:       democontent.ContentTypePost,
		Title:      "Draft demo",
		Status:     democontent.StatusDraft,
		Attributes: map[string]string{democontent.MarkerAttribute: democontent.MarkerValue},
	}
	require.NoError(t, env.repo.CreateItem(ctx, draft))
	require.NoError(t, env.repo.SetOption(ctx, democontent.MenuOption, "999"))

	assert.Equal(t, 1, env.svc.RemoveDemoContent(ctx))

	_, err := env.repo.GetOption(ctx, democontent.MenuOption)
	assert.ErrorIs(t, err, democontent.ErrOptionNotFound)
}

func TestRemoveDemoContent_PermissionDenied(t *testing.T) {
	env := setupProvisioner(t)

	_, err := env.svc.RunImport(adminContext())
	require.NoError(t, err)

	assert.Equal(t, 0, env.svc.RemoveDemoContent(context.Background()))

	items, err := env.repo.FindItems(context.Background(), democontent.DemoItemsQuery())
	require.NoError(t, err)
	assert.Len(t, items, 16)
}

// flakyRepository fails deletion of one item.
type flakyRepository struct {
	*memory.Repository
	failID int64
}

func (f *flakyRepository) DeleteItem(ctx context.Context, id int64) error {
	if id == f.failID {
		return errors.New("database is locked")
	}
	return f.Repository.DeleteItem(ctx, id)
}

func TestRemoveDemoContent_FailuresReduceCount(t *testing.T) {
	env := setupProvisioner(t)
	ctx := adminContext()

	_, err := env.svc.RunImport(ctx)
	require.NoError(t, err)

	flaky := &flakyRepository{Repository: env.repo, failID: findPage(t, env.repo, "contact").ID}
	svc, err := democontent.New(
		democontent.WithRepository(flaky),
		democontent.WithSettings(env.repo),
		democontent.WithSideloader(env.sideloader),
	)
	require.NoError(t, err)

	assert.Equal(t, 16, svc.RemoveDemoContent(ctx))

	left, err := env.repo.FindItems(ctx, democontent.DemoItemsQuery())
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, "contact", left[0].Slug)
}

func TestImportRemoveRoundTrip(t *testing.T) {
	env := setupProvisioner(t)
	ctx := adminContext()

	for round := 0; round < 2; round++ {
		result, err := env.svc.RunImport(ctx)
		require.NoError(t, err)
		assert.Equal(t, 5, result.PagesCreated, "round %d", round)

		assert.Equal(t, 17, env.svc.RemoveDemoContent(ctx), "round %d", round)

		items, err := env.repo.FindItems(ctx, democontent.DemoItemsQuery())
		require.NoError(t, err)
		assert.Empty(t, items)
	}
}

func findPage(t *testing.T, repo democontent.Repository, slug string) *democontent.Item {
	t.Helper()
	items, err := repo.FindItems(context.Background(), democontent.ItemQuery{
		Types: []democontent.ContentType{democontent.ContentTypePage},
		Slug:  slug,
	})
	require.NoError(t, err)
	require.Len(t, items, 1, "page %q", slug)
	return items[0]
}

func assertOption(t *testing.T, settings democontent.Settings, key string, want int64) {
	t.Helper()
	value, err := settings.GetOption(context.Background(), key)
	require.NoError(t, err)
	assert.Equal(t, want, democontent.ParseID(value))
}
