package events_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/demo-content/pkg/democontent"
	"github.com/tendant/demo-content/pkg/democontent/events"
)

type received struct {
	eventType string
	subject   string
	source    string
	body      []byte
}

func newCollector(t *testing.T, status int) (*httptest.Server, func() []received) {
	t.Helper()
	var mu sync.Mutex
	var got []received

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		got = append(got, received{
			eventType: r.Header.Get("Ce-Type"),
			subject:   r.Header.Get("Ce-Subject"),
			source:    r.Header.Get("Ce-Source"),
			body:      body,
		})
		mu.Unlock()
		w.WriteHeader(status)
	}))
	t.Cleanup(server.Close)

	return server, func() []received {
		mu.Lock()
		defer mu.Unlock()
		return append([]received(nil), got...)
	}
}

func TestSink_Delivers(t *testing.T) {
	server, collected := newCollector(t, http.StatusAccepted)
	sink, err := events.NewSink(server.URL, "")
	require.NoError(t, err)
	ctx := context.Background()

	item := &democontent.Item{ID: 7, Type: democontent.ContentTypePage, Title: "Home", Slug: "home", Status: democontent.StatusPublish}
	require.NoError(t, sink.ItemCreated(ctx, item))
	require.NoError(t, sink.MenuDeleted(ctx, 3))
	require.NoError(t, sink.RemovalCompleted(ctx, 17))

	got := collected()
	require.Len(t, got, 3)

	assert.Equal(t, events.TypeItemCreated, got[0].eventType)
	assert.Equal(t, "7", got[0].subject)
	assert.Equal(t, "/demo-content", got[0].source)
	var data events.ItemData
	require.NoError(t, json.Unmarshal(got[0].body, &data))
	assert.Equal(t, "home", data.Slug)

	assert.Equal(t, events.TypeMenuDeleted, got[1].eventType)

	assert.Equal(t, events.TypeRemovalCompleted, got[2].eventType)
	assert.JSONEq(t, `{"removed":17}`, string(got[2].body))
}

func TestSink_RejectedDelivery(t *testing.T) {
	server, _ := newCollector(t, http.StatusInternalServerError)
	sink, err := events.NewSink(server.URL, "/test")
	require.NoError(t, err)

	err = sink.ImportCompleted(context.Background(), democontent.ImportResult{PagesCreated: 5})
	assert.Error(t, err)
}

func TestNewSink_RequiresTarget(t *testing.T) {
	_, err := events.NewSink("", "")
	assert.Error(t, err)
}
