// Package events delivers provisioning events to an audit endpoint as
// CloudEvents over HTTP.
package events

import (
	"context"
	"fmt"
	"strconv"
	"time"

	cloudevents "github.com/cloudevents/sdk-go/v2"
	"github.com/google/uuid"
	"github.com/tendant/demo-content/pkg/democontent"
)

// Event types
const (
	TypeItemCreated      = "com.sparti.demo.item.created"
	TypeItemDeleted      = "com.sparti.demo.item.deleted"
	TypeMenuCreated      = "com.sparti.demo.menu.created"
	TypeMenuDeleted      = "com.sparti.demo.menu.deleted"
	TypeImportCompleted  = "com.sparti.demo.import.completed"
	TypeRemovalCompleted = "com.sparti.demo.removal.completed"
)

const defaultSource = "/demo-content"

// ItemData is the payload of item events.
type ItemData struct {
	ID     int64                   `json:"id"`
	Type   democontent.ContentType `json:"type"`
	Title  string                  `json:"title"`
	Slug   string                  `json:"slug,omitempty"`
	Status democontent.ItemStatus  `json:"status"`
}

// MenuData is the payload of menu events.
type MenuData struct {
	ID   int64  `json:"id"`
	Name string `json:"name,omitempty"`
}

// RemovalData is the payload of removal.completed.
type RemovalData struct {
	Removed int `json:"removed"`
}

// Sink posts events to a CloudEvents HTTP target.
type Sink struct {
	client cloudevents.Client
	target string
	source string
}

var _ democontent.EventSink = (*Sink)(nil)

// NewSink creates a sink posting to target. source identifies this
// installation and defaults to /demo-content.
func NewSink(target, source string) (*Sink, error) {
	if target == "" {
		return nil, fmt.Errorf("event target is required")
	}
	client, err := cloudevents.NewClientHTTP()
	if err != nil {
		return nil, fmt.Errorf("failed to create cloudevents client: %w", err)
	}
	if source == "" {
		source = defaultSource
	}
	return &Sink{client: client, target: target, source: source}, nil
}

func (s *Sink) send(ctx context.Context, eventType, subject string, data interface{}) error {
	event := cloudevents.NewEvent()
	event.SetID(uuid.New().String())
	event.SetType(eventType)
	event.SetSource(s.source)
	event.SetTime(time.Now().UTC())
	if subject != "" {
		event.SetSubject(subject)
	}
	if err := event.SetData(cloudevents.ApplicationJSON, data); err != nil {
		return fmt.Errorf("failed to encode %s: %w", eventType, err)
	}

	result := s.client.Send(cloudevents.ContextWithTarget(ctx, s.target), event)
	if !cloudevents.IsACK(result) {
		return fmt.Errorf("failed to deliver %s: %w", eventType, result)
	}
	return nil
}

func itemData(item *democontent.Item) ItemData {
	return ItemData{ID: item.ID, Type: item.Type, Title: item.Title, Slug: item.Slug, Status: item.Status}
}

func (s *Sink) ItemCreated(ctx context.Context, item *democontent.Item) error {
	return s.send(ctx, TypeItemCreated, strconv.FormatInt(item.ID, 10), itemData(item))
}

func (s *Sink) ItemDeleted(ctx context.Context, item *democontent.Item) error {
	return s.send(ctx, TypeItemDeleted, strconv.FormatInt(item.ID, 10), itemData(item))
}

func (s *Sink) MenuCreated(ctx context.Context, menu *democontent.Menu) error {
	return s.send(ctx, TypeMenuCreated, strconv.FormatInt(menu.ID, 10), MenuData{ID: menu.ID, Name: menu.Name})
}

func (s *Sink) MenuDeleted(ctx context.Context, menuID int64) error {
	return s.send(ctx, TypeMenuDeleted, strconv.FormatInt(menuID, 10), MenuData{ID: menuID})
}

func (s *Sink) ImportCompleted(ctx context.Context, result democontent.ImportResult) error {
	return s.send(ctx, TypeImportCompleted, "", result)
}

func (s *Sink) RemovalCompleted(ctx context.Context, removed int) error {
	return s.send(ctx, TypeRemovalCompleted, "", RemovalData{Removed: removed})
}
