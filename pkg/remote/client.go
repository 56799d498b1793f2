package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/matt20966/owner-schedule/pkg/schedule"
	log "github.com/sirupsen/logrus"
)

// RemoteError reports a failed call against the remote schedule store.
// StatusCode is zero when the request never reached the store.
type RemoteError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *RemoteError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("remote store %s returned status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("remote store %s failed: %v", e.Op, e.Err)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// Client is the gateway to the remote schedule store. The store owns all
// persistence semantics; the client only issues the four operations and
// decodes rows.
type Client interface {
	// Fetch returns all rows with a start instant inside the window,
	// ordered by start. The store materializes one row per series
	// occurrence.
	Fetch(ctx context.Context, from time.Time, to time.Time) ([]schedule.Event, error)
	// Create stores a new event (and its series when the payload is
	// recurring) and returns the created row with its assigned id.
	Create(ctx context.Context, payload schedule.EventPayload) (schedule.Event, error)
	// Update edits the event with the given breadth.
	Update(ctx context.Context, id string, scope schedule.Scope, payload schedule.EventPayload) error
	// Delete removes the event with the given breadth.
	Delete(ctx context.Context, id string, scope schedule.Scope) error
}

type ClientImpl struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *ClientImpl {
	return &ClientImpl{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *ClientImpl) Fetch(ctx context.Context, from time.Time, to time.Time) ([]schedule.Event, error) {
	query := url.Values{}
	query.Set("datetime__gte", from.Format(time.RFC3339))
	query.Set("datetime__lte", to.Format(time.RFC3339))
	reqURL := fmt.Sprintf("%s/api/schedule/?%s", c.baseURL, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, &RemoteError{Op: "fetch", Err: err}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		log.Errorf("Failed to fetch schedule window: %v", err)
		return nil, &RemoteError{Op: "fetch", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Errorf("Schedule store returned non-OK status on fetch: %d", resp.StatusCode)
		return nil, &RemoteError{Op: "fetch", StatusCode: resp.StatusCode}
	}

	var rows []eventDTO
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, &RemoteError{Op: "fetch", Err: fmt.Errorf("decoding rows: %w", err)}
	}

	events := make([]schedule.Event, 0, len(rows))
	for _, row := range rows {
		event, err := row.toEvent()
		if err != nil {
			return nil, &RemoteError{Op: "fetch", Err: err}
		}
		events = append(events, event)
	}
	return events, nil
}

func (c *ClientImpl) Create(ctx context.Context, payload schedule.EventPayload) (schedule.Event, error) {
	body, err := json.Marshal(payloadToDTO(payload, schedule.ScopeUnset))
	if err != nil {
		return schedule.Event{}, &RemoteError{Op: "create", Err: err}
	}

	reqURL := c.baseURL + "/api/schedule/"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(body))
	if err != nil {
		return schedule.Event{}, &RemoteError{Op: "create", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		log.Errorf("Failed to create event: %v", err)
		return schedule.Event{}, &RemoteError{Op: "create", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		log.Errorf("Schedule store returned non-Created status on create: %d", resp.StatusCode)
		return schedule.Event{}, &RemoteError{Op: "create", StatusCode: resp.StatusCode}
	}

	var row eventDTO
	if err := json.NewDecoder(resp.Body).Decode(&row); err != nil {
		return schedule.Event{}, &RemoteError{Op: "create", Err: fmt.Errorf("decoding created row: %w", err)}
	}
	return row.toEvent()
}

func (c *ClientImpl) Update(ctx context.Context, id string, scope schedule.Scope, payload schedule.EventPayload) error {
	body, err := json.Marshal(payloadToDTO(payload, scope))
	if err != nil {
		return &RemoteError{Op: "update", Err: err}
	}

	reqURL := fmt.Sprintf("%s/api/schedule/%s/edit/", c.baseURL, url.PathEscape(id))
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, reqURL, bytes.NewReader(body))
	if err != nil {
		return &RemoteError{Op: "update", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		log.Errorf("Failed to update event %s: %v", id, err)
		return &RemoteError{Op: "update", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Errorf("Schedule store returned non-OK status on update: %d", resp.StatusCode)
		return &RemoteError{Op: "update", StatusCode: resp.StatusCode}
	}
	return nil
}

func (c *ClientImpl) Delete(ctx context.Context, id string, scope schedule.Scope) error {
	query := url.Values{}
	query.Set("delete_type", string(scope))
	reqURL := fmt.Sprintf("%s/api/schedule/%s/delete/?%s", c.baseURL, url.PathEscape(id), query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, reqURL, nil)
	if err != nil {
		return &RemoteError{Op: "delete", Err: err}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		log.Errorf("Failed to delete event %s: %v", id, err)
		return &RemoteError{Op: "delete", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		log.Errorf("Schedule store returned unexpected status on delete: %d", resp.StatusCode)
		return &RemoteError{Op: "delete", StatusCode: resp.StatusCode}
	}
	return nil
}
