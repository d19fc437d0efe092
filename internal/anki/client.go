package anki

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultURL is where AnkiConnect listens on a stock install.
	DefaultURL = "http://localhost:8765"

	// apiVersion is the AnkiConnect protocol version this client speaks.
	apiVersion = 6

	requestTimeout = 5 * time.Second
)

var (
	// ErrStoreUnavailable indicates the store could not be reached or timed out.
	ErrStoreUnavailable = errors.New("card store unavailable")

	// ErrUpdateRejected indicates the store reported an error for a field update.
	ErrUpdateRejected = errors.New("card store rejected update")

	// ErrUploadRejected indicates a media upload failed, either store-side or
	// in transport.
	ErrUploadRejected = errors.New("card store rejected media upload")

	// errStoreReported marks an application-level error carried in the store's
	// response body.
	errStoreReported = errors.New("store reported error")
)

// Client talks to a local AnkiConnect endpoint.
type Client struct {
	url        string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a card store client for the given AnkiConnect URL.
// An empty url selects DefaultURL.
func NewClient(url string, logger *zap.Logger) *Client {
	if url == "" {
		url = DefaultURL
	}
	return &Client{
		url:        url,
		httpClient: &http.Client{Timeout: requestTimeout},
		logger:     logger,
	}
}

type rpcRequest struct {
	Action  string `json:"action"`
	Version int    `json:"version"`
	Params  any    `json:"params,omitempty"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *string         `json:"error"`
}

// invoke posts one AnkiConnect action and decodes its result into out.
// Transport failures come back wrapped in ErrStoreUnavailable; errors the
// store reports in its response body are wrapped in errStoreReported.
func (c *Client) invoke(ctx context.Context, action string, params, out any) error {
	body, err := json.Marshal(rpcRequest{Action: action, Version: apiVersion, Params: params})
	if err != nil {
		return fmt.Errorf("failed to encode %s request: %w", action, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", action, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrStoreUnavailable, action, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s returned status %d", ErrStoreUnavailable, action, resp.StatusCode)
	}

	var r rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", action, err)
	}
	if r.Error != nil && *r.Error != "" {
		return fmt.Errorf("%w: %s: %s", errStoreReported, action, *r.Error)
	}
	if out != nil {
		if err := json.Unmarshal(r.Result, out); err != nil {
			return fmt.Errorf("failed to decode %s result: %w", action, err)
		}
	}
	return nil
}

// FindCards returns the identifiers of every card in the named deck. A store
// that is unreachable or times out is logged and reported as
// ErrStoreUnavailable; callers should treat that as "no cards to process".
func (c *Client) FindCards(ctx context.Context, deck string) ([]int64, error) {
	params := map[string]any{"query": fmt.Sprintf("deck:%s", deck)}

	var ids []int64
	if err := c.invoke(ctx, "findCards", params, &ids); err != nil {
		c.logger.Error("failed to fetch card ids",
			zap.String("url", c.url),
			zap.String("deck", deck),
			zap.Error(err))
		return nil, err
	}
	return ids, nil
}

// CardsInfo returns full field data for the given card identifiers.
func (c *Client) CardsInfo(ctx context.Context, ids []int64) ([]Card, error) {
	params := map[string]any{"cards": ids}

	var cards []Card
	if err := c.invoke(ctx, "cardsInfo", params, &cards); err != nil {
		return nil, err
	}
	return cards, nil
}

// UpdateNoteFields writes the enrichment results into a note: the Audio
// field gets a playback directive for audioFile, Definition the given text,
// and Extra information the examples joined with HTML line breaks. A
// non-positive note id is a caller error: it is logged and the update is
// aborted without mutating the card and without returning an error.
func (c *Client) UpdateNoteFields(ctx context.Context, noteID int64, audioFile, definition string, examples []string) error {
	if noteID <= 0 {
		c.logger.Error("note id must be a positive integer", zap.Int64("note", noteID))
		return nil
	}

	params := map[string]any{
		"note": map[string]any{
			"id": noteID,
			"fields": map[string]string{
				FieldAudio:      SoundTag(audioFile),
				FieldDefinition: definition,
				FieldExtra:      strings.Join(examples, "<br>"),
			},
		},
	}

	if err := c.invoke(ctx, "updateNoteFields", params, nil); err != nil {
		if errors.Is(err, errStoreReported) {
			return fmt.Errorf("%w: note %d: %v", ErrUpdateRejected, noteID, err)
		}
		return err
	}
	return nil
}

// StoreMediaFile uploads raw bytes into the store's media library under the
// requested name. The store may rename on collision, so the returned name,
// not the requested one, is what Audio fields must reference.
func (c *Client) StoreMediaFile(ctx context.Context, fileName string, data []byte) (string, error) {
	params := map[string]any{
		"filename": fileName,
		"data":     base64.StdEncoding.EncodeToString(data),
	}

	var stored string
	if err := c.invoke(ctx, "storeMediaFile", params, &stored); err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrUploadRejected, fileName, err)
	}
	return stored, nil
}
