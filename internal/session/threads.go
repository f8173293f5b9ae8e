package session

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"collaborative-whiteboard/internal/engine"

	"github.com/rs/zerolog"
)

// ThreadClient is the HTTP side of the transport: annotation-registry
// commands go to the REST surface rather than the websocket, since the
// registry assigns thread ids and stacking indices itself.
type ThreadClient struct {
	baseURL    string
	roomID     string
	token      string
	httpClient *http.Client
	log        zerolog.Logger
}

func NewThreadClient(baseURL, roomID, token string, log zerolog.Logger) *ThreadClient {
	return &ThreadClient{
		baseURL: baseURL,
		roomID:  roomID,
		token:   token,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
		log: log,
	}
}

type createThreadRequest struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Body string  `json:"body"`
}

// CreateThread implements engine.ThreadTransport. Fire-and-forget: the
// committed thread comes back through the room's thread notifications.
func (c *ThreadClient) CreateThread(anchor engine.Point, body string) {
	url := fmt.Sprintf("%s/rooms/%s/threads", c.baseURL, c.roomID)
	payload := createThreadRequest{X: anchor.X, Y: anchor.Y, Body: body}

	go func() {
		if err := c.post(url, payload); err != nil {
			c.log.Warn().Err(err).Msg("create thread failed")
		}
	}()
}

// FocusThread implements engine.ThreadTransport.
func (c *ThreadClient) FocusThread(id string) {
	url := fmt.Sprintf("%s/threads/%s/focus", c.baseURL, id)

	go func() {
		if err := c.post(url, nil); err != nil {
			c.log.Warn().Err(err).Msg("focus thread failed")
		}
	}()
}

func (c *ThreadClient) post(url string, payload any) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf(
			"registry error: status=%d body=%s",
			resp.StatusCode,
			string(b),
		)
	}

	return nil
}
