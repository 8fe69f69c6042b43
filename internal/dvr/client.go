// Package dvr is the HTTP client for a remote DVR server: the XML event
// feed and the camera list it exposes.
package dvr

import (
	"context"
	"encoding/xml"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/technosupport/ts-dvr-gateway/internal/event"
)

const DefaultTimeout = 10 * time.Second

type Credentials struct {
	Username string
	Password string
}

type Client struct {
	baseURL string
	cred    Credentials
	client  *http.Client
}

// NewClient builds a client for one DVR server. baseURL carries scheme,
// host and port, without a trailing slash.
func NewClient(baseURL string, cred Credentials) *Client {
	return &Client{
		baseURL: baseURL,
		cred:    cred,
		client: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
}

func (c *Client) doRequest(ctx context.Context, method, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, err
	}
	if c.cred.Username != "" {
		req.SetBasicAuth(c.cred.Username, c.cred.Password)
	}
	return c.client.Do(req)
}

// Feed XML structs. Lenient fields stay strings so one malformed record
// cannot abort the whole decode.
type eventFeed struct {
	XMLName      xml.Name    `xml:"events"`
	TzOffsetMins int16       `xml:"tz-offset-mins,attr"`
	Events       []feedEvent `xml:"event"`
}

type feedEvent struct {
	ID       string `xml:"id,attr"`
	MediaID  string `xml:"media-id,attr"`
	Level    string `xml:"level"`
	Type     string `xml:"type"`
	Location string `xml:"location"`
	Start    string `xml:"start"`
	Duration string `xml:"duration"`
}

type cameraList struct {
	XMLName xml.Name `xml:"cameras"`
	Cameras []struct {
		ID   int    `xml:"id,attr"`
		Name string `xml:"name"`
	} `xml:"camera"`
}

type Camera struct {
	ID   int
	Name string
}

// FetchEvents pulls the server's event feed. Records with no usable
// start time are skipped and counted in the second return; vocabulary
// violations inside a record degrade to the safe defaults instead.
func (c *Client) FetchEvents(ctx context.Context, serverID uuid.UUID, since time.Time, limit int) ([]*event.Event, int, error) {
	url := fmt.Sprintf("%s/events/?limit=%d", c.baseURL, limit)
	if !since.IsZero() {
		url += fmt.Sprintf("&since=%d", since.Unix())
	}

	resp, err := c.doRequest(ctx, http.MethodGet, url)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, 0, fmt.Errorf("dvr: event feed status %d", resp.StatusCode)
	}

	var feed eventFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, 0, fmt.Errorf("dvr: decode event feed: %w", err)
	}

	var out []*event.Event
	skipped := 0

	for _, rec := range feed.Events {
		startUnix, err := strconv.ParseInt(rec.Start, 10, 64)
		if err != nil {
			log.Printf("[WARN] dvr: skipping event with bad start %q from %s", rec.Start, c.baseURL)
			skipped++
			continue
		}

		e := event.New(serverID)
		e.ID, _ = strconv.ParseInt(rec.ID, 10, 64)
		e.MediaID = -1
		if rec.MediaID != "" {
			if mid, err := strconv.ParseInt(rec.MediaID, 10, 64); err == nil {
				e.MediaID = mid
			}
		}
		e.Level = event.ParseLevel(rec.Level)
		e.Type = event.ParseType(rec.Type)
		e.SetLocation(rec.Location)
		e.SetUTCStart(time.Unix(startUnix, 0))
		e.SetServerTzOffsetMins(feed.TzOffsetMins)

		if rec.Duration == "" {
			e.SetInProgress()
		} else if d, err := strconv.Atoi(rec.Duration); err == nil {
			e.SetDurationSeconds(d)
		} else {
			e.SetInProgress()
		}

		out = append(out, e)
	}

	return out, skipped, nil
}

// ListCameras pulls the server's camera inventory for location naming.
func (c *Client) ListCameras(ctx context.Context) ([]Camera, error) {
	url := c.baseURL + "/cameras/"

	resp, err := c.doRequest(ctx, http.MethodGet, url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("dvr: camera list status %d", resp.StatusCode)
	}

	var list cameraList
	if err := xml.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, fmt.Errorf("dvr: decode camera list: %w", err)
	}

	out := make([]Camera, 0, len(list.Cameras))
	for _, cam := range list.Cameras {
		out = append(out, Camera{ID: cam.ID, Name: cam.Name})
	}
	return out, nil
}

// Ping probes the feed endpoint for reachability.
func (c *Client) Ping(ctx context.Context) error {
	url := c.baseURL + "/events/?limit=1"
	resp, err := c.doRequest(ctx, http.MethodGet, url)
	if err != nil {
		return err
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("dvr: ping status %d", resp.StatusCode)
	}
	return nil
}
