package libcal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"time"

	"github.com/campusrooms/roomwatch/internal/model"
)

const userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/137.0.0.0 Safari/537.36"

// minuteLayout truncates slot timestamps to minute precision for the cart
// endpoints. The extend update[end] field alone keeps seconds.
const minuteLayout = "2006-01-02 15:04"

// Config identifies the remote space-booking installation and the attestation
// question its booking form requires.
type Config struct {
	BaseURL           string
	LocationID        int
	GroupID           int
	AttestationField  string
	AttestationAnswer string
}

// Requester is the person a reservation is committed for.
type Requester struct {
	FirstName string
	LastName  string
	Email     string
}

// GridSlot is one slot as returned by the availability grid, prior to
// classification. ClassName is a pointer because the remote marks
// unavailability by the presence of the key, not its value.
type GridSlot struct {
	ItemID    int     `json:"itemId"`
	Start     string  `json:"start"`
	End       string  `json:"end"`
	Checksum  string  `json:"checksum"`
	ClassName *string `json:"className"`
}

type gridResponse struct {
	Slots []GridSlot `json:"slots"`
}

// CartID is the remote's opaque pending-booking id. The remote has returned
// it both as a JSON number and as a JSON string, so it decodes from either
// and is echoed back verbatim as text.
type CartID string

func (c *CartID) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = CartID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*c = CartID(n.String())
	return nil
}

// Reservation is the remote's pending cart entry after a reserve or extend
// call. The id is opaque and echoed back verbatim on subsequent calls.
type Reservation struct {
	ID              CartID   `json:"id"`
	EID             int      `json:"eid"`
	Checksum        string   `json:"checksum"`
	OptionChecksums []string `json:"optionChecksums"`
}

type cartResponse struct {
	Bookings []Reservation `json:"bookings"`
}

// Client talks to the remote space-booking system. Each client carries its
// own cookie jar: the cart built by Reserve and Extend lives in the remote
// session, so one booking attempt must run entirely on one client.
type Client struct {
	cfg    Config
	client *http.Client
}

// NewClient creates a client with a fresh session
func NewClient(cfg Config, timeout time.Duration) *Client {
	jar, _ := cookiejar.New(nil)
	return &Client{
		cfg: cfg,
		client: &http.Client{
			Timeout: timeout,
			Jar:     jar,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
				DisableCompression:  false,
			},
		},
	}
}

func (c *Client) referer() string {
	return fmt.Sprintf("%s/spaces?lid=%d&gid=%d", c.cfg.BaseURL, c.cfg.LocationID, c.cfg.GroupID)
}

func (c *Client) post(ctx context.Context, stage, path, contentType string, body io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, body)
	if err != nil {
		return nil, transportErr(stage, "failed to build request", err)
	}

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	req.Header.Set("Origin", c.cfg.BaseURL)
	req.Header.Set("Referer", c.referer())

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, transportErr(stage, "request failed", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportErr(stage, "failed to read response", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, transportErr(stage, fmt.Sprintf("unexpected status %d", resp.StatusCode), nil)
	}

	return data, nil
}

func (c *Client) postForm(ctx context.Context, stage, path string, form url.Values) ([]byte, error) {
	return c.post(ctx, stage, path, "application/x-www-form-urlencoded", bytes.NewBufferString(form.Encode()))
}

// FetchGrid retrieves the raw availability grid for one day.
func (c *Client) FetchGrid(ctx context.Context, date string) ([]GridSlot, error) {
	start, err := time.ParseInLocation(model.DateLayout, date, time.Local)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", date, err)
	}
	end := start.AddDate(0, 0, 1)

	form := url.Values{}
	form.Set("lid", strconv.Itoa(c.cfg.LocationID))
	form.Set("gid", strconv.Itoa(c.cfg.GroupID))
	form.Set("eid", "-1")
	form.Set("seat", "0")
	form.Set("seatId", "0")
	form.Set("zone", "0")
	form.Set("start", date)
	form.Set("end", end.Format(model.DateLayout))
	form.Set("pageIndex", "0")
	form.Set("pageSize", "18")

	data, err := c.postForm(ctx, StageGrid, "/spaces/availability/grid", form)
	if err != nil {
		return nil, err
	}

	var grid gridResponse
	if err := json.Unmarshal(data, &grid); err != nil {
		return nil, protocolErr(StageGrid, "invalid grid response", err)
	}

	return grid.Slots, nil
}

// Reserve puts the first hour of a run into the remote cart.
func (c *Client) Reserve(ctx context.Context, slot model.Slot, date string) (*Reservation, error) {
	form := url.Values{}
	form.Set("add[eid]", strconv.Itoa(slot.RoomID))
	form.Set("add[gid]", strconv.Itoa(c.cfg.GroupID))
	form.Set("add[lid]", strconv.Itoa(c.cfg.LocationID))
	form.Set("add[start]", slot.Start.Format(minuteLayout))
	form.Set("add[end]", slot.End.Format(minuteLayout))
	form.Set("add[checksum]", slot.Checksum)
	form.Set("lid", strconv.Itoa(c.cfg.LocationID))
	form.Set("gid", strconv.Itoa(c.cfg.GroupID))
	form.Set("start", date)
	form.Set("end", date)

	data, err := c.postForm(ctx, StageReserve, "/spaces/availability/booking/add", form)
	if err != nil {
		return nil, err
	}

	return decodeCart(StageReserve, data)
}

// Extend stretches the pending reservation to cover the second hour. The
// remote advertises the valid extension via the second option checksum; its
// absence means the second hour cannot be attached to this cart entry.
func (c *Client) Extend(ctx context.Context, res *Reservation, first, second model.Slot, date string) (*Reservation, error) {
	if len(res.OptionChecksums) < 2 {
		return nil, protocolErr(StageExtend, "no extension checksum offered", nil)
	}

	form := url.Values{}
	form.Set("update[id]", string(res.ID))
	form.Set("update[checksum]", res.OptionChecksums[1])
	form.Set("update[end]", second.End.Format(model.TimeLayout))
	form.Set("lid", strconv.Itoa(c.cfg.LocationID))
	form.Set("gid", strconv.Itoa(c.cfg.GroupID))
	form.Set("start", date)
	form.Set("end", date)
	form.Set("bookings[0][id]", string(res.ID))
	form.Set("bookings[0][eid]", strconv.Itoa(res.EID))
	form.Set("bookings[0][seat_id]", "0")
	form.Set("bookings[0][gid]", strconv.Itoa(c.cfg.GroupID))
	form.Set("bookings[0][lid]", strconv.Itoa(c.cfg.LocationID))
	form.Set("bookings[0][start]", first.Start.Format(minuteLayout))
	form.Set("bookings[0][end]", first.End.Format(minuteLayout))
	form.Set("bookings[0][checksum]", res.Checksum)

	data, err := c.postForm(ctx, StageExtend, "/spaces/availability/booking/add", form)
	if err != nil {
		return nil, err
	}

	return decodeCart(StageExtend, data)
}

func decodeCart(stage string, data []byte) (*Reservation, error) {
	var cart cartResponse
	if err := json.Unmarshal(data, &cart); err != nil {
		return nil, protocolErr(stage, "invalid cart response", err)
	}
	if len(cart.Bookings) == 0 {
		return nil, protocolErr(stage, "no bookings returned", nil)
	}
	return &cart.Bookings[0], nil
}

// Commit finalizes the pending reservation with the requester's details.
// Returns the confirmed booking id. The commit endpoint rejects the
// urlencoded content type the cart endpoints use, so the payload goes out as
// multipart form data.
func (c *Client) Commit(ctx context.Context, res *Reservation, run []model.Slot, requester Requester) (string, error) {
	eid := res.EID
	if eid == 0 {
		eid = run[0].RoomID
	}

	booking := map[string]any{
		"id":       1,
		"eid":      eid,
		"seat_id":  0,
		"gid":      c.cfg.GroupID,
		"lid":      c.cfg.LocationID,
		"start":    model.RunStart(run).Format(minuteLayout),
		"end":      model.RunEnd(run).Format(minuteLayout),
		"checksum": res.Checksum,
	}

	bookings, err := json.Marshal([]map[string]any{booking})
	if err != nil {
		return "", protocolErr(StageCommit, "failed to encode bookings", err)
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fields := map[string]string{
		"fname":                requester.FirstName,
		"lname":                requester.LastName,
		"email":                requester.Email,
		c.cfg.AttestationField: c.cfg.AttestationAnswer,
		"bookings":             string(bookings),
		"returnUrl":            fmt.Sprintf("/spaces?lid=%d&gid=%d", c.cfg.LocationID, c.cfg.GroupID),
		"pickupHolds":          "",
		"method":               "11",
	}
	for name, value := range fields {
		if err := w.WriteField(name, value); err != nil {
			return "", protocolErr(StageCommit, "failed to encode form", err)
		}
	}
	if err := w.Close(); err != nil {
		return "", protocolErr(StageCommit, "failed to encode form", err)
	}

	data, err := c.post(ctx, StageCommit, "/ajax/space/book", w.FormDataContentType(), &buf)
	if err != nil {
		return "", err
	}

	// Numeric booking ids must survive as exact digits, not float64.
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var confirmation map[string]any
	if err := dec.Decode(&confirmation); err != nil {
		return "", protocolErr(StageCommit, "invalid commit response", err)
	}

	bookID, ok := confirmation["bookId"]
	if !ok {
		return "", protocolErr(StageCommit, "no booking id in response", nil)
	}

	return fmt.Sprint(bookID), nil
}
