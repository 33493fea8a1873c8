// Package statsapi reads active rosters from the MLB Stats API and per-player
// home runs from the Baseball Savant Statcast CSV export.
package statsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/dingerzone/seatfinder/internal/domain/model"
	"github.com/dingerzone/seatfinder/pkg/logger"
)

// Default upstream base URLs.
const (
	DefaultStatsURL  = "https://statsapi.mlb.com"
	DefaultSavantURL = "https://baseballsavant.mlb.com"

	dateLayout = "2006-01-02"
)

// Client talks to both upstreams.
type Client struct {
	http      *retryablehttp.Client
	statsURL  string
	savantURL string
	log       logger.Logger

	mu      sync.Mutex
	teamIDs map[string]int
}

// Option configures a Client.
type Option func(*Client)

// WithStatsURL overrides the Stats API base URL.
func WithStatsURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.statsURL = strings.TrimRight(u, "/")
		}
	}
}

// WithSavantURL overrides the Savant base URL.
func WithSavantURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.savantURL = strings.TrimRight(u, "/")
		}
	}
}

// WithLogger sets the client logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// NewClient builds a Client over hc.
func NewClient(hc *retryablehttp.Client, opts ...Option) *Client {
	c := &Client{
		http:      hc,
		statsURL:  DefaultStatsURL,
		savantURL: DefaultSavantURL,
		log:       logger.Get().Named("statsapi"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type teamsResponse struct {
	Teams []struct {
		ID           int    `json:"id"`
		Abbreviation string `json:"abbreviation"`
	} `json:"teams"`
}

type rosterResponse struct {
	Roster []struct {
		Person struct {
			ID       int    `json:"id"`
			FullName string `json:"fullName"`
		} `json:"person"`
	} `json:"roster"`
}

// TeamIDs returns club abbreviation to Stats API team id. A successful
// lookup is cached for the life of the client.
func (c *Client) TeamIDs(ctx context.Context) (map[string]int, error) {
	c.mu.Lock()
	cached := c.teamIDs
	c.mu.Unlock()
	if cached != nil {
		return cached, nil
	}

	var resp teamsResponse
	if err := c.getJSON(ctx, c.statsURL+"/api/v1/teams?sportId=1", &resp); err != nil {
		return nil, err
	}
	ids := make(map[string]int, len(resp.Teams))
	for _, t := range resp.Teams {
		ids[strings.ToUpper(t.Abbreviation)] = t.ID
	}

	c.mu.Lock()
	c.teamIDs = ids
	c.mu.Unlock()
	return ids, nil
}

// Roster returns the active roster for a club abbreviation.
func (c *Client) Roster(ctx context.Context, abbr string) ([]model.Player, error) {
	ids, err := c.TeamIDs(ctx)
	if err != nil {
		return nil, err
	}
	abbr = strings.ToUpper(strings.TrimSpace(abbr))
	id, ok := ids[abbr]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTeam, abbr)
	}

	var resp rosterResponse
	if err := c.getJSON(ctx, fmt.Sprintf("%s/api/v1/teams/%d/roster/active", c.statsURL, id), &resp); err != nil {
		return nil, err
	}
	players := make([]model.Player, 0, len(resp.Roster))
	for _, r := range resp.Roster {
		if r.Person.ID == 0 {
			continue
		}
		players = append(players, model.Player{ID: r.Person.ID, FullName: r.Person.FullName, Team: abbr})
	}
	c.log.Debug(ctx, "roster loaded", logger.String("team", abbr), logger.Int("players", len(players)))
	return players, nil
}

// HomeRuns returns the player's home runs within w that carry launch speed,
// launch angle and both hit coordinates.
func (c *Client) HomeRuns(ctx context.Context, p model.Player, w model.DateWindow) ([]model.BattedBallEvent, error) {
	q := url.Values{}
	q.Set("all", "true")
	q.Set("player_type", "batter")
	q.Set("type", "details")
	q.Set("game_date_gt", w.Start.Format(dateLayout))
	q.Set("game_date_lt", w.End.Format(dateLayout))
	q.Set("batters_lookup[]", strconv.Itoa(p.ID))

	body, err := c.get(ctx, c.savantURL+"/statcast_search/csv?"+q.Encode())
	if err != nil {
		return nil, err
	}
	defer body.Close()

	events, err := ParseStatcastCSV(body)
	if err != nil {
		return nil, fmt.Errorf("player %d: %w", p.ID, err)
	}
	for i := range events {
		events[i].PlayerID = p.ID
		if events[i].PlayerName == "" {
			events[i].PlayerName = p.FullName
		}
	}
	return events, nil
}

func (c *Client) getJSON(ctx context.Context, u string, dst any) error {
	body, err := c.get(ctx, u)
	if err != nil {
		return err
	}
	defer body.Close()
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		return fmt.Errorf("%w: decode %s: %v", ErrBadPayload, u, err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, u string) (io.ReadCloser, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: GET %s: %v", ErrUpstream, u, err)
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("%w: GET %s: status %d", ErrUpstream, u, resp.StatusCode)
	}
	return resp.Body, nil
}
