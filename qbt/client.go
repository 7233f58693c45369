// Package qbt is a minimal qBittorrent WebUI client. It only knows
// how to log in and collect peer addresses from active torrents,
// which is all the pipeline needs from it.
package qbt

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
)

// Logger receives per-torrent fetch failures. Those are skipped, not
// fatal: a single stalled torrent must not sink the whole peer list.
type Logger interface {
	TorrentError(name string, err error)
}

type noopLogger struct{}

func (n noopLogger) TorrentError(name string, err error) {}

type torrentInfo struct {
	Hash string `json:"hash"`
	Name string `json:"name"`
}

type torrentPeers struct {
	Peers map[string]struct {
		IP string `json:"ip"`
	} `json:"peers"`
}

type Client struct {
	baseURL string
	client  *http.Client
	logger  Logger

	username string
	password string
}

func NewClient(host string, port uint, username, password string, logger Logger) *Client {
	if logger == nil {
		logger = noopLogger{}
	}

	jar, _ := cookiejar.New(nil)

	return &Client{
		baseURL:  fmt.Sprintf("http://%s:%d", host, port),
		client:   &http.Client{Jar: jar},
		logger:   logger,
		username: username,
		password: password,
	}
}

// Login authenticates against the WebUI. The session cookie lands in
// the client's jar; a wrong password comes back as a 200 with a
// "Fails." body, so the body has to be inspected.
func (c *Client) Login(ctx context.Context) error {
	form := url.Values{}

	form.Set("username", c.username)
	form.Set("password", c.password)

	req, _ := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/v2/auth/login", strings.NewReader(form.Encode()))

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("cannot send a login request: %w", err)
	}

	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64))

	if resp.StatusCode != http.StatusOK || !strings.HasPrefix(string(body), "Ok") {
		return fmt.Errorf("login was rejected by qBittorrent")
	}

	return nil
}

func (c *Client) Logout(ctx context.Context) {
	req, _ := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/v2/auth/logout", nil)

	resp, err := c.client.Do(req)
	if err != nil {
		return
	}

	io.Copy(io.Discard, resp.Body) // nolint: errcheck
	resp.Body.Close()
}

// PeerAddresses walks every torrent and counts connections per peer
// address. The count is the occurrence weight the clustering stage
// feeds on: the same address connected on three torrents weighs 3.
func (c *Client) PeerAddresses(ctx context.Context) (map[string]uint, error) {
	torrents := []torrentInfo{}

	if err := c.getJSON(ctx, "/api/v2/torrents/info", nil, &torrents); err != nil {
		return nil, fmt.Errorf("cannot list torrents: %w", err)
	}

	counts := make(map[string]uint)

	for _, torrent := range torrents {
		peers := torrentPeers{}
		query := url.Values{"hash": []string{torrent.Hash}, "rid": []string{"0"}}

		if err := c.getJSON(ctx, "/api/v2/sync/torrentPeers", query, &peers); err != nil {
			c.logger.TorrentError(torrent.Name, err)

			continue
		}

		for _, peer := range peers.Peers {
			if peer.IP != "" {
				counts[peer.IP]++
			}
		}
	}

	return counts, nil
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, target interface{}) error {
	u := c.baseURL + path

	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)

	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("cannot send a request: %w", err)
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body) // nolint: errcheck

		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(bufio.NewReader(resp.Body)).Decode(target); err != nil {
		return fmt.Errorf("cannot parse a response: %w", err)
	}

	return nil
}
