package scanner

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/net/publicsuffix"
)

const (
	loginPath            = "processlogin.php"
	wantsPath            = "API/wants"
	loginIncorrectMarker = "Login incorrect"
	maxBodyBytes         = 1 << 20
)

// Client talks to the buying service. It keeps the cookies from the last
// login and sends them with every lookup.
type Client struct {
	baseURL *url.URL
	months  int
	timeout time.Duration
	log     *slog.Logger

	mu            sync.Mutex
	http          *http.Client
	authenticated bool
}

// NewClient validates cfg and returns a client with an empty session.
func NewClient(cfg Config, logger *slog.Logger) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	u, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	c := &Client{
		baseURL: u,
		months:  cfg.Months,
		timeout: cfg.Timeout,
		log:     logger,
	}
	if c.http, err = c.newHTTPClient(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Client) newHTTPClient() (*http.Client, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("cookie jar: %w", err)
	}
	return &http.Client{Jar: jar, Timeout: c.timeout}, nil
}

// Authenticated reports whether the last Login succeeded.
func (c *Client) Authenticated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.authenticated
}

// Login replaces the held session. It fetches the landing page for baseline
// cookies, then posts the credentials. The service answers 200 either way,
// so a wrong password is recognised by the page text.
func (c *Client) Login(ctx context.Context, username, password string) error {
	hc, err := c.newHTTPClient()
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.http = hc
	c.authenticated = false
	c.mu.Unlock()

	if _, _, err := c.do(ctx, hc, http.MethodGet, c.endpoint("", ""), nil); err != nil {
		return fmt.Errorf("%w: %w", ErrLoginFailed, err)
	}

	form := url.Values{}
	form.Set("ReturnUrl", "")
	form.Set("PostBackAction", "SignIn")
	form.Set("Username", username)
	form.Set("Password", password)

	status, body, err := c.do(ctx, hc, http.MethodPost, c.endpoint(loginPath, ""), strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrLoginFailed, err)
	}
	if strings.Contains(string(body), loginIncorrectMarker) {
		c.log.Debug("login rejected", "user", username)
		return ErrInvalidCredentials
	}
	if status < 200 || status > 299 {
		return fmt.Errorf("%w: %w %d", ErrLoginFailed, ErrUnexpectedStatus, status)
	}

	c.mu.Lock()
	c.authenticated = true
	c.mu.Unlock()
	c.log.Debug("logged in", "user", username)
	return nil
}

// Find looks up digits against the remote wants list. It satisfies Finder.
func (c *Client) Find(ctx context.Context, digits string) (LookupResult, error) {
	return c.Lookup(ctx, digits)
}

// Lookup queries /API/wants for an already normalized barcode. Every call
// goes to the server; nothing is cached.
func (c *Client) Lookup(ctx context.Context, digits string) (LookupResult, error) {
	c.mu.Lock()
	hc, ok := c.http, c.authenticated
	c.mu.Unlock()
	if !ok {
		return LookupResult{}, ErrNoSession
	}

	query := fmt.Sprintf("upc=%s&months=%d&credits", url.QueryEscape(digits), c.months)
	status, body, err := c.do(ctx, hc, http.MethodGet, c.endpoint(wantsPath, query), nil)
	if err != nil {
		return LookupResult{}, fmt.Errorf("lookup %s: %w", digits, err)
	}
	if status < 200 || status > 299 {
		return LookupResult{}, fmt.Errorf("lookup %s: %w %d", digits, ErrUnexpectedStatus, status)
	}

	res, err := ParseLookup(digits, body)
	if err != nil {
		return LookupResult{}, fmt.Errorf("lookup %s: %w", digits, err)
	}
	c.log.Debug("lookup", "barcode", digits, "matched", res.Matched())
	return res, nil
}

func (c *Client) endpoint(p, rawQuery string) string {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + "/" + p
	u.RawPath = ""
	u.RawQuery = rawQuery
	return u.String()
}

func (c *Client) do(ctx context.Context, hc *http.Client, method, target string, body io.Reader) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return 0, nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	req.Header.Set("Accept", "application/json, text/html;q=0.9")

	resp, err := hc.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read body: %w", err)
	}
	c.log.Debug("http", "method", method, "url", req.URL.Path, "status", resp.StatusCode)
	return resp.StatusCode, data, nil
}
