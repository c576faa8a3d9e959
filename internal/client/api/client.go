// Package api is a typed HTTP client for the containerhub REST API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/dmitrijs2005/containerhub/internal/common"
	"github.com/dmitrijs2005/containerhub/internal/server/models"
)

// TokenStore persists the session between invocations. Load returns an
// empty pair when nothing is stored.
type TokenStore interface {
	Load(ctx context.Context) (models.TokenPair, error)
	Save(ctx context.Context, pair models.TokenPair) error
	Clear(ctx context.Context) error
}

// StatusError is a non-2xx response.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.Code, http.StatusText(e.Code), e.Message)
}

// Unwrap maps the status back to the shared sentinels so callers can use
// errors.Is.
func (e *StatusError) Unwrap() error {
	switch e.Code {
	case http.StatusBadRequest, http.StatusRequestEntityTooLarge:
		return common.ErrorInvalidInput
	case http.StatusUnauthorized:
		return common.ErrorUnauthorized
	case http.StatusForbidden:
		return common.ErrorForbidden
	case http.StatusNotFound:
		return common.ErrorNotFound
	case http.StatusConflict:
		return common.ErrorConflict
	default:
		return common.ErrorInternal
	}
}

type Client struct {
	baseURL string
	http    *http.Client
	store   TokenStore

	mu     sync.Mutex
	tokens models.TokenPair
	loaded bool
}

func NewClient(baseURL string, hc *http.Client, store TokenStore) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: hc, store: store}
}

func (c *Client) session(ctx context.Context) (models.TokenPair, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.loaded && c.store != nil {
		pair, err := c.store.Load(ctx)
		if err != nil {
			return models.TokenPair{}, fmt.Errorf("load session: %w", err)
		}
		c.tokens = pair
		c.loaded = true
	}
	return c.tokens, nil
}

func (c *Client) setSession(ctx context.Context, pair models.TokenPair) error {
	c.mu.Lock()
	c.tokens = pair
	c.loaded = true
	c.mu.Unlock()

	if c.store == nil {
		return nil
	}
	return c.store.Save(ctx, pair)
}

// request describes one call. body is called once per attempt so the call
// can be replayed after a refresh; it returns the reader and its content type.
type request struct {
	method string
	path   string
	body   func() (io.Reader, string, error)
	auth   bool
}

func (c *Client) send(ctx context.Context, r request, token string) (*http.Response, error) {
	var (
		body        io.Reader
		contentType string
	)
	if r.body != nil {
		b, ct, err := r.body()
		if err != nil {
			return nil, err
		}
		body, contentType = b, ct
	}

	req, err := http.NewRequestWithContext(ctx, r.method, c.baseURL+r.path, body)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if r.auth && token != "" {
		req.Header.Set(common.AuthorizationHeaderName, "Bearer "+token)
	}
	return c.http.Do(req)
}

// do performs r and, for authenticated calls rejected with 401, refreshes
// the session once and retries.
func (c *Client) do(ctx context.Context, r request) (*http.Response, error) {
	pair, err := c.session(ctx)
	if err != nil {
		return nil, err
	}
	if r.auth && pair.AccessToken == "" {
		return nil, fmt.Errorf("%w: not logged in", common.ErrorUnauthorized)
	}

	resp, err := c.send(ctx, r, pair.AccessToken)
	if err != nil {
		return nil, err
	}
	if !r.auth || resp.StatusCode != http.StatusUnauthorized || pair.RefreshToken == "" {
		return resp, nil
	}
	_ = resp.Body.Close()

	pair, err = c.Refresh(ctx)
	if err != nil {
		return nil, err
	}
	return c.send(ctx, r, pair.AccessToken)
}

func decodeError(resp *http.Response) error {
	var e struct {
		Error string `json:"error"`
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err := json.Unmarshal(body, &e); err != nil || e.Error == "" {
		e.Error = strings.TrimSpace(string(body))
	}
	return &StatusError{Code: resp.StatusCode, Message: e.Error}
}

// expect closes resp and decodes its JSON body into out when the status
// matches want.
func expect(resp *http.Response, want int, out any) error {
	defer resp.Body.Close()
	if resp.StatusCode != want {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func jsonBody(v any) func() (io.Reader, string, error) {
	return func() (io.Reader, string, error) {
		b, err := json.Marshal(v)
		if err != nil {
			return nil, "", err
		}
		return bytes.NewReader(b), "application/json", nil
	}
}

func (c *Client) Hello(ctx context.Context) (string, error) {
	resp, err := c.do(ctx, request{method: http.MethodGet, path: "/"})
	if err != nil {
		return "", err
	}
	var m struct {
		Message string `json:"message"`
	}
	if err := expect(resp, http.StatusOK, &m); err != nil {
		return "", err
	}
	return m.Message, nil
}

func (c *Client) Register(ctx context.Context, email, password string) (*models.User, error) {
	resp, err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/register",
		body:   jsonBody(map[string]string{"email": email, "password": password}),
	})
	if err != nil {
		return nil, err
	}
	u := &models.User{}
	if err := expect(resp, http.StatusCreated, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Login authenticates and stores the issued pair as the current session.
func (c *Client) Login(ctx context.Context, email, password string) error {
	form := url.Values{"username": {email}, "password": {password}}
	resp, err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/login",
		body: func() (io.Reader, string, error) {
			return strings.NewReader(form.Encode()), "application/x-www-form-urlencoded", nil
		},
	})
	if err != nil {
		return err
	}
	var pair models.TokenPair
	if err := expect(resp, http.StatusOK, &pair); err != nil {
		return err
	}
	return c.setSession(ctx, pair)
}

// Refresh rotates the stored refresh token.
func (c *Client) Refresh(ctx context.Context) (models.TokenPair, error) {
	cur, err := c.session(ctx)
	if err != nil {
		return models.TokenPair{}, err
	}
	if cur.RefreshToken == "" {
		return models.TokenPair{}, fmt.Errorf("%w: no refresh token", common.ErrorUnauthorized)
	}

	resp, err := c.send(ctx, request{
		method: http.MethodPost,
		path:   "/auth/token/refresh",
		body:   jsonBody(map[string]string{"refreshToken": cur.RefreshToken}),
	}, "")
	if err != nil {
		return models.TokenPair{}, err
	}
	var pair models.TokenPair
	if err := expect(resp, http.StatusOK, &pair); err != nil {
		return models.TokenPair{}, err
	}
	return pair, c.setSession(ctx, pair)
}

func (c *Client) Logout(ctx context.Context) error {
	c.mu.Lock()
	c.tokens = models.TokenPair{}
	c.loaded = true
	c.mu.Unlock()

	if c.store == nil {
		return nil
	}
	return c.store.Clear(ctx)
}

// Upload streams the content returned by open as the "file" part. open is
// called once per attempt so the upload can be replayed after a refresh.
func (c *Client) Upload(ctx context.Context, name string, open func() (io.ReadCloser, error)) (*models.Container, error) {
	body := func() (io.Reader, string, error) {
		src, err := open()
		if err != nil {
			return nil, "", err
		}
		pr, pw := io.Pipe()
		mw := multipart.NewWriter(pw)
		go func() {
			defer src.Close()
			part, err := mw.CreateFormFile("file", name)
			if err == nil {
				_, err = io.Copy(part, src)
			}
			if err == nil {
				err = mw.Close()
			}
			pw.CloseWithError(err)
		}()
		return pr, mw.FormDataContentType(), nil
	}

	resp, err := c.do(ctx, request{method: http.MethodPost, path: "/containers/add-file", body: body, auth: true})
	if err != nil {
		return nil, err
	}
	cont := &models.Container{}
	if err := expect(resp, http.StatusCreated, cont); err != nil {
		return nil, err
	}
	return cont, nil
}

func (c *Client) List(ctx context.Context) ([]models.Container, error) {
	resp, err := c.do(ctx, request{method: http.MethodGet, path: "/containers/container", auth: true})
	if err != nil {
		return nil, err
	}
	var list []models.Container
	if err := expect(resp, http.StatusOK, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// DownloadResult fetches the analysis artifact of a container and returns
// the file name announced by the server with the content.
func (c *Client) DownloadResult(ctx context.Context, containerID int64) (string, []byte, error) {
	path := "/containers/get_result/download?containerId=" + strconv.FormatInt(containerID, 10)
	resp, err := c.do(ctx, request{method: http.MethodGet, path: path, auth: true})
	if err != nil {
		return "", nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", nil, decodeError(resp)
	}

	name := fmt.Sprintf("%d_analysis.txt", containerID)
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil && params["filename"] != "" {
		name = params["filename"]
	}

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", nil, fmt.Errorf("read result: %w", err)
	}
	return name, content, nil
}

func (c *Client) AdminUsers(ctx context.Context, nameFilter string) ([]models.UserWithFiles, error) {
	path := "/admin/users"
	if nameFilter != "" {
		path += "?" + url.Values{"name": {nameFilter}}.Encode()
	}
	resp, err := c.do(ctx, request{method: http.MethodGet, path: path, auth: true})
	if err != nil {
		return nil, err
	}
	var list []models.UserWithFiles
	if err := expect(resp, http.StatusOK, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *Client) SendEmail(ctx context.Context, userID int64) (string, error) {
	path := "/admin/send-email/" + strconv.FormatInt(userID, 10)
	resp, err := c.do(ctx, request{method: http.MethodPost, path: path, auth: true})
	if err != nil {
		return "", err
	}
	var m struct {
		Message string `json:"message"`
	}
	if err := expect(resp, http.StatusOK, &m); err != nil {
		return "", err
	}
	return m.Message, nil
}

// IsStatus reports whether err is a StatusError with the given code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == code
}
