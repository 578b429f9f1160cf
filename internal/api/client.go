// Package api is the client for the remote music catalog and auth service.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

// DefaultBaseURL is the public deployment of the service.
const DefaultBaseURL = "https://webdev-music-003b5b991590.herokuapp.com"

type Client struct {
	baseURL string
	client  *http.Client
}

// New creates a Client. An empty baseURL selects the public deployment and a
// nil httpClient selects a default with a short timeout.
func New(baseURL string, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 8 * time.Second}
	}
	return &Client{baseURL: baseURL, client: httpClient}
}

// envelope is the {success, data} wrapper used by all catalog endpoints.
type envelope[T any] struct {
	Success bool `json:"success"`
	Data    T    `json:"data"`
}

// SignUp registers a new account. POST /user/signup/
func (c *Client) SignUp(ctx context.Context, req SignUpRequest) (SignUpResponse, error) {
	return postJSON[SignUpResponse](ctx, c, "/user/signup/", req, "")
}

// Login validates credentials and returns the account. POST /user/login/
func (c *Client) Login(ctx context.Context, creds Credentials) (User, error) {
	return postJSON[User](ctx, c, "/user/login/", creds, "")
}

// IssueTokens exchanges credentials for an access/refresh pair. POST /user/token/
func (c *Client) IssueTokens(ctx context.Context, creds Credentials) (TokenPair, error) {
	return postJSON[TokenPair](ctx, c, "/user/token/", creds, "")
}

// RefreshToken mints a new access token from a refresh token.
// POST /user/token/refresh/
func (c *Client) RefreshToken(ctx context.Context, refresh string) (string, error) {
	out, err := postJSON[struct {
		Access string `json:"access"`
	}](ctx, c, "/user/token/refresh/", map[string]string{"refresh": refresh}, "")
	if err != nil {
		return "", err
	}
	return out.Access, nil
}

// AllTracks fetches the full catalog. GET /catalog/track/all/
func (c *Client) AllTracks(ctx context.Context) ([]Track, error) {
	return getData[[]Track](ctx, c, "/catalog/track/all/", "")
}

// TrackByID fetches a single track. GET /catalog/track/{id}/
func (c *Client) TrackByID(ctx context.Context, id int) (Track, error) {
	return getData[Track](ctx, c, "/catalog/track/"+strconv.Itoa(id)+"/", "")
}

// FavoriteTracks fetches the authenticated user's favorites.
// GET /catalog/track/favorite/all/
func (c *Client) FavoriteTracks(ctx context.Context, access string) ([]Track, error) {
	return getData[[]Track](ctx, c, "/catalog/track/favorite/all/", access)
}

// AddFavorite marks a track as a favorite and returns the confirmed track.
// POST /catalog/track/{id}/favorite/
func (c *Client) AddFavorite(ctx context.Context, access string, id int) (Track, error) {
	out, err := doJSON[envelope[Track]](ctx, c, http.MethodPost, "/catalog/track/"+strconv.Itoa(id)+"/favorite/", nil, access)
	if err != nil {
		return Track{}, err
	}
	return out.Data, nil
}

// RemoveFavorite unmarks a favorite. DELETE /catalog/track/{id}/favorite/
// A 2xx response has no body.
func (c *Client) RemoveFavorite(ctx context.Context, access string, id int) error {
	resp, err := c.do(ctx, http.MethodDelete, "/catalog/track/"+strconv.Itoa(id)+"/favorite/", nil, access)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}
	return nil
}

// AllSelections fetches all curated selections. GET /catalog/selection/all/
func (c *Client) AllSelections(ctx context.Context) ([]Selection, error) {
	return getData[[]Selection](ctx, c, "/catalog/selection/all/", "")
}

// SelectionByID fetches one selection. GET /catalog/selection/{id}/
func (c *Client) SelectionByID(ctx context.Context, id int) (Selection, error) {
	return getData[Selection](ctx, c, "/catalog/selection/"+strconv.Itoa(id)+"/", "")
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, access string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if access != "" {
		req.Header.Set("Authorization", "Bearer "+access)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	return resp, nil
}

func doJSON[T any](ctx context.Context, c *Client, method, path string, payload any, access string) (T, error) {
	var zero T
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return zero, err
		}
		body = bytes.NewReader(b)
	}
	resp, err := c.do(ctx, method, path, body, access)
	if err != nil {
		return zero, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return zero, decodeError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(&zero); err != nil {
		return zero, fmt.Errorf("%w: decode response: %v", ErrNetwork, err)
	}
	return zero, nil
}

func postJSON[T any](ctx context.Context, c *Client, path string, payload any, access string) (T, error) {
	return doJSON[T](ctx, c, http.MethodPost, path, payload, access)
}

// getData unwraps the {success, data} envelope of the catalog endpoints.
func getData[T any](ctx context.Context, c *Client, path string, access string) (T, error) {
	out, err := doJSON[envelope[T]](ctx, c, http.MethodGet, path, nil, access)
	if err != nil {
		var zero T
		return zero, err
	}
	return out.Data, nil
}

// decodeError turns a non-2xx response into an *Error. The body is expected
// to carry one of {message, detail, code}; when it does not parse, a fallback
// message is chosen by status.
func decodeError(resp *http.Response) error {
	apiErr := &Error{Status: resp.StatusCode}

	var body struct {
		Message string `json:"message"`
		Detail  string `json:"detail"`
		Code    string `json:"code"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err := json.Unmarshal(raw, &body); err == nil {
		apiErr.Code = body.Code
		switch {
		case body.Message != "":
			apiErr.Message = body.Message
		case body.Detail != "":
			apiErr.Message = body.Detail
		case body.Code == "token_not_valid":
			apiErr.Message = "token is invalid or expired"
		case body.Code != "":
			apiErr.Message = body.Code
		}
	}

	if apiErr.Message == "" {
		switch resp.StatusCode {
		case http.StatusBadRequest:
			apiErr.Message = "bad request, check the submitted data"
		case http.StatusUnauthorized:
			apiErr.Message = "invalid email or password"
		case http.StatusForbidden:
			apiErr.Message = "access denied"
		case http.StatusInternalServerError:
			apiErr.Message = "server error, try again later"
		default:
			apiErr.Message = fmt.Sprintf("request failed: %s", resp.Status)
		}
	}
	return apiErr
}
