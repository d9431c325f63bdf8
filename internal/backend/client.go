package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"tymer/internal/models"
)

// TokenSource supplies the bearer token attached to authenticated
// requests. The auth service implements it and refreshes behind it.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a TokenSource that always returns the same token
type StaticToken string

func (t StaticToken) Token(ctx context.Context) (string, error) {
	return string(t), nil
}

// Client talks to the remote API over HTTP
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
}

// NewClient creates a client for the API at baseURL. Authenticated
// endpoints use tokens; pass nil for a client used only for sign-in.
func NewClient(baseURL string, tokens TokenSource) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		tokens:     tokens,
	}
}

// do issues a JSON request and decodes the JSON response into out.
// Non-2xx responses become *APIError so callers can classify them.
func (c *Client) do(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if err := c.authorize(ctx, req); err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request %s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return readAPIError(resp)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

func (c *Client) authorize(ctx context.Context, req *http.Request) error {
	if c.tokens == nil {
		return nil
	}
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return fmt.Errorf("failed to get access token: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return nil
}

func readAPIError(resp *http.Response) error {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&payload); err != nil || payload.Message == "" {
		payload.Message = resp.Status
	}
	return &APIError{StatusCode: resp.StatusCode, Message: payload.Message}
}

// FetchWindows retrieves the configured daily windows
func (c *Client) FetchWindows(ctx context.Context) ([]models.TimeWindow, error) {
	var dtos []windowDTO
	if err := c.do(ctx, http.MethodGet, "/v1/windows", nil, &dtos); err != nil {
		return nil, err
	}
	windows := make([]models.TimeWindow, 0, len(dtos))
	for _, d := range dtos {
		w, err := d.toWindow()
		if err != nil {
			return nil, err
		}
		windows = append(windows, w)
	}
	return windows, nil
}

// FetchFriends retrieves the user's friend circle
func (c *Client) FetchFriends(ctx context.Context) ([]models.User, error) {
	var dtos []profileDTO
	if err := c.do(ctx, http.MethodGet, "/v1/friends", nil, &dtos); err != nil {
		return nil, err
	}
	friends := make([]models.User, 0, len(dtos))
	for _, d := range dtos {
		u, err := d.toUser()
		if err != nil {
			return nil, err
		}
		friends = append(friends, u)
	}
	return friends, nil
}

// FetchFriendsMoments retrieves the friends' moments for today
func (c *Client) FetchFriendsMoments(ctx context.Context) ([]models.Moment, error) {
	var dtos []momentDTO
	if err := c.do(ctx, http.MethodGet, "/v1/moments/friends", nil, &dtos); err != nil {
		return nil, err
	}
	return momentsFromDTOs(dtos)
}

// FetchMyMoments retrieves the user's own recent moments, newest first
func (c *Client) FetchMyMoments(ctx context.Context, limit int) ([]models.Moment, error) {
	var dtos []momentDTO
	path := "/v1/moments/me?limit=" + strconv.Itoa(limit)
	if err := c.do(ctx, http.MethodGet, path, nil, &dtos); err != nil {
		return nil, err
	}
	return momentsFromDTOs(dtos)
}

func momentsFromDTOs(dtos []momentDTO) ([]models.Moment, error) {
	moments := make([]models.Moment, 0, len(dtos))
	for _, d := range dtos {
		m, err := d.toMoment()
		if err != nil {
			return nil, err
		}
		moments = append(moments, m)
	}
	return moments, nil
}

// HasPostedToday asks the backend whether a moment was already posted
// during the current day
func (c *Client) HasPostedToday(ctx context.Context) (bool, error) {
	var payload struct {
		Posted bool `json:"posted"`
	}
	if err := c.do(ctx, http.MethodGet, "/v1/moments/me/today", nil, &payload); err != nil {
		return false, err
	}
	return payload.Posted, nil
}

// UploadMomentImage uploads raw image bytes and returns the stored path
func (c *Client) UploadMomentImage(ctx context.Context, data []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/uploads", bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to build upload request: %w", err)
	}
	req.Header.Set("Content-Type", "image/jpeg")
	if err := c.authorize(ctx, req); err != nil {
		return "", err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", readAPIError(resp)
	}
	var payload struct {
		Path string `json:"path"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("failed to decode upload response: %w", err)
	}
	return payload.Path, nil
}

// CreateMoment posts a new moment and returns the server's copy
func (c *Client) CreateMoment(ctx context.Context, imagePath, description string) (models.Moment, error) {
	body := map[string]string{
		"image_path":  imagePath,
		"description": description,
	}
	var dto momentDTO
	if err := c.do(ctx, http.MethodPost, "/v1/moments", body, &dto); err != nil {
		return models.Moment{}, err
	}
	return dto.toMoment()
}

// DeleteMoment removes a moment, used when retaking today's post
func (c *Client) DeleteMoment(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/v1/moments/"+id.String(), nil, nil)
}

// AddTextReaction attaches a text reaction to a moment
func (c *Client) AddTextReaction(ctx context.Context, momentID uuid.UUID, text string) error {
	body := map[string]string{"type": "text", "text": text}
	return c.do(ctx, http.MethodPost, "/v1/moments/"+momentID.String()+"/reactions", body, nil)
}

// AddVoiceReaction attaches a voice reaction to a moment
func (c *Client) AddVoiceReaction(ctx context.Context, momentID uuid.UUID, durationSeconds float64, voicePath string) error {
	body := map[string]interface{}{
		"type":             "voice",
		"duration_seconds": durationSeconds,
		"audio_path":       voicePath,
	}
	return c.do(ctx, http.MethodPost, "/v1/moments/"+momentID.String()+"/reactions", body, nil)
}

// AddFriend adds the user with the given username to the friend circle
func (c *Client) AddFriend(ctx context.Context, username string) (models.User, error) {
	body := map[string]string{"username": username}
	var dto profileDTO
	if err := c.do(ctx, http.MethodPost, "/v1/friends", body, &dto); err != nil {
		return models.User{}, err
	}
	return dto.toUser()
}

// RemoveFriend removes a friend from the circle
func (c *Client) RemoveFriend(ctx context.Context, userID uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/v1/friends/"+userID.String(), nil, nil)
}

// SignIn exchanges email and password for a token pair
func (c *Client) SignIn(ctx context.Context, email, password string) (TokenPair, error) {
	body := map[string]string{"email": email, "password": password}
	var pair TokenPair
	if err := c.do(ctx, http.MethodPost, "/v1/auth/sign-in", body, &pair); err != nil {
		return TokenPair{}, err
	}
	return pair, nil
}

// SignInWithProvider exchanges an OAuth provider token for a token pair
func (c *Client) SignInWithProvider(ctx context.Context, provider, providerToken string) (TokenPair, error) {
	body := map[string]string{"provider": provider, "token": providerToken}
	var pair TokenPair
	if err := c.do(ctx, http.MethodPost, "/v1/auth/provider", body, &pair); err != nil {
		return TokenPair{}, err
	}
	return pair, nil
}

// RefreshSession exchanges a refresh token for a fresh token pair
func (c *Client) RefreshSession(ctx context.Context, refreshToken string) (TokenPair, error) {
	body := map[string]string{"refresh_token": refreshToken}
	var pair TokenPair
	if err := c.do(ctx, http.MethodPost, "/v1/auth/refresh", body, &pair); err != nil {
		return TokenPair{}, err
	}
	return pair, nil
}

// Profile fetches the signed-in user's own profile
func (c *Client) Profile(ctx context.Context) (models.User, error) {
	var dto profileDTO
	if err := c.do(ctx, http.MethodGet, "/v1/me", nil, &dto); err != nil {
		return models.User{}, err
	}
	return dto.toUser()
}
