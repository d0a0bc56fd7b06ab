package onebot

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/campus-notice-collector/internal/models"
)

// ErrNoRole is returned when a member info response carries no role
var ErrNoRole = errors.New("member info has no role")

// Client calls the OneBot HTTP API
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient creates a client for the API at baseURL
func NewClient(baseURL, token string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: timeout},
	}
}

type memberInfoRequest struct {
	GroupID int64 `json:"group_id"`
	UserID  int64 `json:"user_id"`
	NoCache bool  `json:"no_cache"`
}

// Implementations differ on whether the payload is wrapped in data.
type memberInfoResponse struct {
	Status  string `json:"status"`
	Retcode int    `json:"retcode"`
	Role    string `json:"role"`
	Data    *struct {
		Role string `json:"role"`
	} `json:"data"`
}

// MemberRole fetches the sender's current role, bypassing the
// implementation's member cache
func (c *Client) MemberRole(ctx context.Context, groupID, userID string) (models.Role, error) {
	gid, err := strconv.ParseInt(groupID, 10, 64)
	if err != nil {
		return "", fmt.Errorf("invalid group id %q: %w", groupID, err)
	}
	uid, err := strconv.ParseInt(userID, 10, 64)
	if err != nil {
		return "", fmt.Errorf("invalid user id %q: %w", userID, err)
	}

	body, err := json.Marshal(memberInfoRequest{GroupID: gid, UserID: uid, NoCache: true})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/get_group_member_info", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("get_group_member_info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("get_group_member_info: status %d", resp.StatusCode)
	}

	var info memberInfoResponse
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return "", fmt.Errorf("decode member info: %w", err)
	}
	if info.Status == "failed" {
		return "", fmt.Errorf("get_group_member_info: retcode %d", info.Retcode)
	}

	role := info.Role
	if role == "" && info.Data != nil {
		role = info.Data.Role
	}
	if role == "" {
		return "", ErrNoRole
	}
	return models.Role(role), nil
}
