// Package garage bootstraps a single-node Garage cluster so it can serve
// as the object store for images.
package garage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/goccy/go-json"
	"github.com/hashicorp/go-retryablehttp"
	mHttp "github.com/matt-dz/recetario/internal/http"
	mJson "github.com/matt-dz/recetario/internal/json"
)

type role struct {
	Zone     string   `json:"zone"`
	Tags     []string `json:"tags"`
	Capacity int64    `json:"capacity"`
	ID       string   `json:"id"`
}

type node struct {
	ID       string  `json:"id"`
	Hostname *string `json:"hostname"`
	IsUp     *bool   `json:"isUp"`
}

type getClusterStatusResponse struct {
	LayoutVersion *int64  `json:"layoutVersion"`
	Nodes         *[]node `json:"nodes"`
}

type zoneRedundancy struct {
	AtLeast int64 `json:"atLeast"`
}

type layoutParameters struct {
	ZoneRedundancy zoneRedundancy `json:"zoneRedundancy"`
}

type updateClusterLayoutRequest struct {
	Parameters layoutParameters `json:"parameters"`
	Roles      []role           `json:"roles"`
}

type applyClusterLayoutRequest struct {
	Version int64 `json:"version"`
}

var ErrNoNodes = errors.New("no nodes found in garage cluster")

const (
	defaultZone           = "dc1"
	defaultTag            = "storage"
	defaultCapacity int64 = 500_000_000_000 // 500 GB
)

type Client struct {
	http       mHttp.HTTPDoer
	adminHost  string
	adminToken string
}

func NewClient(httpClient mHttp.HTTPDoer, adminHost, adminToken string) *Client {
	return &Client{
		http:       httpClient,
		adminHost:  adminHost,
		adminToken: adminToken,
	}
}

// InitializeLayout assigns every node of a fresh cluster a storage role
// and applies the layout. Clusters that already have a layout are left
// untouched.
func (c *Client) InitializeLayout(ctx context.Context) error {
	var status getClusterStatusResponse
	if err := c.call(ctx, http.MethodGet, "GetClusterStatus", nil, &status); err != nil {
		return fmt.Errorf("getting cluster status: %w", err)
	}
	var layoutVersion int64
	if status.LayoutVersion != nil {
		layoutVersion = *status.LayoutVersion
	}
	if layoutVersion > 0 {
		return nil
	}
	if status.Nodes == nil || len(*status.Nodes) == 0 {
		return ErrNoNodes
	}

	update := updateClusterLayoutRequest{
		Parameters: layoutParameters{ZoneRedundancy: zoneRedundancy{AtLeast: 1}},
		Roles:      make([]role, 0, len(*status.Nodes)),
	}
	for _, n := range *status.Nodes {
		update.Roles = append(update.Roles, role{
			Zone:     defaultZone,
			Tags:     []string{defaultTag},
			Capacity: defaultCapacity,
			ID:       n.ID,
		})
	}
	if err := c.call(ctx, http.MethodPost, "UpdateClusterLayout", update, nil); err != nil {
		return fmt.Errorf("updating cluster layout: %w", err)
	}

	apply := applyClusterLayoutRequest{Version: layoutVersion + 1}
	if err := c.call(ctx, http.MethodPost, "ApplyClusterLayout", apply, nil); err != nil {
		return fmt.Errorf("applying cluster layout: %w", err)
	}
	return nil
}

func (c *Client) call(ctx context.Context, method, endpoint string, in, out any) error {
	var body []byte
	if in != nil {
		var err error
		if body, err = json.Marshal(in); err != nil {
			return fmt.Errorf("encoding %s request: %w", endpoint, err)
		}
	}
	req, err := retryablehttp.NewRequestWithContext(ctx,
		method, fmt.Sprintf("http://%s/v2/%s", c.adminHost, endpoint), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating %s request: %w", endpoint, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.adminToken)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	if err := mHttp.ExpectStatus2xx(resp); err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if out == nil {
		return nil
	}
	if err := mJson.DecodeJSON(out, json.NewDecoder(resp.Body)); err != nil {
		return fmt.Errorf("decoding %s response: %w", endpoint, err)
	}
	return nil
}
