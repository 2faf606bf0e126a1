package api

import (
	"context"
	"net/http"
	"net/url"
)

func (c *Client) ListSpots(ctx context.Context) ([]Spot, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/parking", nil, nil)
	if err != nil {
		return nil, err
	}

	var spots []Spot
	if err := c.doJSON("list_spots", req, &spots); err != nil {
		return nil, err
	}
	return spots, nil
}

// UpdateSpotState sends the negation of the spot's current occupancy.
func (c *Client) UpdateSpotState(ctx context.Context, spot Spot) error {
	path := "/parking/" + url.PathEscape(spot.Key())
	req, err := c.newRequest(ctx, http.MethodPatch, path, nil, spotStateRequest{Occupied: !spot.Occupied})
	if err != nil {
		return err
	}
	return c.doStatus("update_spot", req)
}
