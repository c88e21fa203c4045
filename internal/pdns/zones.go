package pdns

import (
	"context"
	"fmt"

	"pdnsweb/internal/model"
)

func (c *Client) ListZones(ctx context.Context) ([]model.Zone, error) {
	var zones []model.Zone
	if err := c.Get(ctx, "/zones", &zones); err != nil {
		return nil, err
	}
	return zones, nil
}

// GetZone fetches a zone including its rrsets.
func (c *Client) GetZone(ctx context.Context, name string) (*model.Zone, error) {
	var zone model.Zone
	if err := c.Get(ctx, "/zones/"+ZoneID(name), &zone); err != nil {
		return nil, err
	}
	return &zone, nil
}

func (c *Client) CreateZone(ctx context.Context, req model.ZoneCreate) error {
	return c.Post(ctx, "/zones", req, nil)
}

func (c *Client) UpdateZone(ctx context.Context, name string, req model.ZoneUpdate) error {
	return c.Put(ctx, "/zones/"+ZoneID(name), req)
}

func (c *Client) DeleteZone(ctx context.Context, name string) error {
	return c.Delete(ctx, "/zones/"+ZoneID(name))
}

// PatchRRsets applies REPLACE/DELETE changes to a zone's record sets.
func (c *Client) PatchRRsets(ctx context.Context, zone string, patch model.RRsetPatch) error {
	return c.Patch(ctx, "/zones/"+ZoneID(zone), patch)
}

func (c *Client) ListCryptokeys(ctx context.Context, zone string) ([]model.DnssecKey, error) {
	var keys []model.DnssecKey
	if err := c.Get(ctx, "/zones/"+ZoneID(zone)+"/cryptokeys", &keys); err != nil {
		return nil, err
	}
	return keys, nil
}

func (c *Client) CreateCryptokey(ctx context.Context, zone string, req model.DnssecKeyCreate) error {
	return c.Post(ctx, "/zones/"+ZoneID(zone)+"/cryptokeys", req, nil)
}

func (c *Client) DeleteCryptokey(ctx context.Context, zone string, id int) error {
	return c.Delete(ctx, fmt.Sprintf("/zones/%s/cryptokeys/%d", ZoneID(zone), id))
}

// ListForwardZones lists recursor zones; callers filter on kind Forwarded.
func (c *Client) ListForwardZones(ctx context.Context) ([]model.ForwardZone, error) {
	var zones []model.ForwardZone
	if err := c.Get(ctx, "/zones", &zones); err != nil {
		return nil, err
	}
	return zones, nil
}

func (c *Client) CreateForwardZone(ctx context.Context, fz model.ForwardZone) error {
	return c.Post(ctx, "/zones", fz, nil)
}

func (c *Client) UpdateForwardZone(ctx context.Context, fz model.ForwardZone) error {
	return c.Put(ctx, "/zones/"+ZoneID(fz.Name), fz)
}

func (c *Client) Statistics(ctx context.Context) ([]model.StatItem, error) {
	var stats []model.StatItem
	if err := c.Get(ctx, "/statistics", &stats); err != nil {
		return nil, err
	}
	return stats, nil
}
