// Package stac wraps planetlabs/go-stac for the mosaic sidecar: the tool
// emits one STAC Item describing the prepared DEM mosaic.
package stac

import (
	gostac "github.com/planetlabs/go-stac"
)

// Version is the STAC spec version the sidecar declares.
const Version = "1.0.0"

// Re-export core types from planetlabs/go-stac for convenience
type (
	Item  = gostac.Item
	Asset = gostac.Asset
	Link  = gostac.Link
)

// NewItem creates a new STAC Item with the given ID.
func NewItem(id string) *gostac.Item {
	return &gostac.Item{
		Version:    Version,
		Id:         id,
		Properties: make(map[string]any),
		Assets:     make(map[string]*gostac.Asset),
		Links:      make([]*gostac.Link, 0),
	}
}

// AddAsset attaches an asset to the item under the given key.
func AddAsset(item *gostac.Item, key, href, mediaType string, roles ...string) {
	item.Assets[key] = &gostac.Asset{
		Href:  href,
		Type:  mediaType,
		Roles: roles,
	}
}
