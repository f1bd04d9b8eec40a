package asf

import (
	"net/url"
	"strings"
)

// searchParams represents the parameters for an ASF granule-list search.
type searchParams struct {
	// GranuleList is the list of scene names to look up.
	// Note: ASF doesn't allow maxResults with granule_list.
	GranuleList []string

	// Output format (default: "geojson")
	Output string
}

// toQueryString converts searchParams to a URL query string.
func (p *searchParams) toQueryString() string {
	values := url.Values{}

	if len(p.GranuleList) > 0 {
		values.Set("granule_list", strings.Join(p.GranuleList, ","))
	}

	if p.Output != "" {
		values.Set("output", p.Output)
	} else {
		values.Set("output", "geojson")
	}

	return values.Encode()
}
