package asf

import (
	"fmt"
	"time"
)

// geoJSONResponse is the ASF GeoJSON FeatureCollection envelope, trimmed to
// the fields the granule lookup needs.
type geoJSONResponse struct {
	Type     string    `json:"type"` // "FeatureCollection"
	Features []feature `json:"features"`
}

type feature struct {
	Type       string     `json:"type"` // "Feature"
	Properties properties `json:"properties"`
}

type properties struct {
	SceneName       string `json:"sceneName"`
	FileID          string `json:"fileID"`
	Platform        string `json:"platform"`
	FlightDirection string `json:"flightDirection"`
	PathNumber      *int   `json:"pathNumber"`
	StartTime       string `json:"startTime"`
	StopTime        string `json:"stopTime"`
}

// Granule is the orbital metadata for one scene, used to filter processing
// jobs by acquisition date, path and orbit direction.
type Granule struct {
	Name            string
	Platform        string
	FlightDirection string
	PathNumber      int
	StartTime       time.Time
}

// asfTimeLayouts covers the timestamp shapes ASF returns; startTime sometimes
// carries fractional seconds and sometimes no zone suffix.
var asfTimeLayouts = []string{
	"2006-01-02T15:04:05.000000Z",
	"2006-01-02T15:04:05.000000",
	time.RFC3339,
	"2006-01-02T15:04:05",
}

func parseASFTime(s string) (time.Time, error) {
	for _, layout := range asfTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized ASF timestamp %q", s)
}
