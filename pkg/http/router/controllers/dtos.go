package controllers

import (
	"fmt"
	"time"

	"github.com/lintang-b-s/Stoplocator/pkg/finder"
	"github.com/lintang-b-s/Stoplocator/pkg/geo"
	"github.com/lintang-b-s/Stoplocator/pkg/schedule"
)

type stopRequest struct {
	StopID string   `json:"stop_id" validate:"required"`
	Name   string   `json:"stop_name" validate:"required"`
	Lat    *float64 `json:"lat,omitempty" validate:"omitempty,min=-90,max=90"`
	Lon    *float64 `json:"lon,omitempty" validate:"omitempty,min=-180,max=180"`
}

type locateRequest struct {
	Stops []stopRequest `json:"stops" validate:"required,min=1,max=500,dive"`
	// minutes between consecutive stops
	TravelTimes []float64 `json:"travel_times" validate:"omitempty,dive,gte=0"`
	RouteType   string    `json:"route_type" validate:"omitempty,routetype"`
}

// toFinderRequest builds the finder request; stops carrying lat/lon become known locations.
func (lr locateRequest) toFinderRequest(id string) (finder.Request, error) {
	req := finder.Request{
		ID:        id,
		Stops:     make([]finder.StopInput, len(lr.Stops)),
		Known:     make(map[string]geo.Coordinate),
		RouteType: lr.RouteType,
	}
	ids := make([]string, len(lr.Stops))
	for i, s := range lr.Stops {
		req.Stops[i] = finder.StopInput{StopID: s.StopID, Name: s.Name}
		ids[i] = s.StopID
		if s.Lat != nil && s.Lon != nil {
			loc, err := geo.NewValidCoordinate(*s.Lat, *s.Lon)
			if err != nil {
				return finder.Request{}, err
			}
			req.Known[s.StopID] = loc
		}
	}

	if len(lr.TravelTimes) == 0 {
		return req, nil
	}
	if len(lr.TravelTimes) != len(lr.Stops)-1 {
		return finder.Request{}, fmt.Errorf("travel_times must hold %d values, one per consecutive stop pair",
			len(lr.Stops)-1)
	}
	times := make([]time.Duration, len(lr.TravelTimes))
	for i, m := range lr.TravelTimes {
		times[i] = time.Duration(m * float64(time.Minute))
	}
	sched, err := schedule.NewFixed(ids, times)
	if err != nil {
		return finder.Request{}, err
	}
	req.Schedule = sched
	return req, nil
}

type locateResponse struct {
	Locations  map[string]*geo.Coordinate `json:"locations"`
	Path       []finder.PathEntry         `json:"path"`
	Unresolved int                        `json:"unresolved"`
	Polyline   string                     `json:"polyline"`
	Warnings   []string                   `json:"warnings"`
}

func NewLocateResponse(res *finder.Result) locateResponse {
	coords := make([]geo.Coordinate, 0, len(res.Path))
	for _, p := range res.Path {
		if p.Location != nil {
			coords = append(coords, *p.Location)
		}
	}
	warnings := make([]string, len(res.Warnings))
	for i, w := range res.Warnings {
		warnings[i] = w.Error()
	}
	return locateResponse{
		Locations:  res.Locations,
		Path:       res.Path,
		Unresolved: res.Unresolved,
		Polyline:   geo.PolylineFromCoords(coords),
		Warnings:   warnings,
	}
}

type candidatesRequest struct {
	Name      string  `json:"name" validate:"required_without=Lat"`
	RouteType string  `json:"route_type" validate:"omitempty,routetype"`
	Lat       float64 `json:"lat" validate:"required_without=Name,min=-90,max=90"`
	Lon       float64 `json:"lon" validate:"required_with=Lat,min=-180,max=180"`
	Radius    float64 `json:"radius" validate:"gte=0,lte=50000"`
}

type candidateResponse struct {
	ID           int64             `json:"id"`
	Kind         string            `json:"kind"`
	Names        []string          `json:"names"`
	Location     geo.Coordinate    `json:"location"`
	Tags         map[string]string `json:"tags,omitempty"`
	NameDistance *int              `json:"name_distance,omitempty"`
	NodeCost     *float64          `json:"node_cost,omitempty"`
}

func NewCandidatesResponse(cands []*finder.Candidate) []candidateResponse {
	out := make([]candidateResponse, len(cands))
	for i, c := range cands {
		out[i] = candidateResponse{
			ID:       c.ID,
			Kind:     c.Kind.String(),
			Names:    c.Names,
			Location: c.Loc,
			Tags:     c.Tags,
		}
		if d := c.NameDistance(); d >= 0 {
			nc := c.NodeCost()
			out[i].NameDistance = &d
			out[i].NodeCost = &nc
		}
	}
	return out
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}
