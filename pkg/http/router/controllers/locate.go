package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/julienschmidt/httprouter"
	helper "github.com/lintang-b-s/Stoplocator/pkg/http/router/routerhelper"
	"go.uber.org/zap"
)

// maxRequestBody bounds the body of a locate request.
const maxRequestBody = 1 << 20

type locatorAPI struct {
	locatorService LocatorService
	timeout        time.Duration
	validator      *requestValidator
	log            *zap.Logger
}

func New(locatorService LocatorService, timeout time.Duration, log *zap.Logger) *locatorAPI {
	return &locatorAPI{
		locatorService: locatorService,
		timeout:        timeout,
		validator:      newRequestValidator(),
		log:            log,
	}
}

func (api *locatorAPI) Routes(group *helper.RouteGroup) {
	group.POST("/locate", api.locate)
	group.GET("/candidates", api.candidates)
}

func (api *locatorAPI) locate(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	var request locateRequest

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&request); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}
	if err := r.Body.Close(); err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}

	if err := api.validator.Struct(request); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}

	req, err := request.toFinderRequest(w.Header().Get("X-Request-Id"))
	if err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}

	ctx := r.Context()
	if api.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, api.timeout)
		defer cancel()
	}

	res, err := api.locatorService.Locate(ctx, req)
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}

	if err := api.writeJSON(w, http.StatusOK, envelope{"data": NewLocateResponse(res)}, nil); err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}
}

// candidates lists the dataset candidates matching ?name= (and ?route_type=),
// or the ones within ?radius= meters of ?lat=&lon=.
func (api *locatorAPI) candidates(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	var (
		request candidatesRequest
		err     error
	)

	query := r.URL.Query()
	request.Name = query.Get("name")
	request.RouteType = query.Get("route_type")
	for key, dst := range map[string]*float64{"lat": &request.Lat, "lon": &request.Lon, "radius": &request.Radius} {
		v := query.Get(key)
		if v == "" {
			continue
		}
		*dst, err = strconv.ParseFloat(v, 64)
		if err != nil {
			api.BadRequestResponse(w, r, errors.New(key+" must be a valid float"))
			return
		}
	}
	if request.Radius == 0 {
		request.Radius = 250
	}

	if err := api.validator.Struct(request); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}

	var resp []candidateResponse
	if request.Name != "" {
		cands, err := api.locatorService.CandidatesByName(request.Name, request.RouteType)
		if err != nil {
			api.getStatusCode(w, r, err)
			return
		}
		resp = NewCandidatesResponse(cands)
	} else {
		cands, err := api.locatorService.CandidatesNear(request.Lat, request.Lon, request.Radius)
		if err != nil {
			api.getStatusCode(w, r, err)
			return
		}
		resp = NewCandidatesResponse(cands)
	}

	if err := api.writeJSON(w, http.StatusOK, envelope{"data": resp, "count": len(resp)}, nil); err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}
}
