package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/innermond/sloper"
	"github.com/innermond/sloper/internal/cache"
	"github.com/innermond/sloper/internal/config"
	"github.com/innermond/sloper/internal/store"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Handler serves drafts, markers and stored profiles.
type Handler struct {
	drafter *sloper.Drafter
	repo    store.Repository
	cache   cache.Cache
	log     *zap.Logger

	debug         bool
	maxConcurrent int
	throttle      time.Duration

	healthy int32
}

func NewHandler(cfg *config.Config, d *sloper.Drafter, repo store.Repository, c cache.Cache, logger *zap.Logger) *Handler {
	return &Handler{
		drafter:       d,
		repo:          repo,
		cache:         c,
		log:           logger,
		debug:         cfg.Debug,
		maxConcurrent: cfg.MaxConcurrent,
		throttle:      cfg.Throttle,
	}
}

// RegisterRoutes mounts the api on engine. Drawing routes share one
// concurrency limit.
func (h *Handler) RegisterRoutes(engine *gin.Engine) {
	engine.GET("/health", h.Health)

	v1 := engine.Group("/api/v1")
	if h.throttle > 0 {
		v1.Use(limiterByTime(h.throttle))
	}
	heavy := limiter(h.maxConcurrent)

	v1.POST("/drafts", heavy, h.Draft)
	v1.POST("/layouts", heavy, h.Layout)

	v1.POST("/profiles", h.CreateProfile)
	v1.GET("/profiles", h.ListProfiles)
	v1.GET("/profiles/:id", h.GetProfile)
	v1.PUT("/profiles/:id", h.UpdateProfile)
	v1.DELETE("/profiles/:id", h.DeleteProfile)
	v1.GET("/profiles/:id/svg", heavy, h.ProfileSVG)
}

func (h *Handler) setHealthy(yes bool) {
	var v int32
	if yes {
		v = 1
	}
	atomic.StoreInt32(&h.healthy, v)
}

func (h *Handler) Health(c *gin.Context) {
	if atomic.LoadInt32(&h.healthy) != 1 {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "service": "sloper"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "sloper"})
}

// Draft drafts a sloper and returns its values, a summary of its pieces
// and the SVG drawing. Answers are cached by request.
func (h *Handler) Draft(c *gin.Context) {
	var req DraftRequest
	if !h.bind(c, &req) {
		return
	}
	req.defaults()
	ctx := c.Request.Context()

	key, err := cache.Key(h.drafter.Rules(), req)
	if err != nil {
		h.log.Warn("no cache key", zap.Error(err))
	}
	if key != "" {
		if b, found, _ := h.cache.Get(ctx, key); found {
			c.Header("X-Cache", "hit")
			c.Data(http.StatusOK, "application/json; charset=utf-8", b)
			return
		}
	}

	resp, err := h.draft(req)
	if err != nil {
		h.fail(c, err, "draft")
		return
	}
	b, err := json.Marshal(resp)
	if err != nil {
		h.werr(c, errid{reqid: getid(c)}.wrap(err, "encode draft"), http.StatusInternalServerError, ErrorResponse{Error: "internal_error", Message: "json error"})
		return
	}
	if key != "" {
		_ = h.cache.Set(ctx, key, b)
	}
	c.Header("X-Cache", "miss")
	c.Data(http.StatusOK, "application/json; charset=utf-8", b)
}

func (h *Handler) draft(req DraftRequest) (*DraftResponse, error) {
	base, err := h.base(req.Measurements, *req.Ease, req.SeamAllowance)
	if err != nil {
		return nil, err
	}
	s := sloper.NewSVG(req.Width, req.Height).Appearance(!req.Inkscape, req.Labels)
	if err := base.Draw(s, req.Width, req.Height); err != nil {
		return nil, err
	}
	return &DraftResponse{
		Values: base.Values(),
		Pieces: base.Summary(),
		SVG:    s.String(),
	}, nil
}

func (h *Handler) base(f sloper.Fields, ease, allowance float64) (*sloper.Base, error) {
	m, err := f.Build()
	if err != nil {
		return nil, err
	}
	return h.drafter.NewBase(m, sloper.Ease(ease), sloper.WithSeamAllowance(allowance))
}

// Layout plans a cutting marker for the drafted pieces.
func (h *Handler) Layout(c *gin.Context) {
	var req LayoutRequest
	if !h.bind(c, &req) {
		return
	}
	req.defaults()

	base, err := h.base(req.Measurements, *req.Ease, req.SeamAllowance)
	if err != nil {
		h.fail(c, err, "layout")
		return
	}
	l := sloper.NewLayout(base, req.FabricWidth, req.SheetLength).
		Gap(*req.Gap).
		Copies(req.Copies).
		Rotate(!req.NoRotate).
		Appearance(!req.Inkscape, req.ShowDim)
	if req.SVG {
		l.Outname("marker")
	}
	rep, outs, err := l.Fit()
	if err != nil {
		h.fail(c, err, "layout")
		return
	}
	if rep.NumSheetUsed == 0 {
		err := errid{reqid: getid(c)}.textf("no piece fits a %gx%g cm sheet", req.FabricWidth, req.SheetLength)
		h.werr(c, err, http.StatusUnprocessableEntity, ErrorResponse{Error: "unfit", Message: errors.Cause(err).Error()})
		return
	}

	var svgs map[string]string
	if req.SVG {
		var errs []error
		svgs, errs = writeSvg(outs)
		if len(errs) > 0 {
			h.werr(c, errid{reqid: getid(c)}.from(errs[0]), http.StatusInternalServerError, ErrorResponse{Error: "internal_error", Message: "error preparing svg vizual"})
			return
		}
	}
	c.JSON(http.StatusOK, LayoutResponse{Rep: rep, Svgs: svgs})
}

func writeSvg(outs []sloper.FitReader) (svgs map[string]string, errs []error) {
	svgs = map[string]string{}
	for _, out := range outs {
		for nm, r := range out {
			b, err := io.ReadAll(r)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			svgs[nm] = string(b)
		}
	}
	return
}

func (h *Handler) CreateProfile(c *gin.Context) {
	var req store.ProfileRequest
	if !h.bind(c, &req) {
		return
	}
	if err := h.checkProfile(&req); err != nil {
		h.fail(c, err, "create profile")
		return
	}
	p, err := h.repo.Create(c.Request.Context(), &req)
	if err != nil {
		h.fail(c, err, "create profile")
		return
	}
	c.JSON(http.StatusCreated, ProfileResponse{Data: *p})
}

func (h *Handler) ListProfiles(c *gin.Context) {
	ps, err := h.repo.List(c.Request.Context())
	if err != nil {
		h.fail(c, err, "list profiles")
		return
	}
	if ps == nil {
		ps = []store.Profile{}
	}
	c.JSON(http.StatusOK, ProfilesResponse{Data: ps})
}

func (h *Handler) GetProfile(c *gin.Context) {
	p, err := h.repo.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err, "get profile")
		return
	}
	c.JSON(http.StatusOK, ProfileResponse{Data: *p})
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	var req store.ProfileRequest
	if !h.bind(c, &req) {
		return
	}
	if err := h.checkProfile(&req); err != nil {
		h.fail(c, err, "update profile")
		return
	}
	p, err := h.repo.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.fail(c, err, "update profile")
		return
	}
	c.JSON(http.StatusOK, ProfileResponse{Data: *p})
}

func (h *Handler) DeleteProfile(c *gin.Context) {
	if err := h.repo.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err, "delete profile")
		return
	}
	c.Status(http.StatusNoContent)
}

// ProfileSVG draws a stored profile. width and height default to 900,
// inkscape and labels are taken when set to true.
func (h *Handler) ProfileSVG(c *gin.Context) {
	verr := &sloper.ValidationError{}
	size := func(name string) int {
		n, err := strconv.Atoi(c.DefaultQuery(name, strconv.Itoa(defaultCanvas)))
		if err != nil {
			verr.Problems = append(verr.Problems, sloper.Problem{Field: name, Reason: "must be an integer"})
		}
		return n
	}
	w, ht := size("width"), size("height")
	if len(verr.Problems) > 0 {
		h.fail(c, verr, "profile svg")
		return
	}

	p, err := h.repo.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err, "profile svg")
		return
	}
	ease := p.Ease
	resp, err := h.draft(DraftRequest{
		Measurements: p.Measurements,
		Ease:         &ease,
		Width:        w,
		Height:       ht,
		Inkscape:     c.Query("inkscape") == "true",
		Labels:       c.Query("labels") == "true",
	})
	if err != nil {
		h.fail(c, err, "profile svg")
		return
	}
	c.Data(http.StatusOK, "image/svg+xml", []byte(resp.SVG))
}

// checkProfile refuses profiles that could not be drafted.
func (h *Handler) checkProfile(req *store.ProfileRequest) error {
	m, err := req.Measurements.Build()
	if err != nil {
		return err
	}
	_, err = h.drafter.NewBase(m, sloper.Ease(req.Ease))
	return err
}

// bind decodes the json body into obj. Broken json is a bad request, json
// that does not fit obj is unprocessable.
func (h *Handler) bind(c *gin.Context, obj interface{}) bool {
	fail := c.ShouldBindJSON(obj)
	if fail == nil {
		return true
	}
	err := errid{reqid: getid(c)}.wrap(fail, "fail decoding json input")
	var syntax *json.SyntaxError
	if errors.As(fail, &syntax) || fail == io.ErrUnexpectedEOF {
		h.werr(c, err, http.StatusBadRequest, ErrorResponse{Error: "malformed_json", Message: "json syntax malformation"})
		return false
	}
	h.werr(c, err, http.StatusUnprocessableEntity, ErrorResponse{Error: "invalid_request", Message: "invalid data: " + fail.Error()})
	return false
}

// fail answers with the status matching the cause of err.
func (h *Handler) fail(c *gin.Context, cause error, op string) {
	err := errid{reqid: getid(c)}.wrap(cause, op)
	switch x := errors.Cause(cause).(type) {
	case *sloper.ValidationError:
		h.werr(c, err, http.StatusUnprocessableEntity, ErrorResponse{Error: "invalid_input", Message: x.Error(), Problems: x.Problems})
	case *sloper.GeometryError:
		h.werr(c, err, http.StatusUnprocessableEntity, ErrorResponse{Error: "geometry", Message: x.Error()})
	default:
		if x == store.ErrNotFound {
			h.werr(c, err, http.StatusNotFound, ErrorResponse{Error: "not_found", Message: x.Error()})
			return
		}
		if errors.Is(x, context.Canceled) {
			h.werr(c, err, http.StatusServiceUnavailable, ErrorResponse{Error: "canceled", Message: "request canceled"})
			return
		}
		h.werr(c, err, http.StatusInternalServerError, ErrorResponse{Error: "internal_error", Message: op + " failed"})
	}
}

func (h *Handler) werr(c *gin.Context, err error, code int, resp ErrorResponse) {
	if x, ok := err.(errid); ok {
		resp.RequestID = x.id()
		fields := []zap.Field{zap.String("reqid", x.id()), zap.Int("status", code)}
		if h.debug {
			// for debugging
			fields = append(fields, zap.String("trace", fmt.Sprintf("%+v", x.err)))
		} else {
			fields = append(fields, zap.Error(errors.Cause(x)))
		}
		if code >= http.StatusInternalServerError {
			h.log.Error("request failed", fields...)
		} else {
			h.log.Warn("request refused", fields...)
		}
	}
	c.AbortWithStatusJSON(code, resp)
}
