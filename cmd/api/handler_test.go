package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/innermond/sloper"
	"github.com/innermond/sloper/internal/config"
	"github.com/innermond/sloper/internal/store"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const measurements = `{"waist":60,"hps_to_waist":57,"nape_to_waist":57,"armscye_depth":21,"neck_size":27,"shoulder":13,"x_front":27}`

// MockRepository implements store.Repository for testing
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, req *store.ProfileRequest) (*store.Profile, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.Profile), args.Error(1)
}

func (m *MockRepository) Get(ctx context.Context, id string) (*store.Profile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.Profile), args.Error(1)
}

func (m *MockRepository) List(ctx context.Context) ([]store.Profile, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]store.Profile), args.Error(1)
}

func (m *MockRepository) Update(ctx context.Context, id string, req *store.ProfileRequest) (*store.Profile, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.Profile), args.Error(1)
}

func (m *MockRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRepository) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockCache implements cache.Cache for testing
type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).([]byte), args.Bool(1), args.Error(2)
}

func (m *MockCache) Set(ctx context.Context, key string, value []byte) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *MockCache) Close() error {
	args := m.Called()
	return args.Error(0)
}

func setupTestHandler(t *testing.T) (*Handler, *MockRepository, *MockCache, *gin.Engine) {
	t.Helper()
	return setupTestHandlerRules(t, sloper.DefaultRules())
}

func setupTestHandlerRules(t *testing.T, rules sloper.Rules) (*Handler, *MockRepository, *MockCache, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	d, err := sloper.Initialize(sloper.WithRules(rules))
	require.NoError(t, err)

	mockRepo := new(MockRepository)
	mockCache := new(MockCache)
	h := NewHandler(&config.Config{MaxConcurrent: 2}, d, mockRepo, mockCache, zap.NewNop())

	engine := gin.New()
	engine.Use(requestID())
	h.RegisterRoutes(engine)
	return h, mockRepo, mockCache, engine
}

func do(engine *gin.Engine, method, url, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, url, nil)
	} else {
		req = httptest.NewRequest(method, url, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func errorOf(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestHealth(t *testing.T) {
	h, _, _, engine := setupTestHandler(t)

	w := do(engine, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	h.setHealthy(true)
	w = do(engine, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
}

func TestDraft(t *testing.T) {
	_, _, mockCache, engine := setupTestHandler(t)
	mockCache.On("Get", mock.Anything, mock.AnythingOfType("string")).Return(nil, false, nil)
	mockCache.On("Set", mock.Anything, mock.AnythingOfType("string"), mock.Anything).Return(nil)

	w := do(engine, http.MethodPost, "/api/v1/drafts", `{"measurements":`+measurements+`,"width":600,"height":400,"inkscape":true}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "miss", w.Header().Get("X-Cache"))
	assert.NotEmpty(t, w.Header().Get(headerRequestID))

	var resp DraftResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.InDelta(t, 18.5, resp.Values.QuarterWaist, 1e-9)
	assert.EqualValues(t, 14, resp.Values.Ease)
	require.Len(t, resp.Pieces, 2)
	assert.Equal(t, "front", resp.Pieces[0].Name)
	assert.Equal(t, "back", resp.Pieces[1].Name)
	assert.Contains(t, resp.SVG, `width="600" height="400"`)
	assert.Contains(t, resp.SVG, "inkscape:groupmode")

	mockCache.AssertExpectations(t)
}

func TestDraft_ZeroEase(t *testing.T) {
	_, _, mockCache, engine := setupTestHandler(t)
	mockCache.On("Get", mock.Anything, mock.Anything).Return(nil, false, nil)
	mockCache.On("Set", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	w := do(engine, http.MethodPost, "/api/v1/drafts", `{"measurements":`+measurements+`,"ease":0}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp DraftResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.InDelta(t, 15, resp.Values.QuarterWaist, 1e-9)
	assert.Zero(t, resp.Values.DartIntake)
}

func TestDraft_FromCache(t *testing.T) {
	_, _, mockCache, engine := setupTestHandler(t)
	cached := []byte(`{"values":{},"pieces":[],"svg":"<svg/>"}`)
	mockCache.On("Get", mock.Anything, mock.Anything).Return(cached, true, nil)

	w := do(engine, http.MethodPost, "/api/v1/drafts", `{"measurements":`+measurements+`}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "hit", w.Header().Get("X-Cache"))
	assert.Equal(t, string(cached), w.Body.String())

	mockCache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything)
}

func TestDraft_SameRequestSameKey(t *testing.T) {
	_, _, mockCache, engine := setupTestHandler(t)
	var keys []string
	mockCache.On("Get", mock.Anything, mock.Anything).Return(nil, false, nil).Run(func(args mock.Arguments) {
		keys = append(keys, args.String(1))
	})
	mockCache.On("Set", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	// a missing ease is the default ease
	do(engine, http.MethodPost, "/api/v1/drafts", `{"measurements":`+measurements+`}`)
	do(engine, http.MethodPost, "/api/v1/drafts", `{"measurements":`+measurements+`,"ease":14,"width":900}`)
	do(engine, http.MethodPost, "/api/v1/drafts", `{"measurements":`+measurements+`,"ease":10}`)

	require.Len(t, keys, 3)
	assert.Equal(t, keys[0], keys[1])
	assert.NotEqual(t, keys[0], keys[2])
}

func TestDraft_KeyFollowsRules(t *testing.T) {
	wider := sloper.DefaultRules()
	wider.WaistEase = 3

	var keys []string
	for _, rules := range []sloper.Rules{sloper.DefaultRules(), wider} {
		_, _, mockCache, engine := setupTestHandlerRules(t, rules)
		mockCache.On("Get", mock.Anything, mock.Anything).Return(nil, false, nil).Run(func(args mock.Arguments) {
			keys = append(keys, args.String(1))
		})
		mockCache.On("Set", mock.Anything, mock.Anything, mock.Anything).Return(nil)

		w := do(engine, http.MethodPost, "/api/v1/drafts", `{"measurements":`+measurements+`}`)
		require.Equal(t, http.StatusOK, w.Code)
	}

	require.Len(t, keys, 2)
	assert.NotEqual(t, keys[0], keys[1])
}

func TestDraft_InvalidInput(t *testing.T) {
	_, _, mockCache, engine := setupTestHandler(t)
	mockCache.On("Get", mock.Anything, mock.Anything).Return(nil, false, nil)

	type test struct {
		data   string
		status int
		kind   string
	}

	t.Run("malformed json", func(t *testing.T) {
		tt := []test{
			{`{"measurements":aaa}`, 400, "malformed_json"},
			{`{"measurements":,"ease":14}`, 400, "malformed_json"},
			{`{"measurements":{"waist":60`, 400, "malformed_json"},
		}
		for _, tc := range tt {
			w := do(engine, http.MethodPost, "/api/v1/drafts", tc.data)
			assert.Equal(t, tc.status, w.Code, tc.data)
			assert.Equal(t, tc.kind, errorOf(t, w).Error, tc.data)
		}
	})

	t.Run("invalid data", func(t *testing.T) {
		tt := []test{
			{`{"measurements":"60x57"}`, 422, "invalid_request"},
			{`{"measurements":{"waist":"sixty"}}`, 422, "invalid_request"},
			{`{}`, 422, "invalid_input"},
			{`{"measurements":{"waist":-5}}`, 422, "invalid_input"},
			{`{"measurements":` + measurements + `,"ease":45}`, 422, "invalid_input"},
			{`{"measurements":` + measurements + `,"ease":40}`, 422, "invalid_input"},
			{`{"measurements":` + measurements + `,"width":-1}`, 422, "invalid_input"},
			{`{"measurements":` + measurements + `,"seam_allowance":-1}`, 422, "invalid_input"},
		}
		for _, tc := range tt {
			w := do(engine, http.MethodPost, "/api/v1/drafts", tc.data)
			assert.Equal(t, tc.status, w.Code, tc.data)
			resp := errorOf(t, w)
			assert.Equal(t, tc.kind, resp.Error, tc.data)
			assert.NotEmpty(t, resp.RequestID, tc.data)
		}
	})

	t.Run("problems name the fields", func(t *testing.T) {
		w := do(engine, http.MethodPost, "/api/v1/drafts", `{"measurements":{"waist":-5}}`)
		require.Equal(t, http.StatusUnprocessableEntity, w.Code)
		fields := map[string]bool{}
		for _, p := range errorOf(t, w).Problems {
			fields[p.Field] = true
		}
		assert.True(t, fields["waist"])
		assert.True(t, fields["hps_to_waist"])
	})

	mockCache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything)
}

func TestDraft_RequestIDEchoed(t *testing.T) {
	_, _, _, engine := setupTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/drafts", strings.NewReader(`{"measurements":aaa}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(headerRequestID, "req-42")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, "req-42", w.Header().Get(headerRequestID))
	assert.Equal(t, "req-42", errorOf(t, w).RequestID)
}

func TestLayout(t *testing.T) {
	_, _, _, engine := setupTestHandler(t)

	type test struct {
		data   string
		status int
	}
	tt := []test{
		{`{"measurements":` + measurements + `,"fabric_width":150,"sheet_length":100}`, 200},
		{`{"measurements":` + measurements + `,"fabric_width":150,"sheet_length":100,"copies":2,"gap":0.5}`, 200},
		{`{"measurements":` + measurements + `,"fabric_width":0,"sheet_length":100}`, 422},
		{`{"measurements":` + measurements + `,"fabric_width":150,"sheet_length":100,"copies":-1}`, 422},
		{`{"measurements":` + measurements + `,"fabric_width":150,"sheet_length":100,"gap":-1}`, 422},
		{`{"measurements":{"waist":60},"fabric_width":150,"sheet_length":100}`, 422},
		{`{"fabric_width":aaa}`, 400},
	}
	for _, tc := range tt {
		w := do(engine, http.MethodPost, "/api/v1/layouts", tc.data)
		assert.Equal(t, tc.status, w.Code, tc.data)
	}

	t.Run("report", func(t *testing.T) {
		w := do(engine, http.MethodPost, "/api/v1/layouts", `{"measurements":`+measurements+`,"fabric_width":150,"sheet_length":100,"copies":2,"gap":0.5}`)
		require.Equal(t, http.StatusOK, w.Code)

		var resp LayoutResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.NotNil(t, resp.Rep)
		assert.Len(t, resp.Rep.Placements, 4)
		assert.Zero(t, resp.Rep.UnfitLen)
		assert.NotEmpty(t, resp.Rep.WinningStrategy)
		assert.Empty(t, resp.Svgs)
	})

	t.Run("nothing fits", func(t *testing.T) {
		w := do(engine, http.MethodPost, "/api/v1/layouts", `{"measurements":`+measurements+`,"fabric_width":10,"sheet_length":100,"svg":true}`)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		resp := errorOf(t, w)
		assert.Equal(t, "unfit", resp.Error)
		assert.Equal(t, "no piece fits a 10x100 cm sheet", resp.Message)
		assert.NotEmpty(t, resp.RequestID)
	})

	t.Run("svg", func(t *testing.T) {
		w := do(engine, http.MethodPost, "/api/v1/layouts", `{"measurements":`+measurements+`,"fabric_width":150,"sheet_length":100,"svg":true,"showdim":true}`)
		require.Equal(t, http.StatusOK, w.Code)

		var resp LayoutResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		name := "marker.1." + resp.Rep.WinningStrategy + ".svg"
		require.Contains(t, resp.Svgs, name)
		assert.Contains(t, resp.Svgs[name], `width="150cm"`)
		assert.Contains(t, resp.Svgs[name], `id="dimensions"`)
	})
}

func profile() *store.Profile {
	return &store.Profile{
		ID:   "test-id",
		Name: "size 10",
		Measurements: sloper.Fields{
			Waist: 60, HPSToWaist: 57, NapeToWaist: 57, ArmscyeDepth: 21,
			NeckSize: 27, Shoulder: 13, XFront: 27,
		},
		Ease:      14,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

func TestCreateProfile(t *testing.T) {
	_, mockRepo, _, engine := setupTestHandler(t)
	expected := profile()

	mockRepo.On("Create", mock.Anything, mock.MatchedBy(func(req *store.ProfileRequest) bool {
		return req.Name == "size 10" && req.Measurements.Waist == 60 && req.Ease == 14
	})).Return(expected, nil)

	w := do(engine, http.MethodPost, "/api/v1/profiles", `{"name":"size 10","measurements":`+measurements+`,"ease":14}`)
	assert.Equal(t, http.StatusCreated, w.Code)

	var resp ProfileResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "test-id", resp.Data.ID)
	assert.Equal(t, "size 10", resp.Data.Name)

	mockRepo.AssertExpectations(t)
}

func TestCreateProfile_InvalidRequest(t *testing.T) {
	_, mockRepo, _, engine := setupTestHandler(t)

	tt := []struct {
		data   string
		status int
	}{
		// name is required
		{`{"measurements":` + measurements + `}`, 422},
		{`{"name":"` + strings.Repeat("a", 300) + `","measurements":` + measurements + `}`, 422},
		{`{"name":"bad","measurements":{"waist":-5}}`, 422},
		{`{"name":"bad","measurements":` + measurements + `,"ease":41}`, 422},
		{`{"name":"bad",`, 400},
	}
	for _, tc := range tt {
		w := do(engine, http.MethodPost, "/api/v1/profiles", tc.data)
		assert.Equal(t, tc.status, w.Code, tc.data)
	}
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestProfile_Undraftable(t *testing.T) {
	// the values can be computed but the chest dart cannot be closed
	rules := sloper.DefaultRules()
	rules.ChestDartIntake = 12
	h, mockRepo, _, engine := setupTestHandlerRules(t, rules)

	var f sloper.Fields
	require.NoError(t, json.Unmarshal([]byte(measurements), &f))
	m, err := f.Build()
	require.NoError(t, err)
	_, err = h.drafter.ComputeValues(m, 14)
	require.NoError(t, err)

	body := `{"name":"size 10","measurements":` + measurements + `,"ease":14}`
	w := do(engine, http.MethodPost, "/api/v1/profiles", body)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "geometry", errorOf(t, w).Error)

	w = do(engine, http.MethodPut, "/api/v1/profiles/p1", body)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "geometry", errorOf(t, w).Error)

	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateProfile_StoreFailure(t *testing.T) {
	_, mockRepo, _, engine := setupTestHandler(t)
	mockRepo.On("Create", mock.Anything, mock.Anything).Return(nil, errors.New("disk full"))

	w := do(engine, http.MethodPost, "/api/v1/profiles", `{"name":"size 10","measurements":`+measurements+`}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	resp := errorOf(t, w)
	assert.Equal(t, "internal_error", resp.Error)
	assert.NotContains(t, resp.Message, "disk full")
}

func TestListProfiles(t *testing.T) {
	_, mockRepo, _, engine := setupTestHandler(t)
	mockRepo.On("List", mock.Anything).Return([]store.Profile{*profile(), *profile()}, nil)

	w := do(engine, http.MethodGet, "/api/v1/profiles", "")
	assert.Equal(t, http.StatusOK, w.Code)

	var resp ProfilesResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Data, 2)
}

func TestListProfiles_Empty(t *testing.T) {
	_, mockRepo, _, engine := setupTestHandler(t)
	mockRepo.On("List", mock.Anything).Return(nil, nil)

	w := do(engine, http.MethodGet, "/api/v1/profiles", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"data":[]}`, w.Body.String())
}

func TestGetProfile(t *testing.T) {
	_, mockRepo, _, engine := setupTestHandler(t)
	mockRepo.On("Get", mock.Anything, "test-id").Return(profile(), nil)
	mockRepo.On("Get", mock.Anything, "nonexistent").Return(nil, store.ErrNotFound)

	w := do(engine, http.MethodGet, "/api/v1/profiles/test-id", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(engine, http.MethodGet, "/api/v1/profiles/nonexistent", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "not_found", errorOf(t, w).Error)

	mockRepo.AssertExpectations(t)
}

func TestUpdateProfile(t *testing.T) {
	_, mockRepo, _, engine := setupTestHandler(t)
	updated := profile()
	updated.Name = "size 12"
	mockRepo.On("Update", mock.Anything, "test-id", mock.Anything).Return(updated, nil)
	mockRepo.On("Update", mock.Anything, "nonexistent", mock.Anything).Return(nil, errors.Wrap(store.ErrNotFound, "update"))

	w := do(engine, http.MethodPut, "/api/v1/profiles/test-id", `{"name":"size 12","measurements":`+measurements+`}`)
	assert.Equal(t, http.StatusOK, w.Code)
	var resp ProfileResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "size 12", resp.Data.Name)

	w = do(engine, http.MethodPut, "/api/v1/profiles/nonexistent", `{"name":"size 12","measurements":`+measurements+`}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(engine, http.MethodPut, "/api/v1/profiles/test-id", `{"name":"size 12","measurements":{"waist":60}}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	mockRepo.AssertNumberOfCalls(t, "Update", 2)
}

func TestDeleteProfile(t *testing.T) {
	_, mockRepo, _, engine := setupTestHandler(t)
	mockRepo.On("Delete", mock.Anything, "test-id").Return(nil)
	mockRepo.On("Delete", mock.Anything, "nonexistent").Return(store.ErrNotFound)

	w := do(engine, http.MethodDelete, "/api/v1/profiles/test-id", "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(engine, http.MethodDelete, "/api/v1/profiles/nonexistent", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	mockRepo.AssertExpectations(t)
}

func TestProfileSVG(t *testing.T) {
	_, mockRepo, _, engine := setupTestHandler(t)
	mockRepo.On("Get", mock.Anything, "test-id").Return(profile(), nil)
	mockRepo.On("Get", mock.Anything, "nonexistent").Return(nil, store.ErrNotFound)

	w := do(engine, http.MethodGet, "/api/v1/profiles/test-id/svg?width=800&height=600&labels=true", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "image/svg+xml", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), `width="800" height="600"`)
	assert.Contains(t, w.Body.String(), ">cf_waist</text>")

	w = do(engine, http.MethodGet, "/api/v1/profiles/nonexistent/svg", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(engine, http.MethodGet, "/api/v1/profiles/test-id/svg?width=wide", "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "width", errorOf(t, w).Problems[0].Field)

	w = do(engine, http.MethodGet, "/api/v1/profiles/test-id/svg?height=0", "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestLimiter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var inflight, peak int32

	engine := gin.New()
	engine.GET("/", limiter(2), func(c *gin.Context) {
		n := atomic.AddInt32(&inflight, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt32(&inflight, -1)
		c.Status(http.StatusOK)
	})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
			assert.Equal(t, http.StatusOK, w.Code)
		}()
	}
	wg.Wait()
	assert.LessOrEqual(t, peak, int32(2))
	assert.GreaterOrEqual(t, peak, int32(1))
}

func TestLimiterByTime(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.GET("/", limiterByTime(10*time.Millisecond), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	start := time.Now()
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
}

func TestErrid(t *testing.T) {
	cause := &sloper.ValidationError{Problems: []sloper.Problem{{Field: "waist", Reason: "must be positive"}}}
	err := errid{reqid: "r1"}.wrap(cause, "draft")

	assert.Equal(t, "r1: draft: invalid input: waist must be positive", err.Error())
	assert.True(t, sloper.IsValidation(err))
	assert.Equal(t, "r1", err.(errid).id())

	err = errid{reqid: "r2"}.textf("no piece fits a %gx%g cm sheet", 10.0, 100.0)
	assert.Equal(t, "r2: no piece fits a 10x100 cm sheet", err.Error())
	err = errid{reqid: "r3"}.from(store.ErrNotFound)
	assert.Equal(t, store.ErrNotFound, errors.Cause(err))

	err = errid{reqid: "r4"}.wrap(context.Canceled, "layout")
	assert.True(t, errors.Is(err, context.Canceled))
}
