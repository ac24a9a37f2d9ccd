package api_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ethpandaops/schedeck/internal/testutil"
	"github.com/ethpandaops/schedeck/pkg/action/state"
	"github.com/ethpandaops/schedeck/pkg/api"
	"github.com/ethpandaops/schedeck/pkg/deck"
	"github.com/ethpandaops/schedeck/pkg/engine"
	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T, load bool) *engine.Service {
	t.Helper()

	log := logrus.New()
	log.SetOutput(io.Discard)

	svc, err := engine.NewService(log, &engine.Config{Deck: "CASE.yaml"}, state.NewMemoryTracker())
	require.NoError(t, err)

	if load {
		d, err := deck.Parse([]byte(testutil.SampleDeck), "")
		require.NoError(t, err)
		require.NoError(t, svc.LoadDeck(d))
	}

	return svc
}

func newTestApp(t *testing.T, load bool) *fiber.App {
	t.Helper()

	log := logrus.New()
	log.SetOutput(io.Discard)

	return api.NewApp(newTestEngine(t, load), log)
}

func doRequest(t *testing.T, app *fiber.App, method, path, body string) (int, map[string]interface{}) {
	t.Helper()

	var reader io.Reader = http.NoBody
	if body != "" {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, path, reader)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded), string(data))

	return resp.StatusCode, decoded
}

func TestAPI_NotLoaded(t *testing.T) {
	app := newTestApp(t, false)

	for _, path := range []string{"/api/v1/schedule", "/api/v1/actions", "/api/v1/summary/required"} {
		status, body := doRequest(t, app, http.MethodGet, path, "")
		assert.Equal(t, fiber.StatusServiceUnavailable, status, path)
		assert.Equal(t, "deck not loaded", body["error"], path)
	}
}

func TestAPI_Schedule(t *testing.T) {
	app := newTestApp(t, true)

	status, body := doRequest(t, app, http.MethodGet, "/api/v1/schedule", "")
	require.Equal(t, fiber.StatusOK, status)
	assert.InDelta(t, 4.0, body["total"], 0)
	assert.InDelta(t, 0.0, body["restartOffset"], 0)
	assert.NotContains(t, body, "restartTime")

	blocks, ok := body["blocks"].([]interface{})
	require.True(t, ok)
	require.Len(t, blocks, 4)

	last, ok := blocks[3].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "DATES", last["type"])
	assert.NotContains(t, last, "end")
	assert.Equal(t, []interface{}{"WCONPROD"}, last["keywords"])
}

func TestAPI_Blocks(t *testing.T) {
	app := newTestApp(t, true)

	tests := []struct {
		name       string
		path       string
		wantStatus int
		check      func(t *testing.T, body map[string]interface{})
	}{
		{
			name:       "block",
			path:       "/api/v1/schedule/blocks/2",
			wantStatus: fiber.StatusOK,
			check: func(t *testing.T, body map[string]interface{}) {
				t.Helper()
				assert.Equal(t, "TSTEP", body["type"])
				assert.Equal(t, "2020-01-21T00:00:00Z", body["start"])
				assert.Equal(t, "2020-02-01T00:00:00Z", body["end"])
				assert.Len(t, body["records"], 3)
			},
		},
		{name: "out of range", path: "/api/v1/schedule/blocks/9", wantStatus: fiber.StatusNotFound},
		{name: "negative", path: "/api/v1/schedule/blocks/-1", wantStatus: fiber.StatusNotFound},
		{name: "not a number", path: "/api/v1/schedule/blocks/x", wantStatus: fiber.StatusBadRequest},
		{
			name:       "seconds",
			path:       "/api/v1/schedule/seconds/3",
			wantStatus: fiber.StatusOK,
			check: func(t *testing.T, body map[string]interface{}) {
				t.Helper()
				assert.InDelta(t, 31.0*86400, body["seconds"], 0)
			},
		},
		{name: "seconds out of range", path: "/api/v1/schedule/seconds/4", wantStatus: fiber.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := doRequest(t, app, http.MethodGet, tt.path, "")
			assert.Equal(t, tt.wantStatus, status)

			if tt.check != nil {
				tt.check(t, body)
			} else {
				assert.Contains(t, body, "error")
			}
		})
	}
}

func TestAPI_Actions(t *testing.T) {
	app := newTestApp(t, true)

	status, body := doRequest(t, app, http.MethodGet, "/api/v1/actions", "")
	require.Equal(t, fiber.StatusOK, status)
	assert.InDelta(t, 2.0, body["total"], 0)

	actions, ok := body["actions"].([]interface{})
	require.True(t, ok)

	first, ok := actions[0].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "CUT_WATER", first["name"])
	assert.InDelta(t, 0.0, first["step"], 0)
	assert.InDelta(t, 2.0, first["maxRun"], 0)
	assert.InDelta(t, 5.0*86400, first["minWaitSeconds"], 0)
	assert.Equal(t, []interface{}{"WELPI"}, first["keywords"])
	assert.Equal(t, []interface{}{"FOPR", "WWCT"}, first["requiredSummary"])

	second, ok := actions[1].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "GAS_LIMIT", second["name"])
	assert.InDelta(t, 2.0, second["step"], 0)

	status, body = doRequest(t, app, http.MethodGet, "/api/v1/summary/required", "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, []interface{}{"FGOR", "FOPR", "WWCT"}, body["vectors"])

	status, body = doRequest(t, app, http.MethodGet, "/api/v1/actions/dependencies", "")
	require.Equal(t, fiber.StatusOK, status)
	assert.InDelta(t, 3.0, body["totalEdges"], 0)

	status, body = doRequest(t, app, http.MethodGet, "/api/v1/actions/runs", "")
	require.Equal(t, fiber.StatusOK, status)
	assert.InDelta(t, 0.0, body["total"], 0)
}

func TestAPI_EvaluateAction(t *testing.T) {
	app := newTestApp(t, true)

	tests := []struct {
		name       string
		action     string
		body       string
		wantStatus int
		wantResult map[string]interface{}
	}{
		{
			name:       "satisfied with wells",
			action:     "CUT_WATER",
			body:       testutil.SampleSnapshot,
			wantStatus: fiber.StatusOK,
			wantResult: map[string]interface{}{"satisfied": true, "kind": "set", "wells": []interface{}{"OP1", "OP3"}},
		},
		{
			name:       "scalar not satisfied",
			action:     "GAS_LIMIT",
			body:       testutil.SampleSnapshot,
			wantStatus: fiber.StatusOK,
			wantResult: map[string]interface{}{"satisfied": false, "kind": "scalar", "wells": nil},
		},
		{
			name:       "json snapshot",
			action:     "GAS_LIMIT",
			body:       `{"values": {"FGOR": 1500}}`,
			wantStatus: fiber.StatusOK,
			wantResult: map[string]interface{}{"satisfied": true, "kind": "scalar", "wells": nil},
		},
		{name: "unknown action", action: "NOPE", body: testutil.SampleSnapshot, wantStatus: fiber.StatusNotFound},
		{name: "undefined vector", action: "GAS_LIMIT", body: "values: {FOPR: 1}", wantStatus: fiber.StatusUnprocessableEntity},
		{name: "bad snapshot time", action: "GAS_LIMIT", body: "time: yesterday", wantStatus: fiber.StatusBadRequest},
		{name: "bad snapshot", action: "GAS_LIMIT", body: "values: [1, 2", wantStatus: fiber.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := doRequest(t, app, http.MethodPost, "/api/v1/actions/"+tt.action+"/eval", tt.body)
			assert.Equal(t, tt.wantStatus, status)

			if tt.wantResult == nil {
				assert.Contains(t, body, "error")
				return
			}

			assert.Equal(t, tt.action, body["action"])
			assert.Equal(t, tt.wantResult, body["result"])
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	require.NoError(t, (&api.Config{}).Validate())
	require.NoError(t, (&api.Config{Enabled: true, Addr: ":8080"}).Validate())
	require.ErrorIs(t, (&api.Config{Enabled: true}).Validate(), api.ErrAPIAddrRequired)
}
