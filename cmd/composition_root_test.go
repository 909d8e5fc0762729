package cmd_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/RuslanFatikhov/q-ryer/cmd"
	"github.com/RuslanFatikhov/q-ryer/internal/core/application/usecases/commands"
	"github.com/RuslanFatikhov/q-ryer/internal/core/application/usecases/queries"
	"github.com/RuslanFatikhov/q-ryer/internal/core/domain/model/kernel"
	"github.com/RuslanFatikhov/q-ryer/internal/core/domain/model/order"
	"github.com/RuslanFatikhov/q-ryer/internal/pkg/logging"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const restaurants = `{"type": "FeatureCollection", "features": [
  {"type": "Feature", "properties": {"name": "Green Cafe"},
   "geometry": {"type": "Point", "coordinates": [76.8897, 43.2479]}}
]}`

const buildings = `{"type": "FeatureCollection", "features": [
  {"type": "Feature", "properties": {"addr:street": "Abay Ave", "addr:housenumber": "10"},
   "geometry": {"type": "Point", "coordinates": [76.8897, 43.2659]}}
]}`

const cities = `{"cities": [
  {"id": "almaty", "name": "Almaty", "active": true, "center": {"lat": 43.2389, "lng": 76.8897}}
]}`

func catalogDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "almaty"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "almaty", "restaurants.geojson"), []byte(restaurants), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "almaty", "buildings.geojson"), []byte(buildings), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cities_config.json"), []byte(cities), 0o600))
	return dir
}

func memoryConfig(t *testing.T) cmd.Config {
	t.Helper()
	clearEnv(t)
	t.Setenv("STORAGE", "memory")
	t.Setenv("CATALOG_DIR", catalogDir(t))
	t.Setenv("CATALOG_REFRESH_SCHEDULE", "@every 1h")
	t.Setenv("SEARCH_TICK", "1ms")
	cfg, err := cmd.LoadConfig(nil)
	require.NoError(t, err)
	return cfg
}

func newRoot(t *testing.T, cfg cmd.Config) *cmd.CompositionRoot {
	t.Helper()
	root, err := cmd.NewCompositionRoot(cfg, nil, logging.Discard())
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = root.Close(ctx)
	})
	return root
}

func TestCompositionRoot_MemoryStorage_FindsOrderFromCatalog(t *testing.T) {
	// Arrange
	root := newRoot(t, memoryConfig(t))
	require.NoError(t, root.WarmUp(t.Context()))
	assert.Equal(t, [2]int{1, 1}, root.Catalog().Stats()["almaty"])

	createCmd, err := commands.NewCreateAgentCommand(kernel.NewUUID(), "rider", "", 0)
	require.NoError(t, err)
	agentID, err := root.CreateCreateAgentCommandHandler().Handle(t.Context(), createCmd)
	require.NoError(t, err)
	positionCmd, err := commands.NewUpdatePositionCommand(agentID, 43.2470, 76.8897, 5)
	require.NoError(t, err)
	_, err = root.CreateUpdatePositionCommandHandler().Handle(t.Context(), positionCmd)
	require.NoError(t, err)

	// Act
	findCmd, err := commands.NewFindOrderCommand(agentID, "", 0)
	require.NoError(t, err)
	found, err := root.CreateFindOrderCommandHandler().Handle(t.Context(), findCmd)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, order.Pending, found.Order.Status())
	assert.Equal(t, "Green Cafe", found.Order.PickupName())
	assert.Equal(t, "Abay Ave 10", found.Order.DropoffAddress())

	activeQuery, err := queries.NewGetActiveOrderQuery(agentID)
	require.NoError(t, err)
	view, err := root.CreateGetActiveOrderQueryHandler().Handle(t.Context(), activeQuery)
	require.NoError(t, err)
	assert.Equal(t, found.Order.ID(), view.ID)

	assert.Nil(t, root.CreateGetOpenOrdersQueryHandler(), "raw SQL read models need postgres")
	assert.Nil(t, root.CreateGetAgentStatsQueryHandler())
}

func TestCompositionRoot_Reload(t *testing.T) {
	cfg := memoryConfig(t)
	root := newRoot(t, cfg)

	broken := cfg
	broken.Economy.DeliverySpeedKmh = 0
	require.Error(t, root.Reload(t.Context(), broken))
	assert.InDelta(t, 5, root.Economy().Load().DeliverySpeedKmh, 1e-9)

	richer := cfg
	richer.Economy.OnTimeBonus = 3
	require.NoError(t, root.Reload(t.Context(), richer))
	assert.InDelta(t, 3, root.Economy().Load().OnTimeBonus, 1e-9)
	assert.Contains(t, root.Catalog().Stats(), "almaty")
}

func TestCompositionRoot_JobsStartAndStop(t *testing.T) {
	root := newRoot(t, memoryConfig(t))

	manager, err := root.CreateJobManager(t.Context())
	require.NoError(t, err)

	require.NoError(t, manager.StartAll())
	require.NoError(t, manager.StopAll(t.Context()))
}

func TestCompositionRoot_HTTPServer(t *testing.T) {
	root := newRoot(t, memoryConfig(t))
	e := echo.New()
	root.CreateHTTPServer().Register(e)

	get := func(path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		return rec
	}

	assert.Equal(t, http.StatusOK, get("/health").Code)
	assert.JSONEq(t, `{"regions":["almaty"]}`, get("/api/v1/regions").Body.String())

	metrics := get("/metrics")
	require.Equal(t, http.StatusOK, metrics.Code)
	assert.Contains(t, metrics.Body.String(), "qryer_searches_active")
	assert.Contains(t, metrics.Body.String(), `qryer_http_requests_total{method="GET",path="/api/v1/regions",status="200"} 1`)
}
