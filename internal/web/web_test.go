package web

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0-Luminous/taskflow/internal/config"
	"github.com/0-Luminous/taskflow/internal/db"
	"github.com/0-Luminous/taskflow/internal/model"
	"github.com/0-Luminous/taskflow/internal/repo"
)

func newTestServer(t *testing.T) (*httptest.Server, *repo.Facade) {
	t.Helper()

	database, err := db.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	facade := repo.New(db.NewStore(database), nil)
	t.Cleanup(facade.Close)
	facade.SetSelectedDate(time.Date(2026, time.March, 14, 0, 0, 0, 0, time.UTC))

	server := httptest.NewServer(NewServer(facade, config.NewSettings(0), nil).Handler())
	t.Cleanup(server.Close)
	return server, facade
}

func postJSON(t *testing.T, url string, payload any) *http.Response {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func TestCreateTask(t *testing.T) {
	server, _ := newTestServer(t)

	resp := postJSON(t, server.URL+"/api/tasks", taskPayload{
		Title: "Morning review",
		Start: "2026-03-14T09:00:00Z",
		End:   "2026-03-14T10:00:00Z",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created taskPayload
	decodeJSON(t, resp, &created)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Morning review", created.Title)
	// 09:00 on a dial with zero position 0 sits at 45 degrees.
	assert.InDelta(t, 45.0, created.StartAngle, 0.01)
	assert.InDelta(t, 60.0, created.EndAngle, 0.01)
}

func TestCreateTaskInvalidRange(t *testing.T) {
	server, facade := newTestServer(t)

	resp := postJSON(t, server.URL+"/api/tasks", taskPayload{
		Title: "Backwards",
		Start: "2026-03-14T10:00:00Z",
		End:   "2026-03-14T09:00:00Z",
	})
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Empty(t, facade.Tasks())
}

func TestCreateTaskMissingTitle(t *testing.T) {
	server, _ := newTestServer(t)

	resp := postJSON(t, server.URL+"/api/tasks", taskPayload{
		Start: "2026-03-14T09:00:00Z",
		End:   "2026-03-14T10:00:00Z",
	})
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestListTasksByDate(t *testing.T) {
	server, facade := newTestServer(t)

	_, err := facade.Add(context.Background(), model.Task{
		Title:     "On the day",
		StartTime: time.Date(2026, time.March, 14, 9, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2026, time.March, 14, 10, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	_, err = facade.Add(context.Background(), model.Task{
		Title:     "Day after",
		StartTime: time.Date(2026, time.March, 15, 9, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2026, time.March, 15, 10, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	resp, err := http.Get(server.URL + "/api/tasks?date=2026-03-14")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var tasks []taskPayload
	decodeJSON(t, resp, &tasks)
	require.Len(t, tasks, 1)
	assert.Equal(t, "On the day", tasks[0].Title)
}

func TestToggleAndDeleteTask(t *testing.T) {
	server, facade := newTestServer(t)

	created, err := facade.Add(context.Background(), model.Task{
		Title:     "Gym",
		StartTime: time.Date(2026, time.March, 14, 18, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2026, time.March, 14, 19, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	resp := postJSON(t, server.URL+"/api/tasks/"+created.ID.String()+"/toggle", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var toggled taskPayload
	decodeJSON(t, resp, &toggled)
	assert.True(t, toggled.Completed)

	req, err := http.NewRequest(http.MethodDelete, server.URL+"/api/tasks/"+created.ID.String(), nil)
	require.NoError(t, err)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Empty(t, facade.Tasks())
}

func TestDeleteMissingTask(t *testing.T) {
	server, _ := newTestServer(t)

	req, err := http.NewRequest(http.MethodDelete, server.URL+"/api/tasks/1b4e28ba-2fa1-11d2-883f-0016d3cca427", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestFindSlotNearPreferred(t *testing.T) {
	server, facade := newTestServer(t)

	_, err := facade.Add(context.Background(), model.Task{
		Title:     "Blocker",
		StartTime: time.Date(2026, time.March, 14, 9, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2026, time.March, 14, 9, 30, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	resp, err := http.Get(server.URL + "/api/slots?duration=30m&preferred=09:15&date=2026-03-14")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var slot slotPayload
	decodeJSON(t, resp, &slot)
	assert.Equal(t, "2026-03-14T09:30:00Z", slot.Start)
	assert.Equal(t, "2026-03-14T10:00:00Z", slot.End)
}

func TestListSlotsRequiresDuration(t *testing.T) {
	server, _ := newTestServer(t)

	resp, err := http.Get(server.URL + "/api/slots")
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestStats(t *testing.T) {
	server, facade := newTestServer(t)

	_, err := facade.Add(context.Background(), model.Task{
		Title:     "Deep work",
		StartTime: time.Date(2026, time.March, 14, 9, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2026, time.March, 14, 12, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	resp, err := http.Get(server.URL + "/api/stats?date=2026-03-14")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var stats statsPayload
	decodeJSON(t, resp, &stats)
	assert.Equal(t, "2026-03-14", stats.Date)
	assert.Equal(t, 1, stats.TotalTasks)
	assert.Equal(t, "3h0m0s", stats.TotalDuration)
	assert.InDelta(t, 12.5, stats.BusyPercentage, 0.01)
}

func TestZeroPositionRoundTrip(t *testing.T) {
	server, _ := newTestServer(t)

	body, err := json.Marshal(map[string]float64{"zero_position": 450})
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodPut, server.URL+"/api/zero-position", bytes.NewReader(body))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var updated map[string]float64
	decodeJSON(t, resp, &updated)
	assert.InDelta(t, 90.0, updated["zero_position"], 0.01, "angles normalize into [0, 360)")

	resp, err = http.Get(server.URL + "/api/zero-position")
	require.NoError(t, err)
	var fetched map[string]float64
	decodeJSON(t, resp, &fetched)
	assert.InDelta(t, 90.0, fetched["zero_position"], 0.01)
}
