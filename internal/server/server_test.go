package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/existflow/taskboard/internal/board"
	"github.com/existflow/taskboard/internal/kv"
	"github.com/existflow/taskboard/internal/model"
	"github.com/existflow/taskboard/internal/realtime"
	"github.com/existflow/taskboard/internal/schedule"
)

var epoch = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T) (*Server, *board.Board) {
	t.Helper()
	b, err := board.Open(context.Background(), kv.NewAdapter(kv.NewMemory()),
		board.WithScheduler(schedule.NewFake(epoch)))
	if err != nil {
		t.Fatal(err)
	}
	s := New(b)
	t.Cleanup(func() { _ = s.Shutdown(context.Background()) })
	return s, b
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("Failed to decode %q: %v", rec.Body.String(), err)
	}
	return v
}

type errorsBody struct {
	Errors map[string]string `json:"errors"`
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "ok") {
		t.Errorf("Unexpected health response %d %s", rec.Code, rec.Body)
	}
}

func TestBoardFilters(t *testing.T) {
	s, b := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/api/v1/board?priority=critical", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	resp := decode[BoardResponse](t, rec)
	if resp.Total != len(b.Tasks()) || len(resp.Columns) != 5 || len(resp.Users) != 4 {
		t.Errorf("Unexpected board %+v", resp)
	}
	if len(resp.Tasks) == 0 {
		t.Fatal("Expected the seeded critical task")
	}
	for _, task := range resp.Tasks {
		if task.Priority != model.PriorityCritical {
			t.Errorf("Filter leaked %s task", task.Priority)
		}
	}

	resp = decode[BoardResponse](t, do(t, s, http.MethodGet, "/api/v1/board?q=OAUTH", ""))
	if len(resp.Tasks) != 1 || resp.Filter.SearchText != "OAUTH" {
		t.Errorf("Expected one description match, got %d", len(resp.Tasks))
	}
}

func TestCreateTask(t *testing.T) {
	s, b := newTestServer(t)
	before := len(b.Tasks())

	rec := do(t, s, http.MethodPost, "/api/v1/tasks",
		`{"title":"From API","columnId":"col-todo","priority":"high","dueDate":"2026-03-12","tags":["api"]}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", rec.Code, rec.Body)
	}
	task := decode[model.Task](t, rec)
	if task.Status != "todo" || task.DueDate == nil || task.DueDate.String() != "2026-03-12" {
		t.Errorf("Unexpected task %+v", task)
	}

	rec = do(t, s, http.MethodPost, "/api/v1/tasks", `{"title":"","columnId":"col-todo","dueDate":"2026-03-01"}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("Expected 422, got %d", rec.Code)
	}
	errs := decode[errorsBody](t, rec).Errors
	if errs["title"] == "" || errs["dueDate"] == "" {
		t.Errorf("Expected title and dueDate errors, got %v", errs)
	}

	if rec := do(t, s, http.MethodPost, "/api/v1/tasks", `{"title":`); rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for bad JSON, got %d", rec.Code)
	}
	if got := len(b.Tasks()); got != before+1 {
		t.Errorf("Expected %d tasks, got %d", before+1, got)
	}
}

func TestUpdateTask(t *testing.T) {
	s, b := newTestServer(t)
	due := model.DateOf(epoch).AddDays(2)
	task, _ := b.CreateTask(context.Background(), model.TaskInput{Title: "Patch me", ColumnID: "col-todo", DueDate: &due})

	rec := do(t, s, http.MethodPatch, "/api/v1/tasks/"+task.ID, `{"title":"Patched","dueDate":null}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body)
	}
	got := decode[model.Task](t, rec)
	if got.Title != "Patched" || got.DueDate != nil {
		t.Errorf("Expected patched title and cleared due date, got %+v", got)
	}

	rec = do(t, s, http.MethodPatch, "/api/v1/tasks/"+task.ID, `{"dueDate":"tomorrow"}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("Expected 422 for bad date, got %d", rec.Code)
	}

	if rec := do(t, s, http.MethodPatch, "/api/v1/tasks/task-missing", `{"title":"x"}`); rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", rec.Code)
	}
}

func TestMoveAndToggle(t *testing.T) {
	s, b := newTestServer(t)
	task, _ := b.CreateTask(context.Background(), model.TaskInput{Title: "Mover", ColumnID: "col-backlog"})

	rec := do(t, s, http.MethodPost, "/api/v1/tasks/"+task.ID+"/move", `{"columnId":"col-review"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	body := decode[struct {
		Moved bool       `json:"moved"`
		Task  model.Task `json:"task"`
	}](t, rec)
	if !body.Moved || body.Task.Status != "review" {
		t.Errorf("Unexpected move response %+v", body)
	}

	if rec := do(t, s, http.MethodPost, "/api/v1/tasks/"+task.ID+"/move", `{"columnId":"col-nowhere"}`); rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown column, got %d", rec.Code)
	}

	rec = do(t, s, http.MethodPost, "/api/v1/tasks/"+task.ID+"/toggle", "")
	if rec.Code != http.StatusOK || decode[model.Task](t, rec).Status != "done" {
		t.Errorf("Expected toggle to done, got %d %s", rec.Code, rec.Body)
	}
}

func TestColumnsActivitiesTheme(t *testing.T) {
	s, b := newTestServer(t)

	if rec := do(t, s, http.MethodPost, "/api/v1/columns", `{"name":"  "}`); rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("Expected 422 for blank column, got %d", rec.Code)
	}
	rec := do(t, s, http.MethodPost, "/api/v1/columns", `{"name":"Blocked"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d", rec.Code)
	}
	if col := decode[model.Column](t, rec); col.Order != 5 || col.ID != "col-blocked" {
		t.Errorf("Unexpected column %+v", col)
	}

	acts := decode[[]model.Activity](t, do(t, s, http.MethodGet, "/api/v1/activities?limit=1", ""))
	if len(acts) != 1 || !strings.Contains(acts[0].Message, "Blocked") {
		t.Errorf("Expected the column activity first, got %+v", acts)
	}
	if rec := do(t, s, http.MethodGet, "/api/v1/activities?limit=x", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", rec.Code)
	}

	if rec := do(t, s, http.MethodPut, "/api/v1/theme", `{"theme":"dark"}`); rec.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", rec.Code)
	}
	if rec := do(t, s, http.MethodPut, "/api/v1/theme", `{"theme":"sepia"}`); rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("Expected 422, got %d", rec.Code)
	}
	if b.Theme() != board.ThemeDark {
		t.Errorf("Expected dark theme, got %s", b.Theme())
	}
}

func TestExportImport(t *testing.T) {
	src, srcBoard := newTestServer(t)
	dst, dstBoard := newTestServer(t)
	_, _ = srcBoard.AddColumn(context.Background(), "Blocked")

	rec := do(t, src, http.MethodGet, "/api/v1/export", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "taskboard-2026-03-10.json") {
		t.Errorf("Unexpected Content-Disposition %q", cd)
	}

	rec = do(t, dst, http.MethodPost, "/api/v1/import", rec.Body.String())
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body)
	}
	if res := decode[board.ImportResult](t, rec); res.Columns != 6 {
		t.Errorf("Unexpected import result %+v", res)
	}
	if len(dstBoard.Columns()) != 6 || len(dstBoard.Tasks()) != len(srcBoard.Tasks()) {
		t.Error("Import did not replace collections")
	}

	if rec := do(t, dst, http.MethodPost, "/api/v1/import", `{"tasks":`); rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for malformed import, got %d", rec.Code)
	}
}

func TestWebSocketFeed(t *testing.T) {
	s, b := newTestServer(t)
	ts := httptest.NewServer(s.Router())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/v1/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for s.hub.Clients() != 1 {
		if time.Now().After(deadline) {
			t.Fatal("Client never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	task, _ := b.CreateTask(context.Background(), model.TaskInput{Title: "Live", ColumnID: "col-todo"})
	s.Notify(realtime.Notice{Level: realtime.LevelInfo, Message: "hello"})

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var types []string
	for len(types) < 3 {
		var msg struct {
			Type string          `json:"type"`
			Data json.RawMessage `json:"data"`
		}
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("Read failed after %v: %v", types, err)
		}
		types = append(types, msg.Type)
		if msg.Type == "tasks" && !strings.Contains(string(msg.Data), task.ID) {
			t.Errorf("Expected task id in %s", msg.Data)
		}
	}
	if strings.Join(types, ",") != "tasks,activities,notice" {
		t.Errorf("Unexpected message order %v", types)
	}
}
