package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/existflow/taskboard/internal/board"
	"github.com/existflow/taskboard/internal/filter"
	"github.com/existflow/taskboard/internal/logger"
	"github.com/existflow/taskboard/internal/model"
)

// BoardResponse is the board as a renderer sees it
type BoardResponse struct {
	Columns    []model.Column   `json:"columns"`
	Users      []model.User     `json:"users"`
	Tasks      []model.Task     `json:"tasks"`
	Activities []model.Activity `json:"activities"`
	Theme      board.Theme      `json:"theme"`
	Filter     filter.Criteria  `json:"filter"`
	Total      int              `json:"total"`
}

// UpdateTaskRequest carries the fields of a PATCH. Absent fields are left
// unchanged; a null or empty dueDate clears it.
type UpdateTaskRequest struct {
	Title       *string         `json:"title"`
	Description *string         `json:"description"`
	Priority    *model.Priority `json:"priority"`
	AssigneeID  *string         `json:"assigneeId"`
	DueDate     json.RawMessage `json:"dueDate"`
	Tags        *[]string       `json:"tags"`
	ColumnID    *string         `json:"columnId"`
}

// Patch converts the request into a task patch
func (r UpdateTaskRequest) Patch() (model.TaskPatch, error) {
	p := model.TaskPatch{
		Title:       r.Title,
		Description: r.Description,
		Priority:    r.Priority,
		AssigneeID:  r.AssigneeID,
		Tags:        r.Tags,
		ColumnID:    r.ColumnID,
	}
	if len(r.DueDate) > 0 {
		raw := bytes.TrimSpace(r.DueDate)
		if string(raw) == "null" || string(raw) == `""` {
			p.ClearDueDate = true
			return p, nil
		}
		var d model.Date
		if err := json.Unmarshal(raw, &d); err != nil {
			return p, err
		}
		p.DueDate = &d
	}
	return p, nil
}

type moveRequest struct {
	ColumnID string `json:"columnId"`
}

type columnRequest struct {
	Name string `json:"name"`
}

type themeRequest struct {
	Theme string `json:"theme"`
}

func errorJSON(c echo.Context, status int, msg string) error {
	return c.JSON(status, map[string]string{"error": msg})
}

// fail maps command errors to responses
func fail(c echo.Context, err error) error {
	var verr model.ValidationError
	var ierr *board.ImportError
	switch {
	case errors.As(err, &verr):
		return c.JSON(http.StatusUnprocessableEntity, map[string]any{"errors": verr})
	case errors.Is(err, board.ErrNotFound):
		return errorJSON(c, http.StatusNotFound, err.Error())
	case errors.As(err, &ierr):
		return errorJSON(c, http.StatusBadRequest, err.Error())
	default:
		logger.Error("Request failed", logger.F("uri", c.Request().RequestURI), logger.F("error", err))
		return errorJSON(c, http.StatusInternalServerError, "internal error")
	}
}

func (s *Server) handleBoard(c echo.Context) error {
	criteria := filter.Criteria{
		Priority:   model.Priority(c.QueryParam("priority")),
		AssigneeID: c.QueryParam("assignee"),
		SearchText: c.QueryParam("q"),
	}
	tasks := s.board.Tasks()

	return c.JSON(http.StatusOK, BoardResponse{
		Columns:    s.board.Columns(),
		Users:      s.board.Users(),
		Tasks:      filter.Tasks(tasks, criteria),
		Activities: s.board.RecentActivities(),
		Theme:      s.board.Theme(),
		Filter:     criteria,
		Total:      len(tasks),
	})
}

func (s *Server) handleCreateTask(c echo.Context) error {
	var in model.TaskInput
	if err := c.Bind(&in); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid request")
	}

	task, err := s.board.CreateTask(c.Request().Context(), in)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, task)
}

func (s *Server) handleUpdateTask(c echo.Context) error {
	var req UpdateTaskRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid request")
	}
	patch, err := req.Patch()
	if err != nil {
		return c.JSON(http.StatusUnprocessableEntity, map[string]any{
			"errors": model.ValidationError{"dueDate": "Due date must be YYYY-MM-DD"},
		})
	}

	task, err := s.board.UpdateTask(c.Request().Context(), c.Param("id"), patch)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, task)
}

func (s *Server) handleMoveTask(c echo.Context) error {
	var req moveRequest
	if err := c.Bind(&req); err != nil || req.ColumnID == "" {
		return errorJSON(c, http.StatusBadRequest, "columnId required")
	}

	id := c.Param("id")
	moved, err := s.board.MoveTask(c.Request().Context(), id, req.ColumnID)
	if err != nil {
		return fail(c, err)
	}
	task, _ := s.board.Task(id)
	return c.JSON(http.StatusOK, map[string]any{"moved": moved, "task": task})
}

func (s *Server) handleToggleTask(c echo.Context) error {
	task, err := s.board.ToggleTaskCompletion(c.Request().Context(), c.Param("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, task)
}

func (s *Server) handleAddColumn(c echo.Context) error {
	var req columnRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid request")
	}

	col, ok := s.board.AddColumn(c.Request().Context(), req.Name)
	if !ok {
		return c.JSON(http.StatusUnprocessableEntity, map[string]any{
			"errors": model.ValidationError{"name": "Column name is required"},
		})
	}
	return c.JSON(http.StatusCreated, col)
}

func (s *Server) handleActivities(c echo.Context) error {
	activities := s.board.Activities()
	if v := c.QueryParam("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return errorJSON(c, http.StatusBadRequest, "invalid limit")
		}
		activities = activities[:min(n, len(activities))]
	}
	return c.JSON(http.StatusOK, activities)
}

func (s *Server) handleExport(c echo.Context) error {
	data, err := s.board.Export()
	if err != nil {
		return fail(c, err)
	}
	name := fmt.Sprintf("taskboard-%s.json", s.board.Today())
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", name))
	return c.Blob(http.StatusOK, echo.MIMEApplicationJSON, data)
}

func (s *Server) handleImport(c echo.Context) error {
	data, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid request")
	}

	res, err := s.board.Import(c.Request().Context(), data)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (s *Server) handleTheme(c echo.Context) error {
	var req themeRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid request")
	}
	if err := s.board.SetTheme(c.Request().Context(), req.Theme); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, map[string]any{
			"errors": model.ValidationError{"theme": err.Error()},
		})
	}
	return c.JSON(http.StatusOK, map[string]string{"theme": string(s.board.Theme())})
}
