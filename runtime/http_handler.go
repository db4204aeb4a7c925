package runtime

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// TaskInfo is the listing view of a registered task.
type TaskInfo struct {
	Name        string `json:"name"`
	Group       string `json:"group"`
	Description string `json:"description"`
	Type        string `json:"type"`
}

// DescribeTasks realizes every task of the project and returns its metadata sorted by name.
func DescribeTasks(project *Project) ([]TaskInfo, error) {
	names := project.Tasks().Names()
	infos := make([]TaskInfo, 0, len(names))
	for _, name := range names {
		provider, err := project.Tasks().Named(name)
		if err != nil {
			return nil, err
		}
		task, err := provider.Get()
		if err != nil {
			return nil, fmt.Errorf("failed to realize task %q: %w", name, err)
		}
		infos = append(infos, TaskInfo{
			Name:        name,
			Group:       task.Group(),
			Description: task.Description(),
			Type:        fmt.Sprint(provider.Type()),
		})
	}
	return infos, nil
}

// RunRequest is the body of POST /tasks/run.
type RunRequest struct {
	Tasks      []string       `json:"tasks" binding:"required,min=1"`
	Properties map[string]any `json:"properties"`
}

type OutcomeResponse struct {
	Name       string `json:"name"`
	State      string `json:"state"`
	DurationMS int64  `json:"duration_ms"`
	Error      string `json:"error,omitempty"`
}

// RunResponse is returned by POST /tasks/run. Output holds everything the
// tasks printed during the build.
type RunResponse struct {
	BuildID  string            `json:"build_id"`
	Output   string            `json:"output"`
	Outcomes []OutcomeResponse `json:"outcomes"`
}

type httpHandler struct {
	app      *App
	spec     ProjectSpec
	executor *Executor
}

// NewHTTPHandler exposes the project described by spec on g. Every request
// builds its own project, so task state never leaks between requests.
func NewHTTPHandler(app *App, spec ProjectSpec, executor *Executor, g *gin.Engine) {
	h := &httpHandler{
		app:      app,
		spec:     spec,
		executor: executor,
	}

	g.GET("/tasks", h.listTasks)
	g.POST("/tasks/run", h.runTasks)
}

func (h *httpHandler) listTasks(c *gin.Context) {
	project, err := h.app.NewProject(c.Request.Context(), h.spec)
	if err != nil {
		h.fail(c, http.StatusInternalServerError, "Error configuring project", err)
		return
	}
	defer h.close(c, project)

	infos, err := DescribeTasks(project)
	if err != nil {
		h.fail(c, http.StatusInternalServerError, "Error describing tasks", err)
		return
	}
	c.JSON(http.StatusOK, infos)
}

func (h *httpHandler) runTasks(c *gin.Context) {
	var req RunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Wrong request body format: " + err.Error()})
		return
	}

	spec := h.spec
	spec.Overrides = make(map[string]any, len(h.spec.Overrides)+len(req.Properties))
	for k, v := range h.spec.Overrides {
		spec.Overrides[k] = v
	}
	for k, v := range req.Properties {
		spec.Overrides[k] = v
	}

	var output bytes.Buffer
	project, err := h.app.NewProject(c.Request.Context(), spec, WithStdout(&output))
	if err != nil {
		h.fail(c, http.StatusInternalServerError, "Error configuring project", err)
		return
	}
	defer h.close(c, project)

	result, err := h.executor.Run(c.Request.Context(), project, req.Tasks...)
	if err != nil && (errors.Is(err, ErrTaskNotFound) || errors.Is(err, ErrAmbiguousTask)) && len(result.Outcomes) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": err.Error()})
		return
	}

	resp := RunResponse{
		BuildID:  result.ID,
		Output:   output.String(),
		Outcomes: make([]OutcomeResponse, 0, len(result.Outcomes)),
	}
	for _, o := range result.Outcomes {
		out := OutcomeResponse{
			Name:       o.Name,
			State:      o.State.String(),
			DurationMS: o.Duration.Milliseconds(),
		}
		if o.Err != nil {
			out.Error = o.Err.Error()
		}
		resp.Outcomes = append(resp.Outcomes, out)
	}

	status := http.StatusOK
	if err != nil {
		h.app.Logger().Error("Build failed",
			"build_id", result.ID,
			"tasks", req.Tasks,
			"error", err.Error())
		status = http.StatusInternalServerError
	}
	c.JSON(status, resp)
}

func (h *httpHandler) fail(c *gin.Context, status int, message string, err error) {
	h.app.Logger().Error(message,
		"path", c.Request.URL.Path,
		"method", c.Request.Method,
		"error", err.Error())
	c.JSON(status, gin.H{"message": message + ": " + err.Error()})
}

func (h *httpHandler) close(c *gin.Context, project *Project) {
	if err := h.app.Close(c.Request.Context(), project); err != nil {
		h.app.Logger().Error("Error shutting down project plugins", "project", project.Name(), "error", err)
	}
}
