package tasks

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"log/slog"
	"slices"
	"strconv"
	"sync"

	"github.com/freekieb7/hearth/filesystem"
	"github.com/freekieb7/hearth/http"
	"github.com/freekieb7/hearth/validation"
)

var (
	addRules = map[string][]string{
		"text": {"required", "max:255"},
	}
	updateRules = map[string][]string{
		"check":   {"integer", "min:1"},
		"uncheck": {"integer", "min:1"},
		"remove":  {"integer", "min:1"},
	}
)

// Handler serves the to-do list on "/" and mutates it through "/add" and
// "/update". One mutex serializes every request it claims.
type Handler struct {
	mu     sync.Mutex
	store  Store
	tasks  []Task
	index  *template.Template
	logger *slog.Logger
}

// NewHandler loads the task list from store and parses the index page
// template.
func NewHandler(store Store, indexPage string, logger *slog.Logger) (*Handler, error) {
	if logger == nil {
		logger = slog.Default()
	}

	tasks, err := store.Load()
	if err != nil {
		return nil, err
	}

	page, err := filesystem.NewLocalFileSystem().ReadFile(indexPage)
	if err != nil {
		return nil, err
	}

	index, err := template.New("index").Parse(string(page))
	if err != nil {
		return nil, fmt.Errorf("tasks: parsing %s: %w", indexPage, err)
	}

	return &Handler{
		store:  store,
		tasks:  tasks,
		index:  index,
		logger: logger,
	}, nil
}

type taskView struct {
	Index int
	ID    string
	Text  string
	Done  bool
}

// Tasks returns a copy of the current list.
func (h *Handler) Tasks() []Task {
	h.mu.Lock()
	defer h.mu.Unlock()
	return slices.Clone(h.tasks)
}

func (h *Handler) Handle(req *http.Request, res *http.Response) (bool, error) {
	switch req.Path() {
	case "/":
		return true, h.serveIndex(res)
	case "/add":
		return true, h.serveAdd(req, res)
	case "/update":
		return true, h.serveUpdate(req, res)
	}

	return false, nil
}

func (h *Handler) serveIndex(res *http.Response) error {
	h.mu.Lock()
	views := make([]taskView, len(h.tasks))
	for i, task := range h.tasks {
		views[i] = taskView{Index: i + 1, ID: task.ID, Text: task.Text, Done: task.Done}
	}
	h.mu.Unlock()

	var buf bytes.Buffer
	if err := h.index.Execute(&buf, map[string]any{"Tasks": views}); err != nil {
		return err
	}

	res.WithHTML(buf.String())
	return nil
}

func (h *Handler) serveAdd(req *http.Request, res *http.Response) error {
	query := req.Query()
	if violations := validation.ValidateValues(query, addRules); !violations.IsEmpty() {
		return badRequest(res, violations)
	}

	task := NewTask(query.Get("text"))

	err := h.mutate(func(tasks []Task) ([]Task, error) {
		return append(tasks, task), nil
	})
	if err != nil {
		return err
	}

	h.logger.Info("task added", "id", task.ID)
	res.Redirect("/")
	return nil
}

func (h *Handler) serveUpdate(req *http.Request, res *http.Response) error {
	query := req.Query()
	if violations := validation.ValidateValues(query, updateRules); !violations.IsEmpty() {
		return badRequest(res, violations)
	}

	var (
		action string
		apply  func(tasks []Task, i int) []Task
	)
	switch {
	case query.Has("check"):
		action = "check"
		apply = func(tasks []Task, i int) []Task { tasks[i].Done = true; return tasks }
	case query.Has("uncheck"):
		action = "uncheck"
		apply = func(tasks []Task, i int) []Task { tasks[i].Done = false; return tasks }
	case query.Has("remove"):
		action = "remove"
		apply = func(tasks []Task, i int) []Task { return slices.Delete(tasks, i, i+1) }
	default:
		res.WithStatus(http.StatusBadRequest)
		res.WithText("expected one of check, uncheck or remove")
		return nil
	}

	// Validated above.
	position, _ := strconv.Atoi(query.Get(action))

	outOfRange := false
	err := h.mutate(func(tasks []Task) ([]Task, error) {
		if position > len(tasks) {
			outOfRange = true
			return tasks, nil
		}
		return apply(tasks, position-1), nil
	})
	if err != nil {
		return err
	}

	if outOfRange {
		res.WithStatus(http.StatusNotFound)
		res.WithText(fmt.Sprintf("no task at position %d", position))
		return nil
	}

	h.logger.Info("task updated", "action", action, "position", position)
	res.Redirect("/")
	return nil
}

// mutate applies change to a copy of the list and persists it. The in-memory
// list is only replaced once the store accepted the new one.
func (h *Handler) mutate(change func(tasks []Task) ([]Task, error)) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	next, err := change(slices.Clone(h.tasks))
	if err != nil {
		return err
	}
	if slices.Equal(next, h.tasks) {
		return nil
	}

	if err := h.store.Save(next); err != nil {
		return fmt.Errorf("tasks: saving: %w", err)
	}

	h.tasks = next
	return nil
}

func badRequest(res *http.Response, violations validation.Violations) error {
	body, err := json.Marshal(violations)
	if err != nil {
		return err
	}

	res.WithStatus(http.StatusBadRequest)
	res.SetHeader("Content-Type", "application/json")
	res.AddBody(string(body))
	return nil
}
