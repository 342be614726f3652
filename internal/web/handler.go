// Package web serves the todo lists over HTTP.
//
// Handlers depend only on list.Store. Which engine backs a request is decided
// by the StoreFunc given to NewHandler, so the same routes serve both the
// shared database and the per-browser session engine.
package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/roach88/todolists/internal/list"
	"github.com/roach88/todolists/internal/session"
)

// Flash messages shown after successful changes.
const (
	MsgListCreated      = "The list has been created."
	MsgListUpdated      = "The list has been updated."
	MsgListDeleted      = "The list has been deleted."
	MsgTodoAdded        = "The todo was added."
	MsgTodoDeleted      = "The todo has been deleted."
	MsgTodoUpdated      = "The todo has been updated."
	MsgAllTodosComplete = "All todos have been updated."
	MsgListNotFound     = "The specified list was not found."
)

// StoreFunc returns the store serving a request made within s.
type StoreFunc func(s *session.Session) list.Store

// DatabaseStore serves every request from one shared store.
func DatabaseStore(store list.Store) StoreFunc {
	return func(*session.Session) list.Store { return store }
}

// SessionStore serves each request from the lists kept in its session.
func SessionStore() StoreFunc {
	return func(s *session.Session) list.Store { return session.NewPersistence(s) }
}

// Options configures the web handler.
type Options struct {
	Sessions *session.Manager
	Store    StoreFunc
	// Logger defaults to discarding output.
	Logger *slog.Logger
}

// Handler serves the todo lists web client.
type Handler struct {
	sessions  *session.Manager
	store     StoreFunc
	logger    *slog.Logger
	templates *templateSet
	handler   http.Handler
}

// NewHandler creates a new web handler.
func NewHandler(opts Options) (*Handler, error) {
	if opts.Sessions == nil {
		return nil, errors.New("web handler: session manager is required")
	}
	if opts.Store == nil {
		return nil, errors.New("web handler: store is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	h := &Handler{
		sessions:  opts.Sessions,
		store:     opts.Store,
		logger:    logger,
		templates: newTemplateSet(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", h.handleIndex)
	mux.HandleFunc("GET /lists", h.handle(h.handleLists))
	mux.HandleFunc("POST /lists", h.handle(h.handleListCreate))
	mux.HandleFunc("GET /lists/new", h.handle(h.handleListNew))
	mux.HandleFunc("GET /lists/{id}", h.handle(h.handleList))
	mux.HandleFunc("POST /lists/{id}", h.handle(h.handleListUpdate))
	mux.HandleFunc("GET /lists/{id}/edit", h.handle(h.handleListEdit))
	mux.HandleFunc("POST /lists/{id}/delete", h.handle(h.handleListDelete))
	mux.HandleFunc("POST /lists/{id}/complete_all", h.handle(h.handleCompleteAll))
	mux.HandleFunc("POST /lists/{id}/todos", h.handle(h.handleTodoCreate))
	mux.HandleFunc("POST /lists/{id}/todos/{todo_id}", h.handle(h.handleTodoUpdate))
	mux.HandleFunc("POST /lists/{id}/todos/{todo_id}/delete", h.handle(h.handleTodoDelete))
	h.handler = logRequests(logger, mux)

	return h, nil
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.handler.ServeHTTP(w, r)
}

// requestContext carries the session and the store chosen for one request.
type requestContext struct {
	session *session.Session
	store   list.Store
}

type action func(w http.ResponseWriter, r *http.Request, c *requestContext)

// handle loads the request's session, runs fn, and saves the session before
// the response is written.
func (h *Handler) handle(fn action) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := h.sessions.Load(r)
		c := &requestContext{session: sess, store: h.store(sess)}
		sw := &sessionWriter{ResponseWriter: w, save: func() {
			if err := h.sessions.Save(w, sess); err != nil {
				h.logger.Error("save session failed", "path", r.URL.Path, "error", err)
			}
		}}
		fn(sw, r, c)
		sw.flush()
	}
}

type pageData struct {
	Title    string
	Flashes  []session.Flash
	Lists    []list.List
	List     *list.List
	ListName string
	TodoName string
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/lists", http.StatusFound)
}

func (h *Handler) handleLists(w http.ResponseWriter, r *http.Request, c *requestContext) {
	lists, err := c.store.AllLists(r.Context())
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	h.render(w, r, c, "lists", pageData{Title: "Lists", Lists: list.SortLists(lists)})
}

func (h *Handler) handleListNew(w http.ResponseWriter, r *http.Request, c *requestContext) {
	h.render(w, r, c, "new_list", pageData{Title: "New List"})
}

func (h *Handler) handleListCreate(w http.ResponseWriter, r *http.Request, c *requestContext) {
	name := list.NormalizeName(r.FormValue("list_name"))

	lists, err := c.store.AllLists(r.Context())
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	if msg := list.ErrorForListName(name, lists); msg != "" {
		c.session.AddFlash(session.FlashError, msg)
		h.render(w, r, c, "new_list", pageData{Title: "New List", ListName: name})
		return
	}

	if _, err := c.store.CreateNewList(r.Context(), name); err != nil {
		if errors.Is(err, list.ErrDuplicateName) {
			c.session.AddFlash(session.FlashError, list.MsgListNameUnique)
			h.render(w, r, c, "new_list", pageData{Title: "New List", ListName: name})
			return
		}
		h.serverError(w, r, err)
		return
	}

	c.session.AddFlash(session.FlashSuccess, MsgListCreated)
	http.Redirect(w, r, "/lists", http.StatusFound)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request, c *requestContext) {
	l, ok := h.loadList(w, r, c)
	if !ok {
		return
	}
	h.renderList(w, r, c, l, "")
}

func (h *Handler) handleListEdit(w http.ResponseWriter, r *http.Request, c *requestContext) {
	l, ok := h.loadList(w, r, c)
	if !ok {
		return
	}
	h.render(w, r, c, "edit_list", pageData{Title: "Edit List", List: l, ListName: l.Name})
}

func (h *Handler) handleListUpdate(w http.ResponseWriter, r *http.Request, c *requestContext) {
	l, ok := h.loadList(w, r, c)
	if !ok {
		return
	}
	name := list.NormalizeName(r.FormValue("list_name"))

	lists, err := c.store.AllLists(r.Context())
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	if msg := list.ErrorForListName(name, lists); msg != "" {
		c.session.AddFlash(session.FlashError, msg)
		h.render(w, r, c, "edit_list", pageData{Title: "Edit List", List: l, ListName: name})
		return
	}

	if err := c.store.UpdateListName(r.Context(), l.ID, name); err != nil {
		if errors.Is(err, list.ErrDuplicateName) {
			c.session.AddFlash(session.FlashError, list.MsgListNameUnique)
			h.render(w, r, c, "edit_list", pageData{Title: "Edit List", List: l, ListName: name})
			return
		}
		h.serverError(w, r, err)
		return
	}

	c.session.AddFlash(session.FlashSuccess, MsgListUpdated)
	http.Redirect(w, r, "/lists", http.StatusFound)
}

func (h *Handler) handleListDelete(w http.ResponseWriter, r *http.Request, c *requestContext) {
	id, ok := parseID(r.PathValue("id"))
	if !ok {
		h.listNotFound(w, r, c, MsgListNotFound)
		return
	}
	if err := c.store.DeleteList(r.Context(), id); err != nil {
		h.serverError(w, r, err)
		return
	}
	c.session.AddFlash(session.FlashSuccess, MsgListDeleted)
	http.Redirect(w, r, "/lists", http.StatusFound)
}

func (h *Handler) handleCompleteAll(w http.ResponseWriter, r *http.Request, c *requestContext) {
	l, ok := h.loadList(w, r, c)
	if !ok {
		return
	}
	if err := c.store.MarkAllTodosAsCompleted(r.Context(), l.ID); err != nil {
		h.serverError(w, r, err)
		return
	}
	c.session.AddFlash(session.FlashSuccess, MsgAllTodosComplete)
	http.Redirect(w, r, listPath(l.ID), http.StatusFound)
}

func (h *Handler) handleTodoCreate(w http.ResponseWriter, r *http.Request, c *requestContext) {
	l, ok := h.loadList(w, r, c)
	if !ok {
		return
	}
	name := list.NormalizeName(r.FormValue("todo"))
	if msg := list.ErrorForTodo(name); msg != "" {
		c.session.AddFlash(session.FlashError, msg)
		h.renderList(w, r, c, l, name)
		return
	}
	if _, err := c.store.CreateNewTodo(r.Context(), l.ID, name); err != nil {
		h.serverError(w, r, err)
		return
	}
	c.session.AddFlash(session.FlashSuccess, MsgTodoAdded)
	http.Redirect(w, r, listPath(l.ID), http.StatusFound)
}

func (h *Handler) handleTodoUpdate(w http.ResponseWriter, r *http.Request, c *requestContext) {
	l, ok := h.loadList(w, r, c)
	if !ok {
		return
	}
	// Unparseable todo ids match no todo, so the update is a no-op.
	todoID, _ := parseID(r.PathValue("todo_id"))
	completed := strings.EqualFold(strings.TrimSpace(r.FormValue("completed")), "true")

	if err := c.store.UpdateTodoStatus(r.Context(), l.ID, todoID, completed); err != nil {
		h.serverError(w, r, err)
		return
	}
	c.session.AddFlash(session.FlashSuccess, MsgTodoUpdated)
	http.Redirect(w, r, listPath(l.ID), http.StatusFound)
}

func (h *Handler) handleTodoDelete(w http.ResponseWriter, r *http.Request, c *requestContext) {
	l, ok := h.loadList(w, r, c)
	if !ok {
		return
	}
	todoID, _ := parseID(r.PathValue("todo_id"))

	if err := c.store.DeleteTodoFromList(r.Context(), l.ID, todoID); err != nil {
		h.serverError(w, r, err)
		return
	}

	if r.Header.Get("X-Requested-With") == "XMLHttpRequest" {
		writeJSON(w, map[string]bool{"success": true})
		return
	}
	c.session.AddFlash(session.FlashSuccess, MsgTodoDeleted)
	http.Redirect(w, r, listPath(l.ID), http.StatusFound)
}

// loadList resolves the {id} path value. When it names no list the response
// is already written and ok is false.
func (h *Handler) loadList(w http.ResponseWriter, r *http.Request, c *requestContext) (*list.List, bool) {
	id, ok := parseID(r.PathValue("id"))
	if !ok {
		h.listNotFound(w, r, c, MsgListNotFound)
		return nil, false
	}
	l, err := list.LoadList(r.Context(), c.store, id)
	if err != nil {
		if list.IsNotFound(err) {
			h.listNotFound(w, r, c, err.Error())
			return nil, false
		}
		h.serverError(w, r, err)
		return nil, false
	}
	return l, true
}

func (h *Handler) renderList(w http.ResponseWriter, r *http.Request, c *requestContext, l *list.List, todoName string) {
	sorted := *l
	sorted.Todos = list.SortTodos(l.Todos)
	h.render(w, r, c, "list", pageData{Title: l.Name, List: &sorted, TodoName: todoName})
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, c *requestContext, page string, data pageData) {
	data.Flashes = c.session.PopFlashes()

	var buf bytes.Buffer
	if err := h.templates.Render(&buf, page, data); err != nil {
		h.serverError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

func (h *Handler) listNotFound(w http.ResponseWriter, r *http.Request, c *requestContext, msg string) {
	c.session.AddFlash(session.FlashError, msg)
	http.Redirect(w, r, "/lists", http.StatusFound)
}

func (h *Handler) serverError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Error("request failed",
		"method", r.Method,
		"path", r.URL.Path,
		"error", err,
	)
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func parseID(raw string) (int64, bool) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func listPath(id int64) string {
	return fmt.Sprintf("/lists/%d", id)
}
