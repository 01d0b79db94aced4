package notes

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/dmitrymomot/unchained"
)

const viewsModule = "example.notes.views"

var (
	// List answers with a page of notes. ?limit overrides the configured page size.
	List = &unchained.View{
		Name:    "list_notes",
		Module:  viewsModule,
		Handler: listNotes,
		Routes:  []unchained.RouteSpec{{Rule: "/notes", Methods: []string{http.MethodGet}}},
	}

	// Show answers with a single note.
	Show = &unchained.View{
		Name:    "show_note",
		Module:  viewsModule,
		Handler: showNote,
		Routes:  []unchained.RouteSpec{{Rule: "/notes/{id}", Methods: []string{http.MethodGet}}},
	}

	// Create stores the note posted as JSON.
	Create = &unchained.View{
		Name:    "create_note",
		Module:  viewsModule,
		Handler: createNote,
		Routes:  []unchained.RouteSpec{{Rule: "/notes", Methods: []string{http.MethodPost}}},
	}
)

func store(c unchained.Context) (*Store, error) {
	s, ok := unchained.ServiceAs[*Store](c, "note_store")
	if !ok {
		return nil, errors.New("notes: note_store service is not registered")
	}
	return s, nil
}

func listNotes(c unchained.Context) error {
	s, err := store(c)
	if err != nil {
		return err
	}
	list, err := s.List(c, unchained.QueryDefault(c, "limit", 0))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"notes": list})
}

func showNote(c unchained.Context) error {
	s, err := store(c)
	if err != nil {
		return err
	}
	id := unchained.Param[int64](c, "id")
	if id <= 0 {
		return unchained.NewHTTPError(http.StatusBadRequest, "invalid note id")
	}
	n, err := s.Get(c, id)
	if errors.Is(err, ErrNotFound) {
		return unchained.NewHTTPError(http.StatusNotFound, "note not found")
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, n)
}

type createRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

func createNote(c unchained.Context) error {
	s, err := store(c)
	if err != nil {
		return err
	}
	var req createRequest
	if err := json.NewDecoder(c.Request().Body).Decode(&req); err != nil {
		return unchained.NewHTTPError(http.StatusBadRequest, "invalid JSON body")
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return unchained.NewHTTPError(http.StatusUnprocessableEntity, "title is required")
	}

	n, err := s.Add(c, req.Title, req.Body)
	if err != nil {
		return err
	}
	if loc, err := c.URLFor("views.show_note", map[string]string{"id": itoa(n.ID)}); err == nil {
		c.SetHeader("Location", loc)
	}
	return c.JSON(http.StatusCreated, n)
}
