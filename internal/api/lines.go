package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/gray-logic-gpio/internal/catalog"
	"github.com/nerrad567/gray-logic-gpio/internal/driver"
	"github.com/nerrad567/gray-logic-gpio/internal/gpio"
)

// lineResponse is a catalogue definition plus its live lifecycle phase.
type lineResponse struct {
	catalog.LineDefinition
	Phase string `json:"phase"`
}

// phaseOf returns the lifecycle phase for a line id, or "detached" when the
// manager has no instance for it.
func (s *Server) phaseOf(id string) string {
	inst, err := s.manager.Get(id)
	if err != nil {
		return "detached"
	}
	return inst.Phase().String()
}

// handleListLines returns all catalogue definitions with their phases.
func (s *Server) handleListLines(w http.ResponseWriter, r *http.Request) {
	defs, err := s.catalog.List(r.Context())
	if err != nil {
		writeInternalError(w, "failed to list lines")
		return
	}

	lines := make([]lineResponse, 0, len(defs))
	for _, def := range defs {
		lines = append(lines, lineResponse{LineDefinition: def, Phase: s.phaseOf(def.ID)})
	}
	writeJSON(w, http.StatusOK, map[string]any{"lines": lines, "count": len(lines)})
}

// handleGetLine returns a single line by ID.
func (s *Server) handleGetLine(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	def, err := s.catalog.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, catalog.ErrLineNotFound) {
			writeNotFound(w, "line not found")
			return
		}
		writeInternalError(w, "failed to get line")
		return
	}

	writeJSON(w, http.StatusOK, lineResponse{LineDefinition: *def, Phase: s.phaseOf(def.ID)})
}

// handleCreateLine creates a catalogue entry and attaches the line.
//
// The catalogue write and the attach form one operation: if the attach
// fails (pin unknown, pin busy), the catalogue entry is rolled back so
// the daemon never advertises a line it cannot drive.
func (s *Server) handleCreateLine(w http.ResponseWriter, r *http.Request) {
	var def catalog.LineDefinition
	if err := json.NewDecoder(r.Body).Decode(&def); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if def.ID == "" {
		def.ID = catalog.NewID()
	}

	ctx := r.Context()
	if err := s.catalog.Create(ctx, &def); err != nil {
		switch {
		case errors.Is(err, catalog.ErrInvalidLine):
			writeError(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
		case errors.Is(err, catalog.ErrLineExists), errors.Is(err, catalog.ErrPinInUse):
			writeConflict(w, err.Error())
		default:
			s.logger.Error("line create failed", "line_id", def.ID, "error", err)
			writeInternalError(w, "failed to create line")
		}
		return
	}

	if _, err := s.manager.Attach(def.DriverConfig()); err != nil {
		s.rollbackCreate(ctx, def.ID)
		switch {
		case errors.Is(err, gpio.ErrLineUnavailable), errors.Is(err, driver.ErrAlreadyAttached):
			writeConflict(w, err.Error())
		default:
			s.logger.Error("line attach failed", "line_id", def.ID, "pin", def.Pin, "error", err)
			writeInternalError(w, "failed to attach line")
		}
		return
	}

	s.logger.Info("line created", "line_id", def.ID, "pin", def.Pin)
	writeJSON(w, http.StatusCreated, lineResponse{LineDefinition: def, Phase: s.phaseOf(def.ID)})
}

// rollbackCreate removes a catalogue entry after a failed attach.
func (s *Server) rollbackCreate(ctx context.Context, id string) {
	if err := s.catalog.Delete(ctx, id); err != nil {
		s.logger.Error("rollback of catalogue entry failed", "line_id", id, "error", err)
	}
}

// handleDeleteLine detaches a line and removes its catalogue entry.
func (s *Server) handleDeleteLine(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	// Detach first so surfaces unwind before the definition disappears.
	// A line that is defined but not attached is fine to delete.
	//nolint:errcheck // Detach never fails outward
	s.manager.Detach(id)

	if err := s.catalog.Delete(r.Context(), id); err != nil {
		if errors.Is(err, catalog.ErrLineNotFound) {
			writeNotFound(w, "line not found")
			return
		}
		writeInternalError(w, "failed to delete line")
		return
	}

	s.logger.Info("line deleted", "line_id", id)
	w.WriteHeader(http.StatusNoContent)
}

// lookupAttribute resolves the value attribute for a line, translating
// driver errors into HTTP responses. A line the catalogue knows but the
// manager does not is 410 Gone; an unknown id is 404.
func (s *Server) lookupAttribute(ctx context.Context, w http.ResponseWriter, id string) (*driver.ValueAttribute, bool) {
	attr, err := s.attrs.Lookup(id)
	if err == nil {
		return attr, true
	}

	if _, catErr := s.catalog.GetByID(ctx, id); catErr == nil {
		writeGone(w, "line is defined but not attached")
		return nil, false
	}
	writeNotFound(w, "line not found")
	return nil, false
}

// handleShowValue returns the line's stored value in the attribute wire
// format: a decimal digit plus newline, as text/plain.
func (s *Server) handleShowValue(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	attr, ok := s.lookupAttribute(r.Context(), w, id)
	if !ok {
		return
	}

	text, err := attr.Show()
	if err != nil {
		// The line detached between lookup and read.
		writeGone(w, "line is no longer attached")
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	//nolint:errcheck // Best-effort write to response
	io.WriteString(w, text)
}

// handleStoreValue parses the request body as an attribute write and
// drives the line. The body is the raw attribute text, not JSON.
func (s *Server) handleStoreValue(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeBadRequest(w, "request body too large")
			return
		}
		// The bytes stopped moving mid-transfer; the payload itself was
		// never seen, so this is a transport fault, not bad input.
		fault := fmt.Errorf("%w: reading request body: %v", driver.ErrTransportFault, err)
		s.logger.Error("attribute write failed", "line_id", id, "error", fault)
		writeError(w, http.StatusBadGateway, ErrCodeTransport, "failed to read request body")
		return
	}

	attr, ok := s.lookupAttribute(r.Context(), w, id)
	if !ok {
		return
	}

	if err := attr.Store(string(body)); err != nil {
		switch {
		case errors.Is(err, driver.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
		case errors.Is(err, driver.ErrNotAvailable):
			writeGone(w, "line is no longer attached")
		case errors.Is(err, driver.ErrTransportFault):
			writeError(w, http.StatusBadGateway, ErrCodeTransport, err.Error())
		default:
			s.logger.Error("attribute write failed", "line_id", id, "error", err)
			writeInternalError(w, "failed to write value")
		}
		return
	}

	text, err := attr.Show()
	if err != nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	//nolint:errcheck // Best-effort write to response
	io.WriteString(w, text)
}
