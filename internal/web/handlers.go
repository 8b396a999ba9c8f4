package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"fincal/internal/grid"
	"fincal/internal/ics"
	appLog "fincal/internal/log"
	"fincal/internal/model"
	"fincal/internal/navigator"
	"fincal/internal/seed"
	"fincal/internal/stats"
	"fincal/internal/store"
)

const maxBodyBytes = 1 << 20

type viewResponse struct {
	Reference string `json:"reference"`
	Selected  string `json:"selected,omitempty"`
	Today     string `json:"today"`
}

func toViewResponse(v navigator.View) viewResponse {
	resp := viewResponse{
		Reference: v.Reference.Format(grid.DayLayout),
		Today:     v.Today.Format(grid.DayLayout),
	}
	if v.Selected != nil {
		resp.Selected = v.Selected.Format(grid.DayLayout)
	}
	return resp
}

func (s *Server) handleView(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, toViewResponse(s.view()))
}

func (s *Server) handleNavigate(step func(*navigator.Navigator)) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		s.navMu.Lock()
		step(s.nav)
		v := s.nav.Snapshot()
		s.navMu.Unlock()
		writeJSON(w, http.StatusOK, toViewResponse(v))
	}
}

type selectRequest struct {
	Date string `json:"date"`
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	var req selectRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	d, err := parseDateValue(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.navMu.Lock()
	s.nav.SelectDate(d)
	v := s.nav.Snapshot()
	s.navMu.Unlock()
	writeJSON(w, http.StatusOK, toViewResponse(v))
}

type cellDTO struct {
	Date       string `json:"date"`
	InMonth    bool   `json:"in_month"`
	IsToday    bool   `json:"is_today"`
	IsSelected bool   `json:"is_selected"`
	EventCount int    `json:"event_count"`
}

type gridResponse struct {
	Month string      `json:"month"`
	Weeks [][]cellDTO `json:"weeks"`
}

// handleGrid returns the 6x7 grid for ?month=YYYY-MM, or for the
// navigator's month when the parameter is absent.
func (s *Server) handleGrid(w http.ResponseWriter, r *http.Request) {
	v := s.view()
	ref := v.Reference
	if m := r.URL.Query().Get("month"); m != "" {
		t, err := time.ParseInLocation(grid.MonthLayout, m, time.Local)
		if err != nil {
			writeError(w, http.StatusBadRequest, "month must be YYYY-MM")
			return
		}
		ref = t
	}

	perDay := make(map[grid.DayKey]int)
	for _, e := range s.store.All() {
		perDay[grid.KeyOf(e.Date)]++
	}

	mv := grid.BuildMonthView(ref, v.Today, v.Selected)
	resp := gridResponse{Month: ref.Format(grid.MonthLayout), Weeks: make([][]cellDTO, 0, grid.Weeks)}
	for _, week := range mv.Weeks {
		row := make([]cellDTO, 0, grid.DaysPerWeek)
		for _, c := range week {
			row = append(row, cellDTO{
				Date:       c.Date.Format(grid.DayLayout),
				InMonth:    c.InMonth,
				IsToday:    c.IsToday,
				IsSelected: c.IsSelected,
				EventCount: perDay[grid.KeyOf(c.Date)],
			})
		}
		resp.Weeks = append(resp.Weeks, row)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	v := s.view()
	writeJSON(w, http.StatusOK, stats.Compute(s.store.All(), v.Reference, v.Today))
}

func (s *Server) handleUpcoming(w http.ResponseWriter, r *http.Request) {
	limit := parseIntDefault(r.URL.Query().Get("limit"), 5)
	writeJSON(w, http.StatusOK, s.store.Upcoming(s.now(), limit))
}

func (s *Server) handleExport(w http.ResponseWriter, _ *http.Request) {
	events := s.store.All()
	store.SortByTime(events)
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(ics.Export(events, s.now())))
}

// handleListEvents serves ?day=YYYY-MM-DD, ?month=YYYY-MM, or everything.
// Day listings are time-ordered.
func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	switch {
	case q.Get("day") != "":
		d, err := time.ParseInLocation(grid.DayLayout, q.Get("day"), time.Local)
		if err != nil {
			writeError(w, http.StatusBadRequest, "day must be YYYY-MM-DD")
			return
		}
		writeJSON(w, http.StatusOK, s.store.EventsOnDaySorted(d))
	case q.Get("month") != "":
		m, err := time.ParseInLocation(grid.MonthLayout, q.Get("month"), time.Local)
		if err != nil {
			writeError(w, http.StatusBadRequest, "month must be YYYY-MM")
			return
		}
		writeJSON(w, http.StatusOK, s.store.EventsInMonth(m))
	default:
		writeJSON(w, http.StatusOK, s.store.All())
	}
}

type eventRequest struct {
	Title            *string `json:"title"`
	Date             *string `json:"date"`
	Kind             *string `json:"kind"`
	Color            *string `json:"color"`
	Category         *string `json:"category"`
	ParticipantCount *int    `json:"participant_count"`
}

func (req eventRequest) draft() (model.EventDraft, error) {
	if req.Date == nil {
		return model.EventDraft{}, model.ErrZeroDate
	}
	p, err := req.patch()
	if err != nil {
		return model.EventDraft{}, err
	}
	ev := p.Apply(model.Event{})
	d := model.EventDraft{
		Title:            ev.Title,
		Date:             ev.Date,
		Color:            ev.Color,
		Kind:             ev.Kind,
		ParticipantCount: ev.ParticipantCount,
		Category:         ev.Category,
	}
	return d, d.Validate()
}

func (req eventRequest) patch() (model.EventPatch, error) {
	p := model.EventPatch{
		Title:            req.Title,
		Color:            req.Color,
		Category:         req.Category,
		ParticipantCount: req.ParticipantCount,
	}
	if req.Date != nil {
		d, err := parseDateValue(*req.Date)
		if err != nil {
			return p, err
		}
		p.Date = &d
	}
	if req.Kind != nil {
		k, err := model.ParseKind(*req.Kind)
		if err != nil {
			return p, err
		}
		p.Kind = &k
	}
	return p, p.Validate()
}

func (s *Server) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	d, err := req.draft()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	ev := s.store.Add(d)
	appLog.Info("event created", "id", ev.ID, "kind", ev.Kind)
	writeJSON(w, http.StatusCreated, ev)
}

func (s *Server) handleGetEvent(w http.ResponseWriter, r *http.Request) {
	ev, err := s.store.Get(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, ev)
}

// handleUpdateEvent answers 204 for unknown ids unless strict ids are on.
func (s *Server) handleUpdateEvent(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var req eventRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	p, err := req.patch()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if s.strictIDs() {
		if err := s.store.UpdateStrict(id, p); errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
	} else {
		s.store.Update(id, p)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if s.strictIDs() {
		if err := s.store.RemoveStrict(id); errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
	} else {
		s.store.Remove(id)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) strictIDs() bool {
	return s.cfg != nil && s.cfg.StrictIDs
}

// parseDateValue accepts RFC 3339 (wall clock kept as sent) or the local
// layouts understood by seed files.
func parseDateValue(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	return seed.ParseDate(v)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.New("invalid JSON body: " + err.Error())
	}
	return nil
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}
