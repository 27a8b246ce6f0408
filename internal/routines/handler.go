package routines

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/2beens/fitlog/internal/domain"
	"github.com/2beens/fitlog/internal/telemetry/tracing"
	"github.com/2beens/fitlog/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service: service,
	}
}

func (h *Handler) SetupRoutes(router *mux.Router) {
	router.HandleFunc("", h.HandleList).Methods("GET", "OPTIONS").Name("routines")
	router.HandleFunc("", h.HandleCreate).Methods("POST", "OPTIONS").Name("routines-create")
	router.HandleFunc("/statistics", h.HandleStatistics).Methods("GET", "OPTIONS").Name("routines-statistics")
	router.HandleFunc("/rest-time/{exerciseId}", h.HandleRestTime).Methods("GET", "OPTIONS").Name("routines-rest-time")
	router.HandleFunc("/{id}", h.HandleGet).Methods("GET", "OPTIONS").Name("routine")
	router.HandleFunc("/{id}", h.HandleUpdate).Methods("PUT", "OPTIONS").Name("routine-update")
	router.HandleFunc("/{id}", h.HandleDelete).Methods("DELETE", "OPTIONS").Name("routine-delete")
	router.HandleFunc("/{id}/favorite", h.HandleToggleFavorite).Methods("POST", "OPTIONS").Name("routine-favorite")
	router.HandleFunc("/{id}/duplicate", h.HandleDuplicate).Methods("POST", "OPTIONS").Name("routine-duplicate")
	router.HandleFunc("/{id}/start", h.HandleStart).Methods("POST", "OPTIONS").Name("routine-start")
	router.HandleFunc("/{id}/exercises", h.HandleAddExercise).Methods("POST", "OPTIONS").Name("routine-exercise-add")
	router.HandleFunc("/{id}/exercises/reorder", h.HandleReorderExercises).Methods("POST", "OPTIONS").Name("routine-exercises-reorder")
	router.HandleFunc("/{id}/exercises/{index:[0-9]+}", h.HandleUpdateExercise).Methods("PUT", "OPTIONS").Name("routine-exercise-update")
	router.HandleFunc("/{id}/exercises/{index:[0-9]+}", h.HandleRemoveExercise).Methods("DELETE", "OPTIONS").Name("routine-exercise-remove")
}

// HandleList lists routines. The q, type and favorites params narrow the
// list, in that order of precedence.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.routines.list")
	defer span.End()

	var (
		routines []domain.Routine
		err      error
	)
	query := r.URL.Query()
	switch {
	case query.Get("q") != "":
		routines, err = h.service.Search(ctx, query.Get("q"))
	case query.Get("type") != "":
		routines, err = h.service.ByType(ctx, domain.WorkoutType(query.Get("type")))
	case query.Get("favorites") == "true":
		routines, err = h.service.Favorites(ctx)
	default:
		routines, err = h.service.List(ctx)
	}
	if err != nil {
		h.writeError(w, "list routines", err)
		return
	}
	pkg.WriteJSON(w, http.StatusOK, routines)
}

func (h *Handler) HandleStatistics(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.routines.statistics")
	defer span.End()

	stats, err := h.service.Statistics(ctx)
	if err != nil {
		h.writeError(w, "routine statistics", err)
		return
	}
	pkg.WriteJSON(w, http.StatusOK, stats)
}

func (h *Handler) HandleRestTime(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.routines.restTime")
	defer span.End()

	seconds, err := h.service.RecommendedRestSeconds(ctx, mux.Vars(r)["exerciseId"])
	if err != nil {
		h.writeError(w, "recommended rest", err)
		return
	}
	pkg.WriteJSON(w, http.StatusOK, map[string]int{"seconds": seconds})
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.routines.get")
	defer span.End()

	routine, err := h.service.Get(ctx, mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, "get routine", err)
		return
	}
	pkg.WriteJSON(w, http.StatusOK, routine)
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.routines.create")
	defer span.End()

	var newRoutine NewRoutine
	if err := json.NewDecoder(r.Body).Decode(&newRoutine); err != nil {
		http.Error(w, "invalid routine", http.StatusBadRequest)
		return
	}

	routine, err := h.service.Create(ctx, newRoutine)
	if err != nil {
		h.writeError(w, "create routine", err)
		return
	}
	pkg.WriteJSON(w, http.StatusCreated, routine)
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.routines.update")
	defer span.End()

	var patch RoutinePatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		http.Error(w, "invalid routine update", http.StatusBadRequest)
		return
	}

	routine, err := h.service.Update(ctx, mux.Vars(r)["id"], patch)
	if err != nil {
		h.writeError(w, "update routine", err)
		return
	}
	pkg.WriteJSON(w, http.StatusOK, routine)
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.routines.delete")
	defer span.End()

	if err := h.service.Delete(ctx, mux.Vars(r)["id"]); err != nil {
		h.writeError(w, "delete routine", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleToggleFavorite(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.routines.toggleFavorite")
	defer span.End()

	routine, err := h.service.ToggleFavorite(ctx, mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, "toggle favorite", err)
		return
	}
	pkg.WriteJSON(w, http.StatusOK, routine)
}

func (h *Handler) HandleDuplicate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.routines.duplicate")
	defer span.End()

	routine, err := h.service.Duplicate(ctx, mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, "duplicate routine", err)
		return
	}
	pkg.WriteJSON(w, http.StatusCreated, routine)
}

func (h *Handler) HandleStart(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.routines.start")
	defer span.End()

	session, err := h.service.StartWorkout(ctx, mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, "start routine", err)
		return
	}
	pkg.WriteJSON(w, http.StatusCreated, session)
}

func (h *Handler) HandleAddExercise(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.routines.addExercise")
	defer span.End()

	var exercise domain.RoutineExercise
	if err := json.NewDecoder(r.Body).Decode(&exercise); err != nil {
		http.Error(w, "invalid routine exercise", http.StatusBadRequest)
		return
	}

	routine, err := h.service.AddExercise(ctx, mux.Vars(r)["id"], exercise)
	if err != nil {
		h.writeError(w, "add routine exercise", err)
		return
	}
	pkg.WriteJSON(w, http.StatusOK, routine)
}

func (h *Handler) HandleUpdateExercise(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.routines.updateExercise")
	defer span.End()

	index, _ := strconv.Atoi(mux.Vars(r)["index"])
	var exercise domain.RoutineExercise
	if err := json.NewDecoder(r.Body).Decode(&exercise); err != nil {
		http.Error(w, "invalid routine exercise", http.StatusBadRequest)
		return
	}

	routine, err := h.service.UpdateExercise(ctx, mux.Vars(r)["id"], index, exercise)
	if err != nil {
		h.writeError(w, "update routine exercise", err)
		return
	}
	pkg.WriteJSON(w, http.StatusOK, routine)
}

func (h *Handler) HandleRemoveExercise(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.routines.removeExercise")
	defer span.End()

	index, _ := strconv.Atoi(mux.Vars(r)["index"])
	routine, err := h.service.RemoveExercise(ctx, mux.Vars(r)["id"], index)
	if err != nil {
		h.writeError(w, "remove routine exercise", err)
		return
	}
	pkg.WriteJSON(w, http.StatusOK, routine)
}

func (h *Handler) HandleReorderExercises(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.routines.reorderExercises")
	defer span.End()

	var req struct {
		From int `json:"from"`
		To   int `json:"to"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid reorder request", http.StatusBadRequest)
		return
	}

	routine, err := h.service.ReorderExercises(ctx, mux.Vars(r)["id"], req.From, req.To)
	if err != nil {
		h.writeError(w, "reorder routine exercises", err)
		return
	}
	pkg.WriteJSON(w, http.StatusOK, routine)
}

func (h *Handler) writeError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrRoutineNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrInvalidRoutine), errors.Is(err, ErrExerciseIndexInvalid):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		log.Errorf("%s: %s", op, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
