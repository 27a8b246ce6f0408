package workouts

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/2beens/fitlog/internal/domain"
	"github.com/2beens/fitlog/internal/telemetry/tracing"
	"github.com/2beens/fitlog/pkg"

	"cloud.google.com/go/civil"
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
	router.HandleFunc("", h.HandleList).Methods("GET", "OPTIONS").Name("workouts")
	router.HandleFunc("", h.HandleCreate).Methods("POST", "OPTIONS").Name("workouts-create")
	router.HandleFunc("/recent", h.HandleRecent).Methods("GET", "OPTIONS").Name("workouts-recent")
	router.HandleFunc("/muscle-group/{group}", h.HandleByMuscleGroup).Methods("GET", "OPTIONS").Name("workouts-muscle-group")
	router.HandleFunc("/{id}", h.HandleGet).Methods("GET", "OPTIONS").Name("workout")
	router.HandleFunc("/{id}", h.HandleUpdate).Methods("PUT", "OPTIONS").Name("workout-update")
	router.HandleFunc("/{id}", h.HandleDelete).Methods("DELETE", "OPTIONS").Name("workout-delete")
}

func (h *Handler) SetupSessionRoutes(router *mux.Router) {
	router.HandleFunc("", h.HandleSession).Methods("GET", "OPTIONS").Name("session")
	router.HandleFunc("", h.HandleStartSession).Methods("POST", "OPTIONS").Name("session-start")
	router.HandleFunc("", h.HandleCancelSession).Methods("DELETE", "OPTIONS").Name("session-cancel")
	router.HandleFunc("/complete-set", h.HandleCompleteSet).Methods("POST", "OPTIONS").Name("session-complete-set")
	router.HandleFunc("/rest-timer", h.HandleSetRestTimer).Methods("POST", "OPTIONS").Name("session-rest-timer")
	router.HandleFunc("/rest-timer", h.HandleClearRestTimer).Methods("DELETE", "OPTIONS").Name("session-rest-timer-clear")
	router.HandleFunc("/finish", h.HandleFinishSession).Methods("POST", "OPTIONS").Name("session-finish")
}

// HandleList lists workouts, within [from, to] when both date params are set.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.list")
	defer span.End()

	fromParam := r.URL.Query().Get("from")
	toParam := r.URL.Query().Get("to")
	if fromParam == "" && toParam == "" {
		workouts, err := h.service.List(ctx)
		if err != nil {
			h.writeError(w, "list workouts", err)
			return
		}
		pkg.WriteJSON(w, http.StatusOK, workouts)
		return
	}

	from, err := civil.ParseDate(fromParam)
	if err != nil {
		http.Error(w, "invalid from param", http.StatusBadRequest)
		return
	}
	to, err := civil.ParseDate(toParam)
	if err != nil {
		http.Error(w, "invalid to param", http.StatusBadRequest)
		return
	}

	workouts, err := h.service.ByDateRange(ctx, from, to)
	if err != nil {
		h.writeError(w, "list workouts by date", err)
		return
	}
	pkg.WriteJSON(w, http.StatusOK, workouts)
}

func (h *Handler) HandleRecent(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.recent")
	defer span.End()

	count := DefaultRecentCount
	if countParam := r.URL.Query().Get("count"); countParam != "" {
		var err error
		count, err = strconv.Atoi(countParam)
		if err != nil || count < 0 {
			http.Error(w, "invalid count param", http.StatusBadRequest)
			return
		}
	}

	workouts, err := h.service.Recent(ctx, count)
	if err != nil {
		h.writeError(w, "recent workouts", err)
		return
	}
	pkg.WriteJSON(w, http.StatusOK, workouts)
}

func (h *Handler) HandleByMuscleGroup(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.byMuscleGroup")
	defer span.End()

	workouts, err := h.service.ByMuscleGroup(ctx, domain.MuscleGroup(mux.Vars(r)["group"]))
	if err != nil {
		h.writeError(w, "workouts by muscle group", err)
		return
	}
	pkg.WriteJSON(w, http.StatusOK, workouts)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.get")
	defer span.End()

	workout, err := h.service.Get(ctx, mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, "get workout", err)
		return
	}
	pkg.WriteJSON(w, http.StatusOK, workout)
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.create")
	defer span.End()

	var newWorkout NewWorkout
	if err := json.NewDecoder(r.Body).Decode(&newWorkout); err != nil {
		http.Error(w, "invalid workout", http.StatusBadRequest)
		return
	}

	workout, err := h.service.Create(ctx, newWorkout)
	if err != nil {
		h.writeError(w, "create workout", err)
		return
	}
	pkg.WriteJSON(w, http.StatusCreated, workout)
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.update")
	defer span.End()

	var patch WorkoutPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		http.Error(w, "invalid workout update", http.StatusBadRequest)
		return
	}

	workout, err := h.service.Update(ctx, mux.Vars(r)["id"], patch)
	if err != nil {
		h.writeError(w, "update workout", err)
		return
	}
	pkg.WriteJSON(w, http.StatusOK, workout)
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.delete")
	defer span.End()

	if err := h.service.Delete(ctx, mux.Vars(r)["id"]); err != nil {
		h.writeError(w, "delete workout", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleSession(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.session.get")
	defer span.End()

	session, err := h.service.Session(ctx)
	if err != nil {
		h.writeError(w, "get session", err)
		return
	}
	pkg.WriteJSON(w, http.StatusOK, session)
}

func (h *Handler) HandleStartSession(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.session.start")
	defer span.End()

	var req struct {
		Exercises []domain.WorkoutExercise `json:"exercises"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid session request", http.StatusBadRequest)
		return
	}

	session, err := h.service.StartSession(ctx, req.Exercises)
	if err != nil {
		h.writeError(w, "start session", err)
		return
	}
	pkg.WriteJSON(w, http.StatusCreated, session)
}

func (h *Handler) HandleCompleteSet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.session.completeSet")
	defer span.End()

	session, err := h.service.CompleteCurrentSet(ctx)
	if err != nil {
		h.writeError(w, "complete set", err)
		return
	}
	pkg.WriteJSON(w, http.StatusOK, session)
}

func (h *Handler) HandleSetRestTimer(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.session.setRestTimer")
	defer span.End()

	var req struct {
		Seconds int `json:"seconds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Seconds <= 0 {
		http.Error(w, "invalid rest timer", http.StatusBadRequest)
		return
	}

	session, err := h.service.SetRestTimer(ctx, time.Duration(req.Seconds)*time.Second)
	if err != nil {
		h.writeError(w, "set rest timer", err)
		return
	}
	pkg.WriteJSON(w, http.StatusOK, session)
}

func (h *Handler) HandleClearRestTimer(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.session.clearRestTimer")
	defer span.End()

	session, err := h.service.ClearRestTimer(ctx)
	if err != nil {
		h.writeError(w, "clear rest timer", err)
		return
	}
	pkg.WriteJSON(w, http.StatusOK, session)
}

func (h *Handler) HandleFinishSession(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.session.finish")
	defer span.End()

	var req struct {
		Notes string `json:"notes"`
	}
	// the body is optional
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid finish request", http.StatusBadRequest)
			return
		}
	}

	workout, err := h.service.FinishSession(ctx, req.Notes)
	if err != nil {
		h.writeError(w, "finish session", err)
		return
	}
	pkg.WriteJSON(w, http.StatusCreated, workout)
}

func (h *Handler) HandleCancelSession(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.session.cancel")
	defer span.End()

	if err := h.service.CancelSession(ctx); err != nil {
		h.writeError(w, "cancel session", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrWorkoutNotFound), errors.Is(err, ErrNoActiveSession):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrInvalidWorkout):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		log.Errorf("%s: %s", op, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
