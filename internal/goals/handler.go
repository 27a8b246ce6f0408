package goals

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

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

type fromTemplateRequest struct {
	TemplateID   string     `json:"templateId"`
	StartDate    *time.Time `json:"startDate,omitempty"`
	CustomTarget *float64   `json:"customTarget,omitempty"`
}

func (h *Handler) SetupRoutes(router *mux.Router) {
	router.HandleFunc("", h.HandleList).Methods("GET", "OPTIONS").Name("goals")
	router.HandleFunc("", h.HandleCreate).Methods("POST", "OPTIONS").Name("goals-create")
	router.HandleFunc("/active", h.HandleActive).Methods("GET", "OPTIONS").Name("goals-active")
	router.HandleFunc("/expiring", h.HandleExpiring).Methods("GET", "OPTIONS").Name("goals-expiring")
	router.HandleFunc("/overdue", h.HandleOverdue).Methods("GET", "OPTIONS").Name("goals-overdue")
	router.HandleFunc("/statistics", h.HandleStatistics).Methods("GET", "OPTIONS").Name("goals-statistics")
	router.HandleFunc("/templates", h.HandleTemplates).Methods("GET", "OPTIONS").Name("goals-templates")
	router.HandleFunc("/from-template", h.HandleCreateFromTemplate).Methods("POST", "OPTIONS").Name("goals-from-template")
	router.HandleFunc("/refresh", h.HandleRefresh).Methods("POST", "OPTIONS").Name("goals-refresh")
	router.HandleFunc("/{id}", h.HandleGet).Methods("GET", "OPTIONS").Name("goal")
	router.HandleFunc("/{id}", h.HandleUpdate).Methods("PUT", "OPTIONS").Name("goal-update")
	router.HandleFunc("/{id}", h.HandleDelete).Methods("DELETE", "OPTIONS").Name("goal-delete")
	router.HandleFunc("/{id}/progress", h.HandleProgress).Methods("GET", "OPTIONS").Name("goal-progress")
	router.HandleFunc("/{id}/{action:complete|miss|pause|resume}", h.HandleStatusChange).Methods("POST", "OPTIONS").Name("goal-status")
}

// HandleList lists all goals, narrowed by the optional category or q params.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.goals.list")
	defer span.End()

	var goals []domain.Goal
	var err error
	category := r.URL.Query().Get("category")
	query := r.URL.Query().Get("q")
	switch {
	case category != "":
		goals, err = h.service.ByCategory(ctx, domain.GoalCategory(category))
	case query != "":
		goals, err = h.service.Search(ctx, query)
	default:
		goals, err = h.service.List(ctx)
	}
	if err != nil {
		log.Errorf("list goals: %s", err)
		http.Error(w, "failed to get goals", http.StatusInternalServerError)
		return
	}
	pkg.WriteJSON(w, http.StatusOK, goals)
}

func (h *Handler) HandleActive(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.goals.active")
	defer span.End()

	goals, err := h.service.Active(ctx)
	if err != nil {
		log.Errorf("list active goals: %s", err)
		http.Error(w, "failed to get goals", http.StatusInternalServerError)
		return
	}
	pkg.WriteJSON(w, http.StatusOK, goals)
}

func (h *Handler) HandleExpiring(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.goals.expiring")
	defer span.End()

	days := DefaultExpiringDays
	if daysParam := r.URL.Query().Get("days"); daysParam != "" {
		var err error
		days, err = strconv.Atoi(daysParam)
		if err != nil || days < 0 {
			http.Error(w, "invalid days param", http.StatusBadRequest)
			return
		}
	}

	goals, err := h.service.Expiring(ctx, days)
	if err != nil {
		log.Errorf("list expiring goals: %s", err)
		http.Error(w, "failed to get goals", http.StatusInternalServerError)
		return
	}
	pkg.WriteJSON(w, http.StatusOK, goals)
}

func (h *Handler) HandleOverdue(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.goals.overdue")
	defer span.End()

	goals, err := h.service.Overdue(ctx)
	if err != nil {
		log.Errorf("list overdue goals: %s", err)
		http.Error(w, "failed to get goals", http.StatusInternalServerError)
		return
	}
	pkg.WriteJSON(w, http.StatusOK, goals)
}

func (h *Handler) HandleStatistics(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.goals.statistics")
	defer span.End()

	stats, err := h.service.Statistics(ctx)
	if err != nil {
		log.Errorf("goal statistics: %s", err)
		http.Error(w, "failed to get goal statistics", http.StatusInternalServerError)
		return
	}
	pkg.WriteJSON(w, http.StatusOK, stats)
}

func (h *Handler) HandleTemplates(w http.ResponseWriter, _ *http.Request) {
	pkg.WriteJSON(w, http.StatusOK, Templates())
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.goals.create")
	defer span.End()

	var newGoal NewGoal
	if err := json.NewDecoder(r.Body).Decode(&newGoal); err != nil {
		http.Error(w, "invalid goal", http.StatusBadRequest)
		return
	}

	goal, err := h.service.Create(ctx, newGoal)
	if err != nil {
		h.writeError(w, "create goal", err)
		return
	}
	pkg.WriteJSON(w, http.StatusCreated, goal)
}

func (h *Handler) HandleCreateFromTemplate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.goals.fromTemplate")
	defer span.End()

	var req fromTemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.TemplateID == "" {
		http.Error(w, "invalid template request", http.StatusBadRequest)
		return
	}

	goal, err := h.service.CreateFromTemplate(ctx, req.TemplateID, req.StartDate, req.CustomTarget)
	if err != nil {
		h.writeError(w, "create goal from template", err)
		return
	}
	pkg.WriteJSON(w, http.StatusCreated, goal)
}

func (h *Handler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.goals.refresh")
	defer span.End()

	result, err := h.service.UpdateAll(ctx)
	if err != nil {
		// partial refreshes are still reported
		log.Errorf("refresh goals: %s", err)
		pkg.WriteJSON(w, http.StatusInternalServerError, map[string]any{
			"result": result,
			"error":  err.Error(),
		})
		return
	}
	pkg.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.goals.get")
	defer span.End()

	goal, err := h.service.Get(ctx, mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, "get goal", err)
		return
	}
	pkg.WriteJSON(w, http.StatusOK, goal)
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.goals.update")
	defer span.End()

	var patch GoalPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		http.Error(w, "invalid goal update", http.StatusBadRequest)
		return
	}

	goal, err := h.service.Update(ctx, mux.Vars(r)["id"], patch)
	if err != nil {
		h.writeError(w, "update goal", err)
		return
	}
	pkg.WriteJSON(w, http.StatusOK, goal)
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.goals.delete")
	defer span.End()

	if err := h.service.Delete(ctx, mux.Vars(r)["id"]); err != nil {
		h.writeError(w, "delete goal", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleProgress(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.goals.progress")
	defer span.End()

	report, err := h.service.CalculateProgress(ctx, mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, "calculate goal progress", err)
		return
	}
	pkg.WriteJSON(w, http.StatusOK, report)
}

func (h *Handler) HandleStatusChange(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.goals.status")
	defer span.End()

	vars := mux.Vars(r)
	id := vars["id"]

	var goal domain.Goal
	var err error
	switch vars["action"] {
	case "complete":
		goal, err = h.service.Complete(ctx, id)
	case "miss":
		goal, err = h.service.Miss(ctx, id)
	case "pause":
		goal, err = h.service.Pause(ctx, id)
	case "resume":
		goal, err = h.service.Resume(ctx, id)
	default:
		http.Error(w, "unknown action", http.StatusBadRequest)
		return
	}
	if err != nil {
		h.writeError(w, vars["action"]+" goal", err)
		return
	}
	pkg.WriteJSON(w, http.StatusOK, goal)
}

func (h *Handler) writeError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrGoalNotFound), errors.Is(err, ErrTemplateNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrInvalidGoal):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		log.Errorf("%s: %s", op, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
