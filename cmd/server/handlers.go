package main

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"

	"github.com/goccy/go-json"

	"github.com/khwan789/KimchiClicker/internal/economy"
	"github.com/khwan789/KimchiClicker/internal/engine"
	"github.com/khwan789/KimchiClicker/internal/shop"
)

type cmdResp struct {
	Applied bool             `json:"applied"`
	State   *engine.Snapshot `json:"state,omitempty"`
	Err     string           `json:"err,omitempty"`
}

type previewResp struct {
	ClaimAll economy.ClaimSummary `json:"claim_all"`
}

var (
	eng  *engine.Engine
	lock sync.Mutex
)

func routes(h *hub) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /state", handleState)
	mux.HandleFunc("GET /commands", handleCommands)
	mux.HandleFunc("POST /cmd/{name}", handleCommand)
	mux.HandleFunc("GET /preview/claim-all", handlePreview)
	mux.HandleFunc("GET /shop/plan", handlePlan)
	mux.HandleFunc("GET /ws", h.serve)
	return limit(mux)
}

func parseInt(r *http.Request, key string) (int, bool, string) {
	s := r.URL.Query().Get(key)
	if s == "" {
		return 0, false, ""
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, false, "invalid " + key
	}
	return v, true, ""
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func handleState(w http.ResponseWriter, r *http.Request) {
	lock.Lock()
	snap := eng.Snapshot()
	lock.Unlock()
	writeJSON(w, http.StatusOK, snap)
}

func handleCommands(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, engine.Commands())
}

// POST /cmd/{name}?index=&n=&id=
func handleCommand(w http.ResponseWriter, r *http.Request) {
	var args engine.Args
	idx, _, msg := parseInt(r, "index")
	if msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return
	}
	n, _, msg := parseInt(r, "n")
	if msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return
	}
	args.Index, args.N, args.ID = idx, int64(n), r.URL.Query().Get("id")

	lock.Lock()
	applied, err := eng.Dispatch(r.PathValue("name"), args)
	snap := eng.Snapshot()
	lock.Unlock()

	if errors.Is(err, engine.ErrUnknownCommand) {
		writeJSON(w, http.StatusNotFound, cmdResp{Err: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, cmdResp{Applied: applied, State: &snap})
}

func handlePreview(w http.ResponseWriter, r *http.Request) {
	lock.Lock()
	s := eng.PreviewClaimAll()
	lock.Unlock()
	writeJSON(w, http.StatusOK, previewResp{ClaimAll: s})
}

// GET /shop/plan?target=  or  ?budget= (cents)
func handlePlan(w http.ResponseWriter, r *http.Request) {
	target, hasTarget, msg := parseInt(r, "target")
	if msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return
	}
	budget, hasBudget, msg := parseInt(r, "budget")
	if msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return
	}
	if hasTarget == hasBudget {
		http.Error(w, "need exactly one of target or budget", http.StatusBadRequest)
		return
	}
	switch {
	case hasTarget && (target <= 0 || target > shop.MaxTargetKeys):
		http.Error(w, fmt.Sprintf("target must be in [1,%d]", shop.MaxTargetKeys), http.StatusBadRequest)
		return
	case hasBudget && (budget <= 0 || budget > shop.MaxBudgetCents):
		http.Error(w, fmt.Sprintf("budget must be in [1,%d]", shop.MaxBudgetCents), http.StatusBadRequest)
		return
	}

	var plan shop.Plan
	lock.Lock()
	if hasTarget {
		plan = eng.PlanKeyPurchase(target)
	} else {
		plan = eng.PlanKeyBudget(budget)
	}
	lock.Unlock()
	writeJSON(w, http.StatusOK, plan)
}
