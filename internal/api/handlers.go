package api

import (
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/ashveldt/wartide/internal/battle/service"
	"github.com/ashveldt/wartide/internal/platform/requestctx"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleRules(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Rules())
}

func (s *Server) handleDamageResolve(w http.ResponseWriter, r *http.Request) {
	var req matchupRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	sim, err := s.svc.SimulateEngagement(r.Context(), service.SimulationInput{
		Attacker: req.Attacker.toDomain(),
		Defender: req.Defender.toDomain(),
		Seed:     req.Seed,
		Mode:     req.rollMode(),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, simulationFromDomain(sim))
}

func (s *Server) handleDamageExplain(w http.ResponseWriter, r *http.Request) {
	var req matchupRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	explanation, err := s.svc.ExplainStrike(r.Context(), service.SimulationInput{
		Attacker: req.Attacker.toDomain(),
		Defender: req.Defender.toDomain(),
		Seed:     req.Seed,
		Mode:     req.rollMode(),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, explanationFromDomain(explanation))
}

func (s *Server) handleDamageDistribution(w http.ResponseWriter, r *http.Request) {
	var req matchupRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	dist, err := s.svc.DamageDistribution(r.Context(), req.Attacker.toDomain(), req.Defender.toDomain())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, distributionFromDomain(dist))
}

func (s *Server) handleCreateBattle(w http.ResponseWriter, r *http.Request) {
	var req createBattleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	created, err := s.svc.CreateBattle(r.Context(), req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, battleFromDomain(created))
}

func (s *Server) handleListBattles(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		writeError(w, err)
		return
	}

	battles, err := s.svc.ListBattles(r.Context(), int(limit))
	if err != nil {
		writeError(w, err)
		return
	}

	payload := make([]battlePayload, 0, len(battles))
	for _, b := range battles {
		payload = append(payload, battleFromDomain(b))
	}
	writeJSON(w, http.StatusOK, map[string]any{"battles": payload})
}

func (s *Server) handleGetBattle(w http.ResponseWriter, r *http.Request) {
	found, err := s.svc.GetBattle(r.Context(), mux.Vars(r)["battleID"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, battleFromDomain(found))
}

func (s *Server) handleResolveEngagement(w http.ResponseWriter, r *http.Request) {
	var req matchupRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	stored, err := s.svc.ResolveEngagement(r.Context(), service.EngagementInput{
		BattleID: mux.Vars(r)["battleID"],
		Attacker: req.Attacker.toDomain(),
		Defender: req.Defender.toDomain(),
		Seed:     req.Seed,
		Mode:     req.rollMode(),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	if commander := requestctx.CommanderIDFromContext(r.Context()); commander != "" {
		log.Printf("engagement %s appended to battle %s by commander %s",
			stored.ID, stored.BattleID, commander)
	}
	writeJSON(w, http.StatusCreated, engagementFromDomain(stored))
}

func (s *Server) handleListEngagements(w http.ResponseWriter, r *http.Request) {
	afterSeq, err := queryInt(r, "after_seq", 0)
	if err != nil {
		writeError(w, err)
		return
	}
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		writeError(w, err)
		return
	}

	engagements, err := s.svc.ListEngagements(r.Context(), mux.Vars(r)["battleID"], afterSeq, int(limit))
	if err != nil {
		writeError(w, err)
		return
	}

	payload := make([]engagementPayload, 0, len(engagements))
	for _, e := range engagements {
		payload = append(payload, engagementFromDomain(e))
	}
	writeJSON(w, http.StatusOK, map[string]any{"engagements": payload})
}

func (s *Server) handleVerifyBattle(w http.ResponseWriter, r *http.Request) {
	report, err := s.svc.VerifyBattle(r.Context(), mux.Vars(r)["battleID"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, verificationFromDomain(report))
}
