package station

import (
	"net/http"

	"github.com/InfiniteWes/HelloDrone-Project-0-CS4331/avoidance"
	"github.com/InfiniteWes/HelloDrone-Project-0-CS4331/flight"

	"github.com/gorilla/mux"
)

func (s *Server) taskInitRoute(r *mux.Router) {
	r.HandleFunc("/task", s.taskIndexHandler).Methods("GET")
	r.HandleFunc("/task/abort", s.taskAbortHandler).Methods("POST")
}

type taskResponse struct {
	ID     string           `json:"id"`
	Config avoidance.Config `json:"config"`
	Ticked bool             `json:"ticked"`
	Last   flight.Tick      `json:"last"`
}

func (s *Server) taskIndexHandler(w http.ResponseWriter, r *http.Request) {
	runner, _ := s.task()
	if runner == nil {
		respondError(w, http.StatusNotFound, "No flight task")
		return
	}

	resp := taskResponse{ID: runner.ID, Config: runner.Config()}
	resp.Last, resp.Ticked = runner.Status()
	respondJSON(w, http.StatusOK, resp)
}

type abortResponse struct {
	ID string `json:"id"`
}

func (s *Server) taskAbortHandler(w http.ResponseWriter, r *http.Request) {
	runner, abort := s.task()
	if runner == nil || abort == nil {
		respondError(w, http.StatusNotFound, "No flight task")
		return
	}

	abort()
	respondJSON(w, http.StatusAccepted, abortResponse{ID: runner.ID})
}
