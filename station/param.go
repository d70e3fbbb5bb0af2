package station

import (
	"log"
	"net/http"

	"github.com/InfiniteWes/HelloDrone-Project-0-CS4331/crazyflie"

	"github.com/gorilla/mux"
)

func (s *Server) paramInitRoute(r *mux.Router) {
	r.HandleFunc("/params", s.paramIndexHandler).Methods("GET")
}

type paramValue struct {
	crazyflie.ParamTocItem
	Value float64 `json:"value"`
}

type paramIndexResponse struct {
	Params []paramValue `json:"params"`
}

// paramIndexHandler reads every parameter, or only those of ?group=.
func (s *Server) paramIndexHandler(w http.ResponseWriter, r *http.Request) {
	if s.params == nil {
		respondError(w, http.StatusNotFound, "No Crazyflie connected")
		return
	}
	group := r.URL.Query().Get("group")

	resp := paramIndexResponse{Params: []paramValue{}}
	for _, item := range s.params.ParamGetToc() {
		if group != "" && item.Group != group {
			continue
		}
		val, err := s.params.ParamReadFloat64(item.Group + "." + item.Name)
		if err != nil {
			log.Printf("param %s.%s: %s", item.Group, item.Name, err)
			continue
		}
		resp.Params = append(resp.Params, paramValue{item, val})
	}

	respondJSON(w, http.StatusOK, resp)
}
