// Package station is the ground station HTTP server: it reports the running
// flight task, lets an operator abort it, lists the vehicle's parameters and
// streams tick telemetry over websockets.
package station

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/InfiniteWes/HelloDrone-Project-0-CS4331/crazyflie"
	"github.com/InfiniteWes/HelloDrone-Project-0-CS4331/flight"

	"github.com/gorilla/mux"
)

// ParamSource is the connected vehicle's parameter table.
type ParamSource interface {
	ParamGetToc() []crazyflie.ParamTocItem
	ParamReadFloat64(name string) (float64, error)
}

type Server struct {
	router *mux.Router
	params ParamSource

	taskLock sync.Mutex
	runner   *flight.Runner
	abort    context.CancelFunc

	socketsLock sync.Mutex
	sockets     map[string]socket
	socketID    uint
}

type errorResponse struct {
	Error string `json:"error"`
}

// New builds the routes. params may be nil when no vehicle is connected,
// as in simulation.
func New(params ParamSource) *Server {
	s := &Server{
		router:  mux.NewRouter(),
		params:  params,
		sockets: map[string]socket{},
	}
	s.taskInitRoute(s.router)
	s.paramInitRoute(s.router)
	s.socketsInitRoute(s.router)
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// SetTask makes runner the task reported on /task. abort is called by
// POST /task/abort.
func (s *Server) SetTask(runner *flight.Runner, abort context.CancelFunc) {
	s.taskLock.Lock()
	defer s.taskLock.Unlock()
	s.runner = runner
	s.abort = abort
}

func (s *Server) task() (*flight.Runner, context.CancelFunc) {
	s.taskLock.Lock()
	defer s.taskLock.Unlock()
	return s.runner, s.abort
}

// ListenAndServe serves on addr until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		srv.Shutdown(shutdown)
		s.closeSockets()
	}()

	log.Printf("Ground station listening on %s", addr)
	err := srv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func respondJSON(w http.ResponseWriter, httpStatus int, resp interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	w.WriteHeader(httpStatus)

	json.NewEncoder(w).Encode(resp)
}

func respondError(w http.ResponseWriter, httpStatus int, msg string) {
	respondJSON(w, httpStatus, errorResponse{Error: msg})
}
