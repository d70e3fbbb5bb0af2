package station

import (
	"fmt"
	"log"
	"net/http"
	"sort"

	"github.com/InfiniteWes/HelloDrone-Project-0-CS4331/flight"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
)

// Ticks beyond this many pending for one client are dropped for it.
const socketBuffer = 16

type socket struct {
	name string
	out  chan flight.Tick
	conn *websocket.Conn
}

type socketIndexResponse struct {
	Sockets []string `json:"sockets"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

func (s *Server) socketsInitRoute(r *mux.Router) {
	r.HandleFunc("/sockets", s.socketsIndexHandler).Methods("GET")
	r.HandleFunc("/sockets/websocket", s.websocketHandler).Methods("GET")
}

func (s *Server) socketsIndexHandler(w http.ResponseWriter, r *http.Request) {
	s.socketsLock.Lock()
	resp := socketIndexResponse{Sockets: make([]string, 0, len(s.sockets))}
	for name := range s.sockets {
		resp.Sockets = append(resp.Sockets, "websocket/"+name)
	}
	s.socketsLock.Unlock()
	sort.Strings(resp.Sockets)

	respondJSON(w, http.StatusOK, resp)
}

// Publish sends tick to every connected websocket without blocking.
func (s *Server) Publish(tick flight.Tick) {
	s.socketsLock.Lock()
	defer s.socketsLock.Unlock()

	for _, sk := range s.sockets {
		select {
		case sk.out <- tick:
		default:
		}
	}
}

func (s *Server) websocketHandler(w http.ResponseWriter, r *http.Request) {
	if !websocket.IsWebSocketUpgrade(r) {
		s.socketsIndexHandler(w, r)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println(err)
		return
	}

	s.socketsLock.Lock()
	sk := socket{
		name: fmt.Sprintf("websocket%d", s.socketID),
		out:  make(chan flight.Tick, socketBuffer),
		conn: conn,
	}
	s.socketID++
	s.sockets[sk.name] = sk
	s.socketsLock.Unlock()

	log.Println(sk.name, "connected")

	// Out routine
	go func() {
		for tick := range sk.out {
			if err := conn.WriteJSON(tick); err != nil {
				log.Println(sk.name, "OUT error, disconnecting!")
				s.removeSocket(sk.name)
				return
			}
		}
	}()

	// In routine, only there to notice the client going away
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				log.Println(sk.name, "IN error, disconnecting!")
				s.removeSocket(sk.name)
				return
			}
		}
	}()
}

func (s *Server) removeSocket(name string) {
	s.socketsLock.Lock()
	defer s.socketsLock.Unlock()

	sk, ok := s.sockets[name]
	if !ok {
		return
	}
	delete(s.sockets, name)
	close(sk.out)
	sk.conn.Close()
}

func (s *Server) closeSockets() {
	s.socketsLock.Lock()
	names := make([]string, 0, len(s.sockets))
	for name := range s.sockets {
		names = append(names, name)
	}
	s.socketsLock.Unlock()

	for _, name := range names {
		s.removeSocket(name)
	}
}
