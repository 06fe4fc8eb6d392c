// Package chattest runs an in-process room chat backend for tests. It
// speaks the same line protocol as the production server: join/leave
// notices, roster snapshots, "<user>: <text>" broadcasts, privado routing
// and multipart image uploads.
package chattest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
)

// Inbound is a frame the server received from a client.
type Inbound struct {
	User string
	Room string
	Text string
}

// Upload is a file the server accepted.
type Upload struct {
	User     string
	Room     string
	Filename string
	Size     int
}

type peer struct {
	name string
	room string
	conn *websocket.Conn
}

// Server is a fake chat backend bound to a local httptest listener.
type Server struct {
	srv *httptest.Server

	mu          sync.Mutex
	rooms       map[string][]*peer
	dials       int
	rejectDials bool
	failUploads bool
	received    []Inbound
	uploads     []Upload
	closes      map[string]websocket.StatusCode
}

// NewServer starts a fake backend. Call Close when done.
func NewServer() *Server {
	s := &Server{
		rooms:  make(map[string][]*peer),
		closes: make(map[string]websocket.StatusCode),
	}

	r := chi.NewRouter()
	r.Get("/ws/{name}/{room}", s.handleWS)
	r.Get("/ws/{name}", s.handleWS)
	r.Post("/upload/{name}/{room}", s.handleUpload)
	s.srv = httptest.NewServer(r)
	return s
}

// URL returns the WebSocket base URL ("ws://127.0.0.1:port").
func (s *Server) URL() string {
	return "ws" + strings.TrimPrefix(s.srv.URL, "http")
}

// HTTPURL returns the HTTP origin.
func (s *Server) HTTPURL() string {
	return s.srv.URL
}

// Close drops every connection and stops the listener.
func (s *Server) Close() {
	s.DropAll()
	s.srv.Close()
}

// RejectDials makes new WebSocket handshakes fail with 503.
func (s *Server) RejectDials(reject bool) {
	s.mu.Lock()
	s.rejectDials = reject
	s.mu.Unlock()
}

// FailUploads makes the upload endpoint answer 500.
func (s *Server) FailUploads(fail bool) {
	s.mu.Lock()
	s.failUploads = fail
	s.mu.Unlock()
}

// Dials counts handshake attempts, rejected ones included.
func (s *Server) Dials() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dials
}

// Received returns the frames received so far.
func (s *Server) Received() []Inbound {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Inbound, len(s.received))
	copy(out, s.received)
	return out
}

// Uploads returns the accepted uploads.
func (s *Server) Uploads() []Upload {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Upload, len(s.uploads))
	copy(out, s.uploads)
	return out
}

// CloseStatus reports the status code the named user's last connection
// ended with, or -1 when it ended without a close frame.
func (s *Server) CloseStatus(name string) (websocket.StatusCode, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	code, ok := s.closes[name]
	return code, ok
}

// Online returns the users in room, in join order.
func (s *Server) Online(room string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return namesOf(s.rooms[room])
}

// Send writes a raw line to one user in any room.
func (s *Server) Send(name, text string) {
	for _, p := range s.peers() {
		if p.name == name {
			_ = p.conn.Write(context.Background(), websocket.MessageText, []byte(text))
		}
	}
}

// Broadcast writes a raw line to everyone in room.
func (s *Server) Broadcast(room, text string) {
	s.mu.Lock()
	peers := append([]*peer(nil), s.rooms[room]...)
	s.mu.Unlock()
	for _, p := range peers {
		_ = p.conn.Write(context.Background(), websocket.MessageText, []byte(text))
	}
}

// DropAll kills every connection without a closing handshake.
func (s *Server) DropAll() {
	for _, p := range s.peers() {
		_ = p.conn.CloseNow()
	}
}

// CloseAll closes every connection with a closing handshake.
func (s *Server) CloseAll(code websocket.StatusCode, reason string) {
	var wg sync.WaitGroup
	for _, p := range s.peers() {
		wg.Add(1)
		go func(p *peer) {
			defer wg.Done()
			_ = p.conn.Close(code, reason)
		}(p)
	}
	wg.Wait()
}

func (s *Server) peers() []*peer {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*peer
	for _, ps := range s.rooms {
		out = append(out, ps...)
	}
	return out
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	room := chi.URLParam(r, "room")

	s.mu.Lock()
	s.dials++
	reject := s.rejectDials
	s.mu.Unlock()
	if reject {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
		return
	}

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		return
	}
	p := &peer{name: name, room: room, conn: conn}

	s.mu.Lock()
	s.rooms[room] = append(s.rooms[room], p)
	s.mu.Unlock()

	s.Broadcast(room, fmt.Sprintf("🚀 %s entrou na sala!", name))
	s.broadcastRoster(room)

	ctx := r.Context()
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			s.leave(p, websocket.CloseStatus(err))
			return
		}
		s.route(p, string(data))
	}
}

func (s *Server) route(p *peer, text string) {
	s.mu.Lock()
	s.received = append(s.received, Inbound{User: p.name, Room: p.room, Text: text})
	s.mu.Unlock()

	if rest, ok := strings.CutPrefix(text, "privado:"); ok {
		to, body, found := strings.Cut(rest, ":")
		if !found {
			s.Send(p.name, "⚠️ Formato inválido")
			return
		}
		s.Send(to, fmt.Sprintf("🔒 Privado de %s: %s", p.name, strings.TrimSpace(body)))
		s.Send(p.name, fmt.Sprintf("🔒 Privado para %s: %s", to, strings.TrimSpace(body)))
		return
	}
	s.Broadcast(p.room, p.name+": "+text)
}

func (s *Server) leave(p *peer, code websocket.StatusCode) {
	s.mu.Lock()
	peers := s.rooms[p.room]
	for i, q := range peers {
		if q == p {
			s.rooms[p.room] = append(peers[:i:i], peers[i+1:]...)
			break
		}
	}
	s.closes[p.name] = code
	s.mu.Unlock()

	_ = p.conn.CloseNow()
	s.Broadcast(p.room, fmt.Sprintf("👋 %s saiu da sala", p.name))
	s.broadcastRoster(p.room)
}

func (s *Server) broadcastRoster(room string) {
	s.Broadcast(room, "👥 Online: "+strings.Join(s.Online(room), ", "))
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	room := chi.URLParam(r, "room")

	s.mu.Lock()
	fail := s.failUploads
	s.mu.Unlock()
	if fail {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": "storage unavailable"})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": err.Error()})
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": err.Error()})
		return
	}

	s.mu.Lock()
	s.uploads = append(s.uploads, Upload{User: name, Room: room, Filename: header.Filename, Size: len(data)})
	n := len(s.uploads)
	s.mu.Unlock()

	url := fmt.Sprintf("/files/%s_%d%s", name, n, filepath.Ext(header.Filename))
	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func namesOf(peers []*peer) []string {
	out := make([]string, 0, len(peers))
	for _, p := range peers {
		out = append(out, p.name)
	}
	return out
}
