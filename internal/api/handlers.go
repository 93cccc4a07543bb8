package api

import (
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"taskd/internal/models"
)

type healthResponse struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Version   string `json:"version"`
	Timestamp string `json:"timestamp"`
}

type helloResponse struct {
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

type greetResponse struct {
	Greeting  string `json:"greeting"`
	Timestamp string `json:"timestamp"`
}

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// handleHealth processes GET /health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		writeError(w, http.StatusMethodNotAllowed, http.StatusText(http.StatusMethodNotAllowed))
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{
		Status:    "healthy",
		Service:   s.service,
		Version:   Version,
		Timestamp: timestamp(),
	})
}

// handleHello processes GET /api/hello.
func (s *Server) handleHello(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		writeError(w, http.StatusMethodNotAllowed, http.StatusText(http.StatusMethodNotAllowed))
		return
	}
	writeJSON(w, http.StatusOK, helloResponse{
		Message:   "Hello World from Backend!",
		Timestamp: timestamp(),
	})
}

// handleGreet processes POST /api/greet. A missing name field is a
// schema violation (422); a present but blank name is a business-rule
// violation (400).
func (s *Server) handleGreet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		writeError(w, http.StatusMethodNotAllowed, http.StatusText(http.StatusMethodNotAllowed))
		return
	}
	var req models.GreetRequest
	if err := decodeStrict(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request payload: %v", err))
		return
	}
	if err := s.validate.Struct(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	name := strings.TrimSpace(*req.Name)
	if name == "" {
		writeError(w, http.StatusBadRequest, "name must not be empty")
		return
	}
	if utf8.RuneCountInString(name) > 100 {
		writeError(w, http.StatusUnprocessableEntity, "name must be at most 100 characters")
		return
	}
	writeJSON(w, http.StatusOK, greetResponse{
		Greeting:  fmt.Sprintf("Hello, %s! Welcome to %s.", name, s.service),
		Timestamp: timestamp(),
	})
}
