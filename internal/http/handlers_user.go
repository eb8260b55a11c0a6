package http

import (
	"net/http"

	"ahorrapp/internal/core"
)

type userPayload struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Image string `json:"image"`
}

type userView struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Image string `json:"image,omitempty"`
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	u, err := s.users.GetUser(r.Context(), r.PathValue("id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondData(w, http.StatusOK, userView{ID: u.ID, Name: u.Name, Email: u.Email, Image: u.Image})
}

func (s *Server) handleSaveUser(w http.ResponseWriter, r *http.Request) {
	var p userPayload
	if !decodeJSON(w, r, &p) {
		return
	}

	err := s.users.SaveProfile(r.Context(), core.User{
		ID:    r.PathValue("id"),
		Name:  sanitizeInput(p.Name),
		Email: sanitizeInput(p.Email),
		Image: sanitizeInput(p.Image),
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondData(w, http.StatusOK, nil)
}

func (s *Server) handleUploadAvatar(w http.ResponseWriter, r *http.Request) {
	file, header, ok := parseImageUpload(w, r)
	if !ok {
		return
	}
	defer file.Close()

	url, err := s.users.UploadAvatar(r.Context(), r.PathValue("id"), header.Filename, file)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondData(w, http.StatusOK, map[string]string{"url": url})
}
