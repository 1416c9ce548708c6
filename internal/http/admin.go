package httpapi

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/denisok6893-rgb/realestate-portal/internal/admin"
	"github.com/denisok6893-rgb/realestate-portal/internal/apiclient"
	"github.com/denisok6893-rgb/realestate-portal/internal/domain"
)

const maxUploadMemory = 32 << 20

type adminListResponse struct {
	Total   int               `json:"total"`
	Items   []domain.Property `json:"items"`
	Message string            `json:"message,omitempty"`
}

func (s *Server) handleAdminProperties(w http.ResponseWriter, r *http.Request) {
	if err := s.table.Load(r.Context()); err != nil {
		s.writeError(w, r, err)
		return
	}
	term := r.URL.Query().Get("q")
	items := s.table.Search(term)
	resp := adminListResponse{Total: len(items), Items: items}
	if len(items) == 0 {
		resp.Message = admin.EmptyMessage(term)
	}
	writeJSON(w, http.StatusOK, resp)
}

// ensureRow loads the table when id is not known yet, e.g. right after start.
func (s *Server) ensureRow(ctx context.Context, id int64) error {
	if _, ok := s.table.Get(id); ok {
		return nil
	}
	return s.table.Load(ctx)
}

func (s *Server) decodeProperty(w http.ResponseWriter, r *http.Request) (domain.PropertyInput, bool) {
	var in domain.PropertyInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_json"})
		return in, false
	}
	in.Images = admin.MergeImages(in.Images)
	if err := s.validator.Struct(in); err != nil {
		s.writeError(w, r, err)
		return in, false
	}
	return in, true
}

func (s *Server) handleAdminCreate(w http.ResponseWriter, r *http.Request) {
	in, ok := s.decodeProperty(w, r)
	if !ok {
		return
	}
	p, err := s.table.Add(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.invalidateListings(r.Context())
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleAdminUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_id"})
		return
	}
	in, ok := s.decodeProperty(w, r)
	if !ok {
		return
	}
	if err := s.ensureRow(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	p, err := s.table.Update(r.Context(), id, in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.invalidateListings(r.Context())
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleAdminToggle(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_id"})
		return
	}
	if err := s.ensureRow(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	p, err := s.table.ToggleVisibility(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.invalidateListings(r.Context())
	writeJSON(w, http.StatusOK, p)
}

// handleAdminDelete requires ?confirm=true.
func (s *Server) handleAdminDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_id"})
		return
	}
	confirmed, _ := strconv.ParseBool(r.URL.Query().Get("confirm"))
	if confirmed {
		if err := s.ensureRow(r.Context(), id); err != nil {
			s.writeError(w, r, err)
			return
		}
	}
	if err := s.table.Delete(r.Context(), id, confirmed); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.invalidateListings(r.Context())
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// handleAdminImages takes a multipart form with "files" parts and repeated
// "url" fields.
func (s *Server) handleAdminImages(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_id"})
		return
	}
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_form"})
		return
	}

	var files []apiclient.File
	for _, fh := range r.MultipartForm.File["files"] {
		f, err := fh.Open()
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_file"})
			return
		}
		data, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_file"})
			return
		}
		files = append(files, apiclient.File{Name: fh.Filename, ContentType: fh.Header.Get("Content-Type"), Data: data})
	}
	manual := r.MultipartForm.Value["url"]

	if err := s.ensureRow(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	p, err := s.table.AttachImages(r.Context(), s.api, id, manual, files)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.invalidateListings(r.Context())
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleAdminRequests(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := apiclient.RequestFilter{Status: domain.RequestStatus(strings.ToLower(q.Get("status")))}
	f.PropertyID, _ = strconv.ParseInt(q.Get("propertyId"), 10, 64)

	reqs, err := s.inbox.Requests(r.Context(), f)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"total": len(reqs), "items": reqs})
}

type statusBody struct {
	Status string `json:"status"`
}

func (s *Server) handleAdminRequestStatus(w http.ResponseWriter, r *http.Request) {
	var body statusBody
	if err := decodeJSON(w, r, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_json"})
		return
	}
	out, err := s.inbox.SetRequestStatus(r.Context(), mux.Vars(r)["id"], domain.RequestStatus(strings.ToLower(body.Status)))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleAdminReviews(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := apiclient.ReviewFilter{Status: domain.ReviewStatus(strings.ToLower(q.Get("status")))}
	f.PropertyID, _ = strconv.ParseInt(q.Get("propertyId"), 10, 64)

	revs, err := s.inbox.Reviews(r.Context(), f)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"total": len(revs), "items": revs})
}

func (s *Server) handleAdminReviewStatus(w http.ResponseWriter, r *http.Request) {
	var body statusBody
	if err := decodeJSON(w, r, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_json"})
		return
	}
	out, err := s.inbox.SetReviewStatus(r.Context(), mux.Vars(r)["id"], domain.ReviewStatus(strings.ToLower(body.Status)))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleAdminReviewReply(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Reply string `json:"reply"`
	}
	if err := decodeJSON(w, r, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_json"})
		return
	}
	out, err := s.inbox.Reply(r.Context(), mux.Vars(r)["id"], body.Reply)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleAdminAnalytics(w http.ResponseWriter, r *http.Request) {
	sum, err := admin.Dashboard(r.Context(), s.api)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

// handleAdminLogout also invalidates the token server-side, best effort.
func (s *Server) handleAdminLogout(w http.ResponseWriter, r *http.Request) {
	s.sess.RemoteLogout(r.Context())
	writeJSON(w, http.StatusOK, loginState{State: s.sess.State().String()})
}
