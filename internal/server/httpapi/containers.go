package httpapi

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/gabriel-vasile/mimetype"
)

const fileField = "file"

// addFile streams the "file" part of a multipart body into storage without
// buffering the whole upload.
func (s *Server) addFile(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)

	mr, err := r.MultipartReader()
	if err != nil {
		writeError(w, http.StatusBadRequest, "expected multipart/form-data body")
		return
	}

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, "missing file field")
			return
		}
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				s.fail(w, r, err)
				return
			}
			writeError(w, http.StatusBadRequest, "malformed multipart body")
			return
		}

		if part.FormName() != fileField || part.FileName() == "" {
			_ = part.Close()
			continue
		}

		c, err := s.containers.Upload(r.Context(), currentUser(r), part.FileName(), part)
		_ = part.Close()
		if err != nil {
			s.fail(w, r, err)
			return
		}

		writeJSON(w, http.StatusCreated, c)
		return
	}
}

func (s *Server) listContainers(w http.ResponseWriter, r *http.Request) {
	list, err := s.containers.ListByUser(r.Context(), currentUser(r).ID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) downloadResult(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.URL.Query().Get("containerId"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "containerId must be an integer")
		return
	}

	name, content, err := s.containers.DownloadResult(r.Context(), currentUser(r), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	w.Header().Set("Content-Type", mimetype.Detect(content).String())
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	w.Header().Set("Content-Length", strconv.Itoa(len(content)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(content)
}
