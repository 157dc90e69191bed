package server

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/KaramelBytes/caproi-cli/internal/pipeline"
	"github.com/KaramelBytes/caproi-cli/internal/roster"
)

// Multipart field names.
const (
	fieldRoster       = "roster"
	fieldPerformance  = "performance"
	fieldBudget       = "budget"
	fieldDefaultGrade = "default_grade"
)

// scoreUpload runs the pipeline over a multipart upload. On failure it has
// already written the error response.
func (s *Server) scoreUpload(w http.ResponseWriter, r *http.Request) (*pipeline.Result, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	if err := r.ParseMultipartForm(s.maxUpload); err != nil {
		s.reject(w, http.StatusBadRequest, "bad_form", fmt.Sprintf("parse upload: %v", err))
		return nil, false
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	opt, err := s.uploadOptions(r)
	if err != nil {
		s.reject(w, http.StatusBadRequest, "bad_override", err.Error())
		return nil, false
	}

	rf, rh, err := r.FormFile(fieldRoster)
	if err != nil {
		s.reject(w, http.StatusBadRequest, "missing_roster", "roster file is required")
		return nil, false
	}
	defer rf.Close()

	var perfName string
	var perfR io.Reader
	pf, ph, err := r.FormFile(fieldPerformance)
	switch {
	case err == nil:
		defer pf.Close()
		perfName, perfR = fileName(ph), pf
	case errors.Is(err, http.ErrMissingFile):
	default:
		s.reject(w, http.StatusBadRequest, "bad_form", fmt.Sprintf("performance file: %v", err))
		return nil, false
	}

	in, err := pipeline.Read(fileName(rh), rf, perfName, perfR, opt.Table)
	if err != nil {
		s.reject(w, http.StatusUnprocessableEntity, "unreadable_roster", err.Error())
		return nil, false
	}
	res, err := pipeline.Run(in, opt)
	if err != nil {
		s.reject(w, http.StatusUnprocessableEntity, failureReason(err), err.Error())
		return nil, false
	}
	s.metrics.RecordUpload(res.Performance != "", len(res.Entities))
	return res, true
}

// uploadOptions applies the per-request budget and default grade overrides.
func (s *Server) uploadOptions(r *http.Request) (pipeline.Options, error) {
	opt := s.opt
	if v := strings.TrimSpace(r.FormValue(fieldBudget)); v != "" {
		b, err := strconv.ParseFloat(v, 64)
		if err != nil || b <= 0 {
			return opt, fmt.Errorf("%s must be a positive number", fieldBudget)
		}
		opt.Contracts.TotalBudget = b
	}
	if v := strings.TrimSpace(r.FormValue(fieldDefaultGrade)); v != "" {
		g, err := strconv.ParseFloat(v, 64)
		if err != nil || g < 0 || g > 100 {
			return opt, fmt.Errorf("%s must be within [0,100]", fieldDefaultGrade)
		}
		opt.DefaultGrade = g
	}
	return opt, nil
}

func (s *Server) reject(w http.ResponseWriter, status int, reason, msg string) {
	s.metrics.RecordUploadFailure(reason)
	s.log.Warn().Str("reason", reason).Msg(msg)
	s.writeError(w, status, msg)
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, roster.ErrNoCapColumn):
		return "no_cap_column"
	case errors.Is(err, roster.ErrNoNameColumn):
		return "no_name_column"
	default:
		return "invalid_roster"
	}
}

func fileName(h *multipart.FileHeader) string {
	if h == nil || h.Filename == "" {
		return "upload.csv"
	}
	return h.Filename
}
