package web

import (
	"context"
	"errors"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/JonMunkholm/portfolio/internal/core"
	"github.com/JonMunkholm/portfolio/internal/database"
	"github.com/JonMunkholm/portfolio/internal/logging"
	"github.com/JonMunkholm/portfolio/internal/mail"
	"github.com/JonMunkholm/portfolio/internal/portfolio"
	"github.com/JonMunkholm/portfolio/internal/web/middleware"
	"github.com/JonMunkholm/portfolio/internal/web/templates"
	"github.com/go-chi/chi/v5"
)

const (
	// multipartMemory is how much of an upload is buffered in memory before
	// spilling to a temp file.
	multipartMemory = 8 << 20

	// recentJobsShown is the number of the visitor's own runs listed on the
	// demo page.
	recentJobsShown = 10
)

// Flash texts shown by the demo and contact form.
const (
	msgNoFilePart     = "No file part found."
	msgNoFileSelected = "No file selected."
	msgCleaned        = "Cleaning complete! Download your file below."
	msgCleanFailed    = "Error processing CSV: "
	msgFileGone       = "That cleaned file is no longer available. Please run the cleaner again."
	msgFillAllFields  = "Please fill out all fields."
	msgMailSent       = "Thank you! Your message has been sent."
	msgMailFailed     = "Email service failed. Please try again later."
)

func (s *Server) handlePortfolio(w http.ResponseWriter, r *http.Request) {
	p := s.newPage(w, r, "Portfolio", "portfolio")
	s.render(w, r, http.StatusOK, templates.Portfolio(p, portfolio.All()))
}

// handleDemo shows the upload form. With ?filename= it also shows the
// download link and the report of the run that produced the file.
func (s *Server) handleDemo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p := s.newPage(w, r, "Data Cleaning Demo", "portfolio")
	view := templates.DemoView{MaxFileSize: s.cfg.Upload.MaxFileSize}

	if name := r.URL.Query().Get("filename"); name != "" {
		if _, err := s.service.OutputPath(name); err != nil {
			p.Flashes = append(p.Flashes, templates.Flash{Level: FlashInfo, Message: msgFileGone})
		} else {
			view.Download = name
			if job, err := s.service.JobByOutput(ctx, name); err == nil {
				view.Job = job
			} else if !errors.Is(err, core.ErrJobNotFound) {
				logging.FromContext(ctx).Warn("load job for download", "file", name, "error", err)
			}
		}
	}

	// Other visitors' file names stay private; they only count toward the totals.
	mine, err := s.service.RecentJobsFrom(ctx, middleware.ClientIP(r), recentJobsShown)
	if err != nil {
		logging.FromContext(ctx).Warn("load recent jobs", "error", err)
	}
	view.Mine = mine

	if stats, err := s.service.JobStats(ctx); err == nil {
		view.Stats = &stats
	} else {
		logging.FromContext(ctx).Warn("load job stats", "error", err)
	}

	s.render(w, r, http.StatusOK, templates.Demo(p, view))
}

// handleDemoUpload cleans an uploaded CSV and redirects back to the demo page.
func (s *Server) handleDemoUpload(w http.ResponseWriter, r *http.Request) {
	back := portfolio.DataCleaningDemo

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Upload.MaxFileSize)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			s.flashes.Add(w, r, FlashDanger, msgNoFilePart)
			redirect(w, r, back)
			return
		}
		s.failUpload(w, r, err)
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File["file"]
	if len(files) == 0 {
		// An empty file input arrives as a plain value with no file name.
		msg := msgNoFilePart
		if _, ok := r.MultipartForm.Value["file"]; ok {
			msg = msgNoFileSelected
		}
		s.flashes.Add(w, r, FlashDanger, msg)
		redirect(w, r, back)
		return
	}
	header := files[0]
	if header.Filename == "" {
		s.flashes.Add(w, r, FlashDanger, msgNoFileSelected)
		redirect(w, r, back)
		return
	}
	if !core.IsCSV(header.Filename) {
		s.flashes.Add(w, r, FlashDanger, core.FormatUserError(core.ErrNotCSV))
		redirect(w, r, back)
		return
	}

	file, err := header.Open()
	if err != nil {
		s.failUpload(w, r, err)
		return
	}
	defer file.Close()

	ctx := WithRequestMetadata(r.Context(), r)
	job, err := s.service.CleanUpload(ctx, header.Filename, file)
	if err != nil {
		s.failUpload(w, r, err)
		return
	}

	s.flashes.Add(w, r, FlashSuccess, msgCleaned)
	redirect(w, r, back+"?filename="+url.QueryEscape(job.OutputName))
}

// failUpload logs a failed run and flashes the user message.
func (s *Server) failUpload(w http.ResponseWriter, r *http.Request, err error) {
	ue := core.NewUserError(err)
	logging.FromContext(r.Context()).Warn("cleaning demo failed", "error", ue.Technical, "code", ue.User.Code)
	s.flashes.Add(w, r, FlashDanger, msgCleanFailed+ue.Display())
	redirect(w, r, portfolio.DataCleaningDemo)
}

// handleDownload serves a cleaned file as an attachment.
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "filename")
	if unescaped, err := url.PathUnescape(name); err == nil {
		name = unescaped
	}

	path, err := s.service.OutputPath(name)
	if err != nil {
		s.respondError(w, r, err, http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	http.ServeFile(w, r, path)
}

// handleContact sends the contact form by mail.
func (s *Server) handleContact(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.flashes.Add(w, r, FlashWarning, msgFillAllFields)
		redirect(w, r, "/contact")
		return
	}

	name := strings.TrimSpace(r.PostFormValue("name"))
	email := strings.TrimSpace(r.PostFormValue("email"))
	message := strings.TrimSpace(r.PostFormValue("message"))
	if name == "" || email == "" || message == "" {
		s.flashes.Add(w, r, FlashWarning, msgFillAllFields)
		redirect(w, r, "/contact")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.Mail.SendTimeout)
	defer cancel()

	if err := s.mailer.Send(ctx, mail.NewContactMessage(name, email, message)); err != nil {
		logging.FromContext(r.Context()).Error("contact mail failed",
			"error", err,
			"code", core.MapError(err).Code,
		)
		s.flashes.Add(w, r, FlashDanger, msgMailFailed)
		redirect(w, r, "/")
		return
	}

	logging.FromContext(r.Context()).Info("contact mail sent")
	s.flashes.Add(w, r, FlashSuccess, msgMailSent)
	redirect(w, r, "/")
}

// HealthResponse is the body of /healthz.
type HealthResponse struct {
	Status   string             `json:"status"`
	Database string             `json:"database"`
	Jobs     core.LimiterStatus `json:"jobs"`
	History  *core.JobStats     `json:"history,omitempty"`
	Error    string             `json:"error,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:   "ok",
		Database: database.Backend(s.cfg.Database.URL),
		Jobs:     s.service.LimiterStatus(),
	}

	stats, err := s.service.JobStats(r.Context())
	if err != nil {
		logging.FromContext(r.Context()).Error("health check failed", "error", err)
		resp.Status = "degraded"
		resp.Error = core.MapError(err).Message
		writeJSON(w, http.StatusServiceUnavailable, resp)
		return
	}
	resp.History = &stats

	writeJSON(w, http.StatusOK, resp)
}
