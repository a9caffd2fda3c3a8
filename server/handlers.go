package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/jonwraymond/toolforge/backend"
	"github.com/jonwraymond/toolforge/catalog"
	"github.com/jonwraymond/toolforge/dispatch"
	"github.com/jonwraymond/toolforge/interp"
	"github.com/jonwraymond/toolforge/toolchain"
	"github.com/spf13/cast"
)

type interpretRequest struct {
	Option          string `json:"option"`
	Input           string `json:"input"`
	CCode           string `json:"c_code"`
	UserInputString string `json:"user_input_string"`
}

type outputResponse struct {
	Output string `json:"output"`
}

// handleInterpret runs one tool. Tool failures are reported in output with
// status 200; only malformed requests are client errors.
func (s *Server) handleInterpret(w http.ResponseWriter, r *http.Request) {
	var req interpretRequest
	if !s.readJSON(w, r, &req) {
		return
	}

	tool, err := dispatch.ParseTool(req.Option)
	if err != nil {
		s.writeJSON(w, http.StatusOK, outputResponse{Output: "Unknown option: " + req.Option})
		return
	}

	args := map[string]any{"input": req.Input}
	if tool == dispatch.RunFullCCode {
		args = map[string]any{"input": req.CCode, "stdin": req.UserInputString}
	}

	v, err := s.opts.Executor.Execute(r.Context(), backend.FormatToolID(s.opts.Namespace, tool.String()), args)
	if res, ok := v.(dispatch.Result); ok {
		s.writeJSON(w, http.StatusOK, outputResponse{Output: res.Output})
		return
	}
	if err != nil {
		s.logError("interpret", err)
		s.writeJSON(w, http.StatusOK, outputResponse{Output: "An error occurred: " + err.Error()})
		return
	}
	s.writeJSON(w, http.StatusOK, outputResponse{Output: cast.ToString(v)})
}

type cliRequest struct {
	Command   string         `json:"command"`
	Variables map[string]any `json:"variables"`
}

type cliResponse struct {
	Output       string            `json:"output"`
	NewVariables map[string]string `json:"new_variables"`
}

// handleExecuteCLICommand runs one command-language line against the
// caller's variables and returns the updated set.
func (s *Server) handleExecuteCLICommand(w http.ResponseWriter, r *http.Request) {
	var req cliRequest
	if !s.readJSON(w, r, &req) {
		return
	}

	vars := make(map[string]string, len(req.Variables))
	for k, v := range req.Variables {
		vars[k] = cast.ToString(v)
	}
	session := interp.NewSession(vars)
	out, _ := interp.ExecuteLine(strings.TrimSpace(interp.StripComments(req.Command)), session)

	s.writeJSON(w, http.StatusOK, cliResponse{Output: out, NewVariables: session.Vars()})
}

type toolSummary struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Namespace   string   `json:"namespace"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

type toolsResponse struct {
	Tools []toolSummary `json:"tools"`
}

// handleListTools lists every tool, or searches the catalog when q is set.
func (s *Server) handleListTools(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	limit := cast.ToInt(r.URL.Query().Get("limit"))

	if q != "" && s.opts.Catalog != nil {
		hits, err := s.opts.Catalog.Search(r.Context(), q, limit)
		if err != nil {
			s.logError("search tools", err)
			s.writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		out := toolsResponse{Tools: make([]toolSummary, 0, len(hits))}
		for _, h := range hits {
			out.Tools = append(out.Tools, toolSummary{
				ID:          h.ID,
				Name:        h.Name,
				Namespace:   h.Namespace,
				Description: h.ShortDescription,
				Tags:        h.Tags,
			})
		}
		s.writeJSON(w, http.StatusOK, out)
		return
	}

	tools, err := s.opts.Executor.ListAllTools(r.Context())
	if err != nil {
		s.logError("list tools", err)
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	out := toolsResponse{Tools: make([]toolSummary, 0, len(tools))}
	for _, t := range tools {
		out.Tools = append(out.Tools, toolSummary{
			ID:          backend.FormatToolID(t.Namespace, t.Name),
			Name:        t.Name,
			Namespace:   t.Namespace,
			Description: t.Description,
			Tags:        t.Tags,
		})
	}
	if limit > 0 && len(out.Tools) > limit {
		out.Tools = out.Tools[:limit]
	}
	s.writeJSON(w, http.StatusOK, out)
}

// handleDescribeTool accepts a bare tool name or a full "backend:tool" ID.
func (s *Server) handleDescribeTool(w http.ResponseWriter, r *http.Request) {
	if s.opts.Catalog == nil {
		s.writeError(w, http.StatusNotFound, "tool catalog is not enabled")
		return
	}
	level, err := catalog.ParseDetail(r.URL.Query().Get("detail"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	id := chi.URLParam(r, "id")
	if !strings.Contains(id, ":") {
		id = backend.FormatToolID(s.opts.Namespace, id)
	}
	doc, err := s.opts.Catalog.Describe(r.Context(), id, level)
	if err != nil {
		s.writeError(w, http.StatusNotFound, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, doc)
}

type toolchainsResponse struct {
	Toolchains []toolchain.Descriptor `json:"toolchains"`
}

func (s *Server) handleListToolchains(w http.ResponseWriter, _ *http.Request) {
	if s.opts.Toolchains == nil {
		s.writeJSON(w, http.StatusOK, toolchainsResponse{Toolchains: []toolchain.Descriptor{}})
		return
	}
	s.writeJSON(w, http.StatusOK, toolchainsResponse{Toolchains: s.opts.Toolchains.Descriptors()})
}

func (s *Server) handleGetToolchain(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if s.opts.Toolchains == nil {
		s.writeError(w, http.StatusNotFound, "unknown toolchain: "+id)
		return
	}
	d, ok := s.opts.Toolchains.Descriptor(id)
	if !ok {
		s.writeError(w, http.StatusNotFound, "unknown toolchain: "+id)
		return
	}
	s.writeJSON(w, http.StatusOK, d)
}

func (s *Server) handleInvalidateToolchain(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if s.opts.Toolchains == nil {
		s.writeError(w, http.StatusNotFound, "unknown toolchain: "+id)
		return
	}
	if err := s.opts.Toolchains.Invalidate(id); err != nil {
		if errors.Is(err, toolchain.ErrUnknownToolchain) {
			s.writeError(w, http.StatusNotFound, err.Error())
			return
		}
		s.logError("invalidate toolchain", err)
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	d, _ := s.opts.Toolchains.Descriptor(id)
	s.writeJSON(w, http.StatusOK, d)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
