package web

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/hpungsan/prodsynth/internal/config"
	"github.com/hpungsan/prodsynth/internal/errors"
	"github.com/hpungsan/prodsynth/internal/ops"
)

// Handlers contains HTTP route handlers for the web UI.
type Handlers struct {
	db       *sql.DB
	cfg      *config.Config
	renderer *Renderer
	logger   *zap.Logger
}

// GenerateRequest is the JSON body accepted by POST /runs.
// Form posts use the same field names.
type GenerateRequest struct {
	Name  string  `json:"name,omitempty"`
	Rows  *int    `json:"rows,omitempty"`
	Users *int    `json:"users,omitempty"`
	Seed  *uint64 `json:"seed,omitempty"`
}

// HandleList handles GET /runs: list recorded runs.
func (h *Handlers) HandleList(w http.ResponseWriter, r *http.Request) {
	input := ops.ListInput{
		Limit:          parseIntParam(r, "limit", ops.DefaultListLimit),
		Offset:         parseIntParam(r, "offset", 0),
		IncludeDeleted: parseBoolParam(r, "include_deleted"),
	}

	result, err := ops.List(r.Context(), h.db, input)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, result)
		return
	}

	h.renderer.renderPage(w, "list", ListPageData{
		PageData: PageData{
			Title:   "Runs",
			Version: h.renderer.version,
			Nav:     "runs",
		},
		Items:       result.Items,
		Pagination:  result.Pagination,
		Deleted:     input.IncludeDeleted,
		DefaultRows: h.cfg.Rows,
		DefaultSeed: h.cfg.SeedValue(),
		Flash:       r.URL.Query().Get("flash"),
	})
}

// HandleDetail handles GET /runs/{id}: one run with its rendered summary.
// ?verify=true also regenerates the dataset and shows the comparison.
func (h *Handlers) HandleDetail(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	includeDeleted := parseBoolParam(r, "include_deleted")

	run, err := ops.Fetch(r.Context(), h.db, ops.FetchInput{ID: id, IncludeDeleted: includeDeleted})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	var verify *ops.VerifyOutput
	if parseBoolParam(r, "verify") {
		verify, err = ops.Verify(r.Context(), h.db, ops.VerifyInput{ID: id})
		if err != nil {
			h.renderer.renderError(w, r, err)
			return
		}
	}

	if wantsJSON(r) {
		if verify != nil {
			renderJSON(w, http.StatusOK, map[string]any{"run": run, "verify": verify})
			return
		}
		renderJSON(w, http.StatusOK, run)
		return
	}

	h.renderer.renderPage(w, "detail", DetailPageData{
		PageData: PageData{
			Title:   "Run " + shortID(run.ID),
			Version: h.renderer.version,
			Nav:     "runs",
		},
		Run:          run,
		RenderedHTML: renderMarkdown(run.Summary.Markdown()),
		Verify:       verify,
	})
}

// HandleGenerate handles POST /runs: generate a dataset into ~/.prodsynth/datasets.
// Clients name the file; they never choose its directory.
func (h *Handlers) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	req, err := parseGenerateRequest(w, r)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	name := req.Name
	if strings.TrimSpace(name) == "" {
		name = h.cfg.OutputName
	}
	path, err := ops.DatasetPathFor(name)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	result, err := ops.Generate(r.Context(), h.db, h.cfg, ops.GenerateInput{
		Path:  path,
		Rows:  req.Rows,
		Users: req.Users,
		Seed:  req.Seed,
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	h.logger.Info("dataset generated",
		zap.String("id", result.ID),
		zap.String("path", result.Path),
		zap.Int("rows", result.Rows),
		zap.Uint64("seed", result.Seed),
	)

	if wantsJSON(r) {
		renderJSON(w, http.StatusCreated, result)
		return
	}

	http.Redirect(w, r, "/runs/"+url.PathEscape(result.ID), http.StatusSeeOther)
}

// HandleDelete handles DELETE /runs/{id}: soft-delete a ledger entry.
func (h *Handlers) HandleDelete(w http.ResponseWriter, r *http.Request) {
	result, err := ops.Delete(r.Context(), h.db, ops.DeleteInput{ID: r.PathValue("id")})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, result)
		return
	}

	http.Redirect(w, r, "/runs", http.StatusSeeOther)
}

// HandlePurge handles POST /runs/purge: permanently remove soft-deleted runs.
func (h *Handlers) HandlePurge(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
		return
	}

	if r.FormValue("confirm") != "true" {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("confirm parameter must be \"true\""))
		return
	}

	input := ops.PurgeInput{}
	if days := r.FormValue("older_than_days"); days != "" {
		d, err := strconv.Atoi(days)
		if err != nil {
			h.renderer.renderError(w, r, errors.NewInvalidRequest("older_than_days must be an integer"))
			return
		}
		input.OlderThanDays = &d
	}

	result, err := ops.Purge(r.Context(), h.db, input)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, result)
		return
	}

	http.Redirect(w, r, "/runs?include_deleted=true&flash="+url.QueryEscape(result.Message), http.StatusSeeOther)
}

// parseGenerateRequest reads a JSON body or form fields. Empty form
// fields mean "use the default".
func parseGenerateRequest(w http.ResponseWriter, r *http.Request) (GenerateRequest, error) {
	var req GenerateRequest

	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			return req, errors.NewInvalidRequest("invalid JSON body: " + err.Error())
		}
		return req, nil
	}

	if err := r.ParseForm(); err != nil {
		return req, errors.NewInvalidRequest("invalid form data")
	}

	req.Name = r.FormValue("name")
	for _, f := range []struct {
		key string
		dst **int
	}{{"rows", &req.Rows}, {"users", &req.Users}} {
		s := strings.TrimSpace(r.FormValue(f.key))
		if s == "" {
			continue
		}
		v, err := strconv.Atoi(s)
		if err != nil {
			return req, errors.NewInvalidRequest(f.key + " must be an integer")
		}
		*f.dst = &v
	}
	if s := strings.TrimSpace(r.FormValue("seed")); s != "" {
		v, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return req, errors.NewInvalidRequest("seed must be a non-negative integer")
		}
		req.Seed = &v
	}

	return req, nil
}

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	s := r.URL.Query().Get(name)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}

// parseBoolParam parses a boolean query parameter.
func parseBoolParam(r *http.Request, name string) bool {
	s := r.URL.Query().Get(name)
	return s == "true" || s == "1"
}

// shortID truncates a ULID for page titles.
func shortID(id string) string {
	if len(id) > 10 {
		return id[:10] + "..."
	}
	return id
}
