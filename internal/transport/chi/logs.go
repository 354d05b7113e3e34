package chi

import (
	"net/http"

	"github.com/oapi-codegen/runtime"

	domlog "github.com/jorgekof/hostreamly-admin/internal/domain/logentry"
	"github.com/jorgekof/hostreamly-admin/internal/domain/money"
	logsuc "github.com/jorgekof/hostreamly-admin/internal/usecase/logs"
)

// ListLogsParams are the query parameters of GET /logs.
type ListLogsParams struct {
	Q        string
	Level    string
	Category string
}

func bindListLogsParams(r *http.Request) (ListLogsParams, error) {
	var params ListLogsParams
	query := r.URL.Query()
	if err := runtime.BindQueryParameter("form", true, false, "q", query, &params.Q); err != nil {
		return ListLogsParams{}, err
	}
	if err := runtime.BindQueryParameter("form", true, false, "level", query, &params.Level); err != nil {
		return ListLogsParams{}, err
	}
	if err := runtime.BindQueryParameter("form", true, false, "category", query, &params.Category); err != nil {
		return ListLogsParams{}, err
	}
	return params, nil
}

// ListLogs handles GET /logs.
func (s *Server) ListLogs(w http.ResponseWriter, r *http.Request) {
	params, err := bindListLogsParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, "Invalid query: "+err.Error())
		return
	}
	f, err := domlog.NewFilter(params.Q, params.Level, params.Category)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	res, err := s.logs.Filter(r.Context(), f)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	items := make([]LogEntryResponse, 0, len(res.Entries))
	for _, e := range res.Entries {
		items = append(items, logEntryToResponse(e))
	}
	writeJSON(w, http.StatusOK, LogListResponse{
		Items: items,
		Count: len(items),
		Summary: LogSummaryResponse{
			Total:   res.Summary.Total,
			Error:   res.Summary.Error,
			Warning: res.Summary.Warning,
			Info:    res.Summary.Info,
			Success: res.Summary.Success,
		},
	})
}

// AppendLog handles POST /logs.
func (s *Server) AppendLog(w http.ResponseWriter, r *http.Request) {
	var req LogEntryRequest
	if !s.decode(w, r, &req) {
		return
	}
	level, err := domlog.ParseLevel(req.Level)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	category, err := domlog.ParseCategory(req.Category)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	in := logsuc.NewEntry{
		ID:       req.ID,
		Level:    level,
		Category: category,
		Message:  req.Message,
		Optional: domlog.Optional{
			Details: req.Details,
			UserID:  req.UserID,
			Email:   req.Email,
			IP:      req.IP,
		},
	}
	if req.Timestamp != nil {
		in.Timestamp = req.Timestamp.UTC()
	}

	e, err := s.logs.Append(r.Context(), in)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, logEntryToResponse(e))
}

func logEntryToResponse(e domlog.Entry) LogEntryResponse {
	return LogEntryResponse{
		ID:               e.ID(),
		Timestamp:        e.Timestamp(),
		TimestampDisplay: money.FormatTime(e.Timestamp()),
		Level:            string(e.Level()),
		Category:         string(e.Category()),
		Message:          e.Message(),
		Details:          e.Details(),
		UserID:           e.UserID(),
		Email:            e.Email(),
		IP:               e.IP(),
	}
}
