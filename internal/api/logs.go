package api

import (
	"net/http"
	"strconv"
	"time"

	"verseline/internal/logging"
	"verseline/internal/logs"
)

// Follow requests cap their wait so a hung client cannot pin a handler past
// the server's write timeout.
const maxLogWait = 25 * time.Second

// LogTailResponse carries log lines plus the offset for the next request.
type LogTailResponse struct {
	Lines  []string `json:"lines"`
	Offset int64    `json:"offset"`
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	opts := logs.Options{Offset: -1, Limit: 200}
	query := r.URL.Query()
	if raw := query.Get("offset"); raw != "" {
		offset, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid offset")
			return
		}
		opts.Offset = offset
	}
	if raw := query.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			s.writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		opts.Limit = limit
	}
	if query.Get("follow") == "1" {
		opts.Follow = true
		opts.Wait = 5 * time.Second
		if raw := query.Get("wait_ms"); raw != "" {
			millis, err := strconv.Atoi(raw)
			if err != nil || millis < 0 {
				s.writeError(w, http.StatusBadRequest, "invalid wait_ms")
				return
			}
			opts.Wait = time.Duration(millis) * time.Millisecond
		}
		if opts.Wait > maxLogWait {
			opts.Wait = maxLogWait
		}
	}

	path := logging.FilePath(s.cfg.Paths.LogDir)
	if path == "" {
		s.writeError(w, http.StatusNotFound, "file logging disabled")
		return
	}

	result, err := logs.Tail(r.Context(), path, opts)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if result.Lines == nil {
		result.Lines = []string{}
	}
	s.writeJSON(w, http.StatusOK, LogTailResponse{Lines: result.Lines, Offset: result.Offset})
}
