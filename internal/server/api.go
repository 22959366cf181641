package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"sessiondeck/internal/adoption"
	"sessiondeck/internal/headless"
	"sessiondeck/internal/presets"
	"sessiondeck/internal/registry"
	"sessiondeck/internal/system"
)

var errUnavailable = errors.New("service not configured")

func (s *Server) listProcesses(c *gin.Context) {
	if s.Registry == nil {
		writeJSON(c.Writer, http.StatusServiceUnavailable, errUnavailable)
		return
	}
	if err := s.Registry.Reload(); err != nil {
		system.Logger.Debug("registry reload failed", "err", err)
	}
	writeJSON(c.Writer, http.StatusOK, registry.File{Processes: nonNil(s.Registry.All())})
}

func (s *Server) cleanupProcesses(c *gin.Context) {
	if s.Registry == nil {
		writeJSON(c.Writer, http.StatusServiceUnavailable, errUnavailable)
		return
	}
	removed, err := s.Registry.CleanupDead()
	if err != nil {
		writeJSON(c.Writer, http.StatusInternalServerError, errJSON(err))
		return
	}
	writeJSON(c.Writer, http.StatusOK, map[string]any{"removed": nonNil(removed)})
}

func (s *Server) killProcess(c *gin.Context) {
	if s.Registry == nil {
		writeJSON(c.Writer, http.StatusServiceUnavailable, errUnavailable)
		return
	}
	pid, err := strconv.Atoi(c.Param("pid"))
	if err != nil || pid <= 0 {
		writeJSON(c.Writer, http.StatusBadRequest, errJSON(errors.New("invalid pid")))
		return
	}
	if err := s.Registry.Reload(); err != nil {
		system.Logger.Debug("registry reload failed", "err", err)
	}
	dead, err := headless.Kill(s.Registry, pid)
	switch {
	case errors.Is(err, headless.ErrNotManaged):
		writeJSON(c.Writer, http.StatusNotFound, errJSON(err))
	case err != nil:
		writeJSON(c.Writer, http.StatusInternalServerError, errJSON(err))
	default:
		writeJSON(c.Writer, http.StatusOK, map[string]any{"pid": pid, "already_dead": dead})
	}
}

func (s *Server) listOrphans(c *gin.Context) {
	if s.Scanner == nil {
		writeJSON(c.Writer, http.StatusServiceUnavailable, errUnavailable)
		return
	}
	var registered map[int]struct{}
	if s.Registry != nil {
		if err := s.Registry.Reload(); err != nil {
			system.Logger.Debug("registry reload failed", "err", err)
		}
		registered = s.Registry.PIDs()
	}
	orphans, err := s.Scanner.Discover(registered)
	if err != nil {
		writeJSON(c.Writer, http.StatusInternalServerError, errJSON(err))
		return
	}
	if orphans == nil {
		orphans = []adoption.OrphanSession{}
	}
	writeJSON(c.Writer, http.StatusOK, map[string]any{"orphans": orphans})
}

func (s *Server) listPresets(c *gin.Context) {
	if s.Presets == nil {
		writeJSON(c.Writer, http.StatusServiceUnavailable, errUnavailable)
		return
	}
	if err := s.Presets.Reload(); err != nil {
		system.Logger.Warn("presets reload failed; serving previous set", "path", s.Presets.Path(), "err", err)
	}
	list := s.Presets.All()
	if list == nil {
		list = []presets.Preset{}
	}
	writeJSON(c.Writer, http.StatusOK, map[string]any{"presets": list})
}

type instanceJSON struct {
	PID        int      `json:"pid"`
	SessionID  string   `json:"session_id"`
	PresetName string   `json:"preset_name"`
	Index      int      `json:"instance_index"`
	Cwd        string   `json:"cwd"`
	AddDirs    []string `json:"add_dirs"`
}

func (s *Server) launchPreset(c *gin.Context) {
	if s.Presets == nil || s.Launcher == nil {
		writeJSON(c.Writer, http.StatusServiceUnavailable, errUnavailable)
		return
	}
	p, ok := s.Presets.Lookup(c.Param("name"))
	if !ok {
		writeJSON(c.Writer, http.StatusNotFound, errJSON(errors.New("no such preset: "+c.Param("name"))))
		return
	}
	insts, err := s.Launcher.LaunchPreset(p)
	out := make([]instanceJSON, 0, len(insts))
	for _, in := range insts {
		out = append(out, instanceJSON{
			PID: in.PID, SessionID: in.SessionID, PresetName: in.PresetName,
			Index: in.Index, Cwd: in.Cwd, AddDirs: in.AddDirs,
		})
	}
	body := map[string]any{"instances": out}
	code := http.StatusOK
	if err != nil {
		body["error"] = err.Error()
		code = http.StatusInternalServerError
		if errors.Is(err, presets.ErrInvalidPreset) {
			code = http.StatusBadRequest
		}
	}
	writeJSON(c.Writer, code, body)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("content-type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if v == nil {
		return
	}
	if err, ok := v.(error); ok {
		_ = json.NewEncoder(w).Encode(map[string]any{"error": err.Error()})
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

func errJSON(err error) map[string]string { return map[string]string{"error": err.Error()} }

func nonNil(p []registry.ManagedProcess) []registry.ManagedProcess {
	if p == nil {
		return []registry.ManagedProcess{}
	}
	return p
}
