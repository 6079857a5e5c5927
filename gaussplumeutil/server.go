/*
Copyright © 2024 the GaussPlume authors.
This file is part of GaussPlume.

GaussPlume is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

GaussPlume is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with GaussPlume.  If not, see <http://www.gnu.org/licenses/>.
*/

package gaussplumeutil

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/golang/groupcache/lru"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/gaussplume"
	"github.com/spatialmodel/gaussplume/internal/hash"
)

// Server serves concentration calculations over HTTP.
type Server struct {
	// Usage counters, accessed atomically.
	evaluations, fields, cacheHits, failures uint64

	Log logrus.FieldLogger

	mux *http.ServeMux

	cacheMu sync.Mutex
	cache   *lru.Cache // nil when caching is disabled

	start time.Time
}

// MaxRequestBytes is the largest request body the server accepts.
const MaxRequestBytes = 1 << 20

// NewServer creates a new server that caches up to cacheSize rendered
// field images. A cacheSize of zero or less disables caching.
func NewServer(cacheSize int) *Server {
	s := &Server{
		Log:   logrus.StandardLogger(),
		mux:   http.NewServeMux(),
		start: time.Now(),
	}
	if cacheSize > 0 {
		s.cache = lru.New(cacheSize)
	}
	s.mux.HandleFunc("/", s.rootHandler)
	s.mux.HandleFunc("/evaluate", s.evaluateHandler)
	s.mux.HandleFunc("/field", s.fieldHandler)
	s.mux.HandleFunc("/stats", s.statsHandler)
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Log.WithFields(logrus.Fields{
		"url":  r.URL.String(),
		"addr": r.RemoteAddr,
	}).Info("gaussplume request")
	s.mux.ServeHTTP(w, r)
}

func (s *Server) rootHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	fmt.Fprintf(w, "GaussPlume v%s is running.\n", gaussplume.Version)
}

// EvaluateRequest is a request for the concentration at a receptor.
type EvaluateRequest struct {
	Scenario gaussplume.Scenario
	Receptor gaussplume.Receptor
}

// EvaluateResponse is the response to an EvaluateRequest.
// Concentration is nil when the concentration is undefined
// because of a zero denominator.
type EvaluateResponse struct {
	Concentration *float64
	Degenerate    bool
	Trace         gaussplume.Trace
}

// FieldRequest is a request for a concentration field image. A zero
// Field uses the default receptor grid.
type FieldRequest struct {
	Scenario gaussplume.Scenario
	Field    gaussplume.FieldConfig
	Receptor gaussplume.Receptor
}

var errMethod = errors.New("gaussplume: POST required")

func (s *Server) fail(w http.ResponseWriter, err error, code int) {
	atomic.AddUint64(&s.failures, 1)
	s.Log.WithError(err).Warn("gaussplume request failed")
	http.Error(w, err.Error(), code)
}

func decode(w http.ResponseWriter, r *http.Request, v interface{}) error {
	if r.Method != http.MethodPost {
		return errMethod
	}
	body := http.MaxBytesReader(w, r.Body, MaxRequestBytes)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		return fmt.Errorf("gaussplume: decoding request: %v", err)
	}
	return nil
}

func (s *Server) evaluateHandler(w http.ResponseWriter, r *http.Request) {
	var req EvaluateRequest
	if err := decode(w, r, &req); err != nil {
		s.fail(w, err, http.StatusBadRequest)
		return
	}
	res, err := req.Scenario.Evaluate(req.Receptor)
	if err != nil {
		s.fail(w, err, http.StatusBadRequest)
		return
	}
	atomic.AddUint64(&s.evaluations, 1)
	resp := EvaluateResponse{Degenerate: res.Degenerate, Trace: res.Trace()}
	if !res.Degenerate {
		resp.Concentration = &res.Concentration
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.fail(w, err, http.StatusInternalServerError)
	}
}

func (s *Server) fieldHandler(w http.ResponseWriter, r *http.Request) {
	var req FieldRequest
	if err := decode(w, r, &req); err != nil {
		s.fail(w, err, http.StatusBadRequest)
		return
	}
	if req.Field == (gaussplume.FieldConfig{}) {
		req.Field = gaussplume.DefaultFieldConfig()
		req.Field.Height = req.Receptor.Z
	}
	key := hash.Key(req)
	img, ok := s.cached(key)

	if ok {
		atomic.AddUint64(&s.cacheHits, 1)
	} else {
		f, err := req.Scenario.Field(req.Field)
		if err != nil {
			s.fail(w, err, http.StatusBadRequest)
			return
		}
		atomic.AddUint64(&s.fields, 1)
		b := new(bytes.Buffer)
		if err := WritePNG(b, f, req.Receptor); err != nil {
			s.fail(w, err, http.StatusInternalServerError)
			return
		}
		img = b.Bytes()
		s.store(key, b.Bytes())
	}
	w.Header().Set("Content-Type", "image/png")
	if _, err := w.Write(img.([]byte)); err != nil {
		s.Log.WithError(err).Warn("gaussplume: writing image")
	}
}

func (s *Server) cached(key string) (interface{}, bool) {
	if s.cache == nil {
		return nil, false
	}
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	return s.cache.Get(key)
}

func (s *Server) store(key string, img []byte) {
	if s.cache == nil {
		return
	}
	s.cacheMu.Lock()
	s.cache.Add(key, img)
	s.cacheMu.Unlock()
}

// Stats holds server usage statistics.
type Stats struct {
	Version     string
	Uptime      string
	Evaluations uint64
	Fields      uint64
	CacheHits   uint64
	Errors      uint64
}

// Stats returns the server's usage statistics.
func (s *Server) Stats() Stats {
	return Stats{
		Version:     gaussplume.Version,
		Uptime:      time.Since(s.start).Round(time.Second).String(),
		Evaluations: atomic.LoadUint64(&s.evaluations),
		Fields:      atomic.LoadUint64(&s.fields),
		CacheHits:   atomic.LoadUint64(&s.cacheHits),
		Errors:      atomic.LoadUint64(&s.failures),
	}
}

func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.Stats()); err != nil {
		s.fail(w, err, http.StatusInternalServerError)
	}
}
