// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Monitor serves the pipeline status dashboard over a data directory:
// per-city layer counts as JSON and Prometheus gauges. It reads the
// layer tree only; the badger state store is single-process and stays
// with the CLI.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	"github.com/patrickmn/go-cache"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/poiesic/poirit/pipeline"
	"github.com/poiesic/poirit/storage"
	"github.com/poiesic/poirit/storage/layerfs"
)

// statusTTL bounds how often a dashboard poll rescans the layer tree.
const statusTTL = 30 * time.Second

const statusCacheKey = "statuses"

var (
	dataDir = flag.String("data-dir", "./data", "root of the bronze/silver/gold data tree")
	addr    = flag.String("addr", ":8080", "listen address")
)

func init() {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
	flag.Parse()
}

type server struct {
	store  storage.LayerStore
	cache  *cache.Cache
	logger *slog.Logger

	bronzeTiles    *prometheus.GaugeVec
	bronzeElements *prometheus.GaugeVec
	silverPOIs     *prometheus.GaugeVec
	goldEnriched   *prometheus.GaugeVec
	goldDest       *prometheus.GaugeVec
}

func newServer(store storage.LayerStore, logger *slog.Logger) *server {
	s := &server{
		store:  store,
		cache:  cache.New(statusTTL, 2*statusTTL),
		logger: logger.With("component", "monitor"),
	}

	cityGauge := func(name, help string) *prometheus.GaugeVec {
		return prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: name,
			Help: help,
		}, []string{"city"})
	}
	s.bronzeTiles = cityGauge("poirit_bronze_tiles", "Bronze tile files on disk.")
	s.bronzeElements = cityGauge("poirit_bronze_elements", "Raw OSM elements across bronze tiles.")
	s.silverPOIs = cityGauge("poirit_silver_pois", "Normalized POIs in the silver layer.")
	s.goldEnriched = cityGauge("poirit_gold_enriched", "Enriched POIs in the gold layer.")
	s.goldDest = cityGauge("poirit_gold_destination", "Whether the gold destination record exists.")
	prometheus.MustRegister(s.bronzeTiles, s.bronzeElements, s.silverPOIs, s.goldEnriched, s.goldDest)

	return s
}

// statuses returns the per-city layer report, rescanning the tree at
// most once per statusTTL.
func (s *server) statuses(ctx context.Context) ([]pipeline.CityStatus, error) {
	if cached, ok := s.cache.Get(statusCacheKey); ok {
		return cached.([]pipeline.CityStatus), nil
	}

	statuses, err := pipeline.CollectAll(ctx, s.store, nil)
	if err != nil {
		return nil, err
	}
	s.cache.Set(statusCacheKey, statuses, cache.DefaultExpiration)
	return statuses, nil
}

func (s *server) handleStatus(w http.ResponseWriter, r *http.Request) {
	statuses, err := s.statuses(r.Context())
	if err != nil {
		s.logger.Error("status scan failed", "error", err)
		http.Error(w, "status scan failed", http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, statuses)
}

func (s *server) handleCities(w http.ResponseWriter, _ *http.Request) {
	cities, err := s.store.Cities()
	if err != nil {
		s.logger.Error("city listing failed", "error", err)
		http.Error(w, "city listing failed", http.StatusInternalServerError)
		return
	}
	if cities == nil {
		cities = []string{}
	}
	s.writeJSON(w, cities)
}

func (s *server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, map[string]string{"status": "ok"})
}

// refreshMetrics updates the layer gauges from the cached status report
// before handing the scrape to the Prometheus handler.
func (s *server) refreshMetrics(next http.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		statuses, err := s.statuses(r.Context())
		if err != nil {
			s.logger.Error("metrics scan failed", "error", err)
			http.Error(w, "metrics scan failed", http.StatusInternalServerError)
			return
		}

		s.bronzeTiles.Reset()
		s.bronzeElements.Reset()
		s.silverPOIs.Reset()
		s.goldEnriched.Reset()
		s.goldDest.Reset()
		for _, st := range statuses {
			s.bronzeTiles.WithLabelValues(st.City).Set(float64(st.BronzeTiles))
			s.bronzeElements.WithLabelValues(st.City).Set(float64(st.BronzeElements))
			s.silverPOIs.WithLabelValues(st.City).Set(float64(st.SilverPOIs))
			s.goldEnriched.WithLabelValues(st.City).Set(float64(st.GoldEnriched))
			dest := 0.0
			if st.HasDestination {
				dest = 1.0
			}
			s.goldDest.WithLabelValues(st.City).Set(dest)
		}

		next.ServeHTTP(w, r)
	}
}

func (s *server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encoding failed", "error", err)
	}
}

func main() {
	store, err := layerfs.Open(*dataDir)
	if err != nil {
		log.Fatal(err)
	}

	srv := newServer(store, slog.Default())

	r := mux.NewRouter()
	r.HandleFunc("/api/status", srv.handleStatus).Methods("GET")
	r.HandleFunc("/api/cities", srv.handleCities).Methods("GET")
	r.HandleFunc("/healthz", srv.handleHealthz).Methods("GET")
	r.Handle("/metrics", srv.refreshMetrics(promhttp.Handler())).Methods("GET")

	slog.Info("monitor listening", "addr", *addr, "data_dir", *dataDir)
	log.Fatal(http.ListenAndServe(*addr, r))
}
