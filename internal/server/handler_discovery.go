package server

import "net/http"

type endpointInfo struct {
	Path        string   `json:"path"`
	Methods     []string `json:"methods"`
	Description string   `json:"description"`
}

type discoveryResponse struct {
	Name        string         `json:"name"`
	Version     string         `json:"version"`
	Description string         `json:"description"`
	Endpoints   []endpointInfo `json:"endpoints"`
}

func (s *Server) handleDiscovery(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	endpoints := []endpointInfo{
		{"/api/v1/health", []string{"GET"}, "Server health and simulation state"},
		{"/api/v1/snapshot", []string{"GET"}, "Latest snapshot of the running simulation"},
		{"/api/v1/runs", []string{"GET"}, "Archived run reports, newest first. Accepts ?state, ?limit, ?offset"},
		{"/api/v1/runs/{id}", []string{"GET", "DELETE"}, "Single archived run with its rejection ledger"},
	}
	if s.metrics != nil {
		endpoints = append(endpoints, endpointInfo{"/metrics", []string{"GET"}, "Prometheus metrics"})
	}
	respondOK(w, reqID, discoveryResponse{
		Name:        "schedsim API",
		Version:     "v1",
		Description: "Priority-preemptive multi-processor scheduling simulator",
		Endpoints:   endpoints,
	})
}
