package main

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type countingStopper struct {
	stops int
}

func (s *countingStopper) Stop() { s.stops++ }

func TestShutdownStopsEngineOnce(t *testing.T) {
	engine := &countingStopper{}
	srv := &http.Server{Addr: "127.0.0.1:0"}

	assert.NoError(t, shutdown(srv, engine, time.Second))
	assert.Equal(t, 1, engine.stops)
}
