package server

import (
	"net/http"
	"testing"
	"time"
)

func TestNew_Defaults(t *testing.T) {
	s := New(":0", http.NotFoundHandler(), Timeouts{Write: time.Minute})
	if s.ReadTimeout != 10*time.Second || s.ReadHeaderTimeout != 10*time.Second {
		t.Errorf("read = %v/%v", s.ReadTimeout, s.ReadHeaderTimeout)
	}
	if s.WriteTimeout != time.Minute {
		t.Errorf("write = %v", s.WriteTimeout)
	}
	if s.IdleTimeout != 60*time.Second {
		t.Errorf("idle = %v", s.IdleTimeout)
	}
}
