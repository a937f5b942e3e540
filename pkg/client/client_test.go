package client

import "testing"

func TestGracefulShutdown_WithoutConnections(t *testing.T) {
	// Shutdown may run before SetMongo when startup fails early.
	c := NewClient()
	c.GracefulShutdown()

	if c.Mongo != nil {
		t.Error("expected no Mongo client before SetMongo")
	}
}
