package testing

import (
	"context"
	"testing"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// StartEmbeddedNATS starts an embedded NATS server with JetStream enabled for testing.
//
// The server listens on a random local port and stores JetStream data in a
// temporary directory. Server and connection are shut down via t.Cleanup.
//
// Parameters:
//   - t: Testing context for logging and cleanup
//
// Returns:
//   - *server.Server: The embedded NATS server instance
//   - *nats.Conn: Connected NATS client (closed automatically on test completion)
//
// Example:
//
//	func TestMyComponent(t *testing.T) {
//	    _, nc := keysubtest.StartEmbeddedNATS(t)
//	    sess, err := natsession.New(nc, natsession.Config{})
//	}
func StartEmbeddedNATS(t testing.TB) (*server.Server, *nats.Conn) {
	t.Helper()

	opts := &server.Options{
		Host:      "127.0.0.1",
		Port:      -1,          // random available port
		JetStream: true,        // reliable subscribers use JetStream
		StoreDir:  t.TempDir(), // auto-cleanup
		NoLog:     true,
	}

	ns, err := server.NewServer(opts)
	if err != nil {
		t.Fatalf("Failed to create embedded NATS server: %v", err)
	}

	go ns.Start()

	if !ns.ReadyForConnections(5 * time.Second) {
		ns.Shutdown()
		t.Fatal("Embedded NATS server not ready within timeout")
	}

	nc, err := nats.Connect(ns.ClientURL(),
		nats.Timeout(2*time.Second),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(3),
	)
	if err != nil {
		ns.Shutdown()
		t.Fatalf("Failed to connect to embedded NATS server: %v", err)
	}

	// Executed in reverse registration order relative to other cleanups
	t.Cleanup(func() {
		nc.Close()
		ns.Shutdown()
		ns.WaitForShutdown()
	})

	return ns, nc
}

// CreateStream creates an in-memory JetStream stream capturing "<subjectPrefix>.>".
//
// Parameters:
//   - t: Testing context for failure reporting
//   - nc: NATS connection
//   - name: Stream name
//   - subjectPrefix: Subject prefix used by the natsession under test
//
// Returns:
//   - jetstream.Stream: The created stream
func CreateStream(t testing.TB, nc *nats.Conn, name, subjectPrefix string) jetstream.Stream {
	t.Helper()

	js, err := jetstream.New(nc)
	if err != nil {
		t.Fatalf("Failed to create JetStream context: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	stream, err := js.CreateStream(ctx, jetstream.StreamConfig{
		Name:     name,
		Subjects: []string{subjectPrefix + ".>"},
		Storage:  jetstream.MemoryStorage,
	})
	if err != nil {
		t.Fatalf("Failed to create stream %s: %v", name, err)
	}

	return stream
}
