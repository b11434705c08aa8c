package net

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	tomb "gopkg.in/tomb.v2"

	"nyx/internal/engine"
	"nyx/internal/utils"
)

const (
	MAX_RECV_SIZE      = 4 * 1024
	defaultNWorkers    = 10
	defaultConnTimeout = time.Minute
)

var (
	ErrImproperConversion = errors.New("improper type conversion")
	ErrClientDoesNotExist = errors.New("client does not exist")
)

// ClientSession contains relevant information pertaining to an
// individual connected TCP session.
type ClientSession struct {
	conn net.Conn
}

// ClientMessage links a message to the client sending it.
type ClientMessage struct {
	clientAddress string
	message       Message
}

// Server accepts order entry sessions over TCP. Workers read and parse
// raw messages; the session handler is the single goroutine driving the
// matching engine, which keeps the book free of concurrent mutation.
type Server struct {
	address            string
	port               int
	engine             *engine.MatchingEngine
	pool               utils.WorkerPool
	cancel             context.CancelFunc
	clientSessions     map[string]ClientSession
	clientSessionsLock sync.Mutex
	clientMessages     chan ClientMessage
}

func New(address string, port int, workers uint, eng *engine.MatchingEngine) *Server {
	if workers == 0 {
		workers = defaultNWorkers
	}
	return &Server{
		address:        address,
		port:           port,
		engine:         eng,
		pool:           utils.NewWorkerPool(workers),
		clientSessions: make(map[string]ClientSession),
		clientMessages: make(chan ClientMessage, 1),
	}
}

func (s *Server) Shutdown() {
	log.Info().Msg("server shutting down")
	s.cancel()
}

func (s *Server) Run(ctx context.Context) {
	defer s.Shutdown()

	// Setup a cancel on the context for future shutdown.
	ctx, s.cancel = context.WithCancel(ctx)
	t, ctx := tomb.WithContext(ctx)

	// Start a tcp listener.
	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", fmt.Sprintf("%s:%d", s.address, s.port))
	if err != nil {
		log.Error().Err(err).Msg("unable to start listener")
		return
	}

	// Unblock Accept when the context is torn down.
	t.Go(func() error {
		<-ctx.Done()
		return listener.Close()
	})

	// Start the worker pool.
	s.pool.Setup(t, s.handleConnection)

	// Start the session handler.
	t.Go(func() error {
		return s.sessionHandler(t)
	})

	log.Info().Str("address", s.address).Int("port", s.port).Msg("server running")

	// Accept connections until the listener is closed underneath us.
	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Error().Err(err).Msg("error accepting client")
			continue
		}

		log.Info().
			Str("address", conn.RemoteAddr().String()).
			Msg("new client added")
		// Add the client to client sessions we are tracking. We expect
		// to potentially maintain a long TCP session.
		s.addClientSession(conn)

		// Pass over the connection to be read from.
		s.pool.AddTask(conn)
	}
}

// Report writes the events resulting from a client's request back to
// that client's session as newline-delimited JSON envelopes.
func (s *Server) Report(clientAddress string, events ...engine.Event) error {
	s.clientSessionsLock.Lock()
	defer s.clientSessionsLock.Unlock()

	client, ok := s.clientSessions[clientAddress]
	if !ok {
		return ErrClientDoesNotExist
	}

	for _, event := range events {
		payload, err := engine.MarshalEvent(event)
		if err != nil {
			return fmt.Errorf("unable to encode report: %w", err)
		}
		if _, err := client.conn.Write(append(payload, '\n')); err != nil {
			delete(s.clientSessions, clientAddress)
			return fmt.Errorf("unable to send report: %w", err)
		}
	}
	return nil
}

// sessionHandler drains incoming messages and runs them through the
// engine one at a time. This is the only goroutine touching the book.
func (s *Server) sessionHandler(t *tomb.Tomb) error {
	for {
		select {
		case <-t.Dying():
			return nil
		case message := <-s.clientMessages:
			s.handleMessage(message)
		}
	}
}

func (s *Server) handleMessage(clientMessage ClientMessage) {
	var events []engine.Event
	switch m := clientMessage.message.(type) {
	case *NewOrderMessage:
		order, err := m.Order()
		if err != nil {
			log.Warn().
				Err(err).
				Str("address", clientMessage.clientAddress).
				Msg("rejecting malformed order")
			events = []engine.Event{engine.OrderRejected{
				Reason:    err.Error(),
				Timestamp: time.Now().UTC(),
			}}
			break
		}
		events = s.engine.SubmitOrder(order)
	case *CancelOrderMessage:
		events = s.engine.CancelOrder(m.OrderUUID, "user_request")
	default:
		// Heartbeats keep the session warm; nothing to do.
		return
	}

	if err := s.Report(clientMessage.clientAddress, events...); err != nil {
		log.Error().
			Err(err).
			Str("address", clientMessage.clientAddress).
			Msg("unable to report events")
	}
}

// handleConnection is a short-lived worker method which reads the next
// message off the connection, parses and passes it forward to
// sessionHandler. If the connection dies, the client session is cleaned
// up. Note, any error returned from here is fatal to the pool.
func (s *Server) handleConnection(t *tomb.Tomb, task any) error {
	conn, ok := task.(net.Conn)
	if !ok {
		return ErrImproperConversion
	}

	// Set max read timeout so a dead client cannot pin a worker.
	if err := conn.SetReadDeadline(time.Now().Add(defaultConnTimeout)); err != nil {
		log.Error().
			Str("address", conn.RemoteAddr().String()).
			Err(err).
			Msg("failed setting deadline for connection")
		s.dropClientSession(conn)
		return nil
	}

	buffer := make([]byte, MAX_RECV_SIZE)
	n, err := conn.Read(buffer)
	if err != nil {
		if !errors.Is(err, io.EOF) {
			log.Error().
				Err(err).
				Str("address", conn.RemoteAddr().String()).
				Msg("error reading from connection")
		}
		// The client has likely exited. Clean up the session.
		s.dropClientSession(conn)
		return nil
	}

	message, err := parseMessage(buffer[:n])
	if err != nil {
		log.Error().
			Err(err).
			Str("address", conn.RemoteAddr().String()).
			Msg("error parsing message")
		s.dropClientSession(conn)
		return nil
	}

	select {
	case <-t.Dying():
		return nil
	case s.clientMessages <- ClientMessage{
		message:       message,
		clientAddress: conn.RemoteAddr().String(),
	}:
	}

	// Push the client connection back to handle the next message.
	s.pool.AddTask(conn)
	return nil
}

// addClientSession is an atomic map add
func (s *Server) addClientSession(conn net.Conn) {
	s.clientSessionsLock.Lock()
	defer s.clientSessionsLock.Unlock()

	s.clientSessions[conn.RemoteAddr().String()] = ClientSession{
		conn: conn,
	}
}

// dropClientSession removes the session and closes its connection.
func (s *Server) dropClientSession(conn net.Conn) {
	s.clientSessionsLock.Lock()
	defer s.clientSessionsLock.Unlock()

	delete(s.clientSessions, conn.RemoteAddr().String())
	if err := conn.Close(); err != nil {
		log.Error().Str("address", conn.RemoteAddr().String()).Err(err).Msg("unable to close connection")
	}
}
