package server

import (
	"context"
	"errors"
	"io"
	"sync"

	log "github.com/sirupsen/logrus"
)

var ErrServerClosed = errors.New("server: closed")

type LineReader interface {
	ReadLine() (string, error)
}

// Client is one console session: lines are read from LineReader and output is written to
// Writer.
type Client struct {
	LineReader LineReader
	Writer     io.Writer
	User       string
	Type       string
	Addr       string
}

type Handler func(c *Client)

type listener interface {
	Close() error
	Shutdown(ctx context.Context) error
}

type Server struct {
	Handler Handler

	mutex     sync.Mutex
	listeners []listener
}

func (svr *Server) addListener(l listener) {
	svr.mutex.Lock()
	defer svr.mutex.Unlock()

	svr.listeners = append(svr.listeners, l)
}

func (svr *Server) handle(c *Client) {
	entry := log.WithFields(log.Fields{
		"user": c.User,
		"type": c.Type,
		"addr": c.Addr,
	})
	entry.Info("session started")
	svr.Handler(c)
	entry.Info("session done")
}

// Close immediately closes every listener and every active connection.
func (svr *Server) Close() error {
	svr.mutex.Lock()
	defer svr.mutex.Unlock()

	var err error
	for _, l := range svr.listeners {
		lerr := l.Close()
		if err == nil {
			err = lerr
		}
	}
	return err
}

// Shutdown closes every listener and then waits for the active connections to finish.
func (svr *Server) Shutdown(ctx context.Context) error {
	svr.mutex.Lock()
	listeners := append([]listener(nil), svr.listeners...)
	svr.mutex.Unlock()

	var err error
	for _, l := range listeners {
		lerr := l.Shutdown(ctx)
		if err == nil {
			err = lerr
		}
	}
	return err
}
