package server

import (
	"context"
	"fmt"
	"io"
	"net"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/terminal"

	"github.com/leftmike/sqlcoerce/sql"
)

type SSHConfig struct {
	Address         string
	Prompt          string
	HostKeysBytes   [][]byte
	AuthorizedBytes []byte
	CheckPassword   func(user, password string) error
}

// SSHListener accepts ssh connections. Each session channel runs the server's handler, either
// on a terminal for a shell or on the lines of the command for an exec.
type SSHListener struct {
	svr      *Server
	cfg      *ssh.ServerConfig
	prompt   string
	listener net.Listener

	mutex    sync.Mutex
	conns    map[*ssh.ServerConn]struct{}
	active   sync.WaitGroup
	shutdown bool
}

func connFields(md ssh.ConnMetadata) log.Fields {
	return log.Fields{
		"user": md.User(),
		"addr": md.RemoteAddr().String(),
	}
}

func parseAuthorizedKeys(b []byte) (map[string]struct{}, error) {
	keys := map[string]struct{}{}
	for len(b) > 0 {
		key, _, _, rest, err := ssh.ParseAuthorizedKey(b)
		if err != nil {
			return nil, fmt.Errorf("server: authorized keys: %s", err)
		}
		keys[string(key.Marshal())] = struct{}{}
		b = rest
	}
	return keys, nil
}

func newSSHConfig(sshCfg SSHConfig) (*ssh.ServerConfig, error) {
	if len(sshCfg.HostKeysBytes) == 0 {
		return nil, fmt.Errorf("server: ssh needs at least one host key")
	}

	cfg := &ssh.ServerConfig{
		AuthLogCallback: func(md ssh.ConnMetadata, method string, err error) {
			if method == "none" {
				return
			}
			entry := log.WithFields(connFields(md)).WithField("method", method)
			if err != nil {
				entry.WithField("error", err.Error()).Error("authentication failed")
			} else {
				entry.Info("authentication succeeded")
			}
		},
		BannerCallback: func(md ssh.ConnMetadata) string {
			return fmt.Sprintf("sqlcoerce %d.%d\n", sql.MajorVersion, sql.MinorVersion)
		},
	}

	for _, b := range sshCfg.HostKeysBytes {
		key, err := ssh.ParsePrivateKey(b)
		if err != nil {
			return nil, fmt.Errorf("server: host key: %s", err)
		}
		cfg.AddHostKey(key)
	}

	authorized, err := parseAuthorizedKeys(sshCfg.AuthorizedBytes)
	if err != nil {
		return nil, err
	}

	if check := sshCfg.CheckPassword; check != nil {
		cfg.PasswordCallback = func(md ssh.ConnMetadata, pass []byte) (*ssh.Permissions, error) {
			return nil, check(md.User(), string(pass))
		}
		log.Info("ssh client auth: password")
	}
	if len(authorized) > 0 {
		cfg.PublicKeyCallback =
			func(md ssh.ConnMetadata, key ssh.PublicKey) (*ssh.Permissions, error) {
				log.WithFields(connFields(md)).WithField("fingerprint",
					ssh.FingerprintSHA256(key)).Debug("ssh public key")
				if _, ok := authorized[string(key.Marshal())]; !ok {
					return nil, fmt.Errorf("server: unknown public key for %s", md.User())
				}
				return nil, nil
			}
		log.Info("ssh client auth: public key")
	}
	if cfg.PasswordCallback == nil && cfg.PublicKeyCallback == nil {
		cfg.NoClientAuth = true
		log.Warn("ssh client auth: NONE")
	}

	return cfg, nil
}

// ListenSSH starts listening for ssh connections; call Serve on the returned listener to
// accept them.
func (svr *Server) ListenSSH(sshCfg SSHConfig) (*SSHListener, error) {
	cfg, err := newSSHConfig(sshCfg)
	if err != nil {
		return nil, err
	}

	l, err := net.Listen("tcp", sshCfg.Address)
	if err != nil {
		return nil, err
	}

	sl := &SSHListener{
		svr:      svr,
		cfg:      cfg,
		prompt:   sshCfg.Prompt,
		listener: l,
		conns:    map[*ssh.ServerConn]struct{}{},
	}
	svr.addListener(sl)
	log.WithField("address", l.Addr().String()).Info("ssh listening")
	return sl, nil
}

func (svr *Server) ListenAndServeSSH(sshCfg SSHConfig) error {
	sl, err := svr.ListenSSH(sshCfg)
	if err != nil {
		return err
	}
	return sl.Serve()
}

func (sl *SSHListener) Addr() net.Addr {
	return sl.listener.Addr()
}

// Serve accepts connections until the listener is closed or shutdown, when it returns
// ErrServerClosed.
func (sl *SSHListener) Serve() error {
	for {
		nc, err := sl.listener.Accept()
		if err != nil {
			sl.mutex.Lock()
			if sl.shutdown {
				err = ErrServerClosed
			}
			sl.mutex.Unlock()
			return err
		}
		go sl.handshake(nc)
	}
}

func (sl *SSHListener) handshake(nc net.Conn) {
	conn, chans, reqs, err := ssh.NewServerConn(nc, sl.cfg)
	if err != nil {
		log.WithField("error", err.Error()).Error("ssh handshake")
		return
	}
	entry := log.WithFields(connFields(conn))

	if !sl.track(conn) {
		conn.Close()
		return
	}
	defer sl.untrack(conn)

	entry.Info("ssh connected")
	go ssh.DiscardRequests(reqs)

	var wg sync.WaitGroup
	for nch := range chans {
		wg.Add(1)
		go func(nch ssh.NewChannel) {
			defer wg.Done()
			sl.handleChannel(conn, nch, entry)
		}(nch)
	}
	wg.Wait()
	conn.Close()
	entry.Info("ssh disconnected")
}

func (sl *SSHListener) track(conn *ssh.ServerConn) bool {
	sl.mutex.Lock()
	defer sl.mutex.Unlock()

	if sl.shutdown {
		return false
	}
	sl.conns[conn] = struct{}{}
	sl.active.Add(1)
	return true
}

func (sl *SSHListener) untrack(conn *ssh.ServerConn) {
	sl.mutex.Lock()
	delete(sl.conns, conn)
	sl.mutex.Unlock()

	sl.active.Done()
}

// commandLines reads the lines of an exec command.
type commandLines []string

func (cl *commandLines) ReadLine() (string, error) {
	if len(*cl) == 0 {
		return "", io.EOF
	}
	s := (*cl)[0]
	*cl = (*cl)[1:]
	return s, nil
}

// channelRequests replies to the requests on a session channel. The command of the first
// shell ("") or exec request is sent on start; if there is none, start is closed.
func channelRequests(reqs <-chan *ssh.Request, start chan<- string, entry *log.Entry) {
	started := false
	for req := range reqs {
		ok := true
		switch req.Type {
		case "shell", "exec":
			var cmd struct {
				Command string
			}
			if started {
				ok = false
			} else if req.Type == "exec" {
				ok = ssh.Unmarshal(req.Payload, &cmd) == nil && cmd.Command != ""
			}
			if ok {
				started = true
				start <- cmd.Command
			}
		case "pty-req", "env", "window-change":
		default:
			ok = false
		}

		entry.WithFields(log.Fields{
			"request-type": req.Type,
			"ok":           ok,
		}).Debug("channel request")
		if req.WantReply {
			req.Reply(ok, nil)
		}
	}
	if !started {
		close(start)
	}
}

type exitStatus struct {
	Status uint32
}

func (sl *SSHListener) handleChannel(conn *ssh.ServerConn, nch ssh.NewChannel,
	entry *log.Entry) {

	if typ := nch.ChannelType(); typ != "session" {
		nch.Reject(ssh.UnknownChannelType, typ)
		entry.WithField("channel-type", typ).Error("unknown channel type")
		return
	}

	ch, reqs, err := nch.Accept()
	if err != nil {
		entry.WithField("error", err.Error()).Error("ssh channel accept")
		return
	}
	defer ch.Close()

	start := make(chan string, 1)
	go channelRequests(reqs, start, entry)
	cmd, ok := <-start
	if !ok {
		return
	}

	c := &Client{
		User: conn.User(),
		Type: "ssh",
		Addr: conn.RemoteAddr().String(),
	}
	if cmd == "" {
		t := terminal.NewTerminal(ch, sl.prompt)
		c.LineReader = t
		c.Writer = t
	} else {
		lines := commandLines(strings.Split(cmd, "\n"))
		c.LineReader = &lines
		c.Writer = ch
	}
	sl.svr.handle(c)

	_, err = ch.SendRequest("exit-status", false, ssh.Marshal(exitStatus{0}))
	if err != nil {
		entry.WithField("error", err.Error()).Debug("ssh exit status")
	}
}

func (sl *SSHListener) stop() error {
	if sl.shutdown {
		return nil
	}
	sl.shutdown = true
	return sl.listener.Close()
}

// Close stops accepting connections and closes the active ones.
func (sl *SSHListener) Close() error {
	sl.mutex.Lock()
	defer sl.mutex.Unlock()

	err := sl.stop()
	for conn := range sl.conns {
		conn.Close()
	}
	return err
}

// Shutdown stops accepting connections and waits for the active ones to finish, or for ctx
// to be done.
func (sl *SSHListener) Shutdown(ctx context.Context) error {
	sl.mutex.Lock()
	err := sl.stop()
	sl.mutex.Unlock()

	done := make(chan struct{})
	go func() {
		sl.active.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return err
	}
}
