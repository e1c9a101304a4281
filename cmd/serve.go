package cmd

import (
	"context"
	"fmt"
	"io/ioutil"
	"os"
	"os/signal"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/leftmike/sqlcoerce/repl"
	"github.com/leftmike/sqlcoerce/server"
)

var (
	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Serve console sessions over ssh",
		Args:  cobra.NoArgs,
		RunE:  serveRun,
	}

	sshAddress     = "localhost:8241"
	hostKeys       = []string{"id_rsa"}
	authorizedKeys = ""
)

func init() {
	fs := serveCmd.Flags()
	fs.StringVar(&sshAddress, "ssh-address", sshAddress, "`address` to listen on for ssh")
	fs.StringSliceVar(&hostKeys, "host-keys", hostKeys,
		"`files` containing private host keys; multiple allowed")
	fs.StringVar(&authorizedKeys, "authorized-keys", authorizedKeys,
		"`file` containing the public keys of authorized clients")

	rootCmd.AddCommand(serveCmd)
}

func serveRun(cmd *cobra.Command, args []string) error {
	var hostKeysBytes [][]byte
	for _, hostKey := range hostKeys {
		b, err := ioutil.ReadFile(hostKey)
		if err != nil {
			return fmt.Errorf("sqlcoerce: %s", err)
		}
		hostKeysBytes = append(hostKeysBytes, b)
	}

	var authorizedBytes []byte
	if authorizedKeys != "" {
		var err error
		authorizedBytes, err = ioutil.ReadFile(authorizedKeys)
		if err != nil {
			return fmt.Errorf("sqlcoerce: %s", err)
		}
	}

	svr := server.Server{
		Handler: func(c *server.Client) {
			repl.Repl(repl.NewSession(coercer), c.LineReader, c.Writer)
		},
	}

	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, os.Interrupt)
		<-ch
		log.Info("sqlcoerce shutting down")
		fmt.Fprintln(cmd.OutOrStdout(), "sqlcoerce: shutting down")
		svr.Shutdown(context.Background())
	}()

	err := svr.ListenAndServeSSH(
		server.SSHConfig{
			Address:         sshAddress,
			Prompt:          "sqlcoerce: ",
			HostKeysBytes:   hostKeysBytes,
			AuthorizedBytes: authorizedBytes,
		})
	if err == server.ErrServerClosed {
		return nil
	}
	return err
}
