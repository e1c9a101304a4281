package repl

import (
	"fmt"
	"os"

	"github.com/peterh/liner"
)

const (
	historyFile = ".sqlcoerce_history"
)

type lineReader struct {
	line *liner.State
}

func (lr *lineReader) ReadLine() (string, error) {
	s, err := lr.line.Prompt("sqlcoerce: ")
	if err != nil {
		return "", err
	}
	lr.line.AppendHistory(s)
	return s, nil
}

// Interact runs an interactive console session until the end of input.
func Interact(ses *Session) {
	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)
	if f, err := os.Open(historyFile); err == nil {
		line.ReadHistory(f)
		f.Close()
	}

	Repl(ses, &lineReader{line: line}, os.Stdout)

	if f, err := os.Create(historyFile); err != nil {
		fmt.Fprintf(os.Stderr, "sqlcoerce: error writing history file, %s: %s\n", historyFile,
			err)
	} else {
		line.WriteHistory(f)
		f.Close()
	}
}
