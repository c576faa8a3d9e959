// Package termx reads secrets from the terminal.
package termx

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dmitrijs2005/containerhub/internal/common"
	"golang.org/x/term"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

// isTerminal is a test seam for term.IsTerminal.
var isTerminal = term.IsTerminal

// ReadPassword prints prompt to w and reads a password from in. A terminal
// is read without echo; anything else is read as a single line so the
// password can be piped in.
func ReadPassword(in io.Reader, w io.Writer, prompt string) (string, error) {
	if _, err := fmt.Fprint(w, prompt); err != nil {
		return "", err
	}

	var (
		pw  []byte
		err error
	)
	if f, ok := in.(*os.File); ok && isTerminal(int(f.Fd())) {
		pw, err = readPassword(int(f.Fd()))
		fmt.Fprintln(w)
	} else {
		var line string
		line, err = bufio.NewReader(in).ReadString('\n')
		if errors.Is(err, io.EOF) {
			err = nil
		}
		pw = []byte(strings.TrimRight(line, "\r\n"))
	}
	defer common.WipeByteArray(pw)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	if len(pw) == 0 {
		return "", errors.New("empty password")
	}
	return string(pw), nil
}
