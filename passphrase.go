package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"
)

const maxUnlockAttempts = 3

var (
	errWrongPassphrase    = errors.New("wrong passphrase")
	errEmptyPassphrase    = errors.New("passphrase cannot be empty")
	errPassphraseMismatch = errors.New("passphrases do not match")
	errPassphraseRequired = errors.New("shell is locked: set LIBRARIAN_PASSPHRASE when stdin is not a terminal")
)

// terminalFD returns the file descriptor behind r when it is a terminal.
func terminalFD(r io.Reader) (int, bool) {
	f, ok := r.(*os.File)
	if !ok {
		return 0, false
	}
	fd := int(f.Fd())
	return fd, term.IsTerminal(fd)
}

// readPassword securely reads a passphrase with masking.
func readPassword(out io.Writer, fd int, prompt string) (string, error) {
	fmt.Fprint(out, prompt)
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(out) // ReadPassword swallows the newline
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}

func hashPassphrase(passphrase string) (string, error) {
	if strings.TrimSpace(passphrase) == "" {
		return "", errEmptyPassphrase
	}
	h, err := bcrypt.GenerateFromPassword([]byte(passphrase), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash passphrase: %w", err)
	}
	return string(h), nil
}

func checkPassphrase(hash, passphrase string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(passphrase))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return errWrongPassphrase
	}
	if err != nil {
		return fmt.Errorf("check passphrase: %w", err)
	}
	return nil
}

// unlockShell gates the shell behind the configured bcrypt hash. On a
// terminal the user gets maxUnlockAttempts tries; otherwise the passphrase
// must come from configuration.
func unlockShell(hash, configured string, in io.Reader, out io.Writer) error {
	fd, interactive := terminalFD(in)
	if !interactive {
		if configured == "" {
			return errPassphraseRequired
		}
		return checkPassphrase(hash, configured)
	}

	for attempt := 1; attempt <= maxUnlockAttempts; attempt++ {
		p, err := readPassword(out, fd, "Passphrase: ")
		if err != nil {
			return fmt.Errorf("read passphrase: %w", err)
		}
		err = checkPassphrase(hash, p)
		if err == nil {
			return nil
		}
		if !errors.Is(err, errWrongPassphrase) {
			return err
		}
		fail(out, fmt.Sprintf("Wrong passphrase (%d/%d)", attempt, maxUnlockAttempts))
	}
	return errWrongPassphrase
}

func newHashPassphraseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-passphrase",
		Short: "Print a bcrypt hash for the passphrase_hash config key",
		Long: `Reads a passphrase (masked on a terminal, otherwise the first line of
stdin) and prints its bcrypt hash. Put the hash under passphrase_hash in
librarian.yaml to lock the shell.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in, out := cmd.InOrStdin(), cmd.OutOrStdout()

			var passphrase string
			if fd, ok := terminalFD(in); ok {
				first, err := readPassword(out, fd, "New passphrase: ")
				if err != nil {
					return err
				}
				second, err := readPassword(out, fd, "Repeat passphrase: ")
				if err != nil {
					return err
				}
				if first != second {
					return errPassphraseMismatch
				}
				passphrase = first
			} else {
				line, err := bufio.NewReader(in).ReadString('\n')
				if err != nil && !errors.Is(err, io.EOF) {
					return err
				}
				passphrase = strings.TrimSpace(line)
			}

			hash, err := hashPassphrase(passphrase)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, hash)
			return nil
		},
	}
}
