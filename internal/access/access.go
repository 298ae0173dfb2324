// Package access guards the destructive and administrative operations behind
// a shared secret.
package access

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"stageline/internal/domain"
)

var (
	ErrCancelled            = errors.New("secret entry cancelled")
	ErrBadSecret            = errors.New("incorrect secret")
	ErrForbidden            = errors.New("role is not allowed to perform this operation")
	ErrClosedProject        = errors.New("closed projects cannot be deleted")
	ErrConfirmationRequired = errors.New("deletion must be confirmed")
)

// Gate checks the shared administrative secret. Only its bcrypt hash is kept
// in memory.
type Gate struct {
	hash []byte
}

// NewGate accepts either a bcrypt hash or a plaintext secret, which is hashed.
func NewGate(secret string) (Gate, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return Gate{}, fmt.Errorf("access secret is required")
	}
	if _, err := bcrypt.Cost([]byte(secret)); err == nil {
		return Gate{hash: []byte(secret)}, nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return Gate{}, fmt.Errorf("hash access secret: %w", err)
	}
	return Gate{hash: hash}, nil
}

// Verify checks one attempt. An empty attempt means the user backed out.
// Wrong attempts are not counted; callers may prompt again.
func (g Gate) Verify(secret string) error {
	if secret == "" {
		return ErrCancelled
	}
	if len(g.hash) == 0 {
		return ErrBadSecret
	}
	if err := bcrypt.CompareHashAndPassword(g.hash, []byte(secret)); err != nil {
		return ErrBadSecret
	}
	return nil
}

// AuthorizeCreate decides whether role may create a project.
func (g Gate) AuthorizeCreate(role domain.Role, secret string) error {
	switch role {
	case domain.RoleSurvey:
		return nil
	case domain.RoleAdmin:
		return g.Verify(secret)
	}
	return ErrForbidden
}

// AuthorizeDelete runs the delete checks in order: closed projects are
// refused before the role or secret are looked at, and a correct secret still
// needs an explicit confirmation.
func (g Gate) AuthorizeDelete(role domain.Role, p domain.Project, secret string, confirmed bool) error {
	if err := CheckDeletable(role, p); err != nil {
		return err
	}
	if err := g.Verify(secret); err != nil {
		return err
	}
	if !confirmed {
		return ErrConfirmationRequired
	}
	return nil
}

// CheckDeletable runs the delete checks that need no secret, so callers can
// refuse before asking for one.
func CheckDeletable(role domain.Role, p domain.Project) error {
	if p.Status == domain.StatusClosed {
		return ErrClosedProject
	}
	if role != domain.RoleAdmin {
		return ErrForbidden
	}
	return nil
}

// Prompt asks for the secret on out and reads attempts from in until one
// verifies. An empty line or end of input cancels.
func (g Gate) Prompt(in *bufio.Reader, out io.Writer, label string) (string, error) {
	for {
		fmt.Fprint(out, label)
		line, err := in.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", err
		}
		secret := strings.TrimRight(line, "\r\n")
		verr := g.Verify(secret)
		switch {
		case verr == nil:
			return secret, nil
		case errors.Is(verr, ErrBadSecret) && err == nil:
			fmt.Fprintln(out, "Incorrect secret, try again (empty line cancels).")
		default:
			if errors.Is(verr, ErrBadSecret) {
				return "", verr
			}
			return "", ErrCancelled
		}
	}
}
