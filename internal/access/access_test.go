package access_test

import (
	"bufio"
	"bytes"
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"stageline/internal/access"
	"stageline/internal/domain"
)

func newGate(t *testing.T, secret string) access.Gate {
	t.Helper()
	g, err := access.NewGate(secret)
	if err != nil {
		t.Fatalf("new gate: %v", err)
	}
	return g
}

func TestVerify(t *testing.T) {
	g := newGate(t, "11111")
	if err := g.Verify(""); !errors.Is(err, access.ErrCancelled) {
		t.Fatalf("empty: %v", err)
	}
	if err := g.Verify("22222"); !errors.Is(err, access.ErrBadSecret) {
		t.Fatalf("wrong: %v", err)
	}
	// retries are not limited
	if err := g.Verify("22222"); !errors.Is(err, access.ErrBadSecret) {
		t.Fatalf("wrong again: %v", err)
	}
	if err := g.Verify("11111"); err != nil {
		t.Fatalf("correct: %v", err)
	}
}

func TestGateAcceptsHash(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	g := newGate(t, string(hash))
	if err := g.Verify("s3cret"); err != nil {
		t.Fatalf("verify against hash: %v", err)
	}
	if _, err := access.NewGate("  "); err == nil {
		t.Fatalf("expected blank secret to fail")
	}
}

func TestAuthorizeCreate(t *testing.T) {
	g := newGate(t, "11111")
	if err := g.AuthorizeCreate(domain.RoleSurvey, ""); err != nil {
		t.Fatalf("survey create: %v", err)
	}
	if err := g.AuthorizeCreate(domain.RoleAdmin, "nope"); !errors.Is(err, access.ErrBadSecret) {
		t.Fatalf("admin bad secret: %v", err)
	}
	if err := g.AuthorizeCreate(domain.RoleAdmin, "11111"); err != nil {
		t.Fatalf("admin create: %v", err)
	}
	if err := g.AuthorizeCreate(domain.RoleDesign, "11111"); !errors.Is(err, access.ErrForbidden) {
		t.Fatalf("design create: %v", err)
	}
}

func TestAuthorizeDeleteOrder(t *testing.T) {
	g := newGate(t, "11111")
	closed := domain.Project{ID: 1, Status: domain.StatusClosed}
	if err := g.AuthorizeDelete(domain.RoleAdmin, closed, "11111", true); !errors.Is(err, access.ErrClosedProject) {
		t.Fatalf("closed: %v", err)
	}
	if err := g.AuthorizeDelete(domain.RoleSurvey, closed, "", false); !errors.Is(err, access.ErrClosedProject) {
		t.Fatalf("closed check must come first: %v", err)
	}

	open := domain.Project{ID: 2, Status: domain.StatusBidding}
	if err := g.AuthorizeDelete(domain.RoleBidding, open, "11111", true); !errors.Is(err, access.ErrForbidden) {
		t.Fatalf("non admin: %v", err)
	}
	if err := g.AuthorizeDelete(domain.RoleAdmin, open, "", true); !errors.Is(err, access.ErrCancelled) {
		t.Fatalf("cancelled: %v", err)
	}
	if err := g.AuthorizeDelete(domain.RoleAdmin, open, "x", true); !errors.Is(err, access.ErrBadSecret) {
		t.Fatalf("bad secret: %v", err)
	}
	if err := g.AuthorizeDelete(domain.RoleAdmin, open, "11111", false); !errors.Is(err, access.ErrConfirmationRequired) {
		t.Fatalf("unconfirmed: %v", err)
	}
	if err := g.AuthorizeDelete(domain.RoleAdmin, open, "11111", true); err != nil {
		t.Fatalf("confirmed: %v", err)
	}
}

func TestPromptRetriesUntilCorrect(t *testing.T) {
	g := newGate(t, "11111")
	var out bytes.Buffer
	in := bufio.NewReader(strings.NewReader("nope\n22222\n11111\ny\n"))
	secret, err := g.Prompt(in, &out, "Secret: ")
	if err != nil || secret != "11111" {
		t.Fatalf("prompt: %q %v", secret, err)
	}
	if n := strings.Count(out.String(), "Secret: "); n != 3 {
		t.Fatalf("expected 3 prompts, got %d: %q", n, out.String())
	}
	// The confirmation answer stays unread for the caller.
	if rest, _ := in.ReadString('\n'); rest != "y\n" {
		t.Fatalf("prompt consumed too much input, left %q", rest)
	}
}

func TestPromptCancel(t *testing.T) {
	g := newGate(t, "11111")
	for name, input := range map[string]string{"empty line": "wrong\n\n", "eof": ""} {
		_, err := g.Prompt(bufio.NewReader(strings.NewReader(input)), &bytes.Buffer{}, "> ")
		if !errors.Is(err, access.ErrCancelled) {
			t.Fatalf("%s: expected cancel, got %v", name, err)
		}
	}
}

func TestCheckDeletable(t *testing.T) {
	closed := domain.Project{Status: domain.StatusClosed}
	if err := access.CheckDeletable(domain.RoleAdmin, closed); !errors.Is(err, access.ErrClosedProject) {
		t.Fatalf("closed: %v", err)
	}
	open := domain.Project{Status: domain.StatusBidding}
	if err := access.CheckDeletable(domain.RoleDesign, open); !errors.Is(err, access.ErrForbidden) {
		t.Fatalf("design: %v", err)
	}
	if err := access.CheckDeletable(domain.RoleAdmin, open); err != nil {
		t.Fatalf("admin: %v", err)
	}
}
