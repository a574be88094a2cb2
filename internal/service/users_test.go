package service

import (
	"context"
	"errors"
	"testing"

	"github.com/gofrs/uuid/v5"

	"github.com/and161185/stockroom/internal/errs"
	"github.com/and161185/stockroom/internal/model"
)

func TestUsers_CreateChecksUsernameAndEmail(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.userSvc.Create(ctx, model.Registration{Username: "alice", Password: "p", Email: "a@x.io"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	_, err := f.userSvc.Create(ctx, model.Registration{Username: "alice", Password: "p"})
	wantConflict(t, err, "username", "alice")
	_, err = f.userSvc.Create(ctx, model.Registration{Username: "bob", Password: "p", Email: "a@x.io"})
	wantConflict(t, err, "email", "a@x.io")

	ok, err := f.userSvc.EmailExists(ctx, "a@x.io")
	if err != nil || !ok {
		t.Fatalf("EmailExists = %v, %v", ok, err)
	}
	ok, err = f.userSvc.UsernameExists(ctx, "bob")
	if err != nil || ok {
		t.Fatalf("UsernameExists(bob) = %v, %v", ok, err)
	}
	if ok, _ := f.userSvc.EmailExists(ctx, ""); ok {
		t.Fatalf("empty email must never exist")
	}
}

func TestUsers_UpdateEmailKeepsVerifier(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	u := mustRegister(t, f, "alice", "pw1")

	got, err := f.userSvc.Update(ctx, u.ID, model.UserUpdate{Email: strp("alice@x.io")})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.PwdHash != u.PwdHash {
		t.Fatalf("verifier changed on email-only update")
	}
	if got.Email == nil || *got.Email != "alice@x.io" || got.Username != "alice" {
		t.Fatalf("bad update result: %+v", got)
	}

	stored, _ := f.users.GetByID(ctx, u.ID)
	if stored.PwdHash != u.PwdHash {
		t.Fatalf("stored verifier changed")
	}

	// Clearing the email.
	got, err = f.userSvc.Update(ctx, u.ID, model.UserUpdate{Email: strp("")})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.Email != nil {
		t.Fatalf("email not cleared")
	}
}

func TestUsers_UpdatePasswordAndConflicts(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	alice := mustRegister(t, f, "alice", "pw1")
	bob, err := f.userSvc.Create(ctx, model.Registration{Username: "bob", Password: "pw", Email: "b@x.io"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	_, err = f.userSvc.Update(ctx, alice.ID, model.UserUpdate{Username: strp("bob")})
	wantConflict(t, err, "username", "bob")
	_, err = f.userSvc.Update(ctx, alice.ID, model.UserUpdate{Email: strp("b@x.io")})
	wantConflict(t, err, "email", "b@x.io")

	// Unchanged values on self never conflict.
	if _, err := f.userSvc.Update(ctx, bob.ID, model.UserUpdate{Username: strp("bob"), Email: strp("b@x.io")}); err != nil {
		t.Fatalf("self update: %v", err)
	}

	// A failed update leaves the record untouched.
	_, err = f.userSvc.Update(ctx, alice.ID, model.UserUpdate{Username: strp("alice2"), Email: strp("b@x.io"), Password: "new"})
	wantConflict(t, err, "email", "b@x.io")
	stored, _ := f.users.GetByID(ctx, alice.ID)
	if stored.Username != "alice" || stored.PwdHash != alice.PwdHash {
		t.Fatalf("partial update observed: %+v", stored)
	}

	if _, err := f.userSvc.Update(ctx, alice.ID, model.UserUpdate{Password: "pw2"}); err != nil {
		t.Fatalf("password update: %v", err)
	}
	if _, err := f.auth.Login(ctx, "alice", "pw1"); !errors.Is(err, errs.ErrAuthenticationFailed) {
		t.Fatalf("old password still accepted: %v", err)
	}
	if _, err := f.auth.Login(ctx, "alice", "pw2"); err != nil {
		t.Fatalf("new password rejected: %v", err)
	}

	if _, err := f.userSvc.Update(ctx, alice.ID, model.UserUpdate{Username: strp("")}); !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("want ErrValidation, got %v", err)
	}
}

func TestUsers_NotFoundAndDelete(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	missing := uuid.Must(uuid.NewV4())

	var nf *errs.NotFoundError
	if _, err := f.userSvc.Get(ctx, missing); !errors.As(err, &nf) || nf.Key != missing.String() {
		t.Fatalf("want NotFoundError, got %v", err)
	}
	if _, err := f.userSvc.Update(ctx, missing, model.UserUpdate{}); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
	if err := f.userSvc.Delete(ctx, missing); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
	if _, err := f.userSvc.GetByUsername(ctx, "ghost"); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}

	list, err := f.userSvc.List(ctx)
	if err != nil || len(list) != 0 {
		t.Fatalf("List on empty store = %v, %v", list, err)
	}

	u := mustRegister(t, f, "zed", "p")
	mustRegister(t, f, "amy", "p")
	list, _ = f.userSvc.List(ctx)
	if len(list) != 2 || list[0].Username != "amy" {
		t.Fatalf("List = %+v", list)
	}
	if err := f.userSvc.Delete(ctx, u.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := f.userSvc.GetByUsername(ctx, "zed"); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("deleted user still visible: %v", err)
	}
}
