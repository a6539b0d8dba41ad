// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler_test

import (
	"context"
	"database/sql"
	"io"
	"io/fs"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/alexedwards/scs/v2"

	"github.com/p19091985/nexlify-go/internal/handler"
	"github.com/p19091985/nexlify-go/internal/middleware"
	"github.com/p19091985/nexlify-go/internal/render"
	"github.com/p19091985/nexlify-go/internal/repository"
	"github.com/p19091985/nexlify-go/internal/service"
	"github.com/p19091985/nexlify-go/internal/store"
	"github.com/p19091985/nexlify-go/internal/testutil"
	"github.com/p19091985/nexlify-go/web"
)

// loginServer wires the login flow end to end: session manager, renderer
// with the real templates, auth service and the home page.
func loginServer(t *testing.T, db *sql.DB) *httptest.Server {
	t.Helper()

	sm := scs.New()

	templatesFS, err := fs.Sub(web.Templates, "templates")
	if err != nil {
		t.Fatalf("sub templates: %v", err)
	}
	renderer, err := render.New(render.Config{
		TemplatesFS:    templatesFS,
		SessionManager: sm,
		IsDev:          true,
	})
	if err != nil {
		t.Fatalf("creating renderer: %v", err)
	}

	var authService *service.Auth
	if db != nil {
		authService = service.NewAuth(repository.New(db), testutil.TestLogger())
	}
	ah := handler.NewAuthHandler(authService, renderer, sm)

	hh, err := handler.NewHomeHandler(renderer)
	if err != nil {
		t.Fatalf("creating home handler: %v", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			ah.Login(w, r)
			return
		}
		ah.LoginForm(w, r)
	})
	mux.HandleFunc("/logout", ah.Logout)
	mux.Handle("/", middleware.RequireIdentity()(http.HandlerFunc(hh.Home)))

	srv := httptest.NewServer(sm.LoadAndSave(middleware.Identify(sm, true)(mux)))
	t.Cleanup(srv.Close)
	return srv
}

func browserClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("creating cookie jar: %v", err)
	}
	return &http.Client{Jar: jar}
}

func postLogin(t *testing.T, client *http.Client, srv *httptest.Server, login, password string) string {
	t.Helper()
	resp, err := client.PostForm(srv.URL+"/login", url.Values{
		"login":    {login},
		"password": {password},
	})
	if err != nil {
		t.Fatalf("posting login: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("reading body: %v", err)
	}
	return string(body)
}

func TestLoginSuccess(t *testing.T) {
	db := testutil.TestDB(t)
	if err := store.Seed(context.Background(), db, testutil.TestLogger()); err != nil {
		t.Fatalf("Seed() error = %v", err)
	}

	srv := loginServer(t, db)
	client := browserClient(t)

	body := postLogin(t, client, srv, "admin", "changeme")
	if !strings.Contains(body, "Bem-vindo") {
		t.Errorf("missing welcome flash after login: %s", body)
	}
	if !strings.Contains(body, "Painel Administrativo") {
		t.Errorf("not on the panel home page after login: %s", body)
	}
}

func TestLoginWrongPasswordShowsRemainingAttempts(t *testing.T) {
	db := testutil.TestDB(t)
	if err := store.Seed(context.Background(), db, testutil.TestLogger()); err != nil {
		t.Fatalf("Seed() error = %v", err)
	}

	srv := loginServer(t, db)
	client := browserClient(t)

	body := postLogin(t, client, srv, "admin", "errada")
	if !strings.Contains(body, "2 tentativa(s) restante(s)") {
		t.Errorf("missing remaining attempts message: %s", body)
	}
}

func TestLoginLocksAfterThreeFailures(t *testing.T) {
	db := testutil.TestDB(t)
	if err := store.Seed(context.Background(), db, testutil.TestLogger()); err != nil {
		t.Fatalf("Seed() error = %v", err)
	}

	srv := loginServer(t, db)
	client := browserClient(t)

	var body string
	for i := 0; i < 3; i++ {
		body = postLogin(t, client, srv, "admin", "errada")
	}
	if !strings.Contains(body, "Número máximo de tentativas excedido") {
		t.Errorf("missing lockout message after third failure: %s", body)
	}

	// The correct password no longer helps within this session.
	body = postLogin(t, client, srv, "admin", "changeme")
	if !strings.Contains(body, "Número máximo de tentativas excedido") {
		t.Errorf("locked session accepted credentials: %s", body)
	}

	// A fresh session (new browser) starts clean.
	fresh := browserClient(t)
	body = postLogin(t, fresh, srv, "admin", "changeme")
	if !strings.Contains(body, "Bem-vindo") {
		t.Errorf("fresh session could not log in: %s", body)
	}
}

func TestLoginStoreUnavailableMessage(t *testing.T) {
	db := testutil.TestDB(t)
	srv := loginServer(t, db)
	client := browserClient(t)

	_ = db.Close()

	body := postLogin(t, client, srv, "admin", "changeme")
	if !strings.Contains(body, "Não foi possível conectar ao banco de dados") {
		t.Errorf("missing store outage message: %s", body)
	}
	if strings.Contains(body, "Credenciais inválidas") {
		t.Error("outage reported as invalid credentials")
	}
}

func TestLoginDatabaseDisabled(t *testing.T) {
	srv := loginServer(t, nil)
	client := browserClient(t)

	body := postLogin(t, client, srv, "admin", "changeme")
	if !strings.Contains(body, "O banco de dados está desabilitado") {
		t.Errorf("missing database disabled message: %s", body)
	}
}

func TestAnonymousRedirectedToLogin(t *testing.T) {
	db := testutil.TestDB(t)
	srv := loginServer(t, db)
	client := browserClient(t)

	resp, err := client.Get(srv.URL + "/")
	if err != nil {
		t.Fatalf("GET / error = %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "Entrar") {
		t.Errorf("anonymous request did not land on the login page: %s", body)
	}
}

func TestLogoutClearsSession(t *testing.T) {
	db := testutil.TestDB(t)
	if err := store.Seed(context.Background(), db, testutil.TestLogger()); err != nil {
		t.Fatalf("Seed() error = %v", err)
	}

	srv := loginServer(t, db)
	client := browserClient(t)

	postLogin(t, client, srv, "admin", "changeme")

	resp, err := client.Get(srv.URL + "/logout")
	if err != nil {
		t.Fatalf("GET /logout error = %v", err)
	}
	_ = resp.Body.Close()

	resp, err = client.Get(srv.URL + "/")
	if err != nil {
		t.Fatalf("GET / error = %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "Entrar") {
		t.Error("session survived logout")
	}
}
