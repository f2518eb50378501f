package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/empanadas-abdonur/api/internal/auth"
	"github.com/empanadas-abdonur/api/internal/authz"
	"github.com/empanadas-abdonur/api/internal/middleware"
)

const testJWTSecret = "test-secret-for-handlers"

// --- Mock Authorizer ---

type mockGate struct {
	resolveFn func(ctx context.Context, accountID uuid.UUID) (authz.Identity, error)
}

func (m *mockGate) Resolve(ctx context.Context, accountID uuid.UUID) (authz.Identity, error) {
	if m.resolveFn != nil {
		return m.resolveFn(ctx, accountID)
	}
	return authz.Identity{}, authz.ErrNotAdmin
}

func superAdminGate(accountID uuid.UUID) *mockGate {
	return &mockGate{
		resolveFn: func(ctx context.Context, id uuid.UUID) (authz.Identity, error) {
			return authz.Identity{
				AdminID:   uuid.New(),
				AccountID: id,
				Role:      "super_admin",
			}, nil
		},
	}
}

func branchAdminGate(branchID uuid.UUID) *mockGate {
	return &mockGate{
		resolveFn: func(ctx context.Context, id uuid.UUID) (authz.Identity, error) {
			b := branchID
			return authz.Identity{
				AdminID:   uuid.New(),
				AccountID: id,
				BranchID:  &b,
				Role:      "branch_admin",
			}, nil
		},
	}
}

// --- Request helpers ---

func doRequest(t *testing.T, router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	return doRequestWithToken(t, router, method, path, body, "")
}

func doAuthRequest(t *testing.T, router http.Handler, method, path string, body interface{}, accountID uuid.UUID) *httptest.ResponseRecorder {
	t.Helper()

	token, err := auth.GenerateToken(testJWTSecret, accountID)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return doRequestWithToken(t, router, method, path, body, token)
}

func doRequestWithToken(t *testing.T, router http.Handler, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		req = httptest.NewRequest(method, path, bytes.NewReader(b))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

func authMiddleware() func(http.Handler) http.Handler {
	return middleware.Authenticate(testJWTSecret)
}

// --- Data helpers ---

func testNumeric(t *testing.T, s string) pgtype.Numeric {
	t.Helper()
	var n pgtype.Numeric
	if err := n.Scan(s); err != nil {
		t.Fatalf("scan numeric %q: %v", s, err)
	}
	return n
}
