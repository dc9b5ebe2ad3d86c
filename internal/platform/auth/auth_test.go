package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

var testKey = []byte("test-signing-key")

func signToken(t *testing.T, key []byte, claims *Claims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

func doAuth(mw echo.MiddlewareFunc, header string) (*httptest.ResponseRecorder, echo.Context) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set(echo.HeaderAuthorization, header)
	}
	rw := httptest.NewRecorder()
	c := e.NewContext(req, rw)

	handler := mw(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rw, c
}

func TestJWTMiddleware_ValidToken(t *testing.T) {
	token := signToken(t, testKey, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Roles: []string{"patient"},
	})

	rw, c := doAuth(JWTMiddleware(testKey), "Bearer "+token)
	if rw.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rw.Code, rw.Body)
	}
	if UserID(c) != "u1" {
		t.Errorf("UserID = %q, want u1", UserID(c))
	}
	if !HasRole(c, "patient") || HasRole(c, "admin") {
		t.Error("roles not propagated correctly")
	}
}

func TestJWTMiddleware_MissingHeader(t *testing.T) {
	rw, _ := doAuth(JWTMiddleware(testKey), "")
	if rw.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rw.Code)
	}
}

func TestJWTMiddleware_WrongKey(t *testing.T) {
	token := signToken(t, []byte("other-key"), &Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "u1"},
	})
	rw, _ := doAuth(JWTMiddleware(testKey), "Bearer "+token)
	if rw.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rw.Code)
	}
}

func TestJWTMiddleware_ExpiredToken(t *testing.T) {
	token := signToken(t, testKey, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	})
	rw, _ := doAuth(JWTMiddleware(testKey), "Bearer "+token)
	if rw.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rw.Code)
	}
}

func TestJWTMiddleware_NoSubject(t *testing.T) {
	token := signToken(t, testKey, &Claims{})
	rw, _ := doAuth(JWTMiddleware(testKey), "Bearer "+token)
	if rw.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rw.Code)
	}
}

func TestDevAuthMiddleware(t *testing.T) {
	rw, c := doAuth(DevAuthMiddleware(), "")
	if rw.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rw.Code)
	}
	if UserID(c) != "dev-user" {
		t.Errorf("UserID = %q, want dev-user", UserID(c))
	}
	if !HasRole(c, "admin") {
		t.Error("dev identity should carry the admin role")
	}
}
