package integration

import (
	"fmt"
	"net/http"
	"testing"
)

func TestAuthFlow_RegisterLoginProfile(t *testing.T) {
	app := setupApp(t)

	token, refresh, userID := app.registerUser(t, "couple@test.com", "password123")
	if token == "" || refresh == "" || userID == "" {
		t.Fatal("register returned empty credentials")
	}

	// Login with the same credentials
	loginToken := func() string {
		rec := app.request("POST", "/api/v1/auth/login",
			`{"email":"couple@test.com","password":"password123"}`, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("login failed: %d %s", rec.Code, rec.Body.String())
		}
		return parseJSON(t, rec)["token"].(string)
	}()

	// Profile is reachable with the login token
	rec := app.request("GET", "/api/v1/profile", "", loginToken)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for profile, got %d: %s", rec.Code, rec.Body.String())
	}
	user := parseJSON(t, rec)["user"].(map[string]interface{})
	if user["email"].(string) != "couple@test.com" {
		t.Errorf("expected profile email couple@test.com, got %v", user["email"])
	}
	if user["id"].(string) != userID {
		t.Errorf("profile ID mismatch: got %v, want %s", user["id"], userID)
	}
}

func TestAuthFlow_WrongPassword(t *testing.T) {
	app := setupApp(t)
	app.registerUser(t, "secure@test.com", "password123")

	rec := app.request("POST", "/api/v1/auth/login",
		`{"email":"secure@test.com","password":"wrong-password"}`, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d: %s", rec.Code, rec.Body.String())
	}
	if code := errorCode(t, rec); code != "INVALID_CREDENTIALS" {
		t.Errorf("expected INVALID_CREDENTIALS, got %s", code)
	}
}

func TestAuthFlow_DuplicateEmail(t *testing.T) {
	app := setupApp(t)
	app.registerUser(t, "taken@test.com", "password123")

	rec := app.request("POST", "/api/v1/auth/register",
		`{"email":"taken@test.com","password":"password456","first_name":"Other","last_name":"User"}`, "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", rec.Code, rec.Body.String())
	}
	if code := errorCode(t, rec); code != "DUPLICATE_EMAIL" {
		t.Errorf("expected DUPLICATE_EMAIL, got %s", code)
	}
}

func TestAuthFlow_RefreshRotation(t *testing.T) {
	app := setupApp(t)
	_, refresh, _ := app.registerUser(t, "rotate@test.com", "password123")

	// Exchange the refresh token for a new pair
	rec := app.request("POST", "/api/v1/auth/refresh",
		fmt.Sprintf(`{"refresh_token":%q}`, refresh), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("refresh failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	newRefresh := result["refresh_token"].(string)
	if newRefresh == refresh {
		t.Error("expected refresh token to rotate")
	}

	// The old refresh token is no longer accepted
	rec = app.request("POST", "/api/v1/auth/refresh",
		fmt.Sprintf(`{"refresh_token":%q}`, refresh), "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for stale refresh token, got %d: %s", rec.Code, rec.Body.String())
	}

	// The rotated token still works
	rec = app.request("POST", "/api/v1/auth/refresh",
		fmt.Sprintf(`{"refresh_token":%q}`, newRefresh), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for rotated refresh token, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestAuthFlow_ProtectedRoutesRequireToken(t *testing.T) {
	app := setupApp(t)

	rec := app.request("GET", "/api/v1/scenarios", "", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}

	rec = app.request("GET", "/api/v1/scenarios", "", "not-a-real-token")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with bogus token, got %d", rec.Code)
	}
}
