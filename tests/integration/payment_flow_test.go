package integration

import (
	"fmt"
	"net/http"
	"testing"
	"time"
)

func TestPaymentFlow_LedgerDrivesEffectiveSpent(t *testing.T) {
	app := setupApp(t)
	token, _, _ := app.registerUser(t, "ledger@test.com", "password123")
	scenarioID := app.createScenario(t, token, "Ledger", 30000)

	folderID := app.createFolder(t, token, scenarioID, "Catering", "")
	itemID := app.createItem(t, token, scenarioID, "Dinner service", folderID, 8000)

	// Deposit of 3000, settled
	rec := app.request("POST", "/api/v1/payments",
		fmt.Sprintf(`{"node_id":%q,"kind":"payment","amount":3000}`, itemID), token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create payment failed: %d %s", rec.Code, rec.Body.String())
	}
	paymentID := parseJSON(t, rec)["payment"].(map[string]interface{})["id"].(string)

	rec = app.request("POST", "/api/v1/payments/"+paymentID+"/pay", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("mark paid failed: %d %s", rec.Code, rec.Body.String())
	}

	// A settled refund of 500 reduces the effective figure
	rec = app.request("POST", "/api/v1/payments",
		fmt.Sprintf(`{"node_id":%q,"kind":"refund","amount":500}`, itemID), token)
	refundID := parseJSON(t, rec)["payment"].(map[string]interface{})["id"].(string)
	app.request("POST", "/api/v1/payments/"+refundID+"/pay", "", token)

	// An unsettled payment must not count
	app.request("POST", "/api/v1/payments",
		fmt.Sprintf(`{"node_id":%q,"kind":"payment","amount":9999}`, itemID), token)

	rec = app.request("GET", "/api/v1/nodes/"+folderID+"/totals", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("folder totals failed: %d %s", rec.Code, rec.Body.String())
	}
	view := parseJSON(t, rec)
	if got := view["effective_spent"].(float64); got != 2500 {
		t.Errorf("expected effective spent 2500 (3000-500), got %g", got)
	}
	if got := view["allocated"].(float64); got != 8000 {
		t.Errorf("expected allocated 8000, got %g", got)
	}
}

func TestPaymentFlow_FolderRejected(t *testing.T) {
	app := setupApp(t)
	token, _, _ := app.registerUser(t, "folderpay@test.com", "password123")
	scenarioID := app.createScenario(t, token, "FolderPay", 10000)
	folderID := app.createFolder(t, token, scenarioID, "Venue", "")

	rec := app.request("POST", "/api/v1/payments",
		fmt.Sprintf(`{"node_id":%q,"kind":"payment","amount":100}`, folderID), token)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 paying a folder, got %d: %s", rec.Code, rec.Body.String())
	}
	if code := errorCode(t, rec); code != "NODE_NOT_FOLDER" {
		t.Errorf("expected NODE_NOT_FOLDER, got %s", code)
	}
}

func TestPaymentFlow_DoubleSettle(t *testing.T) {
	app := setupApp(t)
	token, _, _ := app.registerUser(t, "double@test.com", "password123")
	scenarioID := app.createScenario(t, token, "Double", 10000)
	itemID := app.createItem(t, token, scenarioID, "DJ", "", 1200)

	rec := app.request("POST", "/api/v1/payments",
		fmt.Sprintf(`{"node_id":%q,"kind":"payment","amount":1200}`, itemID), token)
	paymentID := parseJSON(t, rec)["payment"].(map[string]interface{})["id"].(string)

	rec = app.request("POST", "/api/v1/payments/"+paymentID+"/pay", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("first settle failed: %d %s", rec.Code, rec.Body.String())
	}
	rec = app.request("POST", "/api/v1/payments/"+paymentID+"/pay", "", token)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for double settle, got %d: %s", rec.Code, rec.Body.String())
	}
	if code := errorCode(t, rec); code != "PAYMENT_ALREADY_PAID" {
		t.Errorf("expected PAYMENT_ALREADY_PAID, got %s", code)
	}
}

func TestPaymentFlow_Upcoming(t *testing.T) {
	app := setupApp(t)
	token, _, _ := app.registerUser(t, "upcoming@test.com", "password123")
	scenarioID := app.createScenario(t, token, "Upcoming", 10000)
	itemID := app.createItem(t, token, scenarioID, "Band", "", 2000)

	soon := time.Now().Add(5 * 24 * time.Hour).Format(time.RFC3339)
	far := time.Now().Add(90 * 24 * time.Hour).Format(time.RFC3339)

	app.request("POST", "/api/v1/payments",
		fmt.Sprintf(`{"node_id":%q,"kind":"payment","amount":500,"due_date":%q}`, itemID, soon), token)
	app.request("POST", "/api/v1/payments",
		fmt.Sprintf(`{"node_id":%q,"kind":"payment","amount":1500,"due_date":%q}`, itemID, far), token)

	rec := app.request("GET", "/api/v1/scenarios/"+scenarioID+"/payments/upcoming?days=30", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	payments := parseJSON(t, rec)["payments"].([]interface{})
	if len(payments) != 1 {
		t.Fatalf("expected 1 payment due within 30 days, got %d", len(payments))
	}
	if got := payments[0].(map[string]interface{})["amount"].(float64); got != 500 {
		t.Errorf("expected the 500 deposit, got %g", got)
	}
}

func TestPaymentFlow_ScenarioSummary(t *testing.T) {
	app := setupApp(t)
	token, _, _ := app.registerUser(t, "summary@test.com", "password123")
	scenarioID := app.createScenario(t, token, "Summary", 20000)

	folderID := app.createFolder(t, token, scenarioID, "Venue", "")
	itemID := app.createItem(t, token, scenarioID, "Hall", folderID, 10000)
	app.createItem(t, token, scenarioID, "Favors", "", 500)

	rec := app.request("POST", "/api/v1/payments",
		fmt.Sprintf(`{"node_id":%q,"kind":"payment","amount":5000}`, itemID), token)
	paymentID := parseJSON(t, rec)["payment"].(map[string]interface{})["id"].(string)
	app.request("POST", "/api/v1/payments/"+paymentID+"/pay", "", token)

	rec = app.request("GET", "/api/v1/scenarios/"+scenarioID+"/summary", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	summary := parseJSON(t, rec)
	if got := summary["total_budget"].(float64); got != 20000 {
		t.Errorf("expected total budget 20000, got %g", got)
	}
	if got := summary["allocated"].(float64); got != 10500 {
		t.Errorf("expected allocated 10500, got %g", got)
	}
	if got := summary["effective_spent"].(float64); got != 5000 {
		t.Errorf("expected effective spent 5000, got %g", got)
	}
	if got := summary["percent_spent"].(float64); got != 25 {
		t.Errorf("expected percent spent 25, got %g", got)
	}
	rootFolders := summary["root_folders"].([]interface{})
	if len(rootFolders) != 1 {
		t.Fatalf("expected 1 root folder card, got %d", len(rootFolders))
	}
}

func TestPaymentFlow_VendorAttribution(t *testing.T) {
	app := setupApp(t)
	token, _, _ := app.registerUser(t, "vendorpay@test.com", "password123")
	scenarioID := app.createScenario(t, token, "Vendors", 10000)
	itemID := app.createItem(t, token, scenarioID, "Bouquets", "", 900)

	rec := app.request("POST", "/api/v1/vendors",
		`{"name":"Bloom & Co"}`, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create vendor failed: %d %s", rec.Code, rec.Body.String())
	}
	vendorID := parseJSON(t, rec)["vendor"].(map[string]interface{})["id"].(string)

	rec = app.request("POST", "/api/v1/payments",
		fmt.Sprintf(`{"node_id":%q,"kind":"payment","amount":900,"vendor_id":%q}`, itemID, vendorID), token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create vendor payment failed: %d %s", rec.Code, rec.Body.String())
	}
	paymentID := parseJSON(t, rec)["payment"].(map[string]interface{})["id"].(string)
	app.request("POST", "/api/v1/payments/"+paymentID+"/pay", "", token)

	rec = app.request("GET", "/api/v1/scenarios/"+scenarioID+"/summary", "", token)
	summary := parseJSON(t, rec)
	vendorSpend := summary["vendor_spend"].([]interface{})
	if len(vendorSpend) != 1 {
		t.Fatalf("expected 1 vendor spend row, got %d", len(vendorSpend))
	}
	row := vendorSpend[0].(map[string]interface{})
	if row["vendor_name"].(string) != "Bloom & Co" {
		t.Errorf("expected vendor name Bloom & Co, got %v", row["vendor_name"])
	}
	if got := row["paid"].(float64); got != 900 {
		t.Errorf("expected 900 paid to vendor, got %g", got)
	}
}
