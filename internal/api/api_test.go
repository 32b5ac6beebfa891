package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/laurenmk/stockdock/internal/auth"
	"github.com/laurenmk/stockdock/internal/db"
	"github.com/laurenmk/stockdock/internal/model"
	"github.com/laurenmk/stockdock/internal/store"
	"github.com/laurenmk/stockdock/internal/workflow"
)

const testJWTSecret = "test-secret"

func setupTestServer(t *testing.T) (*httptest.Server, string) {
	t.Helper()
	database := db.NewTestDB(t)
	router := NewRouter(database, testJWTSecret)
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	// Create admin user.
	ctx := context.Background()
	hash, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	store.CreateUser(ctx, database, "admin", string(hash), model.RoleAdmin)

	// Get token.
	body, _ := json.Marshal(map[string]string{"username": "admin", "password": "password"})
	resp, err := http.Post(server.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("login request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login failed: %d", resp.StatusCode)
	}

	var loginResp map[string]string
	json.NewDecoder(resp.Body).Decode(&loginResp)
	token := loginResp["token"]
	if token == "" {
		t.Fatal("empty token from login")
	}

	return server, token
}

func authRequest(method, url, token string, body any) (*http.Request, error) {
	var bodyReader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		bodyReader = bytes.NewReader(data)
	} else {
		bodyReader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, bodyReader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func doJSON(t *testing.T, req *http.Request, wantStatus int, target any) {
	t.Helper()
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != wantStatus {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("%s %s: expected %d, got %d: %s",
			req.Method, req.URL.Path, wantStatus, resp.StatusCode, body)
	}
	if target != nil {
		json.NewDecoder(resp.Body).Decode(target)
	}
}

func TestLoginEndpoint(t *testing.T) {
	server, _ := setupTestServer(t)

	body, _ := json.Marshal(map[string]string{"username": "admin", "password": "wrong"})
	resp, _ := http.Post(server.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 for bad password, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestCatalogAPIFlow(t *testing.T) {
	server, token := setupTestServer(t)

	req, _ := authRequest("POST", server.URL+"/api/catalog", token, map[string]string{
		"item_name": "SAUCE",
	})
	doJSON(t, req, http.StatusCreated, nil)

	req, _ = authRequest("GET", server.URL+"/api/catalog", token, nil)
	var items []model.CatalogItem
	doJSON(t, req, http.StatusOK, &items)
	if len(items) != 1 || items[0].ItemName != "SAUCE" {
		t.Errorf("unexpected catalog: %+v", items)
	}

	req, _ = authRequest("DELETE", server.URL+"/api/catalog", token, map[string][]string{
		"item_names": {"SAUCE"},
	})
	doJSON(t, req, http.StatusOK, nil)
}

func TestScanWorkflowFlow(t *testing.T) {
	server, token := setupTestServer(t)

	// Whitelist and stock one unit.
	req, _ := authRequest("POST", server.URL+"/api/catalog", token, map[string]string{
		"item_name": "SAUCE",
	})
	doJSON(t, req, http.StatusCreated, nil)

	req, _ = authRequest("POST", server.URL+"/api/inventory/emergency", token, map[string]string{
		"item_code": "SAUCE",
	})
	var unit model.Unit
	doJSON(t, req, http.StatusCreated, &unit)
	if unit.Slot != 1 {
		t.Fatalf("expected slot 1, got %d", unit.Slot)
	}

	// Scan the shelf label: a session with the suggested transition.
	req, _ = authRequest("POST", server.URL+"/api/scan", token, map[string]string{
		"label": "SAUCE_1",
	})
	var scan struct {
		Session   workflow.Session `json:"session"`
		Suggested string           `json:"suggested"`
		FIFOHint  *model.FIFOHint  `json:"fifo_hint"`
	}
	doJSON(t, req, http.StatusOK, &scan)
	if scan.Suggested != model.UnitStatusInUse {
		t.Errorf("expected suggested in_use, got %q", scan.Suggested)
	}
	if scan.FIFOHint == nil || !scan.FIFOHint.UseThisFirst {
		t.Errorf("expected positive FIFO hint, got %+v", scan.FIFOHint)
	}

	// Confirm the suggested transition.
	req, _ = authRequest("POST", server.URL+"/api/scan/"+scan.Session.ID+"/status", token,
		map[string]string{})
	var updated model.Unit
	doJSON(t, req, http.StatusOK, &updated)
	if updated.Status != model.UnitStatusInUse {
		t.Errorf("expected in_use after confirm, got %q", updated.Status)
	}

	// The session is consumed.
	req, _ = authRequest("POST", server.URL+"/api/scan/"+scan.Session.ID+"/status", token,
		map[string]string{})
	doJSON(t, req, http.StatusNotFound, nil)
}

func TestScanManualOverride(t *testing.T) {
	server, token := setupTestServer(t)

	req, _ := authRequest("POST", server.URL+"/api/catalog", token, map[string]string{
		"item_name": "SAUCE",
	})
	doJSON(t, req, http.StatusCreated, nil)
	req, _ = authRequest("POST", server.URL+"/api/inventory/emergency", token, map[string]string{
		"item_code": "SAUCE",
	})
	doJSON(t, req, http.StatusCreated, nil)

	req, _ = authRequest("POST", server.URL+"/api/scan", token, map[string]string{
		"label": "SAUCE_1",
	})
	var scan struct {
		Session workflow.Session `json:"session"`
	}
	doJSON(t, req, http.StatusOK, &scan)

	// Skipping the cycle without an override is rejected.
	req, _ = authRequest("POST", server.URL+"/api/scan/"+scan.Session.ID+"/status", token,
		map[string]string{"status": model.UnitStatusDepleted})
	doJSON(t, req, http.StatusBadRequest, nil)

	// Open the override, then the same jump is allowed.
	req, _ = authRequest("POST", server.URL+"/api/scan/"+scan.Session.ID+"/status", token,
		map[string]any{"override": true})
	doJSON(t, req, http.StatusOK, nil)

	req, _ = authRequest("POST", server.URL+"/api/scan/"+scan.Session.ID+"/status", token,
		map[string]string{"status": model.UnitStatusDepleted})
	var updated model.Unit
	doJSON(t, req, http.StatusOK, &updated)
	if updated.Status != model.UnitStatusDepleted {
		t.Errorf("expected depleted after override, got %q", updated.Status)
	}
}

func TestScanUnknownLabel(t *testing.T) {
	server, token := setupTestServer(t)

	req, _ := authRequest("POST", server.URL+"/api/scan", token, map[string]string{
		"label": "SAUCE_1",
	})
	doJSON(t, req, http.StatusBadRequest, nil) // not whitelisted

	req, _ = authRequest("POST", server.URL+"/api/scan", token, map[string]string{
		"label": "no-underscore",
	})
	doJSON(t, req, http.StatusBadRequest, nil)
}

func TestTruckAPIFlow(t *testing.T) {
	server, token := setupTestServer(t)

	// Create a manifest.
	req, _ := authRequest("POST", server.URL+"/api/trucks", token, map[string]any{
		"truck_name":  "Tuesday AM",
		"day_of_week": "Tuesday",
		"quantities":  map[string]int{"SAUCE": 2},
	})
	var created struct {
		Truck   model.Truck             `json:"truck"`
		Entries []model.AnticipatedItem `json:"entries"`
	}
	doJSON(t, req, http.StatusCreated, &created)
	if len(created.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(created.Entries))
	}

	truckURL := server.URL + "/api/trucks/" + strconv.FormatInt(created.Truck.ID, 10)

	// Label sheet renders as PDF.
	req, _ = authRequest("GET", truckURL+"/labels?skip=3", token, nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("labels request: %v", err)
	}
	pdf, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for labels, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("expected application/pdf, got %q", ct)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF")) {
		t.Error("expected PDF payload")
	}

	// Scan one entry.
	req, _ = authRequest("POST", truckURL+"/scan", token, map[string]string{
		"label": created.Entries[0].BarcodeLabel,
	})
	var unit model.Unit
	doJSON(t, req, http.StatusCreated, &unit)
	if unit.Status != model.UnitStatusInStock {
		t.Errorf("expected in_stock, got %q", unit.Status)
	}

	// Duplicate scan is a 404 (entry no longer pending).
	req, _ = authRequest("POST", truckURL+"/scan", token, map[string]string{
		"label": created.Entries[0].BarcodeLabel,
	})
	doJSON(t, req, http.StatusNotFound, nil)

	// Summary reflects the scan.
	req, _ = authRequest("GET", truckURL+"/summary", token, nil)
	var summary model.TruckSummary
	doJSON(t, req, http.StatusOK, &summary)
	if summary.Scanned != 1 || summary.Pending != 1 {
		t.Errorf("unexpected summary: %+v", summary)
	}

	// Close; pending entry goes missing, further scans rejected.
	req, _ = authRequest("POST", truckURL+"/close", token, nil)
	var record model.ClosureRecord
	doJSON(t, req, http.StatusOK, &record)
	if record.ItemsProcessed != 1 || record.ItemsMissing != 1 {
		t.Errorf("unexpected closure record: %+v", record)
	}

	req, _ = authRequest("POST", truckURL+"/scan", token, map[string]string{
		"label": created.Entries[1].BarcodeLabel,
	})
	doJSON(t, req, http.StatusConflict, nil)

	// History is recorded.
	req, _ = authRequest("GET", server.URL+"/api/analytics/trucks/"+strconv.FormatInt(created.Truck.ID, 10), token, nil)
	var history model.TruckHistory
	doJSON(t, req, http.StatusOK, &history)
	if history.Closure == nil || history.Closure.ClosedBy != "admin" {
		t.Errorf("unexpected history closure: %+v", history.Closure)
	}
}

func TestLabelReprint(t *testing.T) {
	server, token := setupTestServer(t)

	req, _ := authRequest("GET", server.URL+"/api/labels/SAUCE_7", token, nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("label request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
		t.Errorf("expected image/png, got %q", ct)
	}

	req, _ = authRequest("GET", server.URL+"/api/labels/not-a-label", token, nil)
	doJSON(t, req, http.StatusBadRequest, nil)
}

func TestUnauthenticatedAccess(t *testing.T) {
	database := db.NewTestDB(t)
	router := NewRouter(database, testJWTSecret)
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	resp, _ := http.Get(server.URL + "/api/inventory")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 for unauthenticated request, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestRoleBasedAccess(t *testing.T) {
	database := db.NewTestDB(t)
	router := NewRouter(database, testJWTSecret)
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	ctx := context.Background()
	hash, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	user, _ := store.CreateUser(ctx, database, "worker", string(hash), model.RoleTruck)
	token, _ := auth.GenerateToken(testJWTSecret, user.ID, "worker", model.RoleTruck)

	// Truck operators cannot create manifests.
	req, _ := authRequest("POST", server.URL+"/api/trucks", token, map[string]any{
		"truck_name":  "t",
		"day_of_week": "Monday",
		"quantities":  map[string]int{"SAUCE": 1},
	})
	doJSON(t, req, http.StatusForbidden, nil)

	// Or manage users.
	req, _ = authRequest("GET", server.URL+"/api/users", token, nil)
	doJSON(t, req, http.StatusForbidden, nil)

	// But can list trucks.
	req, _ = authRequest("GET", server.URL+"/api/trucks", token, nil)
	doJSON(t, req, http.StatusOK, nil)
}

func TestUserManagementFlow(t *testing.T) {
	server, token := setupTestServer(t)

	req, _ := authRequest("POST", server.URL+"/api/users", token, map[string]string{
		"username": "worker",
		"password": "longenough",
		"role":     model.RoleTruck,
	})
	var user model.User
	doJSON(t, req, http.StatusCreated, &user)

	// Short password rejected.
	req, _ = authRequest("POST", server.URL+"/api/users", token, map[string]string{
		"username": "worker2",
		"password": "short",
		"role":     model.RoleTruck,
	})
	doJSON(t, req, http.StatusBadRequest, nil)

	req, _ = authRequest("DELETE", server.URL+"/api/users/"+strconv.FormatInt(user.ID, 10), token, nil)
	doJSON(t, req, http.StatusOK, nil)

	req, _ = authRequest("GET", server.URL+"/api/users", token, nil)
	var users []model.User
	doJSON(t, req, http.StatusOK, &users)
	if len(users) != 1 || users[0].Username != "admin" {
		t.Errorf("expected only admin left, got %+v", users)
	}
}

