// Local stand-in for the Entra ID token endpoint and the D365 F&O OData
// endpoint, so the MCP tools can be exercised without a real tenant.
//
// Run it, then point the server at it:
//
//	LOGIN_BASE_URL=http://localhost:8181
//	D365_ENV_URL=http://localhost:8181
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

var customers = []map[string]any{
	{"PartyNumber": "P-0001", "CustomerAccount": "US-001", "Name": "Contoso Retail"},
	{"PartyNumber": "P-0002", "CustomerAccount": "US-002", "Name": "Fabrikam Manufacturing"},
	{"PartyNumber": "P-0003", "CustomerAccount": "EU-001", "Name": "Adventure Works"},
	{"PartyNumber": "P-0004", "CustomerAccount": "EU-002", "Name": "Northwind Traders"},
	{"CustomerAccount": "APAC-001", "DisplayName": "Tailspin Toys"},
	{"AccountNumber": "APAC-002", "LegalName": "Wide World Importers"},
}

func main() {
	_ = godotenv.Load()

	port := os.Getenv("MOCK_PORT")
	if port == "" {
		port = "8181"
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", route)

	log.Printf("mock identity + OData server on :%s", port)
	if err := http.ListenAndServe(":"+port, mux); err != nil {
		log.Fatal(err)
	}
}

func route(w http.ResponseWriter, r *http.Request) {
	switch {
	case strings.HasSuffix(r.URL.Path, "/oauth2/token"):
		handleToken(w, r)
	case strings.HasPrefix(r.URL.Path, "/data/"):
		handleOData(w, r)
	default:
		http.NotFound(w, r)
	}
}

func handleToken(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST only", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil || r.FormValue("grant_type") != "client_credentials" {
		http.Error(w, `{"error":"unsupported_grant_type"}`, http.StatusBadRequest)
		return
	}
	if r.FormValue("client_id") == "" || r.FormValue("client_secret") == "" {
		http.Error(w, `{"error":"invalid_client"}`, http.StatusUnauthorized)
		return
	}

	writeJSON(w, map[string]any{
		"access_token": "mock-token",
		"token_type":   "Bearer",
		"expires_in":   3599,
	})
}

func handleOData(w http.ResponseWriter, r *http.Request) {
	auth := r.Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		http.Error(w, "missing bearer token", http.StatusUnauthorized)
		return
	}

	entity := strings.TrimPrefix(r.URL.Path, "/data/")
	if entity != "CustomersV3" {
		writeStatus(w, http.StatusNotFound, map[string]any{
			"error": map[string]any{"message": fmt.Sprintf("entity set %q not found", entity)},
		})
		return
	}

	rows := customers
	if top := topParam(r.URL.Query()); top >= 0 && top < len(rows) {
		rows = rows[:top]
	}
	writeJSON(w, map[string]any{"value": rows})
}

func topParam(q url.Values) int {
	v := q.Get("$top")
	if v == "" {
		return -1
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return -1
	}
	return n
}

func writeJSON(w http.ResponseWriter, body any) {
	writeStatus(w, http.StatusOK, body)
}

func writeStatus(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
