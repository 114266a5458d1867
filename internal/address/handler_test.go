package address

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func validate(t *testing.T, query, body string) (*httptest.ResponseRecorder, validateResponse) {
	t.Helper()
	h := NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil)))
	rec := httptest.NewRecorder()
	h.HandleValidate(rec, httptest.NewRequest(http.MethodPost, "/api/address/validate"+query, strings.NewReader(body)))

	var resp validateResponse
	if rec.Code == http.StatusOK {
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
	}
	return rec, resp
}

func TestHandler_ValidateWholeForm(t *testing.T) {
	_, resp := validate(t, "", `{"name":"A","country":"Nepal","mobile_number":"+977 9812345678"}`)

	if resp.Valid {
		t.Fatal("expected invalid draft")
	}
	for _, field := range []string{FieldName, FieldAddress, FieldWhatsappNumber} {
		if _, ok := resp.Fields[field]; !ok {
			t.Errorf("expected error for %s, got %+v", field, resp.Fields)
		}
	}
	if _, ok := resp.Fields[FieldCountry]; ok {
		t.Errorf("country should be valid")
	}
	if resp.Progress != 40 {
		t.Errorf("expected progress 40, got %d", resp.Progress)
	}
}

func TestHandler_ValidateSingleField(t *testing.T) {
	body := `{"name":"A","mobile_number":"9812345678"}`

	_, resp := validate(t, "?field=mobile_number", body)
	if resp.Valid || len(resp.Fields) != 1 {
		t.Errorf("expected only mobile_number to fail, got %+v", resp.Fields)
	}

	_, resp = validate(t, "?field=pincode", body)
	if !resp.Valid {
		t.Errorf("pincode is optional, got %+v", resp.Fields)
	}

	rec, _ := validate(t, "?field=shoe_size", body)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status 400 for unknown field, got %d", rec.Code)
	}
}

func TestHandler_ValidateComplete(t *testing.T) {
	_, resp := validate(t, "", `{"name":"Asha","address":"Thamel","country":"nepal","mobile_number":"+977 9812345678","whatsapp_number":"+9779812345678"}`)
	if !resp.Valid || !resp.Complete || resp.Progress != 100 {
		t.Errorf("expected complete address, got %+v", resp)
	}
}

func TestHandler_Countries(t *testing.T) {
	h := NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil)))
	rec := httptest.NewRecorder()
	h.HandleCountries(rec, httptest.NewRequest(http.MethodGet, "/api/countries", nil))

	var got []string
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(got) == 0 || got[len(got)-1] != "Other" {
		t.Errorf("expected Other as the last country, got %v", got)
	}
}
