package ipfs_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"blockvault/internal/ipfs"
)

func TestClient_AddCatUnpin(t *testing.T) {
	content := map[string][]byte{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v0/add":
			if err := r.ParseMultipartForm(1 << 20); err != nil {
				t.Errorf("parse multipart: %v", err)
			}
			f, _, err := r.FormFile("file")
			if err != nil {
				t.Errorf("form file: %v", err)
				return
			}
			data, _ := io.ReadAll(f)
			content["QmTest123"] = data
			json.NewEncoder(w).Encode(map[string]string{"Hash": "QmTest123"})
		case "/api/v0/cat":
			data, ok := content[r.URL.Query().Get("arg")]
			if !ok {
				http.Error(w, "not found", http.StatusInternalServerError)
				return
			}
			w.Write(data)
		case "/api/v0/pin/rm":
			delete(content, r.URL.Query().Get("arg"))
			w.Write([]byte("{}"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := ipfs.New(srv.URL, "https://gw.example.com", "")
	ctx := context.Background()

	cid, err := c.Add(ctx, "doc.enc", []byte("sealed bytes"))
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if cid != "QmTest123" {
		t.Fatalf("cid = %q", cid)
	}

	got, err := c.Cat(ctx, cid)
	if err != nil {
		t.Fatalf("cat: %v", err)
	}
	if string(got) != "sealed bytes" {
		t.Errorf("cat returned %q", got)
	}

	if url := c.GatewayURL(cid); url != "https://gw.example.com/ipfs/QmTest123" {
		t.Errorf("gateway url = %q", url)
	}

	if err := c.Unpin(ctx, cid); err != nil {
		t.Fatalf("unpin: %v", err)
	}
}

func TestClient_AuthHeaders(t *testing.T) {
	var authz string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authz = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(map[string]string{"Hash": "Qm1"})
	}))
	defer srv.Close()
	ctx := context.Background()

	// A token with a colon is project-id:secret basic auth.
	if _, err := ipfs.New(srv.URL, "", "proj:secret").Add(ctx, "a", []byte("x")); err != nil {
		t.Fatal(err)
	}
	req, _ := http.NewRequest(http.MethodGet, "/", nil)
	req.SetBasicAuth("proj", "secret")
	if authz != req.Header.Get("Authorization") {
		t.Errorf("basic auth header = %q", authz)
	}

	// Anything else is a bearer token.
	if _, err := ipfs.New(srv.URL, "", "tok123").Add(ctx, "a", []byte("x")); err != nil {
		t.Fatal(err)
	}
	if authz != "Bearer tok123" {
		t.Errorf("bearer header = %q", authz)
	}
}

func TestClient_Disabled(t *testing.T) {
	c := ipfs.New("", "", "")
	ctx := context.Background()

	if c.Enabled() {
		t.Fatal("client with no API URL reports enabled")
	}
	cid, err := c.Add(ctx, "a", []byte("x"))
	if err != nil || cid != "" {
		t.Errorf("disabled add = (%q, %v), want empty", cid, err)
	}
	if _, err := c.Cat(ctx, "Qm1"); !errors.Is(err, ipfs.ErrDisabled) {
		t.Errorf("disabled cat error = %v, want ErrDisabled", err)
	}
	if err := c.Unpin(ctx, "Qm1"); err != nil {
		t.Errorf("disabled unpin = %v", err)
	}
	if url := c.GatewayURL("Qm1"); url != "" {
		t.Errorf("gateway url = %q, want empty", url)
	}
}
