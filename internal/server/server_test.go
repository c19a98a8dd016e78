package server_test

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"go.uber.org/zap"

	"blockvault/internal/auth"
	"blockvault/internal/blob"
	"blockvault/internal/client"
	"blockvault/internal/crypto"
	"blockvault/internal/domain"
	"blockvault/internal/server"
	"blockvault/internal/services/legal"
	"blockvault/internal/services/vault"
	"blockvault/internal/services/zkml"
	"blockvault/internal/store"
	"blockvault/internal/summarize"
	"blockvault/internal/wallet"
	"blockvault/internal/zkproof"
)

// fakeNotary keeps notarization fast; the Groth16 path has its own tests.
type fakeNotary struct{}

func (fakeNotary) ProveDigest(digest []byte) (domain.Proof, error) {
	h := hex.EncodeToString(digest)
	p := zkproof.Envelope(map[string]string{"digest": h}, []string{zkproof.TruncatedSignal(h)})
	p.Raw = []byte{1}
	return p, nil
}

func (fakeNotary) VerifyDigest(p *domain.Proof, digest []byte) error {
	if err := zkproof.VerifyEnvelope(p); err != nil {
		return err
	}
	if p.CircuitInputs["digest"] != hex.EncodeToString(digest) {
		return errors.New("digest mismatch")
	}
	return nil
}

func (fakeNotary) HealthCheck() error { return nil }

type noPinner struct{}

func (noPinner) Add(context.Context, string, []byte) (string, error) { return "", nil }
func (noPinner) Cat(context.Context, string) ([]byte, error)         { return nil, errors.New("off") }
func (noPinner) Unpin(context.Context, string) error                 { return nil }
func (noPinner) GatewayURL(string) string                            { return "" }

type env struct {
	srv   *httptest.Server
	store *store.Store
}

func newEnv(t *testing.T) *env {
	t.Helper()
	dir := t.TempDir()
	st, err := store.Open(context.Background(), filepath.Join(dir, "vault.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { st.Close() })
	blobs, err := blob.NewDiskStore(filepath.Join(dir, "storage"))
	if err != nil {
		t.Fatal(err)
	}

	log := zap.NewNop()
	signer := auth.NewTokenSigner([]byte("integration-test-secret"), time.Hour)
	authSvc := auth.NewService(st, st, signer, nil)
	vaultSvc := vault.NewService(st, st, st, blobs, noPinner{}, log)
	legalSvc := legal.NewService(st, st, st, st, fakeNotary{}, log)
	zkmlSvc := zkml.NewService(vaultSvc, summarize.New())

	s := server.New(server.Deps{
		Log:        log,
		Auth:       authSvc,
		Vault:      vaultSvc,
		Legal:      legalSvc,
		ZKML:       zkmlSvc,
		DB:         st,
		Prover:     fakeNotary{},
		StorageDir: blobs.Dir(),
	})
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return &env{srv: srv, store: st}
}

// login runs the full challenge/response flow for a fresh wallet.
func (e *env) login(t *testing.T) (*client.Client, *secp256k1.PrivateKey, domain.Address) {
	t.Helper()
	key, err := wallet.GenerateKey()
	if err != nil {
		t.Fatal(err)
	}
	addr := wallet.AddressFromPubKey(key.PubKey())

	c := client.New(e.srv.URL, "")
	_, msg, err := c.GetNonce(addr.String())
	if err != nil {
		t.Fatalf("get nonce: %v", err)
	}
	sig := wallet.SignPersonal(key, msg)
	if _, _, err := c.Login(addr.String(), "0x"+hex.EncodeToString(sig)); err != nil {
		t.Fatalf("login: %v", err)
	}
	return c, key, addr
}

func (e *env) registerKey(t *testing.T, c *client.Client) {
	t.Helper()
	rsaKey, err := crypto.GenerateRSA()
	if err != nil {
		t.Fatal(err)
	}
	pem, err := crypto.EncodePublicKeyPEM(&rsaKey.PublicKey)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.RegisterSharingKey(string(pem)); err != nil {
		t.Fatalf("register sharing key: %v", err)
	}
}

func TestAuthFlow(t *testing.T) {
	e := newEnv(t)
	c, _, addr := e.login(t)

	gotAddr, role, err := c.Me()
	if err != nil {
		t.Fatalf("me: %v", err)
	}
	if gotAddr != addr.String() || role != "owner" {
		t.Errorf("me = %s %s", gotAddr, role)
	}

	// A bad token is rejected.
	bad := client.New(e.srv.URL, "not-a-token")
	if _, _, err := bad.Me(); err == nil {
		t.Error("bad token accepted")
	}
	// No token at all is rejected.
	resp, err := http.Get(e.srv.URL + "/auth/me")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("unauthenticated /auth/me status = %d", resp.StatusCode)
	}
}

func TestLogin_ReplayRejected(t *testing.T) {
	e := newEnv(t)

	key, _ := wallet.GenerateKey()
	addr := wallet.AddressFromPubKey(key.PubKey())
	c := client.New(e.srv.URL, "")
	_, msg, err := c.GetNonce(addr.String())
	if err != nil {
		t.Fatal(err)
	}
	sigHex := "0x" + hex.EncodeToString(wallet.SignPersonal(key, msg))
	if _, _, err := c.Login(addr.String(), sigHex); err != nil {
		t.Fatal(err)
	}
	if _, _, err := c.Login(addr.String(), sigHex); err == nil {
		t.Fatal("replayed login accepted")
	}
}

func TestGetNonce_ReturnsChecksummedAddress(t *testing.T) {
	e := newEnv(t)

	key, _ := wallet.GenerateKey()
	addr := wallet.AddressFromPubKey(key.PubKey())

	body, _ := json.Marshal(map[string]string{"address": strings.ToLower(addr.String())})
	resp, err := http.Post(e.srv.URL+"/auth/get_nonce", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var out struct {
		Address string `json:"address"`
		Nonce   string `json:"nonce"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if out.Address != addr.String() {
		t.Errorf("address = %q, want checksummed %q", out.Address, addr)
	}
	if out.Nonce == "" || !strings.Contains(out.Message, out.Nonce) {
		t.Errorf("nonce = %q, message = %q", out.Nonce, out.Message)
	}
}

func TestFileLifecycle(t *testing.T) {
	e := newEnv(t)
	c, _, _ := e.login(t)

	content := []byte("confidential agreement")
	f, err := c.Upload("deal.txt", content, "filepw", "case-9")
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	name, got, err := c.Download(f.ID, "filepw")
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	if name != "deal.txt" || !bytes.Equal(got, content) {
		t.Errorf("download = %q (%d bytes)", name, len(got))
	}

	if _, _, err := c.Download(f.ID, "wrong"); err == nil ||
		!strings.Contains(err.Error(), "status 400") {
		t.Errorf("wrong key error = %v", err)
	}

	st, err := c.VerifyFile(f.ID)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !st.BlobExists || st.SHA256 != f.SHA256 {
		t.Errorf("status = %+v", st)
	}

	page, err := c.ListFiles(0, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page.Items) != 1 || page.HasMore {
		t.Errorf("page = %+v", page)
	}

	if err := c.DeleteFile(f.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, _, err := c.Download(f.ID, "filepw"); err == nil ||
		!strings.Contains(err.Error(), "status 404") {
		t.Errorf("deleted download error = %v", err)
	}
}

func TestUpload_EmptyContentRejected(t *testing.T) {
	e := newEnv(t)
	c, _, _ := e.login(t)

	if _, err := c.Upload("empty.txt", nil, "pw", ""); err == nil ||
		!strings.Contains(err.Error(), "status 400") {
		t.Errorf("empty upload error = %v", err)
	}
}

func TestSharing_EndToEnd(t *testing.T) {
	e := newEnv(t)
	owner, _, _ := e.login(t)
	recipient, _, recipientAddr := e.login(t)
	e.registerKey(t, recipient)

	f, err := owner.Upload("shared.txt", []byte("for your eyes"), "pw", "")
	if err != nil {
		t.Fatal(err)
	}
	sh, err := owner.ShareFile(f.ID, recipientAddr.String(), "pw", "please review", 0)
	if err != nil {
		t.Fatalf("share: %v", err)
	}
	if sh.EncryptedKey == "" {
		t.Error("share response missing wrapped key")
	}

	in, err := recipient.IncomingShares()
	if err != nil {
		t.Fatal(err)
	}
	if len(in) != 1 || in[0].FileName != "shared.txt" {
		t.Fatalf("incoming = %+v", in)
	}

	if _, got, err := recipient.Download(f.ID, "pw"); err != nil || string(got) != "for your eyes" {
		t.Fatalf("recipient download: %v", err)
	}

	out, err := owner.OutgoingShares()
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 1 || out[0].EncryptedKey != "" {
		t.Errorf("outgoing = %+v", out)
	}

	if err := recipient.RevokeShare(sh.ID); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if _, _, err := recipient.Download(f.ID, "pw"); err == nil {
		t.Error("download allowed after revocation")
	}
}

func TestLegalWorkflow(t *testing.T) {
	e := newEnv(t)
	c, _, _ := e.login(t)
	other, _, otherAddr := e.login(t)

	doc, err := c.Notarize("NDA", "the agreement text", "")
	if err != nil {
		t.Fatalf("notarize: %v", err)
	}
	if doc.Status != domain.StatusNotarized || doc.Proof == nil {
		t.Errorf("document = %+v", doc)
	}

	valid, err := c.VerifyDocument(doc.ID)
	if err != nil || !valid {
		t.Fatalf("verify: valid=%v err=%v", valid, err)
	}

	// Strangers cannot see the document.
	if _, err := other.VerifyDocument(doc.ID); err == nil {
		t.Error("stranger verified a private document")
	}

	req, err := c.RequestSignature(doc.ID, otherAddr.String())
	if err != nil {
		t.Fatalf("request signature: %v", err)
	}
	if req.Status != domain.StatusSignatureRequested {
		t.Errorf("status = %s", req.Status)
	}
	cancelled, err := c.CancelSignature(doc.ID)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if cancelled.Status != domain.StatusNotarized {
		t.Errorf("status after cancel = %s", cancelled.Status)
	}

	docs, err := c.ListDocuments()
	if err != nil {
		t.Fatal(err)
	}
	if len(docs) != 1 {
		t.Errorf("documents = %d", len(docs))
	}
}

func TestRevokeAccess_EndToEnd(t *testing.T) {
	e := newEnv(t)
	owner, _, _ := e.login(t)
	recipient, _, recipientAddr := e.login(t)
	e.registerKey(t, recipient)

	f, err := owner.Upload("backing.txt", []byte("contract body"), "pw", "")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := owner.ShareFile(f.ID, recipientAddr.String(), "pw", "", 0); err != nil {
		t.Fatal(err)
	}
	doc, err := owner.Notarize("contract", "contract body", f.ID)
	if err != nil {
		t.Fatal(err)
	}

	removed, err := owner.RevokeAccess(doc.ID, recipientAddr.String())
	if err != nil {
		t.Fatalf("revoke access: %v", err)
	}
	if removed != 1 {
		t.Errorf("shares removed = %d, want 1", removed)
	}
	if _, _, err := recipient.Download(f.ID, "pw"); err == nil {
		t.Error("download allowed after access revocation")
	}
}

func TestRedactAndSummarize(t *testing.T) {
	e := newEnv(t)
	c, _, _ := e.login(t)

	res, err := c.Redact("SSN 123-45-6789 belongs to jane@example.com")
	if err != nil {
		t.Fatalf("redact: %v", err)
	}
	if len(res.Matches) != 2 || !strings.Contains(res.Redacted, "[REDACTED:SSN]") {
		t.Errorf("redaction = %+v", res)
	}

	article := "The committee approved the budget. The chair thanked the members for their work. " +
		"Next quarter the committee will review capital spending in detail."
	f, err := c.Upload("minutes.txt", []byte(article), "pw", "")
	if err != nil {
		t.Fatal(err)
	}
	sum, err := c.Summarize(f.ID, "pw", 120, 20)
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if sum.Summary == "" || sum.Proof.Commitment == "" || len(sum.Proof.PublicSignals) != 4 {
		t.Errorf("summary = %+v", sum)
	}
}

func TestHealthAndIndex(t *testing.T) {
	e := newEnv(t)

	resp, err := http.Get(e.srv.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("health status = %d", resp.StatusCode)
	}
	var body struct {
		Status     string            `json:"status"`
		Components map[string]string `json:"components"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Status != "healthy" || body.Components["db"] != "ok" ||
		body.Components["storage"] != "ok" || body.Components["prover"] != "ok" {
		t.Errorf("health = %+v", body)
	}

	idx, err := http.Get(e.srv.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	idx.Body.Close()
	if idx.StatusCode != http.StatusOK {
		t.Errorf("index status = %d", idx.StatusCode)
	}
}

func TestCORSPreflight(t *testing.T) {
	e := newEnv(t)

	req, _ := http.NewRequest(http.MethodOptions, e.srv.URL+"/files", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("preflight status = %d", resp.StatusCode)
	}
	if resp.Header.Get("Access-Control-Allow-Origin") != "*" {
		t.Errorf("allow-origin = %q", resp.Header.Get("Access-Control-Allow-Origin"))
	}
}

func TestViewerRoleCannotUpload(t *testing.T) {
	e := newEnv(t)
	c, _, addr := e.login(t)

	// Demote to viewer directly in the store.
	if err := e.store.SetRole(context.Background(), addr, domain.RoleViewer); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Upload("x.txt", []byte("x"), "pw", ""); err == nil ||
		!strings.Contains(err.Error(), "status 403") {
		t.Errorf("viewer upload error = %v", err)
	}
	// Reads still work.
	if _, err := c.ListFiles(0, 0); err != nil {
		t.Errorf("viewer list: %v", err)
	}
}
