// Package client is the HTTP client the CLI uses to talk to a BlockVault
// server.
package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"blockvault/internal/domain"
	"blockvault/internal/services/vault"
)

// Client talks to one server with an optional bearer token.
type Client struct {
	Base  string
	Token string
	HTTP  *http.Client
}

// New returns a client for the server at base.
func New(base, token string) *Client {
	return &Client{Base: strings.TrimRight(base, "/"), Token: token, HTTP: http.DefaultClient}
}

// GetNonce requests a login challenge and returns the message to sign.
func (c *Client) GetNonce(address string) (nonce, message string, err error) {
	var out struct {
		Nonce   string `json:"nonce"`
		Message string `json:"message"`
	}
	err = c.post("/auth/get_nonce", map[string]string{"address": address}, &out)
	return out.Nonce, out.Message, err
}

// Login exchanges a signature for a bearer token and remembers it.
func (c *Client) Login(address, signature string) (token, role string, err error) {
	var out struct {
		Token string `json:"token"`
		Role  string `json:"role"`
	}
	in := map[string]string{"address": address, "signature": signature}
	if err := c.post("/auth/login", in, &out); err != nil {
		return "", "", err
	}
	c.Token = out.Token
	return out.Token, out.Role, nil
}

// Me returns the authenticated identity.
func (c *Client) Me() (address, role string, err error) {
	var out struct {
		Address string `json:"address"`
		Role    string `json:"role"`
	}
	err = c.getJSON("/auth/me", &out)
	return out.Address, out.Role, err
}

// RegisterSharingKey publishes the RSA public key used to receive shares.
func (c *Client) RegisterSharingKey(pemKey string) error {
	return c.do(http.MethodPut, "/users/profile", map[string]string{"sharing_pubkey": pemKey}, nil)
}

// Upload sends content as a multipart form.
func (c *Client) Upload(name string, content []byte, key, aad string) (domain.File, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", name)
	if err != nil {
		return domain.File{}, err
	}
	if _, err := fw.Write(content); err != nil {
		return domain.File{}, err
	}
	_ = mw.WriteField("key", key)
	if aad != "" {
		_ = mw.WriteField("aad", aad)
	}
	if err := mw.Close(); err != nil {
		return domain.File{}, err
	}

	req, err := http.NewRequest(http.MethodPost, c.Base+"/files", &body)
	if err != nil {
		return domain.File{}, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var f domain.File
	return f, c.send(req, &f)
}

// ListFiles fetches one page of the caller's files.
func (c *Client) ListFiles(after int64, limit int) (domain.FilePage, error) {
	q := url.Values{}
	if after > 0 {
		q.Set("after", strconv.FormatInt(after, 10))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	path := "/files"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	var page domain.FilePage
	return page, c.getJSON(path, &page)
}

// Download fetches and decrypts a file. The filename comes from the
// Content-Disposition header.
func (c *Client) Download(id, key string) (string, []byte, error) {
	req, err := http.NewRequest(http.MethodGet, c.Base+"/files/"+url.PathEscape(id), nil)
	if err != nil {
		return "", nil, err
	}
	req.Header.Set("X-File-Key", key)
	c.authorize(req)

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return "", nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", nil, responseError(resp)
	}

	name := "download"
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil {
		if fn := params["filename"]; fn != "" {
			name = fn
		}
	}
	content, err := io.ReadAll(resp.Body)
	return name, content, err
}

// DeleteFile removes a file and its shares.
func (c *Client) DeleteFile(id string) error {
	return c.do(http.MethodDelete, "/files/"+url.PathEscape(id), nil, nil)
}

// VerifyFile reports blob presence and integrity anchors.
func (c *Client) VerifyFile(id string) (vault.Status, error) {
	var st vault.Status
	return st, c.getJSON("/files/"+url.PathEscape(id)+"/verify", &st)
}

// ShareFile grants a recipient access, wrapping the passphrase server-side.
func (c *Client) ShareFile(id, recipient, passphrase, note string, expiresAt int64) (domain.Share, error) {
	in := map[string]any{
		"recipient":  recipient,
		"passphrase": passphrase,
		"note":       note,
		"expires_at": expiresAt,
	}
	var sh domain.Share
	return sh, c.post("/files/"+url.PathEscape(id)+"/share", in, &sh)
}

// IncomingShares lists unexpired shares granted to the caller.
func (c *Client) IncomingShares() ([]domain.Share, error) {
	return c.shareList("/files/shared")
}

// OutgoingShares lists the caller's grants.
func (c *Client) OutgoingShares() ([]domain.Share, error) {
	return c.shareList("/files/shares/outgoing")
}

func (c *Client) shareList(path string) ([]domain.Share, error) {
	var out struct {
		Items []domain.Share `json:"items"`
	}
	return out.Items, c.getJSON(path, &out)
}

// RevokeShare deletes a share grant.
func (c *Client) RevokeShare(id string) error {
	return c.do(http.MethodDelete, "/files/shares/"+url.PathEscape(id), nil, nil)
}

// Notarize records a document and returns it with its proof.
func (c *Client) Notarize(title, content, fileID string) (domain.LegalDocument, error) {
	in := map[string]string{"title": title, "content": content, "file_id": fileID}
	var doc domain.LegalDocument
	return doc, c.post("/legal/notarize", in, &doc)
}

// ListDocuments returns the caller's legal documents.
func (c *Client) ListDocuments() ([]domain.LegalDocument, error) {
	var out struct {
		Items []domain.LegalDocument `json:"items"`
	}
	return out.Items, c.getJSON("/legal/documents", &out)
}

// VerifyDocument rechecks a stored notarization proof.
func (c *Client) VerifyDocument(id string) (bool, error) {
	var out struct {
		Valid bool `json:"valid"`
	}
	err := c.getJSON("/legal/documents/"+url.PathEscape(id)+"/verify", &out)
	return out.Valid, err
}

// RequestSignature asks signer to e-sign the document.
func (c *Client) RequestSignature(id, signer string) (domain.LegalDocument, error) {
	var doc domain.LegalDocument
	return doc, c.post("/legal/documents/"+url.PathEscape(id)+"/esign",
		map[string]string{"signer": signer}, &doc)
}

// CancelSignature withdraws a pending signature request.
func (c *Client) CancelSignature(id string) (domain.LegalDocument, error) {
	var doc domain.LegalDocument
	return doc, c.do(http.MethodDelete, "/legal/documents/"+url.PathEscape(id)+"/esign", nil, &doc)
}

// RevokeAccess drops the address's shares of the document's backing file.
func (c *Client) RevokeAccess(id, address string) (int, error) {
	var out struct {
		SharesRemoved int `json:"shares_removed"`
	}
	err := c.post("/legal/documents/"+url.PathEscape(id)+"/revoke",
		map[string]string{"address": address}, &out)
	return out.SharesRemoved, err
}

// Redact scans content for PII.
func (c *Client) Redact(content string) (domain.RedactionResult, error) {
	var res domain.RedactionResult
	return res, c.post("/legal/redact", map[string]string{"content": content}, &res)
}

// Summarize runs the verifiable summary pipeline over a vault file.
func (c *Client) Summarize(id, key string, maxLength, minLength int) (domain.SummaryResult, error) {
	in := map[string]any{"key": key, "max_length": maxLength, "min_length": minLength}
	var res domain.SummaryResult
	return res, c.post("/files/"+url.PathEscape(id)+"/zkml-summary", in, &res)
}

func (c *Client) post(path string, in, out any) error {
	return c.do(http.MethodPost, path, in, out)
}

func (c *Client) getJSON(path string, out any) error {
	return c.do(http.MethodGet, path, nil, out)
}

func (c *Client) do(method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf := new(bytes.Buffer)
		if err := json.NewEncoder(buf).Encode(in); err != nil {
			return err
		}
		body = buf
	}
	req, err := http.NewRequest(method, c.Base+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, out)
}

func (c *Client) send(req *http.Request, out any) error {
	c.authorize(req)
	resp, err := c.httpClient().Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return responseError(resp)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func (c *Client) authorize(req *http.Request) {
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
}

func (c *Client) httpClient() *http.Client {
	if c.HTTP != nil {
		return c.HTTP
	}
	return http.DefaultClient
}

// responseError surfaces the server's error message with its status.
func responseError(resp *http.Response) error {
	var body struct {
		Error string `json:"error"`
	}
	_ = json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&body)
	if body.Error == "" {
		body.Error = resp.Status
	}
	return fmt.Errorf("server: %s (status %d)", body.Error, resp.StatusCode)
}
