package domain

// File is the metadata record for an encrypted blob.
type File struct {
	ID        string  `json:"file_id"`
	Owner     Address `json:"owner"`
	Name      string  `json:"name"`
	EncName   string  `json:"-"` // blob filename inside the storage dir
	Size      int64   `json:"size"`
	CreatedAt int64   `json:"created_at"` // unix milliseconds
	AAD       string  `json:"aad,omitempty"`
	SHA256    string  `json:"sha256"`
	CID       string  `json:"cid,omitempty"`
}

// DisplayName returns the original filename, or a placeholder when the
// record carries none.
func (f File) DisplayName() string {
	if f.Name == "" {
		return "Unknown File"
	}
	return f.Name
}

// FilePage is one page of an owner's file listing.
type FilePage struct {
	Items     []File `json:"items"`
	NextAfter int64  `json:"next_after,omitempty"`
	HasMore   bool   `json:"has_more"`
}
