package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/pders01/domainsnap/internal/models"
)

// ErrHashMismatch is returned by Verify when the stored hash does not match
// the manifest content.
var ErrHashMismatch = errors.New("snapshot hash mismatch")

// ParseError reports a malformed snapshot document. Path names the offending
// field, e.g. "manifest.entities[2].name".
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Path == "" {
		return "parse snapshot: " + e.Err.Error()
	}
	return fmt.Sprintf("parse snapshot: %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

var reHash = regexp.MustCompile(`^[0-9a-f]{16}$`)

// Marshal renders a snapshot document. The manifest is written in canonical
// order, so marshalling is stable for a given snapshot.
func Marshal(s *models.Snapshot) ([]byte, error) {
	if s == nil {
		return nil, fmt.Errorf("snapshot is nil: %w", models.ErrInvalidArgument)
	}
	out := *s
	out.CreatedAt = s.CreatedAt.UTC()
	out.Manifest = Canonicalize(s.Manifest)
	return marshalIndent(out)
}

// rawSnapshot mirrors the document with every required field optional so
// missing fields can be reported by name.
type rawSnapshot struct {
	Schema    string          `json:"$schema"`
	Name      *string         `json:"name"`
	Version   *string         `json:"version"`
	Hash      *string         `json:"hash"`
	CreatedAt *string         `json:"createdAt"`
	Manifest  json.RawMessage `json:"manifest"`
}

// Decode parses a snapshot document. It fails with *ParseError when the
// document is malformed, a required field is missing, or the embedded
// manifest breaks its input contract. The hash is not recomputed; use
// Verify for that.
func Decode(data []byte) (*models.Snapshot, error) {
	var raw rawSnapshot
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &ParseError{Err: err}
	}

	s := &models.Snapshot{Schema: raw.Schema}
	if raw.Name == nil || *raw.Name == "" {
		return nil, &ParseError{Path: "name", Err: errors.New("required field missing")}
	}
	s.Name = *raw.Name

	if raw.Version == nil {
		return nil, &ParseError{Path: "version", Err: errors.New("required field missing")}
	}
	v, err := models.ParseVersion(*raw.Version)
	if err != nil {
		return nil, &ParseError{Path: "version", Err: err}
	}
	s.Version = v

	if raw.Hash == nil {
		return nil, &ParseError{Path: "hash", Err: errors.New("required field missing")}
	}
	if !reHash.MatchString(*raw.Hash) {
		return nil, &ParseError{Path: "hash", Err: fmt.Errorf("expected 16 lowercase hex digits, got %q", *raw.Hash)}
	}
	s.Hash = *raw.Hash

	if raw.CreatedAt == nil {
		return nil, &ParseError{Path: "createdAt", Err: errors.New("required field missing")}
	}
	created, err := time.Parse(time.RFC3339Nano, *raw.CreatedAt)
	if err != nil {
		return nil, &ParseError{Path: "createdAt", Err: err}
	}
	s.CreatedAt = created.UTC()

	if len(bytes.TrimSpace(raw.Manifest)) == 0 || bytes.Equal(bytes.TrimSpace(raw.Manifest), []byte("null")) {
		return nil, &ParseError{Path: "manifest", Err: errors.New("required field missing")}
	}
	var m models.Manifest
	if err := json.Unmarshal(raw.Manifest, &m); err != nil {
		return nil, &ParseError{Path: manifestErrPath(err), Err: err}
	}
	if err := m.Validate(); err != nil {
		path := "manifest"
		var ve *models.ValidationError
		if errors.As(err, &ve) {
			path += "." + ve.Path
		}
		return nil, &ParseError{Path: path, Err: err}
	}
	if m.Name != s.Name {
		return nil, &ParseError{Path: "manifest.name", Err: fmt.Errorf("%q does not match snapshot name %q", m.Name, s.Name)}
	}
	if m.Version != s.Version {
		return nil, &ParseError{Path: "manifest.version", Err: fmt.Errorf("%s does not match snapshot version %s", m.Version, s.Version)}
	}
	s.Manifest = Canonicalize(m)
	return s, nil
}

func manifestErrPath(err error) string {
	var te *json.UnmarshalTypeError
	if errors.As(err, &te) && te.Field != "" {
		return "manifest." + te.Field
	}
	return "manifest"
}

// Verify recomputes the content hash of s and compares it with s.Hash.
func Verify(s *models.Snapshot) error {
	if s == nil {
		return fmt.Errorf("snapshot is nil: %w", models.ErrInvalidArgument)
	}
	got, err := Hash(&s.Manifest)
	if err != nil {
		return err
	}
	if got != s.Hash {
		return fmt.Errorf("%w: stored %s, computed %s", ErrHashMismatch, s.Hash, got)
	}
	return nil
}
