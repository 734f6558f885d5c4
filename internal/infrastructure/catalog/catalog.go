package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/thomas-vilte/promptcache/internal/errors"
)

// DefaultPath is where the sample video metadata ships.
const DefaultPath = "data/sample_videos_metadata.json"

const charsPerToken = 4

// Catalog is a metadata document re-serialized for embedding in a prompt.
// Its schema is opaque.
type Catalog struct {
	Path    string
	Payload string
	Records int
}

// Load reads a JSON document and re-indents it with two spaces. Key order and
// string contents are kept as written.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ErrCatalogNotFound.WithError(err).WithContext("path", path)
		}
		return nil, errors.ErrCatalogNotFound.WithError(err).WithContext("path", path).
			WithSuggestion("Check the file permissions")
	}
	return Parse(path, data)
}

// Parse builds a Catalog from raw JSON bytes.
func Parse(path string, data []byte) (*Catalog, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, errors.ErrCatalogInvalid.WithError(err).WithContext("path", path)
	}
	if dec.More() {
		return nil, errors.ErrCatalogInvalid.WithError(fmt.Errorf("trailing data after JSON document")).
			WithContext("path", path)
	}

	var payload bytes.Buffer
	if err := json.Indent(&payload, bytes.TrimSpace(data), "", "  "); err != nil {
		return nil, errors.NewAppError(errors.TypeInternal, "failed to encode metadata", err)
	}

	c := &Catalog{
		Path:    path,
		Payload: payload.String(),
		Records: countRecords(doc),
	}

	slog.Debug("metadata catalog loaded",
		"path", path,
		"count", c.Records,
		"size", len(c.Payload))

	return c, nil
}

// Size is the payload length in characters.
func (c *Catalog) Size() int {
	return len([]rune(c.Payload))
}

// EstimatedTokens approximates the payload's token count at four characters
// per token. Use it for sizing hints only; the API reports exact usage.
func (c *Catalog) EstimatedTokens() int {
	return (c.Size() + charsPerToken - 1) / charsPerToken
}

func countRecords(doc any) int {
	switch v := doc.(type) {
	case []any:
		return len(v)
	case map[string]any:
		return len(v)
	default:
		return 1
	}
}
