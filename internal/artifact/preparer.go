package artifact

import (
	"os"
	"strconv"

	"permasnap/internal/services"
	"permasnap/internal/tags"
)

// Prepared is an artifact ready for publication.
type Prepared struct {
	Data        []byte
	MediaType   string
	ContentHash string
	Tags        tags.Set
	Role        Role
}

// Preparer reads captured files, hashes them, and builds their tag sets.
type Preparer struct {
	algorithm string
}

// NewPreparer constructs a preparer for the named digest ("" selects sha256).
func NewPreparer(algorithm string) (*Preparer, error) {
	normalized, err := normalizeAlgorithm(algorithm)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "prepare", "hash algorithm", err.Error(), nil)
	}
	return &Preparer{algorithm: normalized}, nil
}

// Algorithm returns the configured digest name.
func (p *Preparer) Algorithm() string {
	return p.algorithm
}

// Prepare reads path and returns its bytes, media type, digest, and tags.
func (p *Preparer) Prepare(path, title, sourceURL string, timestamp int64, role Role) (Prepared, error) {
	if !role.Valid() {
		return Prepared{}, services.Wrap(services.ErrRead, "prepare", "resolve role", "unknown artifact role for "+path, nil)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Prepared{}, services.Wrap(services.ErrRead, "prepare", "read artifact", path, err)
	}

	sum := digestHex(p.algorithm, data)

	mediaType := MediaType(path)
	prefix := role.String() + ":"
	set := tags.Identity().
		Add(tags.NameContentType, mediaType).
		Add(prefix+"title", title).
		Add(prefix+"url", sourceURL).
		Add(prefix+"timestamp", strconv.FormatInt(timestamp, 10)).
		Add(tags.NameFileHash, sum)
	if p.algorithm != DefaultHashAlgorithm {
		set = set.Add(tags.NameFileHashAlgorithm, p.algorithm)
	}

	return Prepared{
		Data:        data,
		MediaType:   mediaType,
		ContentHash: sum,
		Tags:        set,
		Role:        role,
	}, nil
}
