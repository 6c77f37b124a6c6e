// Package tags models the ordered name/value metadata attached to every
// published transaction.
package tags

import "encoding/json"

// Application identity stamped on every upload.
const (
	AppName    = "Permasnap"
	AppVersion = "0.1.0"
)

// Well-known tag names.
const (
	NameAppName           = "App-Name"
	NameAppVersion        = "App-Version"
	NameContentType       = "Content-Type"
	NameFileHash          = "File-Hash"
	NameFileHashAlgorithm = "File-Hash-Algorithm"
	NameTitle             = "Title"
	NameType              = "Type"
	NameURL               = "Url"
	NameTimestamp         = "Timestamp"
	NameArchiver          = "Archiver"
)

// Tag is one name/value pair. The JSON form matches the upload gateway.
type Tag struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Set is an ordered tag list. Order is preserved on the wire.
type Set []Tag

// Identity returns the App-Name and App-Version tags that lead every set.
func Identity() Set {
	return Set{
		{Name: NameAppName, Value: AppName},
		{Name: NameAppVersion, Value: AppVersion},
	}
}

// Add appends a tag and returns the extended set.
func (s Set) Add(name, value string) Set {
	return append(s, Tag{Name: name, Value: value})
}

// Get returns the first value recorded under name.
func (s Set) Get(name string) (string, bool) {
	for _, tag := range s {
		if tag.Name == name {
			return tag.Value, true
		}
	}
	return "", false
}

// Names lists tag names in order.
func (s Set) Names() []string {
	names := make([]string, len(s))
	for i, tag := range s {
		names[i] = tag.Name
	}
	return names
}

// Clone returns an independent copy.
func (s Set) Clone() Set {
	if s == nil {
		return nil
	}
	return append(Set(nil), s...)
}

// JSON encodes the set as the array form expected by the upload gateway.
func (s Set) JSON() (string, error) {
	if s == nil {
		s = Set{}
	}
	data, err := json.Marshal(s)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
