package model

import "strings"

// TargetKind identifies what a reaction or comment is attached to.
type TargetKind string

const (
	TargetPost  TargetKind = "post"
	TargetShare TargetKind = "share"
)

// ParseTargetKind accepts "post"/"share" in any case.
func ParseTargetKind(raw string) (TargetKind, error) {
	switch TargetKind(strings.ToLower(strings.TrimSpace(raw))) {
	case TargetPost:
		return TargetPost, nil
	case TargetShare:
		return TargetShare, nil
	}
	return "", ErrInvalidTargetKind
}

// Valid reports whether k is one of the known kinds.
func (k TargetKind) Valid() bool {
	return k == TargetPost || k == TargetShare
}

func (k TargetKind) String() string {
	return string(k)
}
