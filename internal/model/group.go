package model

import (
	"strings"

	"github.com/gerow/go-color"
)

type GroupCreate struct {
	Name      string
	Type      string
	CreatorID int64
}

type Group struct {
	ID       int64
	UsersIDs []int64
	GroupCreate
}

type GroupSettings struct {
	UserID  int64
	GroupID int64
	Color   color.RGB
	Notify  bool
}

type UserGroupSettingsFilter struct {
	UserIDs  []int64
	GroupIDs []int64
}

// GroupType is the canonical group vocabulary. Stored records may still carry
// the legacy raw value "couple"; ParseGroupType is the one place it is folded
// into the canonical set.
type GroupType string

const (
	GroupTypePersonal GroupType = "personal"
	GroupTypePair     GroupType = "pair"
	GroupTypeFamily   GroupType = "family"
)

// ParseGroupType maps a raw stored type string to a canonical GroupType.
// "couple" is a legacy synonym for "pair"; unknown or empty values also map to
// pair, since every non-family group in the product is a pair.
func ParseGroupType(raw string) GroupType {
	if strings.ToLower(raw) == "family" {
		return GroupTypeFamily
	}
	return GroupTypePair
}
