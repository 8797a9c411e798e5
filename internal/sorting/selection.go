package sorting

// DefaultKey is the initial sort: personal relevance when the caller is
// known, maintainer count otherwise
func DefaultKey(hasCaller bool) Key {
	if hasCaller {
		return MySoftware
	}
	return ReferentCount
}

// Selection tracks the active sort and the sort displaced by best match
type Selection struct {
	current Key
	backup  Key
}

// NewSelection starts with the given key as both current and backup
func NewSelection(initial Key) Selection {
	return Selection{current: initial, backup: initial}
}

// Current returns the active sort
func (s *Selection) Current() Key {
	return s.current
}

// Backup returns the sort Restore would reinstate
func (s *Selection) Backup() Key {
	return s.backup
}

// Select makes key the active sort. Moving into best match from another
// sort remembers the displaced sort.
func (s *Selection) Select(key Key) {
	if key == BestMatch && s.current != BestMatch {
		s.backup = s.current
	}
	s.current = key
}

// Restore reinstates the sort displaced by the last move into best match
func (s *Selection) Restore() {
	s.current = s.backup
}

// Options returns the sorts offered to the user, in display order. Best
// match is offered while a search is active or still selected, personal
// relevance only when the caller is known.
func Options(searchActive bool, current Key, hasCaller bool) []Key {
	options := make([]Key, 0, len(Keys))
	if searchActive || current == BestMatch {
		options = append(options, BestMatch)
	}
	if hasCaller {
		options = append(options, MySoftware)
	}
	return append(options,
		ReferentCount,
		UserCount,
		AddedTime,
		UpdateTime,
		LatestVersionPublicationDate,
		UserCountAsc,
		ReferentCountAsc,
	)
}
