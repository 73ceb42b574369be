package server

import "strconv"

// ChannelMode is a bit in a Channel's mode bitset.
type ChannelMode uint8

const (
	ModeInviteOnly ChannelMode = 1 << iota
	ModeTopicRestricted
	ModeKeySet
	ModeLimitSet
)

// Channel is a named chat room. Names are compared case-sensitively,
// matching original_source/Server.cpp's findChannel, which compares names
// with plain std::string equality.
type Channel struct {
	Name  string
	Topic string
	Key   string
	Limit int
	Modes ChannelMode

	Members   map[Handle]struct{}
	Operators map[Handle]struct{}
	Invited   map[Handle]struct{}
}

func newChannel(name string, creator Handle) *Channel {
	ch := &Channel{
		Name:      name,
		Members:   map[Handle]struct{}{creator: {}},
		Operators: map[Handle]struct{}{creator: {}},
		Invited:   make(map[Handle]struct{}),
	}
	return ch
}

// IsMember reports whether h is currently a member.
func (c *Channel) IsMember(h Handle) bool {
	_, ok := c.Members[h]
	return ok
}

// IsOperator reports whether h is a channel operator. Operators are always
// a subset of members; callers do not need to check membership separately.
func (c *Channel) IsOperator(h Handle) bool {
	_, ok := c.Operators[h]
	return ok
}

// IsInvited reports whether h holds a live invite.
func (c *Channel) IsInvited(h Handle) bool {
	_, ok := c.Invited[h]
	return ok
}

// AddMember adds h as a plain member, consuming any outstanding invite.
func (c *Channel) AddMember(h Handle) {
	c.Members[h] = struct{}{}
	delete(c.Invited, h)
}

// RemoveMember removes h from membership and, as a consequence, from the
// operator set — operator_fds ⊆ member_fds must hold after every mutation.
func (c *Channel) RemoveMember(h Handle) {
	delete(c.Members, h)
	delete(c.Operators, h)
}

// Empty reports whether the channel has no members left; the store deletes
// a channel as soon as this is true, so a channel is in the registry only
// while it has at least one member.
func (c *Channel) Empty() bool {
	return len(c.Members) == 0
}

// SetKey sets or clears the channel key, keeping ModeKeySet consistent with
// whether Key is non-empty.
func (c *Channel) SetKey(key string) {
	c.Key = key
	if key == "" {
		c.Modes &^= ModeKeySet
	} else {
		c.Modes |= ModeKeySet
	}
}

// SetLimit sets or clears the channel user limit, keeping ModeLimitSet
// consistent with whether Limit > 0.
func (c *Channel) SetLimit(n int) {
	c.Limit = n
	if n > 0 {
		c.Modes |= ModeLimitSet
	} else {
		c.Modes &^= ModeLimitSet
	}
}

// ModeString renders the channel's current modes as "+itkl" followed by
// any parameters, for RPL_CHANNELMODEIS.
func (c *Channel) ModeString() (modes string, params []string) {
	modes = "+"
	if c.Modes&ModeInviteOnly != 0 {
		modes += "i"
	}
	if c.Modes&ModeTopicRestricted != 0 {
		modes += "t"
	}
	if c.Modes&ModeKeySet != 0 {
		modes += "k"
		params = append(params, c.Key)
	}
	if c.Modes&ModeLimitSet != 0 {
		modes += "l"
		params = append(params, strconv.Itoa(c.Limit))
	}
	return modes, params
}
