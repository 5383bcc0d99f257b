package youtube

import (
	"context"
	"fmt"
	"time"

	"github.com/Sternrassler/ytdata-client/pkg/client"
	"github.com/Sternrassler/ytdata-client/pkg/cursor"
	"github.com/Sternrassler/ytdata-client/pkg/pagination"
)

const (
	membersEndpoint          = "/members"
	membershipLevelsEndpoint = "/membershipsLevels"

	// MaxMembersPageSize is the page cap of members.list.
	MaxMembersPageSize = 1000

	// MaxMemberFilters is how many member channels one request may filter on.
	MaxMemberFilters = 100
)

// MemberLevel is a membership level (pricing tier) of the channel.
type MemberLevel struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Membership is a member of the authorized channel.
type Membership struct {
	ChannelID       string      `json:"channelId"`
	ChannelName     string      `json:"channelName"`
	ProfileImageURL string      `json:"profileImageUrl,omitempty"`
	Level           MemberLevel `json:"level"`

	Since              time.Time `json:"since"`
	TotalMonths        int       `json:"totalMonths"`
	SinceAtLevel       time.Time `json:"sinceAtLevel"`
	TotalMonthsAtLevel int       `json:"totalMonthsAtLevel"`
}

// levelResourceLayout is an item of membershipsLevels.list.
type levelResourceLayout struct {
	ID      string `json:"id" validate:"required"`
	Snippet *struct {
		LevelDetails *struct {
			DisplayName string `json:"displayName" validate:"required"`
		} `json:"levelDetails" validate:"required"`
	} `json:"snippet" validate:"required"`
}

// levelReferenceLayout is the level embedded in a member resource.
type levelReferenceLayout struct {
	HighestAccessibleLevel            string `json:"highestAccessibleLevel" validate:"required"`
	HighestAccessibleLevelDisplayName string `json:"highestAccessibleLevelDisplayName" validate:"required"`
}

var memberLevelShapes = []shape[*MemberLevel]{
	newShape("level resource", func(l *levelResourceLayout) (*MemberLevel, error) {
		return &MemberLevel{ID: l.ID, Name: l.Snippet.LevelDetails.DisplayName}, nil
	}),
	newShape("level reference", func(l *levelReferenceLayout) (*MemberLevel, error) {
		return &MemberLevel{ID: l.HighestAccessibleLevel, Name: l.HighestAccessibleLevelDisplayName}, nil
	}),
}

// DecodeMemberLevel decodes either a membershipsLevels item or the level
// reference embedded in a member resource.
func DecodeMemberLevel(endpoint string, item pagination.RawItem) (*MemberLevel, error) {
	return matchShape(endpoint, "member level", item, memberLevelShapes...)
}

type membershipDurationLayout struct {
	MemberSince               string `json:"memberSince" validate:"required"`
	MemberTotalDurationMonths int    `json:"memberTotalDurationMonths"`
}

type membershipLayout struct {
	Snippet *struct {
		MemberDetails *struct {
			ChannelID       string `json:"channelId" validate:"required"`
			DisplayName     string `json:"displayName"`
			ProfileImageURL string `json:"profileImageUrl"`
		} `json:"memberDetails" validate:"required"`
		MembershipsDetails         pagination.RawItem        `json:"membershipsDetails" validate:"required"`
		MembershipsDuration        *membershipDurationLayout `json:"membershipsDuration" validate:"required"`
		MembershipsDurationAtLevel *membershipDurationLayout `json:"membershipsDurationAtLevel" validate:"required"`
	} `json:"snippet" validate:"required"`
}

// DecodeMembership decodes a members.list item.
func DecodeMembership(endpoint string, item pagination.RawItem) (*Membership, error) {
	return matchShape(endpoint, "membership", item, newShape("member resource", func(l *membershipLayout) (*Membership, error) {
		s := l.Snippet
		level, err := DecodeMemberLevel(endpoint, s.MembershipsDetails)
		if err != nil {
			return nil, err
		}

		var p fieldParser
		m := &Membership{
			ChannelID:          s.MemberDetails.ChannelID,
			ChannelName:        s.MemberDetails.DisplayName,
			ProfileImageURL:    s.MemberDetails.ProfileImageURL,
			Level:              *level,
			Since:              p.timestamp("membershipsDuration.memberSince", s.MembershipsDuration.MemberSince),
			TotalMonths:        s.MembershipsDuration.MemberTotalDurationMonths,
			SinceAtLevel:       p.timestamp("membershipsDurationAtLevel.memberSince", s.MembershipsDurationAtLevel.MemberSince),
			TotalMonthsAtLevel: s.MembershipsDurationAtLevel.MemberTotalDurationMonths,
		}
		if p.err != nil {
			return nil, p.err
		}
		return m, nil
	}))
}

type membersRequest struct {
	Part                    Part        `url:"part,omitempty"`
	Mode                    MembersMode `url:"mode,omitempty"`
	HasAccessToLevel        string      `url:"hasAccessToLevel,omitempty"`
	FilterByMemberChannelID []string    `url:"filterByMemberChannelId,omitempty,comma"`
}

// MembersQuery filters MyMembers.
type MembersQuery struct {
	// LevelID keeps members with access to this level.
	LevelID string
	// MemberChannelIDs restricts the result to these member channels.
	// At most MaxMemberFilters ids are allowed.
	MemberChannelIDs []string
}

// MyMembers lists the current members of the authorized channel. Requires
// OAuth authorization by the channel owner.
func (s *Service) MyMembers(q MembersQuery, opts ...pagination.Option) (*pagination.Sequence[*Membership], error) {
	if len(q.MemberChannelIDs) > MaxMemberFilters {
		return nil, fmt.Errorf("cannot filter on more than %d members (got %d)", MaxMemberFilters, len(q.MemberChannelIDs))
	}

	params, err := encodeRequest(membersRequest{
		Part:                    PartSnippet,
		Mode:                    MembersAllCurrent,
		HasAccessToLevel:        q.LevelID,
		FilterByMemberChannelID: q.MemberChannelIDs,
	})
	if err != nil {
		return nil, err
	}

	return list(s, membersEndpoint, params, MaxMembersPageSize, DecodeMembership, opts)
}

// MembershipLevels returns every membership level of the authorized channel.
func (s *Service) MembershipLevels(ctx context.Context) ([]*MemberLevel, error) {
	params, err := encodeRequest(struct {
		Part Part `url:"part"`
	}{PartID | PartSnippet})
	if err != nil {
		return nil, err
	}

	seq, err := pagination.Paginate(s.fetcher, membershipLevelsEndpoint, params)
	if err != nil {
		return nil, err
	}
	return pagination.Map(seq, decoder(membershipLevelsEndpoint, DecodeMemberLevel)).Collect(ctx)
}

// MembersPollKey is the cursor key of the new-members stream of an account.
func MembersPollKey(owner string) cursor.Key {
	return cursor.Key{
		Endpoint: membersEndpoint,
		Params:   map[string][]string{"mode": {string(MembersUpdates)}},
		Owner:    owner,
	}
}

// PollNewMembers returns the members that joined since cur was last
// advanced, and advances cur.
//
// The call issues exactly one request. An unstarted cursor polls from the
// beginning of the update stream; whatever that first response delivers is
// returned (usually nothing) and its token is kept for the next call.
// cur is left untouched on any error so the same window can be polled again.
func (s *Service) PollNewMembers(ctx context.Context, cur *cursor.Cursor) ([]*Membership, error) {
	if cur == nil {
		return nil, fmt.Errorf("poll cursor is required")
	}

	params, err := encodeRequest(membersRequest{
		Part: PartSnippet,
		Mode: MembersUpdates,
	})
	if err != nil {
		return nil, err
	}

	page, err := s.fetcher.FetchPage(ctx, membersEndpoint, params, cur.Token)
	if err != nil {
		return nil, fmt.Errorf("poll members: %w", err)
	}
	if page.NextPageToken == "" {
		return nil, &client.DecodeError{Endpoint: membersEndpoint, Detail: "poll response carries no nextPageToken"}
	}

	members := make([]*Membership, 0, len(page.Items))
	for _, item := range page.Items {
		m, err := DecodeMembership(membersEndpoint, item)
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}

	s.logger.Debug().
		Bool("started", cur.Started()).
		Int("members", len(members)).
		Msg("Members polled")

	cur.Advance(page.NextPageToken)
	return members, nil
}
