package client

import (
	"fmt"
	"net/url"
	"strconv"
)

// Operation enumerates the logical client operations. Each resolves to its
// URL template through the table below instead of name lookup.
type Operation int

const (
	OpFollowers Operation = iota
	OpFollowing
	OpOwnedLists
	OpListMembers
	OpUserLookup
)

// endpointTemplates maps each operation to its API v2 path template.
// All templates take a single numeric id path parameter except the user
// lookup, which is query-driven.
var endpointTemplates = map[Operation]string{
	OpFollowers:   "/users/%d/followers",
	OpFollowing:   "/users/%d/following",
	OpOwnedLists:  "/users/%d/owned_lists",
	OpListMembers: "/lists/%d/members",
	OpUserLookup:  "/users/by?usernames=%s&user.fields=id",
}

// String returns the operation name used in logs and metrics.
func (op Operation) String() string {
	switch op {
	case OpFollowers:
		return "followers"
	case OpFollowing:
		return "following"
	case OpOwnedLists:
		return "owned_lists"
	case OpListMembers:
		return "list_members"
	case OpUserLookup:
		return "user_lookup"
	default:
		return "unknown"
	}
}

// endpointURL builds the full request URL for an id-parameterized operation.
func (c *Client) endpointURL(op Operation, id int64) string {
	return c.config.BaseURL + fmt.Sprintf(endpointTemplates[op], id)
}

// lookupURL builds the full request URL for the username lookup operation.
func (c *Client) lookupURL(username string) string {
	return c.config.BaseURL + fmt.Sprintf(endpointTemplates[OpUserLookup], url.QueryEscape(username))
}

// validateID checks that an operation received a usable numeric id.
func validateID(id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w (got %s)", ErrMissingID, strconv.FormatInt(id, 10))
	}
	return nil
}
