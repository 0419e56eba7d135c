package client

import (
	"encoding/json"
	"fmt"
)

// User is a user record returned by follower, following and list-member
// operations. Identity is keyed on the numeric ID.
type User struct {
	ID       int64  `json:"id,string"`
	Username string `json:"username"`
	Name     string `json:"name"`
}

// List is an owned-list record. Identity is keyed on the numeric ID.
type List struct {
	ID   int64  `json:"id,string"`
	Name string `json:"name"`
}

// decodeUsers maps raw page records to typed users.
func decodeUsers(records []json.RawMessage) ([]User, error) {
	users := make([]User, 0, len(records))
	for _, raw := range records {
		var u User
		if err := json.Unmarshal(raw, &u); err != nil {
			return nil, fmt.Errorf("decode user record: %w", err)
		}
		users = append(users, u)
	}
	return users, nil
}

// decodeLists maps raw page records to typed lists.
func decodeLists(records []json.RawMessage) ([]List, error) {
	lists := make([]List, 0, len(records))
	for _, raw := range records {
		var l List
		if err := json.Unmarshal(raw, &l); err != nil {
			return nil, fmt.Errorf("decode list record: %w", err)
		}
		lists = append(lists, l)
	}
	return lists, nil
}
