package directory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"amana-grc/internal/config"

	"github.com/go-ldap/ldap/v3"
)

// Entry holds the directory attributes of an authenticated user
type Entry struct {
	Username    string
	Email       string
	DisplayName string
	Groups      []string
}

// LDAPClient authenticates users against an LDAP directory
type LDAPClient struct {
	cfg config.LDAPConfig
}

// NewLDAPClient creates a new LDAP directory client
func NewLDAPClient(cfg config.LDAPConfig) *LDAPClient {
	return &LDAPClient{cfg: cfg}
}

// Authenticate binds as the user and, on success, reads the user's entry.
// A failed bind and an unreachable server both surface as errors; the caller
// decides whether another credential source gets a turn.
func (c *LDAPClient) Authenticate(ctx context.Context, username, password string) (*Entry, error) {
	conn, err := ldap.DialURL(c.cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("directory dial: %w", err)
	}
	defer conn.Close()

	timeout := time.Duration(c.cfg.TimeoutSeconds) * time.Second
	conn.SetTimeout(timeout)

	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			conn.SetTimeout(remaining)
		}
	}

	userDN := fmt.Sprintf("uid=%s,%s", ldap.EscapeDN(username), c.cfg.SearchBase)
	if err := conn.Bind(userDN, password); err != nil {
		return nil, fmt.Errorf("directory bind: %w", err)
	}

	filter := strings.ReplaceAll(c.cfg.SearchFilter, "{username}", ldap.EscapeFilter(username))
	req := ldap.NewSearchRequest(
		c.cfg.SearchBase,
		ldap.ScopeWholeSubtree,
		ldap.NeverDerefAliases,
		1, int(timeout.Seconds()), false,
		filter,
		[]string{"mail", "cn", "memberOf"},
		nil,
	)

	res, err := conn.Search(req)
	if err != nil {
		return nil, fmt.Errorf("directory search: %w", err)
	}
	if len(res.Entries) == 0 {
		return nil, fmt.Errorf("directory search: no entry for %s", username)
	}

	entry := res.Entries[0]
	return &Entry{
		Username:    username,
		Email:       entry.GetAttributeValue("mail"),
		DisplayName: entry.GetAttributeValue("cn"),
		Groups:      entry.GetAttributeValues("memberOf"),
	}, nil
}
