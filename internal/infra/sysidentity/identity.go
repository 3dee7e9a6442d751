package sysidentity

import (
	"os"
	"os/user"
	"strings"

	"github.com/aalvaropc/pizzapack/internal/domain"
	"github.com/aalvaropc/pizzapack/internal/ports"
)

const unknown = "unknown"

// Provider reads the invoking user and the hostname from the OS.
type Provider struct {
	currentUser func() (*user.User, error)
	hostname    func() (string, error)
	getenv      func(string) string
}

func New() *Provider {
	return &Provider{
		currentUser: user.Current,
		hostname:    os.Hostname,
		getenv:      os.Getenv,
	}
}

var _ ports.IdentityProvider = (*Provider)(nil)

func (p *Provider) Identity() domain.Identity {
	return domain.Identity{
		User: sanitize(p.user()),
		Host: sanitize(p.host()),
	}
}

func (p *Provider) user() string {
	if u, err := p.currentUser(); err == nil && u != nil && strings.TrimSpace(u.Username) != "" {
		name := u.Username
		// Windows reports DOMAIN\user.
		if i := strings.LastIndexByte(name, '\\'); i >= 0 {
			name = name[i+1:]
		}
		return name
	}
	for _, k := range []string{"USER", "USERNAME"} {
		if v := strings.TrimSpace(p.getenv(k)); v != "" {
			return v
		}
	}
	return unknown
}

func (p *Provider) host() string {
	h, err := p.hostname()
	if err != nil || strings.TrimSpace(h) == "" {
		return unknown
	}
	return h
}

// sanitize keeps the value usable inside a file name.
func sanitize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return unknown
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', ' ', '\t':
			return '-'
		}
		return r
	}, s)
}
