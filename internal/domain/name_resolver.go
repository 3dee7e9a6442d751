package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Vars holds placeholder values for archive name templates.
type Vars map[string]string

// TimestampLayout is the archive timestamp: year_month_day__hour-minute.
const TimestampLayout = "2006_01_02__15-04"

// NameResolver resolves {{var}} placeholders in archive name templates.
// It supports built-ins: {{$timestamp}} and {{$uuid}}.
type NameResolver struct {
	now    func() time.Time
	uuidV4 func() (string, error)
}

// NameResolverOption configures NameResolver.
type NameResolverOption func(*NameResolver)

// WithNow overrides the clock (useful for tests).
func WithNow(now func() time.Time) NameResolverOption {
	return func(r *NameResolver) { r.now = now }
}

// WithUUID overrides UUID generation (useful for tests).
func WithUUID(gen func() (string, error)) NameResolverOption {
	return func(r *NameResolver) { r.uuidV4 = gen }
}

func NewNameResolver(opts ...NameResolverOption) *NameResolver {
	r := &NameResolver{
		now: time.Now,
		uuidV4: func() (string, error) {
			u, err := uuid.NewRandom()
			if err != nil {
				return "", err
			}
			return u.String(), nil
		},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Now exposes the resolver clock so callers stamp manifests with the same instant.
func (r *NameResolver) Now() time.Time {
	return r.now()
}

// Resolve expands tmpl using vars plus the built-ins evaluated once at call time.
func (r *NameResolver) Resolve(tmpl string, vars Vars) (string, error) {
	return r.ResolveAt(tmpl, vars, r.now())
}

// ResolveAt is Resolve with {{$timestamp}} taken from at.
func (r *NameResolver) ResolveAt(tmpl string, vars Vars, at time.Time) (string, error) {
	builtins := Vars{
		"$timestamp": at.Format(TimestampLayout),
	}
	if strings.Contains(tmpl, "$uuid") {
		u, err := r.uuidV4()
		if err != nil {
			return "", &OpError{
				Op:   "names.builtins.uuid",
				Kind: KindExecution,
				Err:  err,
			}
		}
		builtins["$uuid"] = u
	}
	return resolveWith(vars, builtins, tmpl)
}

// ArchiveName resolves the archive file name for a backup of dir by id.
// The result is a bare file name; anything that would escape the output
// directory is rejected.
func (r *NameResolver) ArchiveName(tmpl, dir string, id Identity) (string, error) {
	return r.ArchiveNameAt(tmpl, dir, id, r.now())
}

// ArchiveNameAt is ArchiveName stamped with a caller-chosen instant.
func (r *NameResolver) ArchiveNameAt(tmpl, dir string, id Identity, at time.Time) (string, error) {
	if strings.TrimSpace(tmpl) == "" {
		tmpl = DefaultNameFormat
	}

	name, err := r.ResolveAt(tmpl, Vars{
		"dir":  dir,
		"user": id.User,
		"host": id.Host,
	}, at)
	if err != nil {
		return "", err
	}

	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", &OpError{
			Op:   "names.archive",
			Kind: KindInvalidConfig,
			Err:  fmt.Errorf("archive name %q is not a plain file name: %w", name, ErrInvalidConfig),
		}
	}
	return name, nil
}

func resolveWith(vars Vars, builtins Vars, s string) (string, error) {
	// Fast path: no token start.
	if !strings.Contains(s, "{{") {
		return s, nil
	}

	var b strings.Builder
	b.Grow(len(s) + 16)

	for i := 0; i < len(s); {
		if i+1 < len(s) && s[i] == '{' && s[i+1] == '{' {
			start := i + 2

			end := strings.Index(s[start:], "}}")
			if end < 0 {
				return "", &OpError{
					Op:   "names.resolve",
					Kind: KindInvalidConfig,
					Err:  errors.New("unclosed placeholder"),
				}
			}
			end = start + end

			name := strings.TrimSpace(s[start:end])
			if name == "" {
				return "", &OpError{
					Op:   "names.resolve",
					Kind: KindInvalidConfig,
					Err:  errors.New("empty placeholder"),
				}
			}

			val, ok := builtins[name]
			if !ok {
				val, ok = vars[name]
			}
			if !ok {
				return "", &OpError{
					Op:   "names.resolve",
					Kind: KindMissingVar,
					Err:  fmt.Errorf("%w: %s", ErrMissingVar, name),
				}
			}

			b.WriteString(val)
			i = end + 2
			continue
		}

		b.WriteByte(s[i])
		i++
	}

	return b.String(), nil
}
