package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	domainauth "github.com/zephir/path-explorer/internal/domain/auth"
	apperrors "github.com/zephir/path-explorer/internal/errors"
	"github.com/zephir/path-explorer/internal/ports"
)

// Section names used for cache keys and the Degraded list of a dashboard.
const (
	SectionSkills         = "skills"
	SectionCertifications = "certifications"
	SectionProjects       = "projects"
)

const cacheKeyPrefix = "pe:u:"

// userCachePrefix scopes cache entries to the viewer whose token fetched them.
func userCachePrefix(viewerID string) string {
	return cacheKeyPrefix + viewerID + ":"
}

func sectionCacheKey(viewerID, section, employeeID string) string {
	return userCachePrefix(viewerID) + section + ":" + employeeID
}

//nolint:gochecknoglobals // immutable empty JSON array.
var emptyList = json.RawMessage("[]")

// ProfileServiceOptions groups dependencies for ProfileService.
type ProfileServiceOptions struct {
	Backend ports.BackendAPI
	// Cache is optional. Only non-critical sections are cached.
	Cache    ports.Cache
	CacheTTL time.Duration
	Logger   *slog.Logger
}

// ProfileService assembles the landing page data for each role from the backend API.
type ProfileService struct {
	backend  ports.BackendAPI
	cache    ports.Cache
	cacheTTL time.Duration
	logger   *slog.Logger
}

// NewProfileService constructs a ProfileService.
func NewProfileService(opts ProfileServiceOptions) *ProfileService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	ttl := opts.CacheTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &ProfileService{backend: opts.Backend, cache: opts.Cache, cacheTTL: ttl, logger: logger}
}

// EmployeeDashboard is the view model of /{employeeID}/dashboard.
type EmployeeDashboard struct {
	Employee       ports.BackendUser `json:"employee"`
	Skills         json.RawMessage   `json:"skills"`
	Certifications json.RawMessage   `json:"certifications"`
	Projects       json.RawMessage   `json:"projects"`
	// Degraded names the sections that fell back to empty data.
	Degraded []string `json:"degraded,omitempty"`
}

// Dashboard loads an employee's profile together with skills, certifications and projects.
// The profile is required; the other sections degrade to empty lists when the backend fails.
func (s *ProfileService) Dashboard(ctx context.Context, viewer domainauth.CurrentUser, employeeID string) (*EmployeeDashboard, error) {
	if employeeID == "" {
		return nil, apperrors.Validation("employee id is required")
	}

	out := &EmployeeDashboard{Skills: emptyList, Certifications: emptyList, Projects: emptyList}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		emp, err := s.employee(gctx, viewer, employeeID)
		if err != nil {
			return err
		}
		out.Employee = emp
		return nil
	})

	sections := []struct {
		name  string
		fetch func(context.Context, string, string) (json.RawMessage, error)
		dst   *json.RawMessage
	}{
		{SectionSkills, s.backend.Skills, &out.Skills},
		{SectionCertifications, s.backend.Certifications, &out.Certifications},
		{SectionProjects, s.backend.Projects, &out.Projects},
	}
	for _, sec := range sections {
		g.Go(func() error {
			doc, err := s.section(gctx, viewer, employeeID, sec.name, sec.fetch)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				// Profile failures cancel gctx; do not report those as degraded sections.
				if !errors.Is(err, context.Canceled) {
					s.logger.WarnContext(ctx, "dashboard section unavailable",
						"section", sec.name, "employee_id", employeeID, "error", err)
					out.Degraded = append(out.Degraded, sec.name)
				}
				return nil
			}
			*sec.dst = doc
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// employee returns the profile of employeeID. The viewer's own profile comes from
// the profile endpoint; any other employee is looked up in the user directory.
func (s *ProfileService) employee(ctx context.Context, viewer domainauth.CurrentUser, employeeID string) (ports.BackendUser, error) {
	if employeeID == viewer.UserID {
		u, err := s.backend.Profile(ctx, viewer.Token)
		if err != nil {
			return ports.BackendUser{}, fmt.Errorf("fetch profile: %w", err)
		}
		return u, nil
	}

	users, err := s.backend.Users(ctx, viewer.Token)
	if err != nil {
		return ports.BackendUser{}, fmt.Errorf("fetch users: %w", err)
	}
	for _, u := range users {
		if u.ID == employeeID {
			return u, nil
		}
	}
	return ports.BackendUser{}, apperrors.BackendStatus(http.StatusNotFound, "employee not found")
}

func (s *ProfileService) section(
	ctx context.Context,
	viewer domainauth.CurrentUser,
	employeeID, name string,
	fetch func(context.Context, string, string) (json.RawMessage, error),
) (json.RawMessage, error) {
	key := sectionCacheKey(viewer.UserID, name, employeeID)
	if s.cache != nil {
		if b, err := s.cache.Get(ctx, key); err == nil && len(b) > 0 {
			return json.RawMessage(b), nil
		} else if err != nil {
			s.logger.DebugContext(ctx, "cache get failed", "key", key, "error", err)
		}
	}

	doc, err := fetch(ctx, viewer.Token, employeeID)
	if err != nil {
		return nil, err
	}
	if len(doc) == 0 || string(doc) == "null" {
		doc = emptyList
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, doc, s.cacheTTL); err != nil {
			s.logger.DebugContext(ctx, "cache set failed", "key", key, "error", err)
		}
	}
	return doc, nil
}

// Users lists every user in the directory. Used by the admin landing pages.
func (s *ProfileService) Users(ctx context.Context, viewer domainauth.CurrentUser) ([]ports.BackendUser, error) {
	users, err := s.backend.Users(ctx, viewer.Token)
	if err != nil {
		return nil, fmt.Errorf("fetch users: %w", err)
	}
	if users == nil {
		users = []ports.BackendUser{}
	}
	return users, nil
}

// Team lists the users whose role is employee. Used by the lead landing pages.
func (s *ProfileService) Team(ctx context.Context, viewer domainauth.CurrentUser) ([]ports.BackendUser, error) {
	users, err := s.Users(ctx, viewer)
	if err != nil {
		return nil, err
	}
	team := make([]ports.BackendUser, 0, len(users))
	for _, u := range users {
		if role, ok := domainauth.ParseRole(u.UserType); ok && role == domainauth.RoleEmployee {
			team = append(team, u)
		}
	}
	return team, nil
}
