package usecase

import (
	"context"
	"errors"

	"github.com/campus-pulse/pulse/pkg/domain/model"
	"github.com/campus-pulse/pulse/pkg/domain/types"
	"github.com/m-mizutani/ctxlog"
)

// defaultAuthorities is the built-in authority directory matching the
// default routing rule table
var defaultAuthorities = []*model.Authority{
	{ID: "auth-security", Name: model.AuthoritySecurity, Description: "Campus security office"},
	{ID: "auth-academic-affairs", Name: model.AuthorityAcademicAffair, Description: "Academic affairs office"},
	{ID: "auth-admin-office", Name: model.AuthorityAdminOffice, Description: "Administrative and facilities office"},
	{ID: "auth-provost", Name: model.AuthorityProvost, Description: "Provost, responsible for hostel matters"},
}

// SeedDirectory ensures every authority named by the routing rule
// table exists in the directory, plus the built-in set. Existing
// records are left untouched. Safe to run on every startup.
func (u *UseCases) SeedDirectory(ctx context.Context, locations []*model.Location) error {
	logger := ctxlog.From(ctx)

	for _, authority := range defaultAuthorities {
		if err := u.ensureAuthority(ctx, authority); err != nil {
			return err
		}
	}

	for _, name := range u.config.routingRules.AuthorityNames() {
		_, err := u.repo.GetAuthorityByName(ctx, name)
		if err == nil {
			continue
		}
		if !errors.Is(err, model.ErrAuthorityNotFound) {
			return err
		}

		authority := &model.Authority{
			ID:   types.AuthorityID("auth-" + slugify(name)),
			Name: name,
		}
		if err := u.repo.PutAuthority(ctx, authority); err != nil {
			return err
		}
		logger.Info("Seeded authority from routing rules", "name", name)
	}

	for _, location := range locations {
		existing, err := u.repo.GetLocation(ctx, location.ID)
		if err == nil && existing != nil {
			continue
		}
		if err := u.repo.PutLocation(ctx, location); err != nil {
			return err
		}
	}

	if len(locations) > 0 {
		logger.Info("Location directory loaded", "count", len(locations))
	}

	return nil
}

func (u *UseCases) ensureAuthority(ctx context.Context, authority *model.Authority) error {
	_, err := u.repo.GetAuthorityByName(ctx, authority.Name)
	if err == nil {
		return nil
	}
	if !errors.Is(err, model.ErrAuthorityNotFound) {
		return err
	}
	return u.repo.PutAuthority(ctx, authority)
}

// slugify lowercases a display name into an ID-safe slug
func slugify(name string) string {
	slug := make([]rune, 0, len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			slug = append(slug, r)
		case r >= 'A' && r <= 'Z':
			slug = append(slug, r+('a'-'A'))
		case r == ' ' || r == '-' || r == '_':
			if len(slug) > 0 && slug[len(slug)-1] != '-' {
				slug = append(slug, '-')
			}
		}
	}
	return string(slug)
}
