// Package programaccess returns an organization's program records to its owners and admins.
package programaccess

import (
	"context"
	"errors"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"

	orgdomain "program-access/internal/organization/domain"
	"program-access/internal/platform/rbac"
	programdomain "program-access/internal/program/domain"
)

const instrumentationName = "program-access/internal/programaccess"

// OrgRepo looks up an organization by slug. A missing organization is (nil, nil).
type OrgRepo interface {
	GetOrganizationBySlug(ctx context.Context, slug string) (*orgdomain.Org, error)
}

// ProgramRepo lists every program record of an organization.
type ProgramRepo interface {
	ListByOrganization(ctx context.Context, orgID string) ([]programdomain.Record, error)
}

// Service runs the organization, membership, role and fetch stages in order.
// Each stage runs only if the previous one succeeded. Safe for concurrent use.
type Service struct {
	orgs     OrgRepo
	members  rbac.OrgMembershipGetter
	programs ProgramRepo
	authz    rbac.Authorizer

	tracer   trace.Tracer
	requests metric.Int64Counter
}

// NewService returns a Service using the given repositories and authorizer.
// Spans and the program_access.requests counter go to the global OTel providers.
func NewService(orgs OrgRepo, members rbac.OrgMembershipGetter, programs ProgramRepo, authz rbac.Authorizer) *Service {
	meter := otel.Meter(instrumentationName)
	requests, err := meter.Int64Counter("program_access.requests",
		metric.WithDescription("Program access requests by outcome."),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		otel.Handle(err)
		requests = noop.Int64Counter{}
	}
	return &Service{
		orgs:     orgs,
		members:  members,
		programs: programs,
		authz:    authz,
		tracer:   otel.Tracer(instrumentationName),
		requests: requests,
	}
}

// ListPrograms returns every program record of the organization named by slug, provided userID
// holds an active owner or admin membership in it. Failures are *Error values.
func (s *Service) ListPrograms(ctx context.Context, userID, slug string) ([]programdomain.Record, error) {
	ctx, span := s.tracer.Start(ctx, "programaccess.ListPrograms")
	defer span.End()

	records, err := s.listPrograms(ctx, userID, strings.TrimSpace(slug))
	kind := "ok"
	if err != nil {
		kind = KindOf(err).String()
		span.RecordError(err)
		span.SetStatus(codes.Error, kind)
	}
	s.requests.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", kind)))
	return records, err
}

func (s *Service) listPrograms(ctx context.Context, userID, slug string) ([]programdomain.Record, error) {
	if userID == "" {
		return nil, newError(KindUnauthenticated, MsgInvalidSession, rbac.ErrIdentityRequired)
	}
	if slug == "" {
		return nil, newError(KindBadRequest, MsgMissingSlug, nil)
	}

	org, err := s.resolveOrg(ctx, slug)
	if err != nil {
		return nil, err
	}
	if err := s.checkRole(ctx, userID, org.ID); err != nil {
		return nil, err
	}
	return s.fetch(ctx, org.ID)
}

func (s *Service) resolveOrg(ctx context.Context, slug string) (*orgdomain.Org, error) {
	ctx, span := s.tracer.Start(ctx, "programaccess.ResolveOrganization",
		trace.WithAttributes(attribute.String("organization.slug", slug)))
	defer span.End()

	org, err := s.orgs.GetOrganizationBySlug(ctx, slug)
	if err != nil {
		span.RecordError(err)
		return nil, newError(KindInternal, MsgInternalError, err)
	}
	if org == nil {
		return nil, newError(KindNotFound, MsgOrgNotFound, nil)
	}
	span.SetAttributes(attribute.String("organization.id", org.ID))
	return org, nil
}

func (s *Service) checkRole(ctx context.Context, userID, orgID string) error {
	ctx, span := s.tracer.Start(ctx, "programaccess.CheckRole")
	defer span.End()

	m, err := rbac.RequireOrgAdmin(ctx, s.authz, s.members, userID, orgID)
	switch {
	case err == nil:
		span.SetAttributes(attribute.String("membership.role", string(m.Role)))
		return nil
	case errors.Is(err, rbac.ErrNotMember), errors.Is(err, rbac.ErrInsufficientRole):
		return newError(KindForbidden, MsgInsufficientPerms, err)
	default:
		span.RecordError(err)
		return newError(KindInternal, MsgInternalError, err)
	}
}

func (s *Service) fetch(ctx context.Context, orgID string) ([]programdomain.Record, error) {
	ctx, span := s.tracer.Start(ctx, "programaccess.FetchPrograms")
	defer span.End()

	records, err := s.programs.ListByOrganization(ctx, orgID)
	if err != nil {
		span.RecordError(err)
		return nil, newError(KindInternal, MsgInternalError, err)
	}
	if records == nil {
		records = []programdomain.Record{}
	}
	span.SetAttributes(attribute.Int("program.count", len(records)))
	return records, nil
}
