// seed inserts development sample data for local testing: the acme organization, three programs,
// one user per role, and a live session per user. Re-running refreshes sessions and inserts nothing twice.
// When a signing key is configured, an access token is printed for every seeded user.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"program-access/internal/config"
	"program-access/internal/db"
	membershipdomain "program-access/internal/membership/domain"
	"program-access/internal/security"
)

const (
	devOrgSlug = "acme"
	devOrgName = "Acme Corp"
	sessionTTL = 30 * 24 * time.Hour
)

// seedNamespace makes seeded ids stable across runs.
var seedNamespace = uuid.MustParse("7f1c3f0e-4a52-4d7b-9a4e-2f1a9a6c0b11")

type devUser struct {
	email  string
	role   membershipdomain.Role
	active bool
}

var devUsers = []devUser{
	{"owner@example.com", membershipdomain.RoleOwner, true},
	{"admin@example.com", membershipdomain.RoleAdmin, true},
	{"member@example.com", membershipdomain.RoleMember, true},
	{"viewer@example.com", membershipdomain.RoleViewer, true},
	{"former-admin@example.com", membershipdomain.RoleAdmin, false},
}

type devProgram struct {
	name        string
	description string
	status      string
	metadata    map[string]any
}

var devPrograms = []devProgram{
	{"Graduate Placement", "Entry-level placement track", "active", map[string]any{"seats": 40, "remote": true}},
	{"Leadership Bootcamp", "Six-week leadership intensive", "active", map[string]any{"seats": 12}},
	{"Returnship", "Re-entry program for experienced hires", "draft", map[string]any{}},
}

func stableID(kind, name string) string {
	return uuid.NewSHA1(seedNamespace, []byte(kind+":"+name)).String()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set; create a .env from .env.example or set DATABASE_URL")
	}

	ctx := context.Background()
	pool, err := db.Open(ctx, cfg.DatabaseURL, cfg.DBMaxConns)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	orgID := stableID("org", devOrgSlug)
	expiresAt := time.Now().UTC().Add(sessionTTL)

	err = pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		return seed(ctx, tx, orgID, expiresAt)
	})
	if err != nil {
		log.Fatalf("seed: %v", err)
	}
	log.Printf("Seeded organization %q (id %s) with %d programs and %d members.", devOrgSlug, orgID, len(devPrograms), len(devUsers))

	printTokens(cfg)
}

func seed(ctx context.Context, tx pgx.Tx, orgID string, expiresAt time.Time) error {
	if _, err := tx.Exec(ctx,
		`INSERT INTO organizations (id, slug, name) VALUES ($1, $2, $3) ON CONFLICT (id) DO NOTHING`,
		orgID, devOrgSlug, devOrgName,
	); err != nil {
		return fmt.Errorf("organization: %w", err)
	}

	for _, p := range devPrograms {
		meta, err := json.Marshal(p.metadata)
		if err != nil {
			return fmt.Errorf("program %q metadata: %w", p.name, err)
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO programs (id, organization_id, name, description, status, metadata)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 ON CONFLICT (id) DO NOTHING`,
			stableID("program", p.name), orgID, p.name, p.description, p.status, meta,
		); err != nil {
			return fmt.Errorf("program %q: %w", p.name, err)
		}
	}

	for _, u := range devUsers {
		userID := stableID("user", u.email)
		if _, err := tx.Exec(ctx,
			`INSERT INTO users (id, email) VALUES ($1, $2) ON CONFLICT (id) DO NOTHING`,
			userID, u.email,
		); err != nil {
			return fmt.Errorf("user %s: %w", u.email, err)
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO organization_members (id, organization_id, user_id, role, is_active)
			 VALUES ($1, $2, $3, $4, $5)
			 ON CONFLICT (id) DO NOTHING`,
			stableID("membership", u.email), orgID, userID, string(u.role), u.active,
		); err != nil {
			return fmt.Errorf("membership %s: %w", u.email, err)
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO sessions (id, user_id, expires_at) VALUES ($1, $2, $3)
			 ON CONFLICT (id) DO UPDATE SET expires_at = EXCLUDED.expires_at, revoked_at = NULL`,
			stableID("session", u.email), userID, expiresAt,
		); err != nil {
			return fmt.Errorf("session %s: %w", u.email, err)
		}
	}
	return nil
}

func printTokens(cfg *config.Config) {
	tokens, err := security.LoadTokenProvider(security.KeySettings{
		Secret:     cfg.JWTSecret,
		PrivateKey: cfg.JWTPrivateKey,
		PublicKey:  cfg.JWTPublicKey,
		Issuer:     cfg.JWTIssuer,
		Audience:   cfg.JWTAudience,
		AccessTTL:  cfg.AccessTTL(),
	})
	if err != nil || !tokens.CanIssue() {
		log.Println("No JWT_SECRET or JWT_PRIVATE_KEY configured; skipping access tokens.")
		return
	}
	for _, u := range devUsers {
		token, expiresAt, err := tokens.IssueAccess(stableID("session", u.email), stableID("user", u.email), u.email)
		if err != nil {
			log.Fatalf("issue token for %s: %v", u.email, err)
		}
		fmt.Printf("%-26s %-7s active=%-5v expires=%s\n  %s\n", u.email, u.role, u.active, expiresAt.Format(time.RFC3339), token)
	}
}
