package rbac

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tillware/posgate/pkg/auth"
	"github.com/tillware/posgate/pkg/observability"
)

// Authority is the remote permission-checking endpoint the resolver consults
// on a cache miss. Implemented by client.Client.
type Authority interface {
	// CheckPermission asks the backend whether the current session's
	// principal holds the permission. Transport failures and timeouts return
	// an error, which the resolver treats as "authority unreachable".
	CheckPermission(ctx context.Context, permission string) (bool, error)
}

// Session is the view of the session store the resolver needs. Implemented
// by session.Store.
type Session interface {
	// Identity returns the authenticated identity, or false when the session
	// is anonymous or mid-transition (fail closed).
	Identity() (auth.Identity, bool)
	// EffectivePermissions returns the authority-provided permission set, or
	// an empty set when none was fetched.
	EffectivePermissions() Set
	// Cache returns the session's decision cache.
	Cache() *Cache
	// Epoch identifies the current session generation. It changes whenever
	// the identity changes.
	Epoch() uint64
	// StoreDecision writes a decision into the cache unless epoch is stale,
	// which makes late results from a previous session no-ops.
	StoreDecision(epoch uint64, p Permission, allowed bool, source Source)
}

// Resolver decides whether the current session may perform an action. It
// never returns errors for expected conditions: absent identities, unknown
// permissions, and unreachable authorities all degrade to boolean outcomes.
type Resolver struct {
	session   Session
	authority Authority
	policy    *PolicyTable
	log       *observability.Logger
	metrics   *observability.Metrics
}

// NewResolver creates a resolver. policy defaults to DefaultPolicy; log and
// metrics default to no-ops.
func NewResolver(session Session, authority Authority, policy *PolicyTable, log *observability.Logger, metrics *observability.Metrics) *Resolver {
	if policy == nil {
		policy = DefaultPolicy()
	}
	if log == nil {
		log = observability.NopLogger()
	}
	if metrics == nil {
		metrics = observability.NopMetrics()
	}
	return &Resolver{
		session:   session,
		authority: authority,
		policy:    policy,
		log:       log,
		metrics:   metrics,
	}
}

// Allowed resolves a single permission
func (r *Resolver) Allowed(ctx context.Context, p Permission) bool {
	return r.Resolve(ctx, []Permission{p}, ModeAny).Allowed
}

// HasAny reports whether the session holds at least one of the permissions
func (r *Resolver) HasAny(ctx context.Context, perms ...Permission) bool {
	return r.Resolve(ctx, perms, ModeAny).Allowed
}

// HasAll reports whether the session holds every one of the permissions
func (r *Resolver) HasAll(ctx context.Context, perms ...Permission) bool {
	return r.Resolve(ctx, perms, ModeAll).Allowed
}

// Resolve evaluates the requested permissions against the current session.
// An empty request set allows: a gate that declares no permissions is
// unrestricted. Everything else fails closed.
func (r *Resolver) Resolve(ctx context.Context, perms []Permission, mode Mode) Decision {
	if mode != ModeAll {
		mode = ModeAny
	}

	identity, ok := r.session.Identity()
	if !ok {
		return Decision{Allowed: false, Mode: mode, Source: SourceNone}
	}
	if len(perms) == 0 {
		return Decision{Allowed: true, Mode: mode, Source: SourceNone}
	}

	epoch := r.session.Epoch()
	outcomes := make(map[Permission]Outcome, len(perms))

	if effective := r.session.EffectivePermissions(); len(effective) > 0 {
		// The authority's effective set overrides the policy table entirely.
		for _, p := range perms {
			outcome := Outcome{Allowed: effective.Has(p), Source: SourceEffective}
			outcomes[p] = outcome
			r.session.StoreDecision(epoch, p, outcome.Allowed, SourceEffective)
			r.record(outcome)
		}
		return combine(perms, outcomes, mode)
	}

	results := make([]Outcome, len(perms))
	g, gctx := errgroup.WithContext(ctx)
	for i, p := range perms {
		i, p := i, p
		g.Go(func() error {
			results[i] = r.resolveOne(gctx, identity, epoch, p)
			return nil
		})
	}
	// resolveOne never errors; Wait only joins the goroutines.
	_ = g.Wait()

	for i, p := range perms {
		outcomes[p] = results[i]
	}
	return combine(perms, outcomes, mode)
}

// resolveOne decides a single permission: cache, then remote authority, then
// local policy fallback.
func (r *Resolver) resolveOne(ctx context.Context, identity auth.Identity, epoch uint64, p Permission) Outcome {
	if !Known(p) {
		r.log.WithField("permission", string(p)).Debug("unknown permission denied")
		outcome := Outcome{Allowed: false, Source: SourceNone}
		r.record(outcome)
		return outcome
	}

	if outcome, ok := r.session.Cache().Get(p); ok {
		cached := Outcome{Allowed: outcome.Allowed, Source: SourceCache}
		r.record(cached)
		return cached
	}

	start := time.Now()
	allowed, err := r.authority.CheckPermission(ctx, string(p))
	if err == nil {
		r.metrics.PermissionCheckDuration.WithLabelValues(string(SourceRemote)).Observe(time.Since(start).Seconds())
		r.session.StoreDecision(epoch, p, allowed, SourceRemote)
		outcome := Outcome{Allowed: allowed, Source: SourceRemote}
		r.record(outcome)
		return outcome
	}

	// Authority unreachable: answer from the local policy table and flag the
	// degraded mode.
	allowed = r.policy.Allows(identity.Role, p)
	r.metrics.FallbackResolutionsTotal.Inc()
	r.log.WithError(err).WithFields(map[string]interface{}{
		"permission": string(p),
		"role":       string(identity.Role),
		"allowed":    allowed,
	}).Warn("authority unreachable, resolved from local policy table")
	r.session.StoreDecision(epoch, p, allowed, SourceFallback)
	outcome := Outcome{Allowed: allowed, Source: SourceFallback}
	r.record(outcome)
	return outcome
}

func (r *Resolver) record(o Outcome) {
	outcome := "denied"
	if o.Allowed {
		outcome = "granted"
	}
	r.metrics.PermissionChecksTotal.WithLabelValues(string(o.Source), outcome).Inc()
}

// combine folds individual outcomes into a decision per the mode
func combine(perms []Permission, outcomes map[Permission]Outcome, mode Mode) Decision {
	allowed := mode == ModeAll
	for _, p := range perms {
		if mode == ModeAll {
			allowed = allowed && outcomes[p].Allowed
		} else {
			allowed = allowed || outcomes[p].Allowed
		}
	}
	return Decision{
		Allowed:       allowed,
		Mode:          mode,
		Source:        dominantSource(outcomes),
		PerPermission: outcomes,
	}
}

// dominantSource picks the source that matters most to an operator reading
// the decision: any fallback makes the whole decision degraded.
func dominantSource(outcomes map[Permission]Outcome) Source {
	rank := map[Source]int{
		SourceFallback:  4,
		SourceRemote:    3,
		SourceEffective: 2,
		SourceCache:     1,
		SourceNone:      0,
	}
	dominant := SourceNone
	for _, o := range outcomes {
		if rank[o.Source] > rank[dominant] {
			dominant = o.Source
		}
	}
	return dominant
}
