package core

import (
	"context"
	"fmt"
	"github.com/zhouchenh/rdapct/internal/config"
	"github.com/zhouchenh/rdapct/internal/logger"
	"github.com/zhouchenh/rdapct/internal/metrics"
	"github.com/zhouchenh/rdapct/internal/network/query"
	"github.com/zhouchenh/rdapct/internal/querycontext"
	"github.com/zhouchenh/rdapct/internal/results"
	"github.com/zhouchenh/rdapct/pkg/rules/rule"
	"golang.org/x/sync/errgroup"
	"time"
)

// Validator runs validations. It holds only the components shared by all
// runs; everything a run produces lives in the run's own context.
type Validator struct {
	Shared  querycontext.Shared
	Metrics *metrics.Metrics

	// Rules overrides the rules named by each configuration.
	Rules []rule.Rule

	// Sessions, when set, keeps finished contexts until released.
	Sessions *querycontext.Sessions
}

// Run validates the server named by cfg. User-input errors are returned
// before any query to the server; a custom DNS resolver that does not answer
// is one of them. A canceled ctx ends the run early; the partial
// context is returned together with the cancellation error.
func (v *Validator) Run(ctx context.Context, cfg *config.Config) (*querycontext.Context, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.UserAgent == "" {
		cfg = cfg.Clone(func(c *config.Config) {
			c.UserAgent = UserAgent()
		})
	}
	rules := v.Rules
	if rules == nil {
		var err error
		if rules, err = rule.Build(cfg.Rules); err != nil {
			return nil, err
		}
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if err := v.checkCustomDNS(ctx, cfg); err != nil {
		return nil, err
	}
	qc, err := querycontext.New(ctx, cfg, v.Shared)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	log := qc.Logger()
	log.Info().Str("uri", cfg.URI).Str("type", string(qc.QueryType())).Msg("validation started")

	primary := qc.ExecutePrimary()
	v.Metrics.ObserveQuery(primary.Status)
	if primary.Status.Transport() {
		log.Warn().Stringer("status", primary.Status).Str("fault", string(primary.Fault)).Msg("primary query failed")
	}

	for _, r := range rules {
		if err = qc.Done().Err(); err != nil {
			log.Warn().Err(err).Msg("validation canceled")
			break
		}
		v.apply(qc, r, primary)
	}

	findings := qc.Results().All()
	v.Metrics.ObserveFindings(findings)
	v.Metrics.ObserveRun(err == nil && len(findings) == 0, time.Since(start))
	if v.Sessions != nil {
		v.Sessions.Add(qc)
	}
	log.Info().
		Int("findings", len(findings)).
		Int("rule_failures", len(qc.Results().RuleFailures())).
		Dur("elapsed", time.Since(start)).
		Msg("validation finished")
	return qc, err
}

// checkCustomDNS tells a resolver that does not answer apart from a server
// host without addresses.
func (v *Validator) checkCustomDNS(ctx context.Context, cfg *config.Config) error {
	if cfg.CustomDNS == "" || v.Shared.Resolver == nil {
		return nil
	}
	err := v.Shared.Resolver.CheckServer(ctx, cfg.CustomDNS)
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	logger.Warning().Err(err).Str("customDns", cfg.CustomDNS).Msg("custom DNS resolver unreachable")
	return fmt.Errorf("%w: %v", config.ErrUnreachableCustomDNS, err)
}

func (v *Validator) apply(qc *querycontext.Context, r rule.Rule, primary *query.Result) {
	launched, completed := v.guard(qc, r, r.Launch)
	if !completed || !launched {
		return
	}
	if b, ok := r.(rule.BodyRule); ok && b.NeedsBody() && !primary.HasBody() {
		return
	}
	group := r.GroupName()
	qc.SetGroup(group)
	defer qc.SetGroup("")
	ok, completed := v.guard(qc, r, r.Validate)
	if !completed {
		return
	}
	qc.RecordOutcome(group, ok)
	v.Metrics.ObserveRule(group, ok)
}

// guard calls f and turns a panic into a rule failure of the run.
func (v *Validator) guard(qc *querycontext.Context, r rule.Rule, f func(*querycontext.Context) bool) (ok bool, completed bool) {
	defer func() {
		if p := recover(); p != nil {
			ok, completed = false, false
			reason := fmt.Sprint(p)
			qc.RecordRuleFailure(results.RuleFailure{Rule: r.TypeName(), Group: r.GroupName(), Reason: reason})
			v.Metrics.ObserveRuleFailure(r.TypeName())
			log := logger.ForRule(qc.ID(), r.TypeName(), r.GroupName())
			log.Error().Str("panic", reason).Msg("rule failed")
		}
	}()
	return f(qc), true
}

// Outcome is the result of one run of a batch.
type Outcome struct {
	Context *querycontext.Context
	Err     error
}

// RunBatch runs independent validations, at most parallelism at a time. The
// outcomes are in the order of cfgs; a failing run does not stop the others.
func (v *Validator) RunBatch(ctx context.Context, cfgs []*config.Config, parallelism int) []Outcome {
	if parallelism < 1 {
		parallelism = config.DefaultParallelism
	}
	outcomes := make([]Outcome, len(cfgs))
	g := new(errgroup.Group)
	g.SetLimit(parallelism)
	for i, cfg := range cfgs {
		i, cfg := i, cfg
		g.Go(func() error {
			qc, err := v.Run(ctx, cfg)
			if err != nil {
				err = &RunError{Index: i, Err: err}
			}
			outcomes[i] = Outcome{Context: qc, Err: err}
			return nil
		})
	}
	_ = g.Wait()
	return outcomes
}

// Session returns a kept context by id.
func (v *Validator) Session(id string) (*querycontext.Context, error) {
	if v.Sessions == nil {
		return nil, ErrNoSessions
	}
	return v.Sessions.Get(id)
}

// Release drops a kept context.
func (v *Validator) Release(id string) error {
	if v.Sessions == nil {
		return ErrNoSessions
	}
	return v.Sessions.Cleanup(id)
}
