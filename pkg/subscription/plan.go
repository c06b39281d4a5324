package subscription

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultPlanID is the monthly plan offered on the pricing page.
const DefaultPlanID = "monthly_100"

// DefaultPeriodDays applies when a row references a plan that is no longer
// in the catalog.
const DefaultPeriodDays = 30

//go:embed plans.yaml
var defaultPlansYAML []byte

// Plan is a purchasable subscription option.
type Plan struct {
	ID         string `yaml:"id" json:"id"`
	Name       string `yaml:"name" json:"name"`
	Amount     int64  `yaml:"amount" json:"amount"` // minor units
	Currency   string `yaml:"currency" json:"currency"`
	PeriodDays int    `yaml:"period_days" json:"periodDays"`
}

// Plans is the catalog of plans keyed by id. TrialDays applies to StartTrial.
type Plans struct {
	TrialDays int
	byID      map[string]Plan
	order     []string
}

type plansDocument struct {
	TrialDays int    `yaml:"trial_days"`
	Plans     []Plan `yaml:"plans"`
}

// DefaultPlans returns the built-in catalog.
func DefaultPlans() Plans {
	p, err := ParsePlans(defaultPlansYAML)
	if err != nil {
		panic(fmt.Sprintf("subscription: embedded plan catalog: %v", err))
	}
	return p
}

// LoadPlansFile reads a catalog from path.
func LoadPlansFile(path string) (Plans, error) {
	f, err := os.Open(path)
	if err != nil {
		return Plans{}, errors.Join(ErrInvalidPlanCatalog, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return Plans{}, errors.Join(ErrInvalidPlanCatalog, err)
	}
	return ParsePlans(data)
}

// ParsePlans decodes and validates a YAML catalog.
func ParsePlans(data []byte) (Plans, error) {
	var doc plansDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Plans{}, errors.Join(ErrInvalidPlanCatalog, err)
	}
	if len(doc.Plans) == 0 {
		return Plans{}, fmt.Errorf("%w: no plans defined", ErrInvalidPlanCatalog)
	}
	if doc.TrialDays < 0 {
		return Plans{}, fmt.Errorf("%w: trial_days must not be negative", ErrInvalidPlanCatalog)
	}

	p := Plans{TrialDays: doc.TrialDays, byID: make(map[string]Plan, len(doc.Plans))}
	for _, plan := range doc.Plans {
		switch {
		case plan.ID == "":
			return Plans{}, fmt.Errorf("%w: plan without id", ErrInvalidPlanCatalog)
		case plan.Amount <= 0:
			return Plans{}, fmt.Errorf("%w: plan %q must have a positive amount", ErrInvalidPlanCatalog, plan.ID)
		case plan.PeriodDays <= 0:
			return Plans{}, fmt.Errorf("%w: plan %q must have a positive period", ErrInvalidPlanCatalog, plan.ID)
		}
		if _, dup := p.byID[plan.ID]; dup {
			return Plans{}, fmt.Errorf("%w: duplicate plan %q", ErrInvalidPlanCatalog, plan.ID)
		}
		if plan.Currency == "" {
			plan.Currency = "BRL"
		}
		p.byID[plan.ID] = plan
		p.order = append(p.order, plan.ID)
	}
	return p, nil
}

// Get returns the plan with the given id.
func (p Plans) Get(id string) (Plan, bool) {
	plan, ok := p.byID[id]
	return plan, ok
}

// List returns the plans in catalog order.
func (p Plans) List() []Plan {
	out := make([]Plan, 0, len(p.order))
	for _, id := range p.order {
		out = append(out, p.byID[id])
	}
	return out
}

// periodDays returns the billing period for planID.
func (p Plans) periodDays(planID string) int {
	if plan, ok := p.byID[planID]; ok {
		return plan.PeriodDays
	}
	return DefaultPeriodDays
}
